package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateJob inserts a new screening job in the pending state and returns it
// with its generated ID.
func (db *DB) CreateJob(ctx context.Context, job *Job) (*Job, error) {
	query := `
		INSERT INTO jobs (company_id, title, description, min_experience, required_skills, status, total_resumes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := db.pool.QueryRow(ctx, query,
		job.CompanyID,
		job.Title,
		job.Description,
		job.MinExperience,
		job.RequiredSkills,
		JobStatusPending,
		job.TotalResumes,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	job.Status = JobStatusPending
	return job, nil
}

// LoadJob retrieves a job by ID, scoped to the owning company.
// Returns (nil, nil) if no job exists.
func (db *DB) LoadJob(ctx context.Context, companyID int64, jobID uuid.UUID) (*Job, error) {
	query := `
		SELECT id, company_id, title, description, min_experience, required_skills,
		       jd_requirements, status, total_resumes, processed_resumes, results,
		       created_at, updated_at
		FROM jobs
		WHERE id = $1 AND company_id = $2`

	var job Job
	err := db.pool.QueryRow(ctx, query, jobID, companyID).Scan(
		&job.ID,
		&job.CompanyID,
		&job.Title,
		&job.Description,
		&job.MinExperience,
		&job.RequiredSkills,
		&job.JDRequirements,
		&job.Status,
		&job.TotalResumes,
		&job.ProcessedResumes,
		&job.Results,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	return &job, nil
}

// SetJobRequirements stores the requirement statements extracted from the
// job description.
func (db *DB) SetJobRequirements(ctx context.Context, jobID uuid.UUID, requirements []string) error {
	query := `UPDATE jobs SET jd_requirements = $2, updated_at = NOW() WHERE id = $1`

	if _, err := db.pool.Exec(ctx, query, jobID, requirements); err != nil {
		return fmt.Errorf("failed to set job requirements: %w", err)
	}
	return nil
}

// StartJobProcessing moves a job into the processing state and resets its
// progress counter.
func (db *DB) StartJobProcessing(ctx context.Context, jobID uuid.UUID, totalResumes int) error {
	query := `
		UPDATE jobs
		SET status = $2, total_resumes = $3, processed_resumes = 0, updated_at = NOW()
		WHERE id = $1`

	if _, err := db.pool.Exec(ctx, query, jobID, JobStatusProcessing, totalResumes); err != nil {
		return fmt.Errorf("failed to start job processing: %w", err)
	}
	return nil
}

// IncrementJobProgress advances the processed counter by one. The increment
// runs inside the database so concurrent workers never lose an update.
func (db *DB) IncrementJobProgress(ctx context.Context, jobID uuid.UUID) error {
	query := `
		UPDATE jobs
		SET processed_resumes = processed_resumes + 1, updated_at = NOW()
		WHERE id = $1`

	if _, err := db.pool.Exec(ctx, query, jobID); err != nil {
		return fmt.Errorf("failed to increment job progress: %w", err)
	}
	return nil
}

// UpdateJobStatus sets the job's lifecycle state.
func (db *DB) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status JobStatus) error {
	query := `UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := db.pool.Exec(ctx, query, jobID, status); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

// SaveJobResults stores the aggregated batch result and marks the job
// completed in one statement, so a poller never observes a completed job
// without results.
func (db *DB) SaveJobResults(ctx context.Context, jobID uuid.UUID, results any) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal job results: %w", err)
	}

	query := `
		UPDATE jobs
		SET results = $2, status = $3, updated_at = NOW()
		WHERE id = $1`

	if _, err := db.pool.Exec(ctx, query, jobID, payload, JobStatusCompleted); err != nil {
		return fmt.Errorf("failed to save job results: %w", err)
	}
	return nil
}
