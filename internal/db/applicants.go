package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FindApplicant looks up an applicant by job and email.
// Returns (nil, nil) if no applicant exists.
func (db *DB) FindApplicant(ctx context.Context, jobID uuid.UUID, email string) (*Applicant, error) {
	query := `
		SELECT id, job_id, company_id, name, email, phone, years_experience,
		       skills, match_score, summary, status, breakdown, created_at
		FROM applicants
		WHERE job_id = $1 AND email = $2`

	var a Applicant
	err := db.pool.QueryRow(ctx, query, jobID, email).Scan(
		&a.ID,
		&a.JobID,
		&a.CompanyID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.YearsExperience,
		&a.Skills,
		&a.MatchScore,
		&a.Summary,
		&a.Status,
		&a.Breakdown,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find applicant: %w", err)
	}

	return &a, nil
}

// CreateApplicant inserts a screened applicant. A unique-constraint
// violation on (job_id, email) is returned as ErrDuplicateApplicant.
func (db *DB) CreateApplicant(ctx context.Context, a *Applicant) (*Applicant, error) {
	query := `
		INSERT INTO applicants (job_id, company_id, name, email, phone, resume_text,
		                        resume_pdf, years_experience, skills, match_score,
		                        summary, status, breakdown)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := db.pool.QueryRow(ctx, query,
		a.JobID,
		a.CompanyID,
		a.Name,
		a.Email,
		a.Phone,
		a.ResumeText,
		a.ResumePDF,
		a.YearsExperience,
		a.Skills,
		a.MatchScore,
		a.Summary,
		a.Status,
		a.Breakdown,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateApplicant
		}
		return nil, fmt.Errorf("failed to create applicant: %w", err)
	}

	return a, nil
}

// ListApplicantsByJob returns all applicants for a job ordered by match
// score descending, earliest submission first on ties.
func (db *DB) ListApplicantsByJob(ctx context.Context, jobID uuid.UUID) ([]Applicant, error) {
	query := `
		SELECT id, job_id, company_id, name, email, phone, years_experience,
		       skills, match_score, summary, status, breakdown, created_at
		FROM applicants
		WHERE job_id = $1
		ORDER BY match_score DESC, created_at ASC`

	rows, err := db.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	defer rows.Close()

	var applicants []Applicant
	for rows.Next() {
		var a Applicant
		err := rows.Scan(
			&a.ID,
			&a.JobID,
			&a.CompanyID,
			&a.Name,
			&a.Email,
			&a.Phone,
			&a.YearsExperience,
			&a.Skills,
			&a.MatchScore,
			&a.Summary,
			&a.Status,
			&a.Breakdown,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}
		applicants = append(applicants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applicants: %w", err)
	}

	return applicants, nil
}
