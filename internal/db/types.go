package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-screener/internal/types"
)

// JobStatus is the lifecycle state of a screening job.
type JobStatus string

// Job lifecycle states exposed through the polling surface.
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is a screening job record. The processed_resumes counter on this row
// is the progress authority; any in-process cache is an optimization only.
type Job struct {
	ID               uuid.UUID       `json:"id"`
	CompanyID        int64           `json:"company_id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	MinExperience    float64         `json:"min_experience"`
	RequiredSkills   []string        `json:"required_skills"`
	JDRequirements   []string        `json:"jd_requirements,omitempty"`
	Status           JobStatus       `json:"status"`
	TotalResumes     int             `json:"total_resumes"`
	ProcessedResumes int             `json:"processed_resumes"`
	Results          json.RawMessage `json:"results,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Applicant is one screened candidate, durably owned by the store once the
// pipeline hands it over.
type Applicant struct {
	ID              uuid.UUID             `json:"id"`
	JobID           uuid.UUID             `json:"job_id"`
	CompanyID       int64                 `json:"company_id"`
	Name            string                `json:"name"`
	Email           string                `json:"email"`
	Phone           string                `json:"phone"`
	ResumeText      string                `json:"-"`
	ResumePDF       []byte                `json:"-"`
	YearsExperience int                   `json:"years_experience"`
	Skills          map[string]float64    `json:"skills"`
	MatchScore      int                   `json:"match_score"`
	Summary         string                `json:"summary"`
	Status          types.Status          `json:"status"`
	Breakdown       *types.ScoreBreakdown `json:"breakdown"`
	CreatedAt       time.Time             `json:"created_at"`
}
