package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/pipeline"
)

// maxUploadBytes caps multipart uploads. A batch of a few hundred resume
// PDFs fits comfortably.
const maxUploadBytes = 256 << 20

// ScreenRequest is the validated form of a batch screening submission.
type ScreenRequest struct {
	CompanyID      int64    `validate:"required,gt=0"`
	JobTitle       string   `validate:"required"`
	JobDescription string   `validate:"-"`
	MinExperience  float64  `validate:"gte=0"`
	RequiredSkills []string `validate:"required,min=1,dive,required"`
}

// ScreenResponse is returned when a batch is accepted.
type ScreenResponse struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	TotalResumes int    `json:"total_resumes"`
}

// StatusResponse reports batch progress and, once completed, the results.
type StatusResponse struct {
	JobID            string          `json:"job_id"`
	Status           string          `json:"status"`
	TotalResumes     int             `json:"total_resumes"`
	ProcessedResumes int             `json:"processed_resumes"`
	Results          json.RawMessage `json:"results,omitempty"`
}

// ApplyResponse is returned by the synchronous single-resume path.
type ApplyResponse struct {
	ApplicantID string `json:"applicant_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	MatchScore  int    `json:"match_score"`
	Status      string `json:"status"`
	Summary     string `json:"summary"`
}

// handleScreen accepts a zip of resume PDFs plus the screening criteria,
// creates the job, and screens the batch in the background. Clients poll
// GET /api/screen/{id} for progress and results.
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	if !s.extractor.Available() {
		s.respondError(w, &ErrExtractionUnavailable{Reason: s.extractor.UnavailableReason()})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, &ErrValidation{Field: "body", Message: "invalid multipart form: " + err.Error()})
		return
	}

	req, err := parseScreenRequest(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, validationError(err))
		return
	}

	archive, err := readFormFile(r, "resumes_zip")
	if err != nil {
		s.respondError(w, &ErrValidation{Field: "resumes_zip", Message: err.Error()})
		return
	}
	files, err := ingestion.ListResumePDFs(archive)
	if err != nil {
		s.respondError(w, &ErrValidation{Field: "resumes_zip", Message: "could not read zip archive"})
		return
	}
	if len(files) == 0 {
		s.respondError(w, &ErrValidation{Field: "resumes_zip", Message: "archive contains no PDF files"})
		return
	}

	description := ingestion.NormalizeJobDescription(req.JobDescription)
	job, err := s.store.CreateJob(r.Context(), &db.Job{
		CompanyID:      req.CompanyID,
		Title:          req.JobTitle,
		Description:    description,
		MinExperience:  req.MinExperience,
		RequiredSkills: req.RequiredSkills,
		TotalResumes:   len(files),
	})
	if err != nil {
		log.Printf("failed to create screening job: %v", err)
		s.respondError(w, err)
		return
	}

	// The batch outlives the request.
	go s.runBatch(context.Background(), *job, description, files)

	s.jsonResponse(w, http.StatusAccepted, ScreenResponse{
		JobID:        job.ID.String(),
		Status:       string(job.Status),
		TotalResumes: job.TotalResumes,
	})
}

// runBatch extracts requirement statements from the job description, then
// screens every resume in the batch.
func (s *Server) runBatch(ctx context.Context, job db.Job, description string, files []ingestion.ResumeFile) {
	if description != "" {
		requirements := s.extractor.ExtractJDRequirements(ctx, description)
		if len(requirements) > 0 {
			if err := s.store.SetJobRequirements(ctx, job.ID, requirements); err != nil {
				log.Printf("failed to store requirements for job %s: %v", job.ID, err)
			}
			job.JDRequirements = requirements
		}
	}

	if _, err := s.runner.Run(ctx, &job, files); err != nil {
		log.Printf("screening job %s failed: %v", job.ID, err)
	}
}

// handleScreenStatus reports batch progress from the persisted job row, so
// polling works across restarts and multiple server instances.
func (s *Server) handleScreenStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, &ErrValidation{Field: "id", Message: "invalid job ID format"})
		return
	}
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil || companyID <= 0 {
		s.respondError(w, &ErrValidation{Field: "company_id", Message: "company_id query parameter is required"})
		return
	}

	job, err := s.store.LoadJob(r.Context(), companyID, jobID)
	if err != nil {
		log.Printf("failed to load job %s: %v", jobID, err)
		s.respondError(w, err)
		return
	}
	if job == nil {
		s.respondError(w, &ErrJobNotFound{JobID: jobID})
		return
	}

	resp := StatusResponse{
		JobID:            job.ID.String(),
		Status:           string(job.Status),
		TotalResumes:     job.TotalResumes,
		ProcessedResumes: job.ProcessedResumes,
	}
	if job.Status == db.JobStatusCompleted {
		resp.Results = job.Results
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleApply screens one resume against an existing job synchronously. The
// extraction service must be up; a silent sentinel score would be unfair to
// a live applicant.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, &ErrValidation{Field: "body", Message: "invalid multipart form: " + err.Error()})
		return
	}

	jobID, err := uuid.Parse(r.FormValue("job_id"))
	if err != nil {
		s.respondError(w, &ErrValidation{Field: "job_id", Message: "invalid job ID format"})
		return
	}
	companyID, err := strconv.ParseInt(r.FormValue("company_id"), 10, 64)
	if err != nil || companyID <= 0 {
		s.respondError(w, &ErrValidation{Field: "company_id", Message: "company_id is required"})
		return
	}
	pdf, err := readFormFile(r, "resume")
	if err != nil {
		s.respondError(w, &ErrValidation{Field: "resume", Message: err.Error()})
		return
	}

	job, err := s.store.LoadJob(r.Context(), companyID, jobID)
	if err != nil {
		log.Printf("failed to load job %s: %v", jobID, err)
		s.respondError(w, err)
		return
	}
	if job == nil {
		s.respondError(w, &ErrJobNotFound{JobID: jobID})
		return
	}

	applicant, outcome, err := s.runner.ProcessResume(r.Context(), job, pdf, llm.ExtractOptions{FailOnUnavailable: true})
	if err != nil {
		if errors.Is(err, llm.ErrServiceUnavailable) {
			s.respondError(w, &ErrExtractionUnavailable{Reason: s.extractor.UnavailableReason()})
			return
		}
		log.Printf("failed to screen applicant for job %s: %v", jobID, err)
		s.respondError(w, err)
		return
	}

	switch outcome {
	case pipeline.OutcomeDuplicate:
		s.respondError(w, &ErrDuplicateSubmission{})
	case pipeline.OutcomeUnprocessable:
		s.respondError(w, &ErrUnprocessableResume{})
	default:
		s.jsonResponse(w, http.StatusCreated, ApplyResponse{
			ApplicantID: applicant.ID.String(),
			Name:        applicant.Name,
			Email:       applicant.Email,
			MatchScore:  applicant.MatchScore,
			Status:      string(applicant.Status),
			Summary:     applicant.Summary,
		})
	}
}

// respondError maps a typed error to its HTTP status.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	s.errorResponse(w, status, message)
}

func parseScreenRequest(r *http.Request) (*ScreenRequest, error) {
	req := &ScreenRequest{
		JobTitle:       strings.TrimSpace(r.FormValue("job_title")),
		JobDescription: r.FormValue("job_description"),
		RequiredSkills: splitSkills(r.FormValue("required_skills")),
	}

	if v := r.FormValue("company_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, &ErrValidation{Field: "company_id", Message: "must be an integer"}
		}
		req.CompanyID = id
	}
	if v := r.FormValue("min_experience"); v != "" {
		years, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &ErrValidation{Field: "min_experience", Message: "must be a number"}
		}
		req.MinExperience = years
	}
	return req, nil
}

// splitSkills parses the comma-separated required_skills field, lowercasing
// so matching is case-insensitive end to end.
func splitSkills(csv string) []string {
	var skills []string
	for _, part := range strings.Split(csv, ",") {
		if skill := strings.ToLower(strings.TrimSpace(part)); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, errors.New(field + " file is required")
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("could not read uploaded " + field)
	}
	return data, nil
}

// validationError converts validator output into the API's error shape,
// reporting the first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ErrValidation{Field: strings.ToLower(verrs[0].Field()), Message: "failed " + verrs[0].Tag() + " validation"}
	}
	return &ErrValidation{Field: "request", Message: err.Error()}
}
