// Package pipeline orchestrates the screening stages for a job: text
// extraction, dedup, fact extraction, knockout, scoring, and persistence.
package pipeline

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/screening"
	"github.com/jonathan/resume-screener/internal/types"
)

// DefaultWorkers bounds the number of resumes screened concurrently.
const DefaultWorkers = 4

// maxStoredResumeChars caps how much extracted resume text is persisted per
// applicant.
const maxStoredResumeChars = 10000

// Outcome classifies how the pipeline disposed of one resume.
type Outcome string

// Per-resume dispositions. Every resume submitted to a batch ends in exactly
// one of these, and progress advances regardless of which.
const (
	OutcomeScored        Outcome = "scored"
	OutcomeKnockedOut    Outcome = "knocked_out"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeUnprocessable Outcome = "unprocessable"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	FindApplicant(ctx context.Context, jobID uuid.UUID, email string) (*db.Applicant, error)
	CreateApplicant(ctx context.Context, a *db.Applicant) (*db.Applicant, error)
	ListApplicantsByJob(ctx context.Context, jobID uuid.UUID) ([]db.Applicant, error)
	StartJobProcessing(ctx context.Context, jobID uuid.UUID, totalResumes int) error
	IncrementJobProgress(ctx context.Context, jobID uuid.UUID) error
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status db.JobStatus) error
	SaveJobResults(ctx context.Context, jobID uuid.UUID, results any) error
}

// FactExtractor is the AI extraction surface the pipeline needs.
type FactExtractor interface {
	Available() bool
	UnavailableReason() string
	ExtractCandidateFacts(ctx context.Context, resumeText string, jdRequirements []string, opts llm.ExtractOptions) (*types.CandidateFacts, error)
}

// Runner screens resumes against a job. ExtractText and Workers are
// overridable for tests; NewRunner sets production defaults.
type Runner struct {
	Store       Store
	Extractor   FactExtractor
	ExtractText func(pdf []byte) string
	Workers     int
}

// NewRunner builds a Runner with the PDF text extractor and default
// concurrency.
func NewRunner(store Store, extractor FactExtractor) *Runner {
	return &Runner{
		Store:       store,
		Extractor:   extractor,
		ExtractText: ingestion.ExtractText,
		Workers:     DefaultWorkers,
	}
}

// ProcessResume runs the full screening sequence for one resume and persists
// the outcome. The returned applicant is non-nil only when a record was
// written. Identical inputs produce identical knockout and scoring results;
// only the AI extraction step is non-deterministic, and its output is
// sanitized before anything downstream sees it.
func (r *Runner) ProcessResume(ctx context.Context, job *db.Job, pdf []byte, opts llm.ExtractOptions) (*db.Applicant, Outcome, error) {
	text := r.ExtractText(pdf)
	if len(text) < ingestion.MinResumeTextLen {
		return nil, OutcomeUnprocessable, nil
	}

	// Cheap duplicate pre-check before spending an AI call. The unique
	// constraint at insert time catches whatever this race misses.
	if email := ingestion.ScanEmail(text); email != "" {
		existing, err := r.Store.FindApplicant(ctx, job.ID, email)
		if err != nil {
			return nil, OutcomeUnprocessable, err
		}
		if existing != nil {
			return nil, OutcomeDuplicate, nil
		}
	}

	facts, err := r.Extractor.ExtractCandidateFacts(ctx, text, job.JDRequirements, opts)
	if err != nil {
		return nil, OutcomeUnprocessable, err
	}

	knockout := screening.CheckKnockout(facts.TotalYearsExperience, facts.SkillsWithYears, job.RequiredSkills, job.MinExperience)

	var result types.ScoringResult
	outcome := OutcomeScored
	if knockout.IsKnockedOut {
		result = types.KnockedOutResult(knockout.Reason)
		outcome = OutcomeKnockedOut
	} else {
		result = screening.Score(facts, job.RequiredSkills, job.MinExperience, text)
	}

	applicant := &db.Applicant{
		JobID:           job.ID,
		CompanyID:       job.CompanyID,
		Name:            facts.Name,
		Email:           applicantEmail(facts, text),
		Phone:           facts.Phone,
		ResumeText:      truncateStored(text),
		ResumePDF:       pdf,
		YearsExperience: int(facts.TotalYearsExperience),
		Skills:          facts.SkillsWithYears,
		MatchScore:      result.FinalScore,
		Summary:         result.Summary,
		Status:          result.Status,
		Breakdown:       result.Breakdown,
	}
	if _, err := r.Store.CreateApplicant(ctx, applicant); err != nil {
		if errors.Is(err, db.ErrDuplicateApplicant) {
			return nil, OutcomeDuplicate, nil
		}
		return nil, OutcomeUnprocessable, err
	}

	return applicant, outcome, nil
}

// Run screens every resume in the batch, aggregates the results, and stores
// them on the job. The job ends in the completed state unless the extraction
// service is unreachable up front, in which case it ends failed without
// consuming any resume.
func (r *Runner) Run(ctx context.Context, job *db.Job, files []ingestion.ResumeFile) (*types.BatchResult, error) {
	if !r.Extractor.Available() {
		log.Printf("job %s failed: %s", job.ID, r.Extractor.UnavailableReason())
		if err := r.Store.UpdateJobStatus(ctx, job.ID, db.JobStatusFailed); err != nil {
			return nil, err
		}
		return nil, llm.ErrServiceUnavailable
	}

	if err := r.Store.StartJobProcessing(ctx, job.ID, len(files)); err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		tallies Tallies
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workerLimit())
	for _, file := range files {
		file := file
		g.Go(func() error {
			_, outcome, err := r.ProcessResume(gctx, job, file.Data, llm.ExtractOptions{})
			if err != nil {
				log.Printf("failed to process resume %q: %v", file.Name, err)
			}

			mu.Lock()
			tallies.Add(outcome)
			mu.Unlock()

			// Progress always advances, whatever the disposition.
			if err := r.Store.IncrementJobProgress(gctx, job.ID); err != nil {
				log.Printf("failed to record progress for job %s: %v", job.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	applicants, err := r.Store.ListApplicantsByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	result := BuildBatchResult(types.BatchCriteria{
		JobTitle:       job.Title,
		MinExperience:  job.MinExperience,
		RequiredSkills: job.RequiredSkills,
	}, applicants, tallies)

	if err := r.Store.SaveJobResults(ctx, job.ID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Runner) workerLimit() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return DefaultWorkers
}

// applicantEmail picks the best email for the persisted record: the
// extracted one, then the one scanned from raw text, then the sentinel.
// Keeping this aligned with the pre-check scan matters: the stored email is
// the dedup key for every later submission.
func applicantEmail(facts *types.CandidateFacts, text string) string {
	if facts.Email != "" && facts.Email != types.UnknownCandidateEmail {
		return strings.ToLower(facts.Email)
	}
	if scanned := ingestion.ScanEmail(text); scanned != "" {
		return scanned
	}
	return types.UnknownCandidateEmail
}

// truncateStored caps persisted resume text, backing off to a rune boundary
// so the stored value is always valid UTF-8.
func truncateStored(text string) string {
	if len(text) <= maxStoredResumeChars {
		return text
	}
	n := maxStoredResumeChars
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
