package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/types"
)

// fakeStore is an in-memory Store keyed the same way the database is:
// one applicant per (job_id, email).
type fakeStore struct {
	mu         sync.Mutex
	applicants map[string]*db.Applicant
	order      []string
	progress   int
	status     db.JobStatus
	results    any
}

func newFakeStore() *fakeStore {
	return &fakeStore{applicants: make(map[string]*db.Applicant)}
}

func key(jobID uuid.UUID, email string) string {
	return jobID.String() + "|" + email
}

func (s *fakeStore) FindApplicant(_ context.Context, jobID uuid.UUID, email string) (*db.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.applicants[key(jobID, email)]; ok {
		return a, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateApplicant(_ context.Context, a *db.Applicant) (*db.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(a.JobID, a.Email)
	if _, ok := s.applicants[k]; ok {
		return nil, db.ErrDuplicateApplicant
	}
	a.ID = uuid.New()
	s.applicants[k] = a
	s.order = append(s.order, k)
	return a, nil
}

func (s *fakeStore) ListApplicantsByJob(_ context.Context, jobID uuid.UUID) ([]db.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Applicant
	for _, k := range s.order {
		a := s.applicants[k]
		if a.JobID == jobID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) StartJobProcessing(_ context.Context, _ uuid.UUID, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = db.JobStatusProcessing
	s.progress = 0
	return nil
}

func (s *fakeStore) IncrementJobProgress(_ context.Context, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress++
	return nil
}

func (s *fakeStore) UpdateJobStatus(_ context.Context, _ uuid.UUID, status db.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	return nil
}

func (s *fakeStore) SaveJobResults(_ context.Context, _ uuid.UUID, results any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.status = db.JobStatusCompleted
	return nil
}

// fakeFacts maps resume text to the facts the extractor should return.
type fakeFacts struct {
	available bool
	facts     map[string]*types.CandidateFacts
}

func (f *fakeFacts) Available() bool { return f.available }

func (f *fakeFacts) UnavailableReason() string {
	if f.available {
		return ""
	}
	return "no API key configured"
}

func (f *fakeFacts) ExtractCandidateFacts(_ context.Context, resumeText string, _ []string, opts llm.ExtractOptions) (*types.CandidateFacts, error) {
	if !f.available {
		if opts.FailOnUnavailable {
			return nil, llm.ErrServiceUnavailable
		}
		return types.UnknownCandidateFacts(), nil
	}
	for needle, facts := range f.facts {
		if strings.Contains(resumeText, needle) {
			return facts, nil
		}
	}
	return types.UnknownCandidateFacts(), nil
}

func newTestRunner(store *fakeStore, extractor FactExtractor) *Runner {
	r := NewRunner(store, extractor)
	// Resume bytes pass through as text so tests control extraction exactly.
	r.ExtractText = func(pdf []byte) string { return string(pdf) }
	return r
}

func resume(name, email string, filler int) []byte {
	text := fmt.Sprintf("%s\n%s\nSenior engineer with Go and PostgreSQL experience.\n", name, email)
	return []byte(text + strings.Repeat("x ", filler))
}

func testJob() *db.Job {
	return &db.Job{
		ID:             uuid.New(),
		CompanyID:      7,
		Title:          "Backend Engineer",
		MinExperience:  3,
		RequiredSkills: []string{"go", "postgresql"},
	}
}

func strongFacts(name, email string) *types.CandidateFacts {
	citation := "Go and PostgreSQL experience"
	return &types.CandidateFacts{
		Name:                 name,
		Email:                email,
		TotalYearsExperience: 6,
		SkillsWithYears:      map[string]float64{"go": 5, "postgresql": 4},
		MetricsBulletCount:   5,
		JDRequirementMatches: []types.RequirementMatch{
			{Requirement: "Experience with Go and PostgreSQL", IsMet: true, CitationQuote: &citation},
		},
	}
}

func TestProcessResume_ScoresAndPersists(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeFacts{available: true, facts: map[string]*types.CandidateFacts{
		"alice@example.com": strongFacts("Alice", "alice@example.com"),
	}}
	r := newTestRunner(store, extractor)
	job := testJob()

	applicant, outcome, err := r.ProcessResume(context.Background(), job, resume("Alice", "alice@example.com", 40), llm.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeScored, outcome)
	require.NotNil(t, applicant)
	saved := store.applicants[key(job.ID, "alice@example.com")]
	require.NotNil(t, saved)
	assert.Equal(t, applicant.ID, saved.ID)
	assert.Equal(t, "Alice", saved.Name)
	assert.Equal(t, types.StatusShortlisted, saved.Status)
	assert.NotNil(t, saved.Breakdown)
	assert.Equal(t, job.CompanyID, saved.CompanyID)
}

func TestProcessResume_ShortTextIsUnprocessable(t *testing.T) {
	store := newFakeStore()
	r := newTestRunner(store, &fakeFacts{available: true})

	applicant, outcome, err := r.ProcessResume(context.Background(), testJob(), []byte("too short"), llm.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnprocessable, outcome)
	assert.Nil(t, applicant)
	assert.Empty(t, store.applicants)
}

func TestProcessResume_DuplicateEmailSkipsBeforeExtraction(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeFacts{available: true, facts: map[string]*types.CandidateFacts{
		"alice@example.com": strongFacts("Alice", "alice@example.com"),
	}}
	r := newTestRunner(store, extractor)
	job := testJob()

	_, first, err := r.ProcessResume(context.Background(), job, resume("Alice", "alice@example.com", 40), llm.ExtractOptions{})
	require.NoError(t, err)
	require.Equal(t, OutcomeScored, first)

	_, second, err := r.ProcessResume(context.Background(), job, resume("Alice Again", "alice@example.com", 40), llm.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second)
	assert.Len(t, store.applicants, 1)
	assert.Equal(t, "Alice", store.applicants[key(job.ID, "alice@example.com")].Name)
}

// wrappingStore behaves like a query layer that annotates errors with
// context before returning them. Its FindApplicant never reports an existing
// record, so duplicates are only caught by the insert.
type wrappingStore struct {
	*fakeStore
}

func (s *wrappingStore) FindApplicant(context.Context, uuid.UUID, string) (*db.Applicant, error) {
	return nil, nil
}

func (s *wrappingStore) CreateApplicant(ctx context.Context, a *db.Applicant) (*db.Applicant, error) {
	created, err := s.fakeStore.CreateApplicant(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("failed to create applicant: %w", err)
	}
	return created, nil
}

func TestProcessResume_WrappedDuplicateInsertError(t *testing.T) {
	base := newFakeStore()
	extractor := &fakeFacts{available: true, facts: map[string]*types.CandidateFacts{
		"alice@example.com": strongFacts("Alice", "alice@example.com"),
	}}
	r := NewRunner(&wrappingStore{fakeStore: base}, extractor)
	r.ExtractText = func(pdf []byte) string { return string(pdf) }
	job := testJob()

	_, first, err := r.ProcessResume(context.Background(), job, resume("Alice", "alice@example.com", 40), llm.ExtractOptions{})
	require.NoError(t, err)
	require.Equal(t, OutcomeScored, first)

	applicant, second, err := r.ProcessResume(context.Background(), job, resume("Alice Again", "alice@example.com", 40), llm.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second)
	assert.Nil(t, applicant)
	assert.Len(t, base.applicants, 1)
}

func TestProcessResume_KnockedOutIsPersistedRejected(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeFacts{available: true, facts: map[string]*types.CandidateFacts{
		"bob@example.com": {
			Name:                 "Bob",
			Email:                "bob@example.com",
			TotalYearsExperience: 1,
			SkillsWithYears:      map[string]float64{"go": 1},
		},
	}}
	r := newTestRunner(store, extractor)
	job := testJob()

	applicant, outcome, err := r.ProcessResume(context.Background(), job, resume("Bob", "bob@example.com", 40), llm.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, OutcomeKnockedOut, outcome)
	require.NotNil(t, applicant)
	saved := store.applicants[key(job.ID, "bob@example.com")]
	require.NotNil(t, saved)
	assert.Equal(t, 0, saved.MatchScore)
	assert.Equal(t, types.StatusRejected, saved.Status)
	assert.Nil(t, saved.Breakdown)
	assert.True(t, strings.HasPrefix(saved.Summary, "Rejected at screening: "))
}

func TestProcessResume_UnavailableWithFailFlag(t *testing.T) {
	store := newFakeStore()
	r := newTestRunner(store, &fakeFacts{available: false})

	_, _, err := r.ProcessResume(context.Background(), testJob(), resume("Carol", "carol@example.com", 40), llm.ExtractOptions{FailOnUnavailable: true})

	assert.ErrorIs(t, err, llm.ErrServiceUnavailable)
	assert.Empty(t, store.applicants)
}

func TestProcessResume_UnavailableWithoutFlagUsesSentinel(t *testing.T) {
	store := newFakeStore()
	r := newTestRunner(store, &fakeFacts{available: false})
	job := testJob()

	applicant, outcome, err := r.ProcessResume(context.Background(), job, resume("Carol", "carol@example.com", 40), llm.ExtractOptions{})

	require.NoError(t, err)
	// Sentinel facts carry no skills or experience, so the knockout gate
	// rejects them.
	assert.Equal(t, OutcomeKnockedOut, outcome)
	require.NotNil(t, applicant)
	saved := store.applicants[key(job.ID, "carol@example.com")]
	require.NotNil(t, saved)
	assert.Equal(t, types.UnknownCandidateName, saved.Name)
}

func TestRun_UnavailableServiceFailsJob(t *testing.T) {
	store := newFakeStore()
	r := newTestRunner(store, &fakeFacts{available: false})

	_, err := r.Run(context.Background(), testJob(), []ingestion.ResumeFile{
		{Name: "a.pdf", Data: resume("Alice", "alice@example.com", 40)},
	})

	assert.ErrorIs(t, err, llm.ErrServiceUnavailable)
	assert.Equal(t, db.JobStatusFailed, store.status)
	assert.Equal(t, 0, store.progress)
}

func TestRun_AggregatesBatch(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeFacts{available: true, facts: map[string]*types.CandidateFacts{
		"alice@example.com": strongFacts("Alice", "alice@example.com"),
		"bob@example.com": {
			Name:                 "Bob",
			Email:                "bob@example.com",
			TotalYearsExperience: 1,
			SkillsWithYears:      map[string]float64{"go": 1},
		},
	}}
	r := newTestRunner(store, extractor)
	job := testJob()

	files := []ingestion.ResumeFile{
		{Name: "alice.pdf", Data: resume("Alice", "alice@example.com", 40)},
		{Name: "alice-dup.pdf", Data: resume("Alice Dup", "alice@example.com", 40)},
		{Name: "bob.pdf", Data: resume("Bob", "bob@example.com", 40)},
		{Name: "scan.pdf", Data: []byte("short")},
	}
	result, err := r.Run(context.Background(), job, files)

	require.NoError(t, err)
	// Only persisted candidates count as processed; the duplicate and the
	// unreadable scan are reported in their own counters.
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 1, result.DuplicatesSkipped)
	assert.Equal(t, 1, result.Unprocessable)
	assert.Equal(t, 1, result.KnockedOut)
	assert.Equal(t, 1, result.Scored)
	assert.Equal(t, db.JobStatusCompleted, store.status)
	assert.Equal(t, 4, store.progress)

	require.Len(t, result.AllCandidates, 2)
	assert.Equal(t, "Alice", result.AllCandidates[0].Name)
	require.Len(t, result.Shortlisted, 1)
	assert.Equal(t, "Alice", result.Shortlisted[0].Name)
	assert.Equal(t, "Backend Engineer", result.Criteria.JobTitle)
}

func TestTruncateStored_BreaksOnRuneBoundary(t *testing.T) {
	// A multi-byte rune straddling the cap must be dropped whole, never split.
	text := strings.Repeat("a", maxStoredResumeChars-1) + "é"
	got := truncateStored(text)
	assert.Equal(t, strings.Repeat("a", maxStoredResumeChars-1), got)
	assert.True(t, utf8.ValidString(got))

	cjk := strings.Repeat("日", maxStoredResumeChars)
	got = truncateStored(cjk)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxStoredResumeChars)

	assert.Equal(t, "résumé", truncateStored("résumé"))
}

func TestRun_ConcurrentDuplicatesCollapseToOne(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeFacts{available: true, facts: map[string]*types.CandidateFacts{
		"alice@example.com": strongFacts("Alice", "alice@example.com"),
	}}
	r := newTestRunner(store, extractor)
	r.Workers = 8
	job := testJob()

	var files []ingestion.ResumeFile
	for i := 0; i < 8; i++ {
		files = append(files, ingestion.ResumeFile{
			Name: fmt.Sprintf("copy-%d.pdf", i),
			Data: resume("Alice", "alice@example.com", 40+i),
		})
	}
	result, err := r.Run(context.Background(), job, files)

	require.NoError(t, err)
	assert.Len(t, store.applicants, 1)
	assert.Equal(t, 1, result.Scored)
	assert.Equal(t, 7, result.DuplicatesSkipped)
	assert.Equal(t, 8, store.progress)
}
