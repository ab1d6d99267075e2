package pipeline

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/types"
)

func scoredApplicant(name string, score int) db.Applicant {
	return db.Applicant{
		ID:         uuid.New(),
		Name:       name,
		Email:      name + "@example.com",
		MatchScore: score,
		Status:     types.StatusForScore(score),
	}
}

func TestBuildBatchResult_Empty(t *testing.T) {
	result := BuildBatchResult(types.BatchCriteria{}, nil, Tallies{})

	assert.Zero(t, result.TotalProcessed)
	assert.Empty(t, result.AllCandidates)
	assert.Empty(t, result.Shortlisted)
}

func TestBuildBatchResult_ProcessedExcludesDuplicatesAndUnreadable(t *testing.T) {
	applicants := []db.Applicant{scoredApplicant("alice", 92)}

	result := BuildBatchResult(types.BatchCriteria{}, applicants, Tallies{
		Scored:        1,
		Duplicates:    1,
		Unprocessable: 1,
	})

	assert.Equal(t, 1, result.TotalProcessed)
	assert.Equal(t, 1, result.DuplicatesSkipped)
	assert.Equal(t, 1, result.Unprocessable)
	assert.Equal(t, 1, result.Scored)
}

func TestBuildBatchResult_SortsDescendingAndCounts(t *testing.T) {
	applicants := []db.Applicant{
		scoredApplicant("carol", 55),
		scoredApplicant("alice", 92),
		scoredApplicant("bob", 71),
	}

	result := BuildBatchResult(types.BatchCriteria{JobTitle: "Backend Engineer"}, applicants, Tallies{Scored: 3})

	require.Len(t, result.AllCandidates, 3)
	assert.Equal(t, "alice", result.AllCandidates[0].Name)
	assert.Equal(t, "bob", result.AllCandidates[1].Name)
	assert.Equal(t, "carol", result.AllCandidates[2].Name)
	assert.Equal(t, 1, result.ShortlistedCount)
	assert.Equal(t, 1, result.ReviewCount)
	assert.Equal(t, 1, result.RejectedCount)
	assert.Equal(t, 3, result.TotalProcessed)
}

func TestBuildBatchResult_TiesKeepSubmissionOrder(t *testing.T) {
	applicants := []db.Applicant{
		scoredApplicant("first", 70),
		scoredApplicant("second", 70),
		scoredApplicant("third", 70),
	}

	result := BuildBatchResult(types.BatchCriteria{}, applicants, Tallies{Scored: 3})

	assert.Equal(t, "first", result.AllCandidates[0].Name)
	assert.Equal(t, "second", result.AllCandidates[1].Name)
	assert.Equal(t, "third", result.AllCandidates[2].Name)
}

func TestBuildBatchResult_ShortlistSizing(t *testing.T) {
	cases := []struct {
		candidates int
		want       int
	}{
		{1, 1},
		{5, 1},
		{10, 1},
		{20, 2},
		{35, 3},
	}

	for _, tc := range cases {
		var applicants []db.Applicant
		for i := 0; i < tc.candidates; i++ {
			applicants = append(applicants, scoredApplicant(fmt.Sprintf("cand-%02d", i), 100-i))
		}

		result := BuildBatchResult(types.BatchCriteria{}, applicants, Tallies{Scored: tc.candidates})

		assert.Len(t, result.Shortlisted, tc.want, "candidates=%d", tc.candidates)
		// Shortlist is a prefix of the ranked list.
		for i, rec := range result.Shortlisted {
			assert.Equal(t, result.AllCandidates[i].Name, rec.Name)
		}
	}
}

func TestTallies_Add(t *testing.T) {
	var tallies Tallies
	tallies.Add(OutcomeScored)
	tallies.Add(OutcomeScored)
	tallies.Add(OutcomeKnockedOut)
	tallies.Add(OutcomeDuplicate)
	tallies.Add(OutcomeUnprocessable)

	assert.Equal(t, Tallies{Scored: 2, KnockedOut: 1, Duplicates: 1, Unprocessable: 1}, tallies)
}
