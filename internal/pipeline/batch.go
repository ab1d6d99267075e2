package pipeline

import (
	"sort"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/types"
)

// Tallies counts per-resume dispositions during a batch run.
type Tallies struct {
	Duplicates    int
	Unprocessable int
	KnockedOut    int
	Scored        int
}

// Add records one disposition.
func (t *Tallies) Add(o Outcome) {
	switch o {
	case OutcomeScored:
		t.Scored++
	case OutcomeKnockedOut:
		t.KnockedOut++
	case OutcomeDuplicate:
		t.Duplicates++
	default:
		t.Unprocessable++
	}
}

// BuildBatchResult aggregates persisted applicants into the batch report.
// Candidates are ordered by score descending; ties keep submission order.
// The shortlist is the top tenth of candidates, minimum one, and is empty
// only when there are no candidates at all. TotalProcessed counts only
// persisted candidates (scored or knocked out); duplicates and unreadable
// resumes are reported in their own counters, not as processed.
func BuildBatchResult(criteria types.BatchCriteria, applicants []db.Applicant, tallies Tallies) *types.BatchResult {
	records := make([]types.CandidateRecord, 0, len(applicants))
	for _, a := range applicants {
		records = append(records, candidateRecord(a))
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MatchScore > records[j].MatchScore
	})

	result := &types.BatchResult{
		TotalProcessed:    tallies.Scored + tallies.KnockedOut,
		DuplicatesSkipped: tallies.Duplicates,
		Unprocessable:     tallies.Unprocessable,
		KnockedOut:        tallies.KnockedOut,
		Scored:            tallies.Scored,
		Shortlisted:       []types.CandidateRecord{},
		AllCandidates:     records,
		Criteria:          criteria,
	}

	for _, rec := range records {
		switch rec.Status {
		case types.StatusShortlisted:
			result.ShortlistedCount++
		case types.StatusReview:
			result.ReviewCount++
		default:
			result.RejectedCount++
		}
	}

	if n := len(records); n > 0 {
		size := n / 10
		if size < 1 {
			size = 1
		}
		result.Shortlisted = records[:size]
	}
	return result
}

func candidateRecord(a db.Applicant) types.CandidateRecord {
	return types.CandidateRecord{
		ID:              a.ID.String(),
		Name:            a.Name,
		Email:           a.Email,
		YearsExperience: float64(a.YearsExperience),
		Skills:          a.Skills,
		MatchScore:      a.MatchScore,
		Summary:         a.Summary,
		Status:          a.Status,
		Breakdown:       a.Breakdown,
	}
}
