package types

import "fmt"

// Status is the categorical hiring decision derived from the final score.
type Status string

// Status buckets. The mapping from score to status is fixed:
// >= 80 shortlisted, >= 60 review, below rejected.
const (
	StatusShortlisted Status = "shortlisted"
	StatusReview      Status = "review"
	StatusRejected    Status = "rejected"
)

// StatusForScore maps a final score to its status bucket.
func StatusForScore(score int) Status {
	switch {
	case score >= 80:
		return StatusShortlisted
	case score >= 60:
		return StatusReview
	default:
		return StatusRejected
	}
}

// KnockoutDecision is the result of the rule-based rejection gate. It is
// computed once per (candidate, job) pair before scoring and never
// re-evaluated.
type KnockoutDecision struct {
	IsKnockedOut bool   `json:"is_knocked_out"`
	Reason       string `json:"reason,omitempty"`
}

// ScoreBreakdown holds the four weighted scoring components. The rounded sum
// of the components equals the final score within one point.
type ScoreBreakdown struct {
	SkillDepth     float64 `json:"skill_depth"`     // 0..40
	JDRequirements float64 `json:"jd_requirements"` // 0..30
	Experience     float64 `json:"experience"`      // 0..20
	Impact         float64 `json:"impact"`          // 0..10
}

// ScoringResult is the terminal artifact of the pipeline for one candidate.
// Breakdown is nil when the candidate was knocked out.
type ScoringResult struct {
	FinalScore           int             `json:"final_score"`
	Status               Status          `json:"status"`
	Summary              string          `json:"summary"`
	MatchedSkills        []string        `json:"matched_skills"`
	MatchedSkillsCount   int             `json:"matched_skills_count"`
	VerifiedRequirements int             `json:"verified_requirements"`
	TotalRequirements    int             `json:"total_requirements"`
	HallucinationCount   int             `json:"hallucination_count"`
	Breakdown            *ScoreBreakdown `json:"breakdown"`
}

// KnockedOutResult builds the fixed result recorded for a knocked-out
// candidate: score 0, rejected, no breakdown.
func KnockedOutResult(reason string) ScoringResult {
	return ScoringResult{
		FinalScore:    0,
		Status:        StatusRejected,
		Summary:       fmt.Sprintf("Rejected at screening: %s", reason),
		MatchedSkills: []string{},
	}
}
