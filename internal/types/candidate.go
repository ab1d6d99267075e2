// Package types defines the shared data records exchanged between the
// screening pipeline stages.
package types

// Sentinel values used when extraction cannot produce real identity fields.
const (
	UnknownCandidateName  = "Unknown Candidate"
	UnknownCandidateEmail = "unknown@error.com"
)

// CandidateFacts is the sanitized, strictly typed output of the AI fact
// extraction call. Downstream stages never see the raw model payload.
type CandidateFacts struct {
	Name                 string             `json:"name"`
	Email                string             `json:"email"`
	Phone                string             `json:"phone"`
	TotalYearsExperience float64            `json:"total_years_experience"`
	RecentJobTitles      []string           `json:"recent_job_titles"`
	SkillsWithYears      map[string]float64 `json:"skills_with_years"`
	MetricsBulletCount   int                `json:"metrics_bullet_count"`

	// JDRequirementMatches is empty when no job requirements were supplied
	// to the extraction call.
	JDRequirementMatches []RequirementMatch `json:"jd_requirement_matches,omitempty"`
}

// RequirementMatch is the model's claim about one job requirement sentence.
// CitationQuote must be nil when IsMet is false. A match with IsMet true and
// a nil citation is an unevidenced positive claim and is never trusted.
type RequirementMatch struct {
	Requirement   string  `json:"requirement"`
	IsMet         bool    `json:"is_met"`
	CitationQuote *string `json:"citation_quote"`
}

// UnknownCandidateFacts returns the zero-valued sentinel facts used when the
// extraction service is unavailable or returned an unusable payload.
func UnknownCandidateFacts() *CandidateFacts {
	return &CandidateFacts{
		Name:            UnknownCandidateName,
		Email:           UnknownCandidateEmail,
		Phone:           "",
		RecentJobTitles: []string{},
		SkillsWithYears: map[string]float64{},
	}
}
