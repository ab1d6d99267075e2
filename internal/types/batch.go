package types

// CandidateRecord is the per-candidate row included in batch results. It is
// derived from the persisted applicant record, not from in-flight pipeline
// state.
type CandidateRecord struct {
	ID              string             `json:"id"`
	Filename        string             `json:"filename,omitempty"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	YearsExperience float64            `json:"years_experience"`
	Skills          map[string]float64 `json:"skills"`
	MatchScore      int                `json:"match_score"`
	Summary         string             `json:"summary"`
	Status          Status             `json:"status"`
	Breakdown       *ScoreBreakdown    `json:"breakdown"`
}

// BatchCriteria echoes the screening parameters a batch was run with.
type BatchCriteria struct {
	JobTitle       string   `json:"job_title"`
	MinExperience  float64  `json:"min_experience"`
	RequiredSkills []string `json:"required_skills"`
}

// BatchResult aggregates one job's screening run. It is recomputed on demand
// from persisted applicant records and is never itself the source of truth.
type BatchResult struct {
	TotalProcessed    int               `json:"total_processed"`
	DuplicatesSkipped int               `json:"duplicates_skipped"`
	Unprocessable     int               `json:"unprocessable"`
	KnockedOut        int               `json:"knocked_out"`
	Scored            int               `json:"scored"`
	ShortlistedCount  int               `json:"shortlisted_count"`
	ReviewCount       int               `json:"review_count"`
	RejectedCount     int               `json:"rejected_count"`
	Shortlisted       []CandidateRecord `json:"shortlisted"`
	AllCandidates     []CandidateRecord `json:"all_candidates"`
	Criteria          BatchCriteria     `json:"criteria"`
}
