package screening

import (
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

// Verification summarizes citation verification for one candidate.
// Verified + Hallucinations never exceeds Total; matches with IsMet false
// contribute to neither.
type Verification struct {
	Verified       int
	Total          int
	Hallucinations int
}

// VerifyRequirements cross-checks the model's requirement claims against the
// literal source resume text. A claim is verified only when IsMet is true,
// a citation was given, and the normalized citation appears verbatim in the
// normalized resume. A positive claim without verifiable evidence is a
// hallucination and never contributes to the score: trust is earned from
// literal text matching, not from the model's own assertion.
func VerifyRequirements(matches []types.RequirementMatch, rawResumeText string) Verification {
	v := Verification{Total: len(matches)}
	if len(matches) == 0 {
		return v
	}

	normalizedResume := normalizeForComparison(rawResumeText)

	for _, m := range matches {
		if !m.IsMet {
			continue
		}
		citation := ""
		if m.CitationQuote != nil {
			citation = *m.CitationQuote
		}
		if citation == "" {
			// Met without evidence: rejected.
			v.Hallucinations++
			continue
		}
		if strings.Contains(normalizedResume, normalizeForComparison(citation)) {
			v.Verified++
		} else {
			v.Hallucinations++
		}
	}
	return v
}

// normalizeForComparison collapses whitespace runs to single spaces and
// lower-cases, so that line wrapping and PDF extraction artifacts do not
// defeat literal substring matching.
func normalizeForComparison(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
