package screening

import (
	"fmt"
	"strings"
)

// maxNamedSkills caps how many matched skills the summary names before
// falling back to an "and N more" suffix.
const maxNamedSkills = 3

// buildSummary renders the candidate narrative from the scoring sub-results.
// It is pure string templating; no model call is ever made here.
func buildSummary(matchedSkills []string, totalYears float64, metricsBulletCount int, verification Verification) string {
	var skillsDesc string
	if len(matchedSkills) > 0 {
		named := matchedSkills
		if len(named) > maxNamedSkills {
			named = named[:maxNamedSkills]
		}
		more := ""
		if len(matchedSkills) > maxNamedSkills {
			more = fmt.Sprintf(" and %d more", len(matchedSkills)-maxNamedSkills)
		}
		skillsDesc = fmt.Sprintf("Proficient in %s%s", strings.Join(named, ", "), more)
	} else {
		skillsDesc = "Limited match with required technical skills"
	}

	expDesc := fmt.Sprintf("with %.1f years of professional experience", totalYears)

	var impactDesc string
	switch {
	case metricsBulletCount >= 5:
		impactDesc = "Strong track record of measurable achievements and quantifiable impact"
	case metricsBulletCount >= 3:
		impactDesc = "Demonstrates results-oriented approach with documented achievements"
	case metricsBulletCount >= 1:
		impactDesc = "Shows some evidence of measurable contributions"
	default:
		impactDesc = "Limited quantifiable achievements documented"
	}

	parts := []string{
		fmt.Sprintf("%s %s.", skillsDesc, expDesc),
		impactDesc + ".",
	}

	if verification.Total > 0 {
		pct := float64(verification.Verified) / float64(verification.Total) * 100
		var jdDesc string
		switch {
		case pct >= 80:
			jdDesc = "Meets most job requirements"
		case pct >= 50:
			jdDesc = "Partially meets job requirements"
		default:
			jdDesc = "Limited alignment with specific job requirements"
		}
		parts = append(parts, jdDesc+".")
	}

	return strings.Join(parts, " ")
}
