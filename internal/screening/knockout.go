package screening

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

// skillFloorCoverage is the minimum fraction of required skills a candidate
// must match to pass the skill floor. Exactly 50% passes.
const skillFloorCoverage = 0.50

// experienceBuffer absorbs rounding and estimation noise from the extraction
// stage when comparing against the experience floor.
const experienceBuffer = 0.5

// CheckKnockout applies the rule-based rejection gate ahead of scoring.
// Both rules are cheap and AI-free: their purpose is to avoid spending the
// scoring pass on candidates for whom it could not change the outcome, and
// to keep the rejection reason human-auditable.
func CheckKnockout(totalYears float64, skills map[string]float64, requiredSkills []string, minExperience float64) types.KnockoutDecision {
	// Rule 1 - experience floor.
	if totalYears < minExperience-experienceBuffer {
		return types.KnockoutDecision{
			IsKnockedOut: true,
			Reason: fmt.Sprintf("Insufficient experience: %.1f yrs (required >= %.1f)",
				totalYears, minExperience-experienceBuffer),
		}
	}

	// Rule 2 - skill floor, only when skills are required. Uses the same
	// substring matching primitive as scoring so the two stages can never
	// disagree about what counts as a match.
	if len(requiredSkills) > 0 {
		lowered := lowerSkillKeys(skills)
		matched := 0
		for _, req := range requiredSkills {
			if _, _, ok := MatchSkill(strings.ToLower(req), lowered); ok {
				matched++
			}
		}
		coverage := float64(matched) / float64(len(requiredSkills))
		if coverage < skillFloorCoverage {
			return types.KnockoutDecision{
				IsKnockedOut: true,
				Reason: fmt.Sprintf("Skill floor not met: %d/%d required skills present (%.0f%%)",
					matched, len(requiredSkills), coverage*100),
			}
		}
	}

	return types.KnockoutDecision{}
}
