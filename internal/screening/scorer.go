package screening

import (
	"math"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

// Fixed component weights. They sum to 100 and each component is capped, so
// the final score cannot exceed 100 by construction.
const (
	skillDepthWeight     = 40.0
	jdRequirementsWeight = 30.0
	experienceWeight     = 20.0
	impactWeight         = 10.0
)

// fullImpactBullets is the number of quantified achievement bullets that
// earns full impact marks.
const fullImpactBullets = 5.0

// Score combines extracted candidate facts into a single explainable score
// and status bucket. The model extracted the facts; this function does the
// math and verifies citations. Calling it twice with identical inputs yields
// bit-identical results.
func Score(facts *types.CandidateFacts, requiredSkills []string, minExperience float64, rawResumeText string) types.ScoringResult {
	candidateSkills := lowerSkillKeys(facts.SkillsWithYears)

	// Division guard: jobs with no experience requirement score depth
	// against a one-year baseline.
	effectiveMin := math.Max(minExperience, 1.0)

	// Skill depth (40 pts): average per-skill depth across required skills.
	var depthSum float64
	matchedSkills := make([]string, 0, len(requiredSkills))
	for _, req := range requiredSkills {
		reqLower := strings.ToLower(req)
		if _, yrs, ok := MatchSkill(reqLower, candidateSkills); ok {
			depthSum += math.Min(1.0, yrs/effectiveMin)
			matchedSkills = append(matchedSkills, reqLower)
		}
	}
	var skillDepthPoints float64
	if len(requiredSkills) > 0 {
		skillDepthPoints = depthSum / float64(len(requiredSkills)) * skillDepthWeight
	}

	// JD requirements (30 pts): fraction of verified claims. With no claims,
	// or no source text to verify against, the component is zero.
	verification := Verification{Total: len(facts.JDRequirementMatches)}
	var jdPoints float64
	if verification.Total > 0 && rawResumeText != "" {
		verification = VerifyRequirements(facts.JDRequirementMatches, rawResumeText)
		jdPoints = float64(verification.Verified) / float64(verification.Total) * jdRequirementsWeight
	}

	// Experience (20 pts): full marks at or above the requirement,
	// proportional below it.
	experiencePoints := experienceWeight
	if facts.TotalYearsExperience < minExperience {
		experiencePoints = facts.TotalYearsExperience / math.Max(minExperience, 1.0) * experienceWeight
	}

	// Impact (10 pts): five or more quantified bullets earns full marks.
	impactPoints := math.Min(impactWeight, float64(facts.MetricsBulletCount)/fullImpactBullets*impactWeight)

	raw := skillDepthPoints + jdPoints + experiencePoints + impactPoints
	finalScore := roundHalfUp(raw)
	if finalScore > 100 {
		finalScore = 100
	}
	if finalScore < 0 {
		finalScore = 0
	}

	status := types.StatusForScore(finalScore)

	return types.ScoringResult{
		FinalScore:           finalScore,
		Status:               status,
		Summary:              buildSummary(matchedSkills, facts.TotalYearsExperience, facts.MetricsBulletCount, verification),
		MatchedSkills:        matchedSkills,
		MatchedSkillsCount:   len(matchedSkills),
		VerifiedRequirements: verification.Verified,
		TotalRequirements:    verification.Total,
		HallucinationCount:   verification.Hallucinations,
		Breakdown: &types.ScoreBreakdown{
			SkillDepth:     round1(skillDepthPoints),
			JDRequirements: round1(jdPoints),
			Experience:     round1(experiencePoints),
			Impact:         round1(impactPoints),
		},
	}
}

// roundHalfUp rounds to the nearest integer with ties away from zero, so a
// raw score of 79.5 lands in the shortlist-adjacent bucket at 80, not 79.
// Scores are non-negative, so away-from-zero is half-up here.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// round1 rounds to one decimal place for the persisted breakdown.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
