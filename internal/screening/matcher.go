// Package screening implements the deterministic stages of the resume
// screening pipeline: fuzzy skill matching, the knockout filter, citation
// verification, and weighted scoring. Nothing in this package calls the AI
// service; every function is pure computation so that re-running with the
// same inputs always yields the same result.
package screening

import (
	"sort"
	"strings"
)

// MatchSkill resolves a required skill name against a candidate's
// skill-years map. Rules are tried in order, first match wins:
//
//  1. Exact key equality ("python" == "python")
//  2. Required is a substring of a key ("postgres" in "postgresql"),
//     or a key is a substring of required ("js" in "javascript")
//
// Candidate keys are scanned in sorted order so that the substring rule
// resolves the same way on every run. Returns the matched key and its years,
// or ("", 0, false) when nothing matches.
func MatchSkill(required string, candidateSkills map[string]float64) (string, float64, bool) {
	req := strings.ToLower(required)

	if yrs, ok := candidateSkills[req]; ok {
		return req, yrs, true
	}

	keys := make([]string, 0, len(candidateSkills))
	for k := range candidateSkills {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.Contains(k, req) || strings.Contains(req, k) {
			return k, candidateSkills[k], true
		}
	}
	return "", 0, false
}

// lowerSkillKeys returns a copy of the skill map with lower-cased keys.
func lowerSkillKeys(skills map[string]float64) map[string]float64 {
	lowered := make(map[string]float64, len(skills))
	for k, v := range skills {
		lowered[strings.ToLower(k)] = v
	}
	return lowered
}
