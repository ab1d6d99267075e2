package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/resume-screener/internal/types"
)

// ParseCandidateFacts turns a raw model JSON payload into sanitized
// CandidateFacts. It returns an error only when the payload is structurally
// unusable; individual bad values are coerced or defaulted field by field,
// since the model's JSON is never trusted blindly.
func ParseCandidateFacts(jsonText string) (*types.CandidateFacts, error) {
	if err := validateFactsPayload(jsonText); err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse extraction payload: %w", err)
	}

	return SanitizeFacts(raw), nil
}

// SanitizeFacts applies the extraction contract's coercion rules to an
// untyped payload. Missing, null, or unparsable values fall back to their
// documented defaults; identity fields fall back to the sentinel values.
func SanitizeFacts(raw map[string]any) *types.CandidateFacts {
	facts := types.UnknownCandidateFacts()

	if s, ok := raw["name"].(string); ok && s != "" {
		facts.Name = s
	}
	if s, ok := raw["email"].(string); ok && s != "" {
		facts.Email = s
	}
	if s, ok := raw["phone"].(string); ok {
		facts.Phone = s
	}

	facts.TotalYearsExperience = coerceFloat(raw["total_years_experience"])

	if titles, ok := raw["recent_job_titles"].([]any); ok {
		for _, t := range titles {
			if s, ok := t.(string); ok && s != "" {
				facts.RecentJobTitles = append(facts.RecentJobTitles, s)
			}
		}
	}

	if skills, ok := raw["skills_with_years"].(map[string]any); ok {
		for name, yrs := range skills {
			facts.SkillsWithYears[name] = coerceFloat(yrs)
		}
	}

	facts.MetricsBulletCount = coerceInt(raw["metrics_bullet_count"])

	if matches, ok := raw["jd_requirement_matches"].([]any); ok {
		for _, entry := range matches {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			match := types.RequirementMatch{}
			if s, ok := m["requirement"].(string); ok {
				match.Requirement = s
			}
			if b, ok := m["is_met"].(bool); ok {
				match.IsMet = b
			}
			// Citation passes through unmodified, including null.
			if s, ok := m["citation_quote"].(string); ok {
				match.CitationQuote = &s
			}
			facts.JDRequirementMatches = append(facts.JDRequirementMatches, match)
		}
	}

	return facts
}

// coerceFloat converts a loosely typed numeric value to a non-negative
// float64, defaulting to 0 for anything missing or unparsable.
func coerceFloat(v any) float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(val, ",", ""))
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 {
		return 0
	}
	return f
}

// coerceInt converts a loosely typed numeric value to a non-negative int.
func coerceInt(v any) int {
	return int(coerceFloat(v))
}
