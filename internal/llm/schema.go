package llm

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// candidateFactsSchema is the structural gate applied to the raw extraction
// payload before sanitization. It is deliberately permissive about value
// types (sanitization coerces those) but rejects payloads whose shape is
// beyond repair: non-objects, non-array requirement matches, and so on.
const candidateFactsSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": ["string", "null"]},
		"email": {"type": ["string", "null"]},
		"phone": {"type": ["string", "null"]},
		"total_years_experience": {"type": ["number", "string", "null"]},
		"recent_job_titles": {},
		"skills_with_years": {},
		"metrics_bullet_count": {"type": ["number", "string", "null"]},
		"jd_requirement_matches": {
			"type": ["array", "null"],
			"items": {"type": "object"}
		}
	}
}`

// validateFactsPayload checks the raw JSON payload against the structural
// schema. A failure means the payload cannot be sanitized into usable facts
// and the caller should fall back to the sentinel record.
func validateFactsPayload(jsonText string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(candidateFactsSchema),
		gojsonschema.NewStringLoader(jsonText),
	)
	if err != nil {
		return fmt.Errorf("failed to validate extraction payload: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("extraction payload failed schema validation: %s", strings.Join(msgs, "; "))
	}
	return nil
}
