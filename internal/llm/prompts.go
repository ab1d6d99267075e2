package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Prompt-size bounds. Documents longer than these lose tail content before
// the model call, trading completeness for bounded cost and latency.
const (
	maxResumePromptChars = 12000
	maxJDPromptChars     = 8000
)

// truncateForPrompt bounds text to n bytes, backing off to a rune boundary
// so the prompt never carries a split multi-byte character.
func truncateForPrompt(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}

// buildFactsPrompt constructs the single-pass fact extraction prompt. When
// jdRequirements is non-empty the model is also asked to verify each
// requirement with a verbatim citation quote from the resume.
func buildFactsPrompt(resumeText string, jdRequirements []string) string {
	var sb strings.Builder

	sb.WriteString("You are a precise data extraction AI. Your ONLY job is to extract factual\n")
	sb.WriteString("data from a resume. Do NOT evaluate, score, or judge the candidate.\n\n")

	sb.WriteString("RESUME TEXT:\n")
	sb.WriteString(truncateForPrompt(resumeText, maxResumePromptChars))
	sb.WriteString("\n")

	if len(jdRequirements) > 0 {
		reqJSON, _ := json.MarshalIndent(jdRequirements, "", "  ")
		sb.WriteString("\nJD REQUIREMENTS TO VERIFY:\n")
		sb.Write(reqJSON)
		sb.WriteString("\n\nREQUIREMENT MATCHING RULES (CRITICAL):\n")
		sb.WriteString("- For EACH requirement in the list above, add an entry to \"jd_requirement_matches\"\n")
		sb.WriteString("- If the candidate meets the requirement based on their resume, set \"is_met\": true\n")
		sb.WriteString("- CRITICAL CONSTRAINT: If \"is_met\" is true, you MUST provide an exact, verbatim\n")
		sb.WriteString("  copy-pasted string from the resume in \"citation_quote\" proving the requirement.\n")
		sb.WriteString("- If no exact text evidence exists in the resume, \"is_met\" must be false and\n")
		sb.WriteString("  \"citation_quote\" must be null\n")
		sb.WriteString("- Do NOT summarize or paraphrase the citation - it must be word-for-word from the resume\n")
	}

	sb.WriteString("\nReturn a SINGLE valid JSON object with EXACTLY this structure and no other keys:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"name\": \"Full Name or Unknown\",\n")
	sb.WriteString("  \"email\": \"email@example.com\",\n")
	sb.WriteString("  \"phone\": \"number or empty string\",\n")
	sb.WriteString("  \"total_years_experience\": 3.5,\n")
	sb.WriteString("  \"recent_job_titles\": [\"Software Engineer\", \"Junior Developer\"],\n")
	sb.WriteString("  \"skills_with_years\": {\"Python\": 3.5, \"SQL\": 1.0, \"Docker\": 0.5},\n")
	sb.WriteString("  \"metrics_bullet_count\": 4")
	if len(jdRequirements) > 0 {
		sb.WriteString(",\n  \"jd_requirement_matches\": [\n")
		sb.WriteString("    {\"requirement\": \"exact requirement sentence\", \"is_met\": true, \"citation_quote\": \"exact verbatim text from resume\"}\n")
		sb.WriteString("  ]")
	}
	sb.WriteString("\n}\n\n")

	sb.WriteString("EXTRACTION RULES - follow strictly:\n")
	sb.WriteString("1. total_years_experience: Calculate from employment date ranges if present. Float. 0.0 if none found.\n")
	sb.WriteString("2. recent_job_titles: List every job title string found in the resume. Empty list [] if none.\n")
	sb.WriteString("3. skills_with_years: Map each distinct technical skill to estimated years of experience (float).\n")
	sb.WriteString("   Derive from employment dates. If duration is unclear, use 0.5 as the minimum for any mentioned skill.\n")
	sb.WriteString("   Use the exact skill name as written in the resume.\n")
	sb.WriteString("4. metrics_bullet_count: Count bullet points or sentence fragments containing at least one\n")
	sb.WriteString("   quantitative element - a number, %, $, revenue figure, growth rate, or similar.\n")
	sb.WriteString("5. Return ONLY the JSON object. No prose, no markdown, no explanation.\n")

	return sb.String()
}

// buildRequirementsPrompt constructs the grounded JD requirement extraction
// prompt: verbatim requirement sentences, never summaries.
func buildRequirementsPrompt(jdText string) string {
	var sb strings.Builder

	sb.WriteString("You are a strict compliance parser. Extract every single sentence from the provided\n")
	sb.WriteString("Job Description that contains a hard requirement (look for verbs like 'require',\n")
	sb.WriteString("'must', 'need', 'should have', 'experience with', 'knowledge of', 'proficiency in').\n\n")
	sb.WriteString("CRITICAL CONSTRAINT: You must extract the exact, verbatim sentence. Do not summarize.\n")
	sb.WriteString("Do not interpret. Do not rephrase. Copy-paste the exact sentence as it appears.\n\n")
	sb.WriteString("JOB DESCRIPTION:\n")
	sb.WriteString(truncateForPrompt(jdText, maxJDPromptChars))
	sb.WriteString("\n\n")
	sb.WriteString("Return a strict JSON array of strings. Each string is an exact requirement sentence.\n")
	sb.WriteString(fmt.Sprintf("Example: %s\n\n", `["Candidate must have 3+ years of Python experience.", "Bachelor's degree in Computer Science required."]`))
	sb.WriteString("Return ONLY the JSON array. No markdown, no explanation.\n")

	return sb.String()
}
