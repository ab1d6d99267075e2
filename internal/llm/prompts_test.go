package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateForPrompt_BreaksOnRuneBoundary(t *testing.T) {
	// "日" is three bytes; a cap landing mid-rune must back off to the
	// previous boundary so the prompt stays valid UTF-8.
	text := strings.Repeat("a", 9) + "日本語"
	got := truncateForPrompt(text, 10)

	assert.Equal(t, strings.Repeat("a", 9), got)
	assert.True(t, utf8.ValidString(got))
}

func TestTruncateForPrompt_ShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "résumé", truncateForPrompt("résumé", 100))
}

func TestBuildFactsPrompt_TruncatesLongResume(t *testing.T) {
	text := strings.Repeat("x", maxResumePromptChars) + "TAIL-MARKER"
	prompt := buildFactsPrompt(text, nil)

	assert.NotContains(t, prompt, "TAIL-MARKER")
	assert.True(t, utf8.ValidString(prompt))
}
