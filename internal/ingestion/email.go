package ingestion

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`)

// ScanEmail returns the first email address found in the text, lower-cased,
// or "" when none is present. This is the zero-cost pre-scan used for
// deduplication ahead of any AI call.
func ScanEmail(text string) string {
	match := emailPattern.FindString(text)
	return strings.ToLower(match)
}
