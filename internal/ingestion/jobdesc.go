package ingestion

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockBreaks maps closing block tags to newlines before parsing, so
// requirement sentences stay separated once markup is stripped.
var blockBreaks = strings.NewReplacer(
	"<br>", "\n", "<br/>", "\n", "<br />", "\n",
	"</p>", "\n", "</li>", "\n", "</div>", "\n",
	"</h1>", "\n", "</h2>", "\n", "</h3>", "\n",
)

// NormalizeJobDescription prepares a submitted job description for
// requirement extraction. Descriptions pasted from careers pages often
// arrive as HTML; markup is stripped down to visible text. Plain text passes
// through with whitespace trimmed.
func NormalizeJobDescription(text string) string {
	trimmed := strings.TrimSpace(text)
	if !looksLikeHTML(trimmed) {
		return trimmed
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blockBreaks.Replace(trimmed)))
	if err != nil {
		return trimmed
	}
	doc.Find("script, style").Remove()

	lines := strings.Split(doc.Text(), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// looksLikeHTML is a cheap heuristic: an angle-bracketed tag early in the
// text. False positives are harmless since goquery leaves plain text intact.
func looksLikeHTML(s string) bool {
	open := strings.Index(s, "<")
	if open < 0 {
		return false
	}
	return strings.Contains(s[open:], ">")
}
