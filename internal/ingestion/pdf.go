// Package ingestion turns raw submission artifacts - PDF bytes, zip
// archives, pasted job descriptions - into the plain text the screening
// pipeline operates on.
package ingestion

import (
	"bytes"
	"log"

	"code.sajari.com/docconv"
)

// MinResumeTextLen is the minimum number of extracted characters for a
// resume to be processable. Shorter extractions (scanned images, corrupt
// files) are skipped, counted separately from duplicates and knockouts.
const MinResumeTextLen = 50

// ExtractText extracts plain text from a PDF byte stream. It never returns
// an error: any parse failure yields an empty string, which callers treat as
// an unprocessable document.
func ExtractText(pdf []byte) string {
	if len(pdf) == 0 {
		return ""
	}

	res, err := docconv.Convert(bytes.NewReader(pdf), "application/pdf", true)
	if err != nil {
		log.Printf("pdf text extraction failed: %v", err)
		return ""
	}
	return res.Body
}
