package ingestion

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ResumeFile is one PDF entry pulled from a submitted archive.
type ResumeFile struct {
	Name string
	Data []byte
}

// ListResumePDFs extracts every .pdf entry from a zip archive. Non-PDF
// entries and directories are ignored; an unreadable archive is an error
// since nothing can be screened from it.
func ListResumePDFs(archive []byte) ([]ResumeFile, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("failed to open resume archive: %w", err)
	}

	var files []ResumeFile
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".pdf") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", entry.Name, err)
		}

		files = append(files, ResumeFile{Name: entry.Name, Data: data})
	}
	return files, nil
}
