// Package server provides the HTTP REST API for the resume screener.
package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrJobNotFound indicates the screening job does not exist for the company.
type ErrJobNotFound struct {
	JobID uuid.UUID
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("screening job not found: %s", e.JobID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrDuplicateSubmission indicates a resume was already screened for the job.
type ErrDuplicateSubmission struct{}

func (e *ErrDuplicateSubmission) Error() string {
	return "a resume with this email was already screened for this job"
}

// ErrUnprocessableResume indicates no usable text could be extracted.
type ErrUnprocessableResume struct{}

func (e *ErrUnprocessableResume) Error() string {
	return "could not extract usable text from resume"
}

// ErrExtractionUnavailable indicates the AI extraction service is down.
type ErrExtractionUnavailable struct {
	Reason string
}

func (e *ErrExtractionUnavailable) Error() string {
	return fmt.Sprintf("extraction service unavailable: %s", e.Reason)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrJobNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrDuplicateSubmission:
		return http.StatusConflict
	case *ErrUnprocessableResume:
		return http.StatusUnprocessableEntity
	case *ErrExtractionUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
