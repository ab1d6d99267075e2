package llm

import "errors"

// ErrServiceUnavailable indicates the extraction service has no reachable
// backing model. The synchronous single-apply path surfaces this to the user
// as a retryable failure; the batch path refuses to start on it.
var ErrServiceUnavailable = errors.New("ai extraction service unavailable")
