package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/resume-screener/internal/types"
)

// DefaultCallsPerMinute bounds the extraction call rate. All concurrent
// callers serialize through one limiter; the limiter is the single point of
// contention for the external service.
const DefaultCallsPerMinute = 60

// ExtractOptions controls failure behavior for fact extraction.
type ExtractOptions struct {
	// FailOnUnavailable makes extraction return ErrServiceUnavailable when
	// no backing model is reachable, instead of silently returning the
	// zero-valued sentinel facts. The synchronous single-apply path sets
	// this; batch callers check availability once up front instead.
	FailOnUnavailable bool
}

// Extractor is the fact-extraction service facade: it paces calls, invokes
// the model once per resume, and sanitizes whatever comes back. A nil client
// represents an unavailable service.
type Extractor struct {
	client  Client
	limiter *rate.Limiter
	reason  string
}

// NewExtractor wraps a model client with rate limiting. client may be nil
// when the service is not configured; reason documents why.
func NewExtractor(client Client, callsPerMinute int, reason string) *Extractor {
	if callsPerMinute <= 0 {
		callsPerMinute = DefaultCallsPerMinute
	}
	return &Extractor{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(callsPerMinute)), 1),
		reason:  reason,
	}
}

// Available reports whether a backing model is reachable.
func (e *Extractor) Available() bool {
	return e != nil && e.client != nil
}

// UnavailableReason returns why the service is unavailable, or "".
func (e *Extractor) UnavailableReason() string {
	if e.Available() {
		return ""
	}
	if e == nil || e.reason == "" {
		return ErrServiceUnavailable.Error()
	}
	return e.reason
}

// ExtractCandidateFacts performs the single extraction call for one resume
// and returns sanitized facts. The resume text is truncated to the first
// 12,000 characters before the call. Failure behavior is reproducible:
// either a distinguishable unavailable error, or the sentinel facts, never
// partial data.
func (e *Extractor) ExtractCandidateFacts(ctx context.Context, resumeText string, jdRequirements []string, opts ExtractOptions) (*types.CandidateFacts, error) {
	if !e.Available() {
		if opts.FailOnUnavailable {
			return nil, fmt.Errorf("%s: %w", e.UnavailableReason(), ErrServiceUnavailable)
		}
		return types.UnknownCandidateFacts(), nil
	}

	// Scheduling delay, not a timeout: the call is issued once the
	// minimum inter-call interval has elapsed.
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for extraction rate limit: %w", err)
	}

	payload, err := e.client.GenerateJSON(ctx, buildFactsPrompt(resumeText, jdRequirements))
	if err != nil {
		log.Printf("fact extraction call failed: %v", err)
		return types.UnknownCandidateFacts(), nil
	}

	facts, err := ParseCandidateFacts(payload)
	if err != nil {
		log.Printf("fact extraction returned unusable payload: %v", err)
		return types.UnknownCandidateFacts(), nil
	}
	return facts, nil
}

// ExtractJDRequirements lifts verbatim requirement sentences out of a job
// description. Best-effort: any failure yields an empty list, never an
// error, since screening degrades gracefully without JD requirements.
func (e *Extractor) ExtractJDRequirements(ctx context.Context, jdText string) []string {
	if !e.Available() || jdText == "" {
		return nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil
	}

	payload, err := e.client.GenerateJSON(ctx, buildRequirementsPrompt(jdText))
	if err != nil {
		log.Printf("jd requirement extraction failed: %v", err)
		return nil
	}

	var items []any
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		log.Printf("jd requirement extraction returned non-array payload: %v", err)
		return nil
	}

	requirements := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			requirements = append(requirements, s)
		}
	}
	return requirements
}
