package jobs

import (
	"context"
	"errors"
	"fmt"
)

// NetworkError classifies a failed fetch. Transient errors may succeed on
// retry (timeouts, 5xx, 429); permanent ones will not (403, 404, 410,
// malformed requests) and must not consume retry budget.
type NetworkError struct {
	URL        string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *NetworkError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s network error fetching %s: status %d", kind, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s network error fetching %s: %v", kind, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsTransientNetwork reports whether err is a transient NetworkError.
func IsTransientNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Transient
}

// IsPermanentNetwork reports whether err is a permanent NetworkError.
func IsPermanentNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && !ne.Transient
}

// ParsingError marks a card- or field-level extraction failure. It is always
// recoverable: the record is skipped and extraction continues.
type ParsingError struct {
	Field  string
	Reason string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Field, e.Reason)
}

// ValidationError marks a normalized listing missing a required field. The
// listing is dropped and the run continues.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("listing missing required field %q", e.Field)
}

// ErrRateLimitExceeded is internal to the rate limiter: it signals that no
// slot is currently available and a wait is required. It is always resolved
// by waiting and never surfaces to callers.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// CancellationError wraps a caller-initiated abort. It is fatal only to the
// in-flight operation and is distinct from network failures.
type CancellationError struct {
	Op  string
	Err error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("%s canceled: %v", e.Op, e.Err)
}

func (e *CancellationError) Unwrap() error { return e.Err }

// IsCancellation reports whether err stems from context cancellation or an
// explicit CancellationError.
func IsCancellation(err error) bool {
	var ce *CancellationError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
