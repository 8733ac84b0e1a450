// Package fault defines the business-level error taxonomy shared by the
// trust-and-safety services. Every condition here is a per-request outcome;
// none is fatal to the process.
package fault

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateLimited marks a transient denial; the caller should back off
	// for exactly the advertised retry interval.
	ErrRateLimited = errors.New("rate limited")
	// ErrValidation marks field-level input problems the caller can fix.
	ErrValidation = errors.New("validation failed")
	// ErrSpamRejected marks content dropped by the abuse heuristics. The
	// outer layer may choose to present it as success.
	ErrSpamRejected = errors.New("content rejected")
	// ErrConflict marks a state conflict that is not retryable without a
	// state change, such as a duplicate pending claim.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an operation against a missing or already-resolved
	// target.
	ErrNotFound = errors.New("not found")
)

// RateLimitedError carries the retry interval alongside the sentinel.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Is makes the error match ErrRateLimited under errors.Is.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// RateLimited constructs a RateLimitedError for the given window.
func RateLimited(retryAfter time.Duration) error {
	return &RateLimitedError{RetryAfter: retryAfter}
}

// RetryAfter extracts the retry interval from a rate-limit error, reporting
// false when the error does not carry one.
func RetryAfter(err error) (time.Duration, bool) {
	var limited *RateLimitedError
	if errors.As(err, &limited) {
		return limited.RetryAfter, true
	}
	return 0, false
}

// Validation wraps a field-level message in the validation sentinel.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
