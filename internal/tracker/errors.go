package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited is returned once a query kept receiving 429 responses
	// for the configured number of attempts.
	ErrRateLimited = errors.New("tracker rate limit exceeded")

	// ErrNetwork covers transport failures and unexpected HTTP statuses that
	// persisted after the network retries.
	ErrNetwork = errors.New("tracker request failed")
)

// Error wraps a failed search with its context.
type Error struct {
	Op       string // Operation that failed (e.g., "search")
	Query    string
	Attempts int // requests issued
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tracker %s %q after %d attempt(s): %v", e.Op, e.Query, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsNetworkError returns true if the error is a transport or HTTP failure.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// statusError is a non-2xx response.
type statusError struct {
	code       int
	retryAfter string
	body       string
}

func (e *statusError) Error() string {
	if e.body != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.code, e.body)
	}
	return fmt.Sprintf("request failed with status %d", e.code)
}

func isTooManyRequests(err error) (*statusError, bool) {
	var se *statusError
	if errors.As(err, &se) && se.code == 429 {
		return se, true
	}
	return nil, false
}
