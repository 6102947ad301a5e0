package httputil

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and non-success statuses.
	ErrNetwork = errors.New("network error")
)

// StatusError reports an HTTP response whose status was not accepted.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// Unwrap lets errors.Is match ErrNotFound for 404 and ErrNetwork otherwise.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == 404 {
		return ErrNotFound
	}
	return ErrNetwork
}

// RetryableError marks a transient failure (transport error, 429, 5xx) that
// [Retry] may attempt again. After is the wait the server asked for, if any.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped in a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
