package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDownloadExhausted is matched by every *DownloadExhaustedError.
	ErrDownloadExhausted = errors.New("download exhausted")

	// ErrUnexpectedStatus is matched by every *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrAttemptTimeout wraps the error of an attempt that ran out of time.
	ErrAttemptTimeout = errors.New("attempt timed out")

	// ErrBodyTooLarge is returned when a 200 body exceeds the size limit.
	ErrBodyTooLarge = errors.New("response body too large")
)

// DownloadExhaustedError is returned when no attempt for a URL succeeded.
type DownloadExhaustedError struct {
	// URL is the URL that could not be downloaded.
	URL string

	// Attempts is how many attempts were made.
	Attempts int

	// LastErr is the failure of the final attempt.
	LastErr error
}

// Error implements the error interface.
func (e *DownloadExhaustedError) Error() string {
	return fmt.Sprintf("download exhausted: %s: %d attempts failed, last error: %v", e.URL, e.Attempts, e.LastErr)
}

// Is reports whether target is ErrDownloadExhausted.
func (e *DownloadExhaustedError) Is(target error) bool {
	return target == ErrDownloadExhausted
}

// Unwrap returns the last attempt's error.
func (e *DownloadExhaustedError) Unwrap() error {
	return e.LastErr
}

// StatusError is an attempt that got a response other than 200 OK.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is reports whether target is ErrUnexpectedStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
