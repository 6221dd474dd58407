package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrExtract is matched by every *ExtractError.
	ErrExtract = errors.New("extract error")

	// ErrMissingElement means a required element or attribute is absent.
	ErrMissingElement = errors.New("missing element")

	// ErrMalformedPayload means a click-tracking payload is not JSON with
	// a payload.result.url string.
	ErrMalformedPayload = errors.New("malformed click payload")

	// ErrMalformedPercentage means a language share is not a number.
	ErrMalformedPercentage = errors.New("malformed language percentage")

	// ErrDetailNotSupported is returned by ExtractDetail for crawl types
	// that have no detail stage.
	ErrDetailNotSupported = errors.New("detail extraction not supported for this crawl type")
)

// ExtractError reports markup that diverged from the expected structure.
type ExtractError struct {
	// URL is the page URL when known (detail pages).
	URL string

	// Selector is the CSS selector that did not yield what was expected.
	Selector string

	// Index is the position of the offending element among its matches.
	Index int

	// Err is the cause.
	Err error
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("extract error: %s: %s[%d]: %v", e.URL, e.Selector, e.Index, e.Err)
	}
	return fmt.Sprintf("extract error: %s[%d]: %v", e.Selector, e.Index, e.Err)
}

// Is reports whether target is ErrExtract.
func (e *ExtractError) Is(target error) bool {
	return target == ErrExtract
}

// Unwrap returns the cause.
func (e *ExtractError) Unwrap() error {
	return e.Err
}
