package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the runtime settings.
var (
	// ErrInvalidMaxTries is returned when the retry budget is not positive.
	ErrInvalidMaxTries = errors.New("invalid max tries: must be positive")

	// ErrInvalidTimeout is returned when the per-attempt timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPerHostLimit is returned when the per-host connection cap is not positive.
	ErrInvalidPerHostLimit = errors.New("invalid per-host connection limit: must be positive")

	// ErrInvalidGlobalLimit is returned when the global connection cap is negative.
	// Zero means unlimited.
	ErrInvalidGlobalLimit = errors.New("invalid global connection limit: must be non-negative")

	// ErrInvalidRate is returned when the request rate is negative.
	// Zero means unlimited.
	ErrInvalidRate = errors.New("invalid request rate: must be non-negative")

	// ErrInvalidDNSCacheTTL is returned when the DNS cache lifetime is negative.
	ErrInvalidDNSCacheTTL = errors.New("invalid DNS cache TTL: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBaseURL is returned when the search site is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrInvalidLogFormat is returned when the log format is neither text nor json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrNoOutputPath is returned when the result path is empty.
	ErrNoOutputPath = errors.New("no output path specified")
)

// Crawl job errors.
// A crawl job is rejected before any network activity when one of its
// fields is missing or malformed. Each field has its own sentinel so the
// operator can tell which part of the job file to fix.
var (
	// ErrNoProxies is returned when the job file lists no proxy endpoints.
	ErrNoProxies = errors.New("no proxies found in the job configuration")

	// ErrInvalidType is returned when the crawl type is missing or not one of
	// repositories, wikis, or issues.
	ErrInvalidType = errors.New("no valid type found in the job configuration")

	// ErrNoKeywords is returned when the job file lists no keywords.
	ErrNoKeywords = errors.New("no keywords found in the job configuration")

	// ErrBlankKeyword is returned when one of the keywords is empty or whitespace.
	ErrBlankKeyword = errors.New("blank keyword in the job configuration")
)

// FieldError reports a crawl job field that failed validation.
// It wraps one of the sentinel errors above so callers can use errors.Is
// for the specific cause and errors.As for the field name.
type FieldError struct {
	// Field is the job file key that is invalid ("proxies", "type", "keywords").
	Field string

	// Err is the underlying cause.
	Err error
}

// NewFieldError creates a FieldError for the given job field.
func NewFieldError(field string, err error) *FieldError {
	return &FieldError{Field: field, Err: err}
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("config error: %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FieldError) Unwrap() error {
	return e.Err
}
