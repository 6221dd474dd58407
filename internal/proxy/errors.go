package proxy

import "errors"

var (
	// ErrInvalidEndpoint is returned when a proxy endpoint cannot be parsed
	// into a usable proxy URL.
	ErrInvalidEndpoint = errors.New("invalid proxy endpoint")

	// ErrUnsupportedScheme is returned when a proxy URL uses a scheme the
	// HTTP client cannot speak.
	ErrUnsupportedScheme = errors.New("unsupported proxy scheme")
)
