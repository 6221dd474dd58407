package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBaseURL is the site whose search pages are crawled.
	DefaultBaseURL = "https://github.com"

	// DefaultMaxTries is how many attempts a single URL gets, each through a
	// randomly selected proxy, before the whole crawl is aborted.
	DefaultMaxTries = 10

	// DefaultTimeout bounds one attempt end to end: connect, request, and body read.
	DefaultTimeout = 10 * time.Second

	// DefaultPerHostLimit caps simultaneous connections to one target host.
	DefaultPerHostLimit = 10

	// DefaultGlobalLimit caps simultaneous connections overall. 0 means unlimited.
	DefaultGlobalLimit = 0

	// DefaultDNSCacheTTL is how long a resolved proxy address is reused.
	// Most crawl jobs finish well within this window.
	DefaultDNSCacheTTL = 120 * time.Second

	// DefaultMaxBodySize is the largest response body accepted per attempt.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultOutputPath is the result file written in the working directory
	// when no path is given.
	DefaultOutputPath = "result.json"

	// DefaultLogFormat is the slog handler used for console output.
	DefaultLogFormat = "text"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

	// AppName is the application name used for XDG directory paths.
	AppName = "ghcrawler"
)

// Config holds the runtime settings of a crawl.
// It is populated from CLI flags and passed down explicitly; the job
// itself (type, keywords, proxies) lives in the job file.
type Config struct {
	// JobFilePath is the path of the JSON (or YAML) job file.
	JobFilePath string

	// OutputPath is where the JSON result is written.
	OutputPath string

	// MarkdownPath, when set, receives a Markdown summary of the result.
	MarkdownPath string

	// Summary prints a plain text summary to standard output.
	Summary bool

	// BaseURL is the scheme and host used to build search URLs.
	BaseURL string

	// MaxTries is the per-URL attempt budget.
	MaxTries int

	// Timeout is the per-attempt timeout.
	Timeout time.Duration

	// PerHostLimit caps concurrent connections to one target host.
	PerHostLimit int

	// GlobalLimit caps concurrent connections overall; 0 disables the cap.
	GlobalLimit int

	// RequestsPerSecond paces attempts across the whole run; 0 disables pacing.
	RequestsPerSecond float64

	// DNSCacheTTL is the lifetime of cached proxy host resolutions; 0 disables the cache.
	DNSCacheTTL time.Duration

	// MaxBodySize is the largest accepted response body. A larger body
	// fails the attempt.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with each request.
	UserAgent string

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat selects the slog handler: "text" or "json".
	LogFormat string

	// MetricsAddr, when set, serves Prometheus metrics on this address for
	// the duration of the run.
	MetricsAddr string

	// Archive stores the finished result set in the local archive database.
	Archive bool

	// DBDir is the archive database directory.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputPath:   DefaultOutputPath,
		BaseURL:      DefaultBaseURL,
		MaxTries:     DefaultMaxTries,
		Timeout:      DefaultTimeout,
		PerHostLimit: DefaultPerHostLimit,
		GlobalLimit:  DefaultGlobalLimit,
		DNSCacheTTL:  DefaultDNSCacheTTL,
		MaxBodySize:  DefaultMaxBodySize,
		UserAgent:    DefaultUserAgent,
		LogFormat:    DefaultLogFormat,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for ghcrawler.
// On Linux: ~/.local/share/ghcrawler
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.MaxTries <= 0 {
		return ErrInvalidMaxTries
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PerHostLimit <= 0 {
		return ErrInvalidPerHostLimit
	}
	if c.GlobalLimit < 0 {
		return ErrInvalidGlobalLimit
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}
	if c.DNSCacheTTL < 0 {
		return ErrInvalidDNSCacheTTL
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.OutputPath == "" {
		return ErrNoOutputPath
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return ErrInvalidLogFormat
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}

	return nil
}
