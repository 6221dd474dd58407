package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/ghcrawler/internal/config"
	ghlog "github.com/nao1215/ghcrawler/internal/log"
	"github.com/nao1215/ghcrawler/internal/metrics"
	"github.com/nao1215/ghcrawler/internal/proxy"
)

// Recorder receives fetch measurements. *metrics.Collector implements it.
type Recorder interface {
	ObserveAttempt(outcome string, d time.Duration)
	ObserveDownload(result string)
	AttemptStarted()
	AttemptFinished()
}

type nopRecorder struct{}

func (nopRecorder) ObserveAttempt(string, time.Duration) {}
func (nopRecorder) ObserveDownload(string)               {}
func (nopRecorder) AttemptStarted()                      {}
func (nopRecorder) AttemptFinished()                     {}

// Fetcher downloads single URLs through rotating proxies.
// It is safe for concurrent use; every Fetch keeps its own attempt counter
// and blocklist.
type Fetcher struct {
	// client sends every attempt; its transport picks the proxy from the
	// request context.
	client *http.Client

	// maxTries is the attempt budget per URL.
	maxTries int

	// timeout bounds one attempt including the body read.
	timeout time.Duration

	// maxBodySize is the largest accepted body; 0 means unlimited.
	maxBodySize int64

	// userAgent is sent with each request.
	userAgent string

	perHostLimit int
	globalLimit  int
	rps          float64
	dnsCacheTTL  time.Duration

	limiter  *limiter
	dns      *dnsCache
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxTries sets the attempt budget per URL.
func WithMaxTries(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxTries = n
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBodySize sets the largest accepted response body. A larger body
// fails the attempt with ErrBodyTooLarge.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithPerHostLimit caps concurrent attempts against one target host.
func WithPerHostLimit(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.perHostLimit = n
		}
	}
}

// WithGlobalLimit caps concurrent attempts overall. 0 means unlimited.
func WithGlobalLimit(n int) Option {
	return func(f *Fetcher) {
		f.globalLimit = n
	}
}

// WithRateLimit paces attempt starts to rps per second. 0 means unlimited.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		f.rps = rps
	}
}

// WithDNSCacheTTL sets the lifetime of cached proxy resolutions.
// 0 disables the cache.
func WithDNSCacheTTL(ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.dnsCacheTTL = ttl
	}
}

// WithLogger sets the logger for per-attempt records.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(f *Fetcher) {
		if r != nil {
			f.recorder = r
		}
	}
}

// NewFetcher creates a Fetcher. Close it to release the DNS cache.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		maxTries:     config.DefaultMaxTries,
		timeout:      config.DefaultTimeout,
		maxBodySize:  config.DefaultMaxBodySize,
		userAgent:    config.DefaultUserAgent,
		perHostLimit: config.DefaultPerHostLimit,
		globalLimit:  config.DefaultGlobalLimit,
		dnsCacheTTL:  config.DefaultDNSCacheTTL,
		recorder:     nopRecorder{},
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	f.limiter = newLimiter(f.perHostLimit, f.globalLimit, f.rps)

	if f.dnsCacheTTL > 0 {
		cache, err := newDNSCache(f.dnsCacheTTL)
		if err != nil {
			return nil, err
		}
		f.dns = cache
	}
	f.client = &http.Client{
		Transport: newTransport(f.dns, f.perHostLimit),
		// Redirects are followed; the final response decides the outcome.
	}

	return f, nil
}

// NewFetcherFromConfig creates a Fetcher from runtime settings.
func NewFetcherFromConfig(cfg *config.Config, opts ...Option) (*Fetcher, error) {
	base := []Option{
		WithMaxTries(cfg.MaxTries),
		WithTimeout(cfg.Timeout),
		WithMaxBodySize(cfg.MaxBodySize),
		WithUserAgent(cfg.UserAgent),
		WithPerHostLimit(cfg.PerHostLimit),
		WithGlobalLimit(cfg.GlobalLimit),
		WithRateLimit(cfg.RequestsPerSecond),
		WithDNSCacheTTL(cfg.DNSCacheTTL),
	}
	return NewFetcher(append(base, opts...)...)
}

// Close releases the DNS cache and idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	if f.dns != nil {
		return f.dns.close()
	}
	return nil
}

// Fetch downloads rawURL, retrying through proxies from pool until a
// 200 response arrives or the attempt budget runs out.
//
// A cancelled ctx stops the loop at once and returns ctx.Err(); the
// interrupted attempt is not counted.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, pool *proxy.Pool) ([]byte, error) {
	blocked := proxy.NewBlocklist()

	var lastErr error
	for attempt := 1; attempt <= f.maxTries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		endpoint := pool.Select(blocked)
		attrs := []any{
			"url", rawURL,
			"proxy", endpoint,
			"attempt", attempt,
			"max_tries", f.maxTries,
		}

		start := time.Now()
		body, err := f.attempt(ctx, rawURL, pool.URL(endpoint))
		elapsed := time.Since(start)

		if err == nil {
			f.recorder.ObserveAttempt(metrics.OutcomeSuccess, elapsed)
			f.recorder.ObserveDownload(metrics.ResultOK)
			f.logger.InfoContext(ctx, "downloaded", append(attrs, "bytes", len(body))...)
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var statusErr *StatusError
		switch {
		case errors.As(err, &statusErr):
			f.recorder.ObserveAttempt(metrics.OutcomeStatus, elapsed)
			f.logger.WarnContext(ctx, "unexpected status", append(attrs, "status", statusErr.StatusCode)...)
		case isTimeout(err):
			blocked.Add(endpoint)
			f.recorder.ObserveAttempt(metrics.OutcomeTimeout, elapsed)
			f.logger.ErrorContext(ctx, "request timed out", append(attrs, "timeout", f.timeout)...)
		default:
			f.recorder.ObserveAttempt(metrics.OutcomeTransport, elapsed)
			f.logger.ErrorContext(ctx, "request failed", append(attrs, "error", err)...)
		}
		lastErr = err
	}

	f.recorder.ObserveDownload(metrics.ResultExhausted)
	ghlog.Critical(ctx, f.logger, "download exhausted",
		"url", rawURL,
		"attempts", f.maxTries,
		"error", lastErr,
	)
	return nil, &DownloadExhaustedError{URL: rawURL, Attempts: f.maxTries, LastErr: lastErr}
}

// attempt performs one GET through proxyURL. Waiting for a connection
// slot is not part of the attempt's timeout.
func (f *Fetcher) attempt(ctx context.Context, rawURL string, proxyURL *url.URL) ([]byte, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	release, err := f.limiter.acquire(ctx, target.Host)
	if err != nil {
		return nil, err
	}
	defer release()

	f.recorder.AttemptStarted()
	defer f.recorder.AttemptFinished()

	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, err := f.get(withProxy(attemptCtx, proxyURL), rawURL)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %w", ErrAttemptTimeout, err)
	}
	return body, err
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var r io.Reader = resp.Body
	if f.maxBodySize > 0 {
		r = io.LimitReader(r, f.maxBodySize+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if f.maxBodySize > 0 && int64(len(raw)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.maxBodySize)
	}

	return decodeBody(raw, resp.Header.Get("Content-Type"))
}

// decodeBody converts raw to UTF-8. A BOM or a charset in contentType is
// authoritative. Otherwise a body that is valid UTF-8 is kept as is, and
// only then does a <meta> declaration or the windows-1252 guess apply.
func decodeBody(raw []byte, contentType string) ([]byte, error) {
	enc, name, certain := charset.DetermineEncoding(raw, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(raw)) {
		return raw, nil
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s body: %w", name, err)
	}
	return decoded, nil
}

// isTimeout reports whether an attempt failed because it ran out of time.
func isTimeout(err error) bool {
	if errors.Is(err, ErrAttemptTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
