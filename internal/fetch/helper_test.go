package fetch

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/ghcrawler/internal/proxy"
)

// newStubProxy starts a forward proxy stub. Plain-HTTP proxy requests
// arrive with an absolute URL, so handler can answer for any target
// host itself. It returns the proxy's host:port endpoint.
func newStubProxy(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

// newTestPool builds a pool or fails the test.
func newTestPool(t *testing.T, endpoints ...string) *proxy.Pool {
	t.Helper()

	pool, err := proxy.NewPool(endpoints)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	return pool
}

// newTestFetcher builds a quiet Fetcher with a short timeout.
func newTestFetcher(t *testing.T, opts ...Option) *Fetcher {
	t.Helper()

	base := []Option{
		WithTimeout(500 * time.Millisecond),
		WithDNSCacheTTL(0),
		WithLogger(slog.New(slog.DiscardHandler)),
	}
	f, err := NewFetcher(append(base, opts...)...)
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}
