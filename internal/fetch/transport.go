package fetch

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"
)

type proxyKey struct{}

// withProxy attaches the proxy for one attempt to the request context.
func withProxy(ctx context.Context, proxyURL *url.URL) context.Context {
	return context.WithValue(ctx, proxyKey{}, proxyURL)
}

// proxyFromContext is the http.Transport Proxy hook. Requests without a
// proxy in their context go direct.
func proxyFromContext(req *http.Request) (*url.URL, error) {
	u, _ := req.Context().Value(proxyKey{}).(*url.URL)
	return u, nil
}

// newTransport builds the shared transport. The proxy is chosen per
// request, so one transport (and its connection pool, keyed by proxy)
// serves every attempt of a run.
func newTransport(cache *dnsCache, idlePerHost int) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		Proxy:                 proxyFromContext,
		DialContext:           dialContext(dialer, cache),
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   idlePerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
