package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
)

// dnsCache remembers host resolutions for a fixed lifetime.
// Proxies are usually few and hit thousands of times per run, so one
// lookup per host per window is enough.
type dnsCache struct {
	cache    *bigcache.BigCache
	resolver *net.Resolver
}

func newDNSCache(ttl time.Duration) (*dnsCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 256
	cfg.Verbose = false

	c, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create DNS cache: %w", err)
	}
	return &dnsCache{cache: c, resolver: net.DefaultResolver}, nil
}

// lookup returns the addresses of host, from cache when possible.
func (d *dnsCache) lookup(ctx context.Context, host string) ([]string, error) {
	if entry, err := d.cache.Get(host); err == nil {
		return strings.Split(string(entry), ","), nil
	}

	addrs, err := d.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no addresses", Name: host, IsNotFound: true}
	}
	_ = d.cache.Set(host, []byte(strings.Join(addrs, ","))) //nolint:errcheck // a failed insert only costs a lookup
	return addrs, nil
}

func (d *dnsCache) close() error {
	return d.cache.Close()
}

// dialContext returns a DialContext function that resolves host names
// through cache and tries each address in turn.
func dialContext(dialer *net.Dialer, cache *dnsCache) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cache == nil {
		return dialer.DialContext
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		if net.ParseIP(host) != nil {
			return dialer.DialContext(ctx, network, addr)
		}

		ips, err := cache.lookup(ctx, host)
		if err != nil {
			return nil, err
		}

		var errs []error
		for _, ip := range ips {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				return conn, nil
			}
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
		}
		return nil, errors.Join(errs...)
	}
}
