package proxy

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"slices"

	"github.com/nao1215/ghcrawler/internal/config"
)

// Pool is an immutable list of proxy endpoints.
type Pool struct {
	endpoints []string
	urls      map[string]*url.URL
}

// NewPool builds a pool from configured endpoints.
// An endpoint listed more than once stays in the list as often as it is
// listed, so Select picks it proportionally more often. An empty list or a
// malformed endpoint is a configuration error on the "proxies" field.
func NewPool(endpoints []string) (*Pool, error) {
	if len(endpoints) == 0 {
		return nil, config.NewFieldError("proxies", config.ErrNoProxies)
	}

	p := &Pool{
		endpoints: make([]string, 0, len(endpoints)),
		urls:      make(map[string]*url.URL, len(endpoints)),
	}
	for i, ep := range endpoints {
		if _, seen := p.urls[ep]; !seen {
			u, err := EndpointURL(ep)
			if err != nil {
				return nil, config.NewFieldError("proxies", fmt.Errorf("endpoint %d (%s): %w", i, Redact(ep), err))
			}
			p.urls[ep] = u
		}
		p.endpoints = append(p.endpoints, ep)
	}

	return p, nil
}

// Select picks an entry uniformly at random among those not in blocked.
// When every endpoint is blocked, blocked is reset and the choice is made
// from the whole pool. A nil blocklist selects from the whole pool.
func (p *Pool) Select(blocked *Blocklist) string {
	if blocked == nil || blocked.Len() == 0 {
		return p.endpoints[rand.IntN(len(p.endpoints))] //nolint:gosec // proxy rotation is not security sensitive
	}

	candidates := make([]string, 0, len(p.endpoints))
	for _, ep := range p.endpoints {
		if !blocked.Contains(ep) {
			candidates = append(candidates, ep)
		}
	}
	if len(candidates) == 0 {
		blocked.Reset()
		candidates = p.endpoints
	}

	return candidates[rand.IntN(len(candidates))] //nolint:gosec // proxy rotation is not security sensitive
}

// URL returns the parsed proxy URL for an endpoint of this pool, or nil
// if the endpoint is not a member.
func (p *Pool) URL(endpoint string) *url.URL {
	return p.urls[endpoint]
}

// Endpoints returns a copy of the endpoints in configuration order,
// duplicates included.
func (p *Pool) Endpoints() []string {
	return slices.Clone(p.endpoints)
}

// Len returns the number of configured endpoints, duplicates included.
func (p *Pool) Len() int {
	return len(p.endpoints)
}
