package proxy

// Blocklist is the set of endpoints excluded from selection for one URL's
// retry loop. It is not safe for concurrent use; each fetch owns its own.
type Blocklist struct {
	blocked map[string]struct{}
}

// NewBlocklist creates an empty Blocklist.
func NewBlocklist() *Blocklist {
	return &Blocklist{blocked: make(map[string]struct{})}
}

// Add excludes an endpoint from subsequent selections.
func (b *Blocklist) Add(endpoint string) {
	b.blocked[endpoint] = struct{}{}
}

// Contains reports whether the endpoint is currently excluded.
func (b *Blocklist) Contains(endpoint string) bool {
	_, ok := b.blocked[endpoint]
	return ok
}

// Len returns the number of excluded endpoints.
func (b *Blocklist) Len() int {
	return len(b.blocked)
}

// Reset makes every endpoint eligible again.
func (b *Blocklist) Reset() {
	clear(b.blocked)
}
