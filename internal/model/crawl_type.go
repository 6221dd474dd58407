package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/ghcrawler/internal/config"
)

// CrawlType selects what a crawl searches for.
// The zero value is not a valid type; jobs are always built from a parsed one.
type CrawlType int

const (
	// Repositories searches repositories and enriches each one with its
	// owner and language breakdown.
	Repositories CrawlType = iota + 1

	// Wikis searches wiki pages.
	Wikis

	// Issues searches issues.
	Issues
)

// TypeProfile is the per-type table consulted by the pipeline and the
// extractor. It is resolved once when a job is built.
type TypeProfile struct {
	// Query is the value of the search "type" parameter.
	Query string

	// Container is the CSS selector of one search hit.
	Container string

	// Enrich is true when every hit gets a second, detail-page fetch.
	Enrich bool
}

var profiles = map[CrawlType]TypeProfile{
	Repositories: {Query: "repositories", Container: "li.repo-list-item", Enrich: true},
	Wikis:        {Query: "wikis", Container: "div.hx_hit-wiki"},
	Issues:       {Query: "issues", Container: "div.issue-list-item"},
}

// AllCrawlTypes returns every valid crawl type in declaration order.
func AllCrawlTypes() []CrawlType {
	return []CrawlType{Repositories, Wikis, Issues}
}

// ParseCrawlType parses a type name case-insensitively.
func ParseCrawlType(s string) (CrawlType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllCrawlTypes() {
		if profiles[t].Query == name {
			return t, nil
		}
	}
	if name == "" {
		return 0, fmt.Errorf("%w: type is missing", config.ErrInvalidType)
	}
	return 0, fmt.Errorf("%w: %q", config.ErrInvalidType, s)
}

// Valid reports whether t is one of the declared crawl types.
func (t CrawlType) Valid() bool {
	_, ok := profiles[t]
	return ok
}

// Profile returns the selector table entry for t.
// It returns the zero TypeProfile for an invalid type.
func (t CrawlType) Profile() TypeProfile {
	return profiles[t]
}

// String returns the lowercase type name used in search URLs.
func (t CrawlType) String() string {
	if p, ok := profiles[t]; ok {
		return p.Query
	}
	return "unknown"
}

// DisplayName returns the title-cased type name for reports.
func (t CrawlType) DisplayName() string {
	return cases.Title(language.English).String(t.String())
}

// MarshalText implements encoding.TextMarshaler.
func (t CrawlType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", config.ErrInvalidType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CrawlType) UnmarshalText(text []byte) error {
	parsed, err := ParseCrawlType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
