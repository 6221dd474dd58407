package stubsite

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"

	"github.com/nao1215/ghcrawler/internal/model"
)

// Language is one entry of a repository's language bar.
type Language struct {
	Name    string
	Percent string
}

type repository struct {
	owner string
	langs []Language
}

// Site is an http.Handler with canned pages.
type Site struct {
	mu       sync.Mutex
	searches map[string][]byte // "type|keyword" -> page
	repos    map[string]repository
	failures map[string]int
	hits     map[string]int
}

// New creates an empty Site. Unknown paths answer 404.
func New() *Site {
	return &Site{
		searches: make(map[string][]byte),
		repos:    make(map[string]repository),
		failures: make(map[string]int),
		hits:     make(map[string]int),
	}
}

// AddSearch registers the result page for keyword and crawl type.
func (s *Site) AddSearch(t model.CrawlType, keyword string, urls ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches[t.String()+"|"+keyword] = SearchPage(t, urls...)
}

// AddRepository registers a repository page at path.
func (s *Site) AddRepository(path, owner string, langs ...Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[path] = repository{owner: owner, langs: langs}
}

// Fail makes every request for path answer status.
func (s *Site) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Hits returns how many requests path received.
func (s *Site) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// ServeHTTP implements http.Handler.
func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, failing := s.failures[r.URL.Path]
	page, isSearch := s.searches[r.URL.Query().Get("type")+"|"+r.URL.Query().Get("q")]
	repo, isRepo := s.repos[r.URL.Path]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	switch {
	case failing:
		w.WriteHeader(status)
	case r.URL.Path == "/search" && isSearch:
		_, _ = w.Write(page)
	case isRepo:
		_, _ = w.Write(RepositoryPage(repo.owner, repo.langs...))
	default:
		http.NotFound(w, r)
	}
}

// SearchPage renders a result page with one hit per URL.
func SearchPage(t model.CrawlType, urls ...string) []byte {
	tag, class, _ := strings.Cut(t.Profile().Container, ".")

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Search</title></head><body><div class="codesearch-results">`)
	for i, u := range urls {
		payload := fmt.Sprintf(`{"event_type":"search_result.click","payload":{"page_number":1,"result_position":%d,"result":{"id":%d,"url":%q}}}`, i+1, 1000+i, u)
		fmt.Fprintf(&b, `<%s class="%s d-flex"><div class="f4"><a class="v-align-middle" data-hydro-click="%s" href="%s">%s</a></div></%s>`,
			tag, class, html.EscapeString(payload), html.EscapeString(u), html.EscapeString(u), tag)
	}
	b.WriteString(`</div></body></html>`)
	return []byte(b.String())
}

// RepositoryPage renders a repository page with an author link and a
// language bar.
func RepositoryPage(owner string, langs ...Language) []byte {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><h1><span class="author"><a class="url fn" rel="author" href="/`)
	b.WriteString(html.EscapeString(owner) + `">` + html.EscapeString(owner) + `</a></span></h1><ol class="list-style-none">`)
	for _, l := range langs {
		b.WriteString(`<li class="d-inline"><a class="d-inline-flex" href="#" data-ga-click="Repository, language stats search click, location:repo overview">`)
		b.WriteString(`<svg class="octicon"></svg><span class="color-fg-default text-bold mr-1">` + html.EscapeString(l.Name) + `</span>`)
		b.WriteString(`<span>` + html.EscapeString(l.Percent) + `</span></a></li>`)
	}
	b.WriteString(`</ol></body></html>`)
	return []byte(b.String())
}
