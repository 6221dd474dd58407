// Package stubsite serves canned search and repository pages for tests.
// Only _test.go files import it; the crawler itself never does.
//
// A Site answers plain-HTTP proxy requests, so an httptest.Server running
// it can be used directly as a proxy endpoint: the crawler sends absolute
// URLs for any host through it and the Site answers by path and query.
package stubsite
