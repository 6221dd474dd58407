// Package pipeline drives a crawl through its stages.
//
// A crawl is a Pipeline of Steps sharing one model.CrawlResult:
//
//	search  fetch one result page per keyword, extract the hit URLs
//	enrich  repositories only: fetch every hit, extract owner and languages
//
// Steps run in order and the first error aborts the run. A failed run
// leaves no usable result; Run returns nil in that case.
package pipeline
