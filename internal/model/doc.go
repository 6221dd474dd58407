// Package model defines the core data structures used throughout ghcrawler.
//
// This package contains the following main types:
//   - CrawlType: the closed set of searchable entity kinds and their selector table
//   - CrawlJob: a validated, read-only crawl request
//   - EntityRecord: one search hit, optionally enriched with repository metadata
//   - CrawlResult: the state carried through the crawl pipeline
//
// The models are serializable to JSON for result output and archive storage.
package model
