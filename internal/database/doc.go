// Package database archives finished crawl results in SQLite.
//
// The archive is written after a successful crawl and read by the history
// command. Crawls never read from it: nothing is resumed or deduplicated
// across runs. Each run stores the full result as JSON together with a
// SHA3-256 digest of its records, so two runs that found the same records
// can be told apart from runs whose results changed.
package database
