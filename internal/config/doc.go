// Package config provides configuration structures and utilities for ghcrawler.
// It defines the runtime settings of the download engine (retry budget,
// timeouts, connection caps), the crawl job file format, and the sentinel
// errors reported when either is invalid.
package config
