// Package metrics exposes crawl counters in the Prometheus format.
//
// A Collector owns its own registry, so two crawls in one process (or two
// tests) never share counters. The crawl command serves it on --metrics-addr
// for the lifetime of the run.
package metrics
