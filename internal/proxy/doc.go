// Package proxy provides the forward proxy pool used by the download engine.
//
// A Pool holds the configured endpoints and is immutable after construction,
// so any number of fetches may select from it concurrently. Exclusion state
// lives in a Blocklist that each fetch owns for the duration of its retry
// loop; a proxy that timed out for one URL stays eligible for every other
// URL in the batch.
package proxy
