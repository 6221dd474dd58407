// Package fetch is the download engine: a Fetcher that retrieves one URL
// through rotating forward proxies, and a Downloader that runs many
// fetches concurrently.
//
// # Retry policy
//
// Each attempt goes through a proxy selected from the job's pool. The
// outcome decides what happens next:
//
//	200            payload returned
//	other status   WARN, retry (proxy stays eligible)
//	timeout        ERROR, retry (proxy blocklisted for this URL only)
//	transport err  ERROR, retry (proxy stays eligible)
//
// After the configured number of attempts the fetch fails with
// *DownloadExhaustedError and the whole batch is aborted.
//
// # Resource limits
//
// Attempts hold a slot in a per-target-host semaphore and, when
// configured, a global one; an optional token bucket paces attempts
// across the run. Proxy host names are resolved through a short-lived
// DNS cache shared by all fetches of a Fetcher.
package fetch
