package fetch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/ghcrawler/internal/proxy"
)

// URLFetcher fetches one URL. *Fetcher implements it.
type URLFetcher interface {
	Fetch(ctx context.Context, rawURL string, pool *proxy.Pool) ([]byte, error)
}

// Downloader fetches batches of URLs concurrently.
//
// All fetches of a batch start together; connection caps are enforced by
// the Fetcher per attempt, not by limiting goroutines here. The first
// fatal error cancels the rest of the batch and is returned alone.
type Downloader struct {
	// fetcher performs each download.
	fetcher URLFetcher

	// concurrency optionally bounds in-flight fetches; 0 means one
	// goroutine per URL.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloaderLogger sets a custom logger for batch logging.
func WithDownloaderLogger(logger *slog.Logger) DownloaderOption {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// WithConcurrency bounds the number of fetches in flight.
func WithConcurrency(n int) DownloaderOption {
	return func(d *Downloader) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// NewDownloader creates a Downloader around fetcher.
func NewDownloader(fetcher URLFetcher, opts ...DownloaderOption) *Downloader {
	d := &Downloader{fetcher: fetcher}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = slog.Default()
	}

	return d
}

// FetchAll downloads every URL and returns the payloads in input order:
// pages[i] is the body of urls[i].
//
// It waits for all fetches. If any of them fails, the others are
// cancelled, no pages are returned, and the first error is returned.
func (d *Downloader) FetchAll(ctx context.Context, urls []string, pool *proxy.Pool) ([][]byte, error) {
	d.logger.DebugContext(ctx, "starting batch", "urls", len(urls))
	start := time.Now()

	// Pre-allocated so each goroutine writes only its own slot.
	pages := make([][]byte, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}

	for i, u := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			body, err := d.fetcher.Fetch(gctx, u, pool)
			if err != nil {
				return err
			}
			pages[i] = body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		d.logger.DebugContext(ctx, "batch aborted", "urls", len(urls), "error", err)
		return nil, err
	}

	d.logger.DebugContext(ctx, "batch complete",
		"urls", len(urls),
		"elapsed", time.Since(start),
	)
	return pages, nil
}
