package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/ghcrawler/internal/extract"
	"github.com/nao1215/ghcrawler/internal/fetch"
	"github.com/nao1215/ghcrawler/internal/model"
	"github.com/nao1215/ghcrawler/internal/proxy"
)

// Batch downloads a set of URLs, keeping input order.
// *fetch.Downloader implements it.
type Batch interface {
	FetchAll(ctx context.Context, urls []string, pool *proxy.Pool) ([][]byte, error)
}

var _ Batch = (*fetch.Downloader)(nil)

// SearchStep fetches one search page per keyword and extracts the hits.
// Records are ordered by keyword, then by position on the page.
type SearchStep struct {
	job       *model.CrawlJob
	batch     Batch
	extractor *extract.Extractor
	logger    *slog.Logger
}

// SearchStepOption configures a SearchStep.
type SearchStepOption func(*SearchStep)

// WithSearchLogger sets a custom logger for the search step.
func WithSearchLogger(logger *slog.Logger) SearchStepOption {
	return func(s *SearchStep) {
		s.logger = logger
	}
}

// NewSearchStep creates the search stage.
func NewSearchStep(job *model.CrawlJob, batch Batch, extractor *extract.Extractor, opts ...SearchStepOption) *SearchStep {
	s := &SearchStep{
		job:       job,
		batch:     batch,
		extractor: extractor,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return "search"
}

// Do executes the search step.
func (s *SearchStep) Do(ctx context.Context, result *model.CrawlResult) error {
	urls := s.job.SearchURLs()
	pages, err := s.batch.FetchAll(ctx, urls, s.job.Pool)
	if err != nil {
		return err
	}

	records := make([]model.EntityRecord, 0)
	for i, page := range pages {
		found, err := s.extractor.ExtractCandidates(page)
		if err != nil {
			return fmt.Errorf("search page for %q: %w", s.job.Keywords[i], err)
		}
		s.logger.Debug("search page extracted",
			"keyword", s.job.Keywords[i],
			"hits", len(found),
		)
		records = append(records, found...)
	}

	result.Records = records
	s.logger.Info("search results extracted",
		"keywords", len(urls),
		"records", len(records),
	)
	return nil
}

// EnrichStep fetches every record's page and replaces the record with
// one carrying owner and language statistics.
type EnrichStep struct {
	job       *model.CrawlJob
	batch     Batch
	extractor *extract.Extractor
	logger    *slog.Logger
}

// EnrichStepOption configures an EnrichStep.
type EnrichStepOption func(*EnrichStep)

// WithEnrichLogger sets a custom logger for the enrich step.
func WithEnrichLogger(logger *slog.Logger) EnrichStepOption {
	return func(s *EnrichStep) {
		s.logger = logger
	}
}

// NewEnrichStep creates the repository detail stage.
func NewEnrichStep(job *model.CrawlJob, batch Batch, extractor *extract.Extractor, opts ...EnrichStepOption) *EnrichStep {
	s := &EnrichStep{
		job:       job,
		batch:     batch,
		extractor: extractor,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *EnrichStep) Name() string {
	return "enrich"
}

// Do executes the enrich step.
func (s *EnrichStep) Do(ctx context.Context, result *model.CrawlResult) error {
	if len(result.Records) == 0 {
		return nil
	}

	urls := make([]string, len(result.Records))
	for i, rec := range result.Records {
		urls[i] = rec.URL
	}

	s.logger.Info("repository list downloaded, fetching repository pages",
		"repositories", len(urls),
	)

	pages, err := s.batch.FetchAll(ctx, urls, s.job.Pool)
	if err != nil {
		return err
	}

	enriched := make([]model.EntityRecord, len(pages))
	for i, page := range pages {
		rec, err := s.extractor.ExtractDetail(urls[i], page)
		if err != nil {
			return err
		}
		enriched[i] = rec
	}

	result.Records = enriched
	return nil
}

// DefaultPipeline builds the pipeline for job: a search step, followed by
// an enrich step when the crawl type has one.
func DefaultPipeline(job *model.CrawlJob, batch Batch, opts ...Option) (*Pipeline, error) {
	extractor, err := extract.New(job.Type)
	if err != nil {
		return nil, err
	}

	p := New(opts...)
	p.AddStep(NewSearchStep(job, batch, extractor, WithSearchLogger(p.logger)))
	if job.Type.Profile().Enrich {
		p.AddStep(NewEnrichStep(job, batch, extractor, WithEnrichLogger(p.logger)))
	}

	return p, nil
}

// Run executes the default pipeline for job and returns its result.
// On error the result is discarded.
func Run(ctx context.Context, job *model.CrawlJob, batch Batch, opts ...Option) (*model.CrawlResult, error) {
	p, err := DefaultPipeline(job, batch, opts...)
	if err != nil {
		return nil, err
	}

	result := model.NewCrawlResult(job)
	if err := p.Execute(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}
