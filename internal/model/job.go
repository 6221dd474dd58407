package model

import (
	"net/url"
	"slices"
	"strings"

	"github.com/nao1215/ghcrawler/internal/config"
	"github.com/nao1215/ghcrawler/internal/proxy"
)

// CrawlJob is a validated crawl request. It is read-only once built.
type CrawlJob struct {
	// Type is fixed for the lifetime of the run.
	Type CrawlType

	// Keywords are searched in order; results keep this order.
	Keywords []string

	// Pool is owned by this job and never shared with another run.
	Pool *proxy.Pool

	// BaseURL is the scheme and host search URLs are built on.
	BaseURL string
}

// NewCrawlJob validates the job fields and builds a CrawlJob.
// Fields are checked in the order proxies, type, keywords, and the first
// failure is returned as a *config.FieldError naming that field.
func NewCrawlJob(typeName string, keywords, proxies []string, baseURL string) (*CrawlJob, error) {
	pool, err := proxy.NewPool(proxies)
	if err != nil {
		return nil, err
	}

	ct, err := ParseCrawlType(typeName)
	if err != nil {
		return nil, config.NewFieldError("type", err)
	}

	if len(keywords) == 0 {
		return nil, config.NewFieldError("keywords", config.ErrNoKeywords)
	}
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return nil, config.NewFieldError("keywords", config.ErrBlankKeyword)
		}
	}

	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	return &CrawlJob{
		Type:     ct,
		Keywords: slices.Clone(keywords),
		Pool:     pool,
		BaseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// NewCrawlJobFromFile builds a job from a decoded job file.
func NewCrawlJobFromFile(jf *config.JobFile, baseURL string) (*CrawlJob, error) {
	return NewCrawlJob(jf.Type, jf.Keywords, jf.Proxies, baseURL)
}

// SearchURLs returns one search page URL per keyword, in keyword order.
//
//	https://github.com/search?q=<keyword>&type=<type>
func (j *CrawlJob) SearchURLs() []string {
	urls := make([]string, len(j.Keywords))
	for i, kw := range j.Keywords {
		urls[i] = j.BaseURL + "/search?q=" + url.QueryEscape(kw) + "&type=" + j.Type.Profile().Query
	}
	return urls
}
