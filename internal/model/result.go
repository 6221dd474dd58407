package model

import (
	"cmp"
	"maps"
	"slices"
	"time"
)

// CrawlResult is the state carried through the crawl pipeline.
// Each step reads the records produced by the previous one and replaces
// them; after the last step Records is the final result set.
type CrawlResult struct {
	// Type is the crawl type of the run.
	Type CrawlType `json:"type"`

	// Keywords are the searched keywords, in order.
	Keywords []string `json:"keywords"`

	// Records is the current result sequence.
	Records []EntityRecord `json:"records"`

	// Stages lists the completed steps in execution order.
	Stages []StageSummary `json:"stages"`

	// StartedAt is when the first step began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last step ended. Zero while running.
	FinishedAt time.Time `json:"finished_at"`
}

// StageSummary records what one pipeline step did.
type StageSummary struct {
	Name     string        `json:"name"`
	Records  int           `json:"records"`
	Duration time.Duration `json:"duration"`
}

// NewCrawlResult creates an empty result for the job.
func NewCrawlResult(job *CrawlJob) *CrawlResult {
	return &CrawlResult{
		Type:     job.Type,
		Keywords: slices.Clone(job.Keywords),
		Records:  make([]EntityRecord, 0),
		Stages:   make([]StageSummary, 0, 2),
	}
}

// Duration returns the wall time of the run, or zero while it is running.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// EnrichedCount returns how many records carry detail-page metadata.
func (r *CrawlResult) EnrichedCount() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Enriched() {
			n++
		}
	}
	return n
}

// LanguageShare is a language with its mean share across repositories.
type LanguageShare struct {
	Language string
	Percent  float64
}

// LanguageShares averages each language's percentage over all enriched
// records, treating a missing language as 0%. The result is sorted by
// share, largest first, then by name.
func (r *CrawlResult) LanguageShares() []LanguageShare {
	totals := make(map[string]float64)
	enriched := 0
	for _, rec := range r.Records {
		if !rec.Enriched() {
			continue
		}
		enriched++
		for lang, pct := range rec.Extra.LanguageStats {
			totals[lang] += pct
		}
	}
	if enriched == 0 {
		return nil
	}

	shares := make([]LanguageShare, 0, len(totals))
	for _, lang := range slices.Sorted(maps.Keys(totals)) {
		shares = append(shares, LanguageShare{Language: lang, Percent: totals[lang] / float64(enriched)})
	}
	slices.SortStableFunc(shares, func(a, b LanguageShare) int {
		return cmp.Compare(b.Percent, a.Percent)
	})
	return shares
}

// OwnerCounts returns how many enriched records each owner has.
func (r *CrawlResult) OwnerCounts() map[string]int {
	counts := make(map[string]int)
	for _, rec := range r.Records {
		if rec.Enriched() {
			counts[rec.Extra.Owner]++
		}
	}
	return counts
}

// PrimaryLanguageCounts counts enriched records by their largest language.
// Ties go to the name that sorts first. Records without language data are
// not counted.
func (r *CrawlResult) PrimaryLanguageCounts() map[string]int {
	counts := make(map[string]int)
	for _, rec := range r.Records {
		if !rec.Enriched() || len(rec.Extra.LanguageStats) == 0 {
			continue
		}
		primary := ""
		for _, lang := range slices.Sorted(maps.Keys(rec.Extra.LanguageStats)) {
			if primary == "" || rec.Extra.LanguageStats[lang] > rec.Extra.LanguageStats[primary] {
				primary = lang
			}
		}
		counts[primary]++
	}
	return counts
}
