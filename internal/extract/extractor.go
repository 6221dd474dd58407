package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/ghcrawler/internal/config"
	"github.com/nao1215/ghcrawler/internal/model"
)

// Selectors shared by every crawl type. Per-type container selectors live
// in model.TypeProfile.
const (
	// hitAnchorSelector finds the anchor carrying the click-tracking payload
	// inside one search hit.
	hitAnchorSelector = "a[data-hydro-click]"

	// hitPayloadAttr is the attribute holding the JSON payload.
	hitPayloadAttr = "data-hydro-click"

	// ownerSelector finds the repository owner link.
	ownerSelector = "a[rel=author]"

	// languageSelector finds one entry of the language bar.
	languageSelector = "a[data-ga-click='Repository, language stats search click, location:repo overview']"

	languageNameSelector    = "span:first-of-type"
	languagePercentSelector = "span:nth-of-type(2)"
)

// clickPayload is the part of the click-tracking JSON we read.
type clickPayload struct {
	Payload struct {
		Result *struct {
			URL string `json:"url"`
		} `json:"result"`
	} `json:"payload"`
}

// Extractor parses pages of one crawl type.
// It holds no per-page state and is safe for concurrent use.
type Extractor struct {
	crawlType model.CrawlType
	profile   model.TypeProfile
}

// New creates an Extractor for t.
func New(t model.CrawlType) (*Extractor, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", config.ErrInvalidType, int(t))
	}
	return &Extractor{crawlType: t, profile: t.Profile()}, nil
}

// Candidates yields the entity URL of every search hit on page, in
// document order. On the first malformed hit it yields ("", err) and
// stops. The page is parsed when iteration starts.
func (e *Extractor) Candidates(page []byte) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
		if err != nil {
			yield("", &ExtractError{Selector: e.profile.Container, Err: err})
			return
		}

		for i, hit := range doc.Find(e.profile.Container).EachIter() {
			u, err := hitURL(hit)
			if err != nil {
				yield("", &ExtractError{Selector: e.profile.Container + " " + hitAnchorSelector, Index: i, Err: err})
				return
			}
			if !yield(u, nil) {
				return
			}
		}
	}
}

// ExtractCandidates collects Candidates into records.
func (e *Extractor) ExtractCandidates(page []byte) ([]model.EntityRecord, error) {
	records := make([]model.EntityRecord, 0)
	for u, err := range e.Candidates(page) {
		if err != nil {
			return nil, err
		}
		records = append(records, model.EntityRecord{URL: u})
	}
	return records, nil
}

// hitURL reads payload.result.url from the first tracking anchor in hit.
func hitURL(hit *goquery.Selection) (string, error) {
	anchor := hit.Find(hitAnchorSelector).First()
	raw, ok := anchor.Attr(hitPayloadAttr)
	if !ok {
		return "", ErrMissingElement
	}

	var p clickPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if p.Payload.Result == nil || p.Payload.Result.URL == "" {
		return "", fmt.Errorf("%w: payload.result.url is missing", ErrMalformedPayload)
	}
	return p.Payload.Result.URL, nil
}

// ExtractDetail reads the owner and language breakdown from a repository
// page. A language listed twice keeps its last percentage.
func (e *Extractor) ExtractDetail(pageURL string, page []byte) (model.EntityRecord, error) {
	if !e.profile.Enrich {
		return model.EntityRecord{}, fmt.Errorf("%w: %s", ErrDetailNotSupported, e.crawlType)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return model.EntityRecord{}, &ExtractError{URL: pageURL, Selector: ownerSelector, Err: err}
	}

	owner := doc.Find(ownerSelector).First()
	if owner.Length() == 0 {
		return model.EntityRecord{}, &ExtractError{URL: pageURL, Selector: ownerSelector, Err: ErrMissingElement}
	}
	extra := model.NewExtra(strings.TrimSpace(owner.Text()))

	for i, lang := range doc.Find(languageSelector).EachIter() {
		name := lang.Find(languageNameSelector).First()
		if name.Length() == 0 {
			return model.EntityRecord{}, &ExtractError{URL: pageURL, Selector: languageSelector + " " + languageNameSelector, Index: i, Err: ErrMissingElement}
		}
		share := lang.Find(languagePercentSelector).First()
		if share.Length() == 0 {
			return model.EntityRecord{}, &ExtractError{URL: pageURL, Selector: languageSelector + " " + languagePercentSelector, Index: i, Err: ErrMissingElement}
		}

		pct, err := parsePercent(share.Text())
		if err != nil {
			return model.EntityRecord{}, &ExtractError{URL: pageURL, Selector: languageSelector + " " + languagePercentSelector, Index: i, Err: err}
		}
		extra.LanguageStats[strings.TrimSpace(name.Text())] = pct
	}

	return model.EntityRecord{URL: pageURL, Extra: extra}, nil
}

// parsePercent parses "80.5%" or " 80.5 " as 80.5.
func parsePercent(s string) (float64, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPercentage, s)
	}
	return v, nil
}
