package model

// EntityRecord is one search hit. Extra is set only for repositories that
// went through the detail-page stage.
type EntityRecord struct {
	URL   string `json:"url"`
	Extra *Extra `json:"extra,omitempty"`
}

// Extra holds the detail-page metadata of a repository.
type Extra struct {
	// Owner is the text of the repository's author link.
	Owner string `json:"owner"`

	// LanguageStats maps a language name to its share of the repository,
	// in percent (0-100).
	LanguageStats map[string]float64 `json:"language_stats"` //nolint:tagliatelle // output format is fixed
}

// NewExtra creates an Extra with an empty, non-nil language map so that
// repositories without language data encode as {} rather than null.
func NewExtra(owner string) *Extra {
	return &Extra{Owner: owner, LanguageStats: make(map[string]float64)}
}

// Enriched reports whether the record carries detail-page metadata.
func (r EntityRecord) Enriched() bool {
	return r.Extra != nil
}
