package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/ghcrawler/internal/model"
)

// SimpleWriter outputs a plain text summary for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose lists every record URL.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-record listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary of result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeStages(&sb, result)
	w.writeLanguages(&sb, result)
	w.writeRecords(&sb, result)

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       GITHUB SEARCH CRAWL\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Crawl Type: %s\n", result.Type.DisplayName())
	fmt.Fprintf(sb, "Keywords:   %s\n", strings.Join(result.Keywords, ", "))
	fmt.Fprintf(sb, "Records:    %d\n", len(result.Records))
	if n := result.EnrichedCount(); n > 0 {
		fmt.Fprintf(sb, "Enriched:   %d\n", n)
	}
	fmt.Fprintf(sb, "Duration:   %s\n", result.Duration().Round(time.Millisecond))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeStages(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Stages) == 0 {
		return
	}

	sectionHeader(sb, "STAGES")
	for _, s := range result.Stages {
		fmt.Fprintf(sb, "  %-10s %6d records  %s\n", s.Name, s.Records, s.Duration.Round(time.Millisecond))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeLanguages(sb *strings.Builder, result *model.CrawlResult) {
	shares := result.LanguageShares()
	if len(shares) == 0 {
		return
	}

	sectionHeader(sb, "LANGUAGES")
	for _, s := range shares {
		fmt.Fprintf(sb, "  %-20s %6.1f%%\n", s.Language, s.Percent)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRecords(sb *strings.Builder, result *model.CrawlResult) {
	if !w.verbose || len(result.Records) == 0 {
		return
	}

	sectionHeader(sb, "RESULTS")
	for _, rec := range result.Records {
		fmt.Fprintf(sb, "  [+] %s\n", rec.URL)
		if rec.Enriched() {
			fmt.Fprintf(sb, "      Owner: %s\n", rec.Extra.Owner)
		}
	}
	sb.WriteString("\n")
}

func sectionHeader(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
