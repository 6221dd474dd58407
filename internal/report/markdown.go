package report

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/ghcrawler/internal/model"
)

// MarkdownWriter outputs a crawl summary in Markdown format, with a mermaid
// pie chart of primary languages for repository crawls.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary of result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeStages(md, result)
	if result.EnrichedCount() > 0 {
		w.writeLanguages(md, result)
		w.writeOwners(md, result)
	}
	w.writeRecords(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("GitHub Search Crawl Report")
	md.PlainText("")

	keywords := make([]string, len(result.Keywords))
	for i, kw := range result.Keywords {
		keywords[i] = "`" + kw + "`"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Crawl Type", result.Type.DisplayName()},
			{"Keywords", strings.Join(keywords, ", ")},
			{"Records", strconv.Itoa(len(result.Records))},
			{"Started", formatTime(result.StartedAt)},
			{"Duration", result.Duration().Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	if len(result.Records) == 0 {
		md.Note("No search results matched the keywords.")
		md.PlainText("")
	}
}

// writeStages writes one row per pipeline step.
func (w *MarkdownWriter) writeStages(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Stages) == 0 {
		return
	}

	md.H2("Stages")
	md.PlainText("")

	rows := make([][]string, len(result.Stages))
	for i, s := range result.Stages {
		rows[i] = []string{s.Name, strconv.Itoa(s.Records), s.Duration.Round(time.Millisecond).String()}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Records", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeLanguages writes the average language shares and a pie chart of
// primary languages.
func (w *MarkdownWriter) writeLanguages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Languages")
	md.PlainText("")

	shares := result.LanguageShares()
	if len(shares) == 0 {
		md.PlainText("No language statistics found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(shares))
	for i, s := range shares {
		rows[i] = []string{s.Language, formatPercent(s.Percent)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Language", "Average Share"},
		Rows:   rows,
	})
	md.PlainText("")

	counts := result.PrimaryLanguageCounts()
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Primary Language"),
		piechart.WithShowData(true),
	)
	for _, lang := range slices.Sorted(maps.Keys(counts)) {
		chart.LabelAndIntValue(lang, uint64(counts[lang])) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeOwners writes repository counts per owner, most repositories first.
func (w *MarkdownWriter) writeOwners(md *markdown.Markdown, result *model.CrawlResult) {
	counts := result.OwnerCounts()
	owners := slices.Sorted(maps.Keys(counts))
	slices.SortStableFunc(owners, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})

	md.H2("Owners")
	md.PlainText("")

	rows := make([][]string, len(owners))
	for i, o := range owners {
		name := o
		if name == "" {
			name = "-"
		}
		rows[i] = []string{name, strconv.Itoa(counts[o])}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Owner", "Repositories"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecords lists every result URL in output order.
func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Records) == 0 {
		return
	}

	md.H2("Results")
	md.PlainText("")

	if result.EnrichedCount() == 0 {
		urls := make([]string, len(result.Records))
		for i, rec := range result.Records {
			urls[i] = rec.URL
		}
		md.BulletList(urls...)
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Records))
	for i, rec := range result.Records {
		owner, langs := "-", "-"
		if rec.Enriched() {
			owner = rec.Extra.Owner
			langs = topLanguages(rec.Extra.LanguageStats, 3)
		}
		rows[i] = []string{rec.URL, owner, langs}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Repository", "Owner", "Top Languages"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ghcrawler](https://github.com/nao1215/ghcrawler)*")
}

// topLanguages formats the n largest entries of stats, largest first.
func topLanguages(stats map[string]float64, n int) string {
	if len(stats) == 0 {
		return "-"
	}

	langs := slices.Sorted(maps.Keys(stats))
	slices.SortStableFunc(langs, func(a, b string) int {
		return cmp.Compare(stats[b], stats[a])
	})

	parts := make([]string, 0, n)
	for _, lang := range langs[:min(n, len(langs))] {
		parts = append(parts, fmt.Sprintf("%s %s", lang, formatPercent(stats[lang])))
	}
	return strings.Join(parts, ", ")
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05 MST")
}
