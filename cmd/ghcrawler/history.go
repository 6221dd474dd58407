package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/ghcrawler/internal/config"
	"github.com/nao1215/ghcrawler/internal/database"
	"github.com/nao1215/ghcrawler/internal/report"
	"github.com/spf13/cobra"
)

// noRunsMessage is printed when the archive is empty or missing.
const noRunsMessage = "No archived runs."

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived crawl runs",
		Long: `History lists the runs stored with 'ghcrawler crawl --archive', newest first.

Runs with the same digest found exactly the same records in the same order.

Examples:
  # List the last 20 runs
  ghcrawler history

  # Only repository crawls
  ghcrawler history --type repositories

  # Print the records of run 3 as JSON
  ghcrawler history --show 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Archive database directory")
	cmd.Flags().String("type", "",
		"Only list runs of this crawl type")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().Int64("show", 0,
		"Print the records of the run with this ID")

	return cmd
}

// historyOptions holds the history command flags.
type historyOptions struct {
	dbDir     string
	crawlType string
	limit     int
	show      int64
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var (
		opts historyOptions
		err  error
	)
	if opts.dbDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return err
	}
	if opts.crawlType, err = cmd.Flags().GetString("type"); err != nil {
		return err
	}
	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	if opts.show, err = cmd.Flags().GetInt64("show"); err != nil {
		return err
	}

	return runHistory(cmd.Context(), opts, cmd.OutOrStdout())
}

func runHistory(ctx context.Context, opts historyOptions, out io.Writer) error {
	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false})
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, noRunsMessage)
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	if opts.show > 0 {
		result, err := db.GetRun(ctx, opts.show)
		if err != nil {
			return err
		}
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).Write(result)
		return err
	}

	runs, err := db.ListRuns(ctx, opts.crawlType, opts.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, noRunsMessage)
		return nil
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		digest := run.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		rows[i] = []string{
			strconv.FormatInt(run.ID, 10),
			run.Type.DisplayName(),
			strings.Join(run.Keywords, ", "),
			strconv.Itoa(run.Records),
			strconv.Itoa(run.Enriched),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			digest,
		}
	}

	md := markdown.NewMarkdown(out)
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Type", "Keywords", "Records", "Enriched", "Started", "Duration", "Digest"},
		Rows:   rows,
	})
	return md.Build()
}
