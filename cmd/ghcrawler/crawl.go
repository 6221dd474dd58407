package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/ghcrawler/internal/config"
	"github.com/nao1215/ghcrawler/internal/database"
	"github.com/nao1215/ghcrawler/internal/fetch"
	ghlog "github.com/nao1215/ghcrawler/internal/log"
	"github.com/nao1215/ghcrawler/internal/metrics"
	"github.com/nao1215/ghcrawler/internal/model"
	"github.com/nao1215/ghcrawler/internal/pipeline"
	"github.com/nao1215/ghcrawler/internal/proxy"
	"github.com/nao1215/ghcrawler/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run the crawl described by a job file",
		Long: `Crawl reads a job file, fetches one GitHub search page per keyword through
the configured proxies, and writes the matching URLs as a JSON array.

For repository crawls every hit is then fetched again to record its owner
and language statistics. If any page cannot be fetched within the attempt
budget the whole crawl fails and no output is written.

Job file (ghcrawler.json) example:
  {
    "type": "Repositories",
    "keywords": ["openstack", "nova", "css"],
    "proxies": ["194.126.37.94:8080", "13.78.125.167:8080"]
  }

Examples:
  # Use ghcrawler.json from the current directory
  ghcrawler crawl

  # Read a job file and write the result elsewhere
  ghcrawler crawl -i jobs/rust.json -o out/rust.json

  # Also write a Markdown report and archive the run
  ghcrawler crawl --markdown report.md --archive`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("input", "i", "",
		"Job file path (default: ghcrawler.json in the current directory)")
	cmd.Flags().StringP("output", "o", config.DefaultOutputPath,
		"Result file path (creates directories if needed)")
	cmd.Flags().String("markdown", "",
		"Also write a Markdown report to this path")
	cmd.Flags().Bool("summary", false,
		"Print a plain text summary to standard output")

	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Scheme and host used to build search URLs")
	cmd.Flags().Int("max-tries", config.DefaultMaxTries,
		"Attempts per URL before the crawl fails")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each attempt, including the body read")
	cmd.Flags().Int("per-host-limit", config.DefaultPerHostLimit,
		"Concurrent connections per target host")
	cmd.Flags().Int("global-limit", config.DefaultGlobalLimit,
		"Concurrent connections overall (0 = unlimited)")
	cmd.Flags().Float64("rate", 0,
		"Attempts per second across the run (0 = unlimited)")
	cmd.Flags().Duration("dns-cache-ttl", config.DefaultDNSCacheTTL,
		"Lifetime of cached proxy host lookups (0 disables the cache)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes (0 = unlimited)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with each request")

	cmd.Flags().Bool("archive", false,
		"Store the result in the local archive database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Archive database directory")
	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address during the run (e.g. :9090)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := ghlog.NewLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildCrawlConfig creates a Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.JobFilePath, err = flags.GetString("input"); err != nil {
		return nil, err
	}
	if cfg.OutputPath, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.MarkdownPath, err = flags.GetString("markdown"); err != nil {
		return nil, err
	}
	if cfg.Summary, err = flags.GetBool("summary"); err != nil {
		return nil, err
	}
	if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
		return nil, err
	}
	if cfg.MaxTries, err = flags.GetInt("max-tries"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.PerHostLimit, err = flags.GetInt("per-host-limit"); err != nil {
		return nil, err
	}
	if cfg.GlobalLimit, err = flags.GetInt("global-limit"); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = flags.GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.DNSCacheTTL, err = flags.GetDuration("dns-cache-ttl"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.Archive, err = flags.GetBool("archive"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.MetricsAddr, err = flags.GetString("metrics-addr"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getLogFormatFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFormatFlag retrieves the log format from the command or its parent.
func getLogFormatFlag(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return config.DefaultLogFormat
		}
	}
	return format
}

// loadJob resolves, reads, and validates the job file.
func loadJob(cfg *config.Config) (*model.CrawlJob, error) {
	jobPath := config.FindJobFile(cfg.JobFilePath)
	if jobPath == "" {
		if cfg.JobFilePath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrJobFileNotFound, cfg.JobFilePath)
		}
		return nil, fmt.Errorf("%w: pass --input or run 'ghcrawler init' to create %s",
			config.ErrJobFileNotFound, config.DefaultJobFile)
	}

	jf, err := config.LoadJobFile(jobPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load job file %s: %w", jobPath, err)
	}

	return model.NewCrawlJobFromFile(jf, cfg.BaseURL)
}

// runCrawl executes the crawl and writes its outputs. Nothing is written
// unless every stage succeeded.
func runCrawl(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	job, err := loadJob(cfg)
	if err != nil {
		return err
	}

	collector := metrics.New()
	if cfg.MetricsAddr != "" {
		if _, err := collector.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	fetcher, err := fetch.NewFetcherFromConfig(cfg,
		fetch.WithLogger(logger),
		fetch.WithRecorder(collector),
	)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	downloader := fetch.NewDownloader(fetcher, fetch.WithDownloaderLogger(logger))

	logger.Info("starting crawl",
		"type", job.Type.String(),
		"keywords", len(job.Keywords),
		"proxies", redactedEndpoints(job.Pool),
		"max_tries", cfg.MaxTries,
	)

	result, err := pipeline.Run(ctx, job, downloader,
		pipeline.WithLogger(logger),
		pipeline.WithStageRecorder(collector),
	)
	if err != nil {
		return err
	}

	if err := writeOutputs(cfg, result, out); err != nil {
		return err
	}

	if cfg.Archive {
		if err := archiveResult(ctx, cfg.DBDir, result, logger); err != nil {
			return err
		}
	}

	logger.Info("crawl finished",
		"records", len(result.Records),
		"output", cfg.OutputPath,
		"duration", result.Duration().Round(time.Millisecond).String(),
	)
	return nil
}

// writeOutputs writes the JSON result and any requested reports.
func writeOutputs(cfg *config.Config, result *model.CrawlResult, out io.Writer) error {
	err := report.WriteFile(cfg.OutputPath, result, func(w io.Writer) report.Writer {
		return report.NewJSONWriter(w)
	})
	if err != nil {
		return err
	}

	if cfg.MarkdownPath != "" {
		err := report.WriteFile(cfg.MarkdownPath, result, func(w io.Writer) report.Writer {
			return report.NewMarkdownWriter(w)
		})
		if err != nil {
			return err
		}
	}

	if cfg.Summary {
		if _, err := report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose)).Write(result); err != nil {
			return err
		}
	}

	return nil
}

// archiveResult stores result in the archive database under dbDir.
func archiveResult(ctx context.Context, dbDir string, result *model.CrawlResult, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, result)
	if err != nil {
		return err
	}

	logger.Info("result archived", "run_id", id, "path", db.Path())
	return nil
}

// redactedEndpoints lists the pool's endpoints with passwords hidden.
func redactedEndpoints(pool *proxy.Pool) []string {
	endpoints := pool.Endpoints()
	for i, ep := range endpoints {
		endpoints[i] = proxy.Redact(ep)
	}
	return endpoints
}
