package main

import (
	"fmt"
	"os"

	"github.com/nao1215/ghcrawler/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ghcrawler.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ghcrawler",
		Short: "Proxy-rotating GitHub search crawler",
		Long: `ghcrawler searches GitHub for a list of keywords and collects the URLs of
matching repositories, issues, or wikis. Every request goes through a
randomly chosen forward proxy from the job file and is retried through
other proxies until it succeeds or the attempt budget is spent.

Repository crawls also visit each repository page and record its owner
and language statistics.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format: text or json")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
