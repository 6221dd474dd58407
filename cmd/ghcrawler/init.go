package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/ghcrawler/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/ghcrawler.json
var jobTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a template job file",
		Long: `Init writes a ghcrawler.json job file to the current directory.

The job file has three fields:
- type: Repositories, Issues, or Wikis (case-insensitive)
- keywords: search terms, one search page per keyword
- proxies: forward proxies as host:port or a full URL
  (http://, https://, socks5://, optionally with user:pass@)

Examples:
  # Create ghcrawler.json in current directory
  ghcrawler init

  # Create a job file at a specific path
  ghcrawler init -o jobs/rust.json

  # Force overwrite existing file
  ghcrawler init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultJobFile,
		"Output file path for the job file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing job file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("job file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := jobTemplate.ReadFile("templates/ghcrawler.json")
	if err != nil {
		return fmt.Errorf("failed to read job template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created job file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set:")
	fmt.Fprintln(out, "  - the crawl type")
	fmt.Fprintln(out, "  - the search keywords")
	fmt.Fprintln(out, "  - the proxies to route requests through")

	return nil
}
