package main

import (
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "ghcrawler" {
			t.Errorf("expected use 'ghcrawler', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent logging flags", func(t *testing.T) {
		t.Parallel()
		verbose := cmd.PersistentFlags().Lookup("verbose")
		if verbose == nil {
			t.Fatal("expected verbose flag")
		}
		if verbose.Shorthand != "v" || verbose.DefValue != "false" {
			t.Errorf("unexpected verbose flag: -%s default %q", verbose.Shorthand, verbose.DefValue)
		}
		format := cmd.PersistentFlags().Lookup("log-format")
		if format == nil {
			t.Fatal("expected log-format flag")
		}
		if format.DefValue != "text" {
			t.Errorf("expected default 'text', got %q", format.DefValue)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{"crawl": false, "history": false, "init": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

func TestRootPersistentFlagsReachCrawl(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	crawl, _, err := cmd.Find([]string{"crawl"})
	if err != nil {
		t.Fatalf("failed to find crawl: %v", err)
	}
	if err := cmd.PersistentFlags().Set("verbose", "true"); err != nil {
		t.Fatalf("failed to set verbose: %v", err)
	}
	if err := cmd.PersistentFlags().Set("log-format", "json"); err != nil {
		t.Fatalf("failed to set log-format: %v", err)
	}

	if !getVerboseFlag(crawl) {
		t.Error("expected verbose from root flags")
	}
	if got := getLogFormatFlag(crawl); got != "json" {
		t.Errorf("expected json, got %q", got)
	}
}
