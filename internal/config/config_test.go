package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional; these subtests fail otherwise.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxTries is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxTries != 10 {
			t.Errorf("expected MaxTries to be 10, got %d", cfg.MaxTries)
		}
	})

	t.Run("default Timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout to be 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default PerHostLimit is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.PerHostLimit != 10 {
			t.Errorf("expected PerHostLimit to be 10, got %d", cfg.PerHostLimit)
		}
	})

	t.Run("default GlobalLimit is unlimited", func(t *testing.T) {
		t.Parallel()
		if cfg.GlobalLimit != 0 {
			t.Errorf("expected GlobalLimit to be 0, got %d", cfg.GlobalLimit)
		}
	})

	t.Run("default DNSCacheTTL is 120 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.DNSCacheTTL != 120*time.Second {
			t.Errorf("expected DNSCacheTTL to be 120s, got %v", cfg.DNSCacheTTL)
		}
	})

	t.Run("default OutputPath is result.json", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputPath != "result.json" {
			t.Errorf("expected OutputPath to be 'result.json', got '%s'", cfg.OutputPath)
		}
	})

	t.Run("default BaseURL is github", func(t *testing.T) {
		t.Parallel()
		if cfg.BaseURL != "https://github.com" {
			t.Errorf("expected BaseURL to be 'https://github.com', got '%s'", cfg.BaseURL)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to validate, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each case breaks exactly one rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"zero max tries", func(c *Config) { c.MaxTries = 0 }, ErrInvalidMaxTries},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrInvalidTimeout},
		{"zero per-host limit", func(c *Config) { c.PerHostLimit = 0 }, ErrInvalidPerHostLimit},
		{"negative global limit", func(c *Config) { c.GlobalLimit = -1 }, ErrInvalidGlobalLimit},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -0.5 }, ErrInvalidRate},
		{"negative dns ttl", func(c *Config) { c.DNSCacheTTL = -time.Second }, ErrInvalidDNSCacheTTL},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"empty output path", func(c *Config) { c.OutputPath = "" }, ErrNoOutputPath},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"relative base url", func(c *Config) { c.BaseURL = "github.com" }, ErrInvalidBaseURL},
		{"ftp base url", func(c *Config) { c.BaseURL = "ftp://github.com" }, ErrInvalidBaseURL},
		{"global limit zero is valid", func(c *Config) { c.GlobalLimit = 0 }, nil},
		{"plain http base url is valid", func(c *Config) { c.BaseURL = "http://127.0.0.1:8080" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestFieldError tests the job field error wrapper.
func TestFieldError(t *testing.T) {
	t.Parallel()

	err := NewFieldError("proxies", ErrNoProxies)

	if !errors.Is(err, ErrNoProxies) {
		t.Error("expected FieldError to match ErrNoProxies")
	}

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatal("expected errors.As to find FieldError")
	}
	if fe.Field != "proxies" {
		t.Errorf("expected field 'proxies', got %q", fe.Field)
	}
	if !strings.Contains(err.Error(), "proxies") {
		t.Errorf("expected message to name the field, got %q", err.Error())
	}
}

// TestLoadJobFile tests the LoadJobFile function.
func TestLoadJobFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrJobFileNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		jf, err := LoadJobFile("/nonexistent/path/ghcrawler.json")
		if !errors.Is(err, ErrJobFileNotFound) {
			t.Fatalf("expected ErrJobFileNotFound, got: %v", err)
		}
		if jf != nil {
			t.Error("expected nil job file when file not found")
		}
	})

	t.Run("loads tab-indented JSON job", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "job.json")
		content := "{\n\t\"type\": \"Repositories\",\n\t\"keywords\": [\"rust\", \"go\"],\n\t\"proxies\": [\"10.0.0.1:8080\"]\n}\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test job: %v", err)
		}

		jf, err := LoadJobFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if jf.Type != "Repositories" {
			t.Errorf("expected type Repositories, got %q", jf.Type)
		}
		if len(jf.Keywords) != 2 || jf.Keywords[0] != "rust" || jf.Keywords[1] != "go" {
			t.Errorf("unexpected keywords: %v", jf.Keywords)
		}
		if len(jf.Proxies) != 1 || jf.Proxies[0] != "10.0.0.1:8080" {
			t.Errorf("unexpected proxies: %v", jf.Proxies)
		}
	})

	t.Run("loads YAML job", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "job.yaml")
		content := `type: issues
keywords:
  - rust
proxies:
  - socks5://127.0.0.1:1080
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test job: %v", err)
		}

		jf, err := LoadJobFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if jf.Type != "issues" {
			t.Errorf("expected type issues, got %q", jf.Type)
		}
		if len(jf.Proxies) != 1 || jf.Proxies[0] != "socks5://127.0.0.1:1080" {
			t.Errorf("unexpected proxies: %v", jf.Proxies)
		}
	})

	t.Run("returns error for malformed JSON", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "job.json")
		if err := os.WriteFile(path, []byte(`{"type": `), 0600); err != nil {
			t.Fatalf("failed to write test job: %v", err)
		}

		if _, err := LoadJobFile(path); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "job.yaml")
		if err := os.WriteFile(path, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test job: %v", err)
		}

		if _, err := LoadJobFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindJobFile tests the FindJobFile function.
func TestFindJobFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.json")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write test job: %v", err)
		}

		if got := FindJobFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if got := FindJobFile("/nonexistent/path/job.json"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("falls back to ghcrawler.json in the working directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		if got := FindJobFile(""); got != "" {
			t.Errorf("expected empty string before the file exists, got %q", got)
		}

		if err := os.WriteFile(filepath.Join(dir, DefaultJobFile), []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write test job: %v", err)
		}
		got := FindJobFile("")
		if filepath.Base(got) != DefaultJobFile {
			t.Errorf("expected %s, got %q", DefaultJobFile, got)
		}
	})
}

// TestXDGDataDir tests the archive directory location.
func TestXDGDataDir(t *testing.T) {
	t.Parallel()

	dir := XDGDataDir()
	if dir == "" {
		t.Fatal("expected non-empty XDG data dir")
	}
	if filepath.Base(dir) != AppName {
		t.Errorf("expected data dir to end with %s, got %q", AppName, dir)
	}
}
