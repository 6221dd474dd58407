package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/ghcrawler/internal/config"
	"github.com/nao1215/ghcrawler/internal/stubsite"
)

const siteURL = "http://github.test"

// runRoot executes the root command with args and captures its output.
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// startProxy serves site as a forward proxy and returns its endpoint.
func startProxy(t *testing.T, site *stubsite.Site) string {
	t.Helper()

	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

// writeJob writes jf as a JSON job file in dir.
func writeJob(t *testing.T, dir string, jf config.JobFile) string {
	t.Helper()

	data, err := json.MarshalIndent(jf, "", "\t")
	if err != nil {
		t.Fatalf("failed to encode job: %v", err)
	}
	path := filepath.Join(dir, config.DefaultJobFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write job: %v", err)
	}
	return path
}
