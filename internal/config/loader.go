package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultJobFile is the job file looked up in the working directory when
// no path is given.
const DefaultJobFile = "ghcrawler.json"

// ErrJobFileNotFound is returned when the job file does not exist.
var ErrJobFileNotFound = errors.New("job file not found")

// JobFile is the on-disk crawl job description.
//
//	{"type": "Repositories", "keywords": ["rust"], "proxies": ["10.0.0.1:8080"]}
//
// Both JSON and YAML files are accepted.
type JobFile struct {
	// Type is the crawl type, case-insensitive: repositories, wikis, or issues.
	Type string `yaml:"type" json:"type"`

	// Keywords are the search terms; one search page is fetched per keyword.
	Keywords []string `yaml:"keywords" json:"keywords"`

	// Proxies are forward proxy endpoints, "host:port" or a full URL.
	Proxies []string `yaml:"proxies" json:"proxies"`
}

// LoadJobFile reads a job file from disk.
// If the file does not exist, it returns ErrJobFileNotFound.
// Field validation happens later, when the crawl job is built.
func LoadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided job path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrJobFileNotFound
		}
		return nil, err
	}

	return ParseJobFile(data)
}

// ParseJobFile decodes a job description from JSON or YAML bytes.
// JSON objects go through encoding/json because tab-indented JSON is not
// valid YAML.
func ParseJobFile(data []byte) (*JobFile, error) {
	var jf JobFile
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		if err := json.Unmarshal(data, &jf); err != nil {
			return nil, err
		}
		return &jf, nil
	}
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, err
	}
	return &jf, nil
}

// FindJobFile resolves the job file location:
// 1. If jobPath is specified, use it if it exists
// 2. Otherwise look for ghcrawler.json in the current directory
//
// Returns an empty string when nothing is found.
func FindJobFile(jobPath string) string {
	if jobPath != "" {
		if _, err := os.Stat(jobPath); err == nil {
			return jobPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		candidate := filepath.Join(cwd, DefaultJobFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
