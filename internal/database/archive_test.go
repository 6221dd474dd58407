package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/ghcrawler/internal/config"
	"github.com/nao1215/ghcrawler/internal/model"
)

// setupTestDB creates a temporary archive for testing.
func setupTestDB(t *testing.T) *ArchiveDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func newResult(t model.CrawlType, keywords []string, records ...model.EntityRecord) *model.CrawlResult {
	started := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return &model.CrawlResult{
		Type:       t,
		Keywords:   keywords,
		Records:    records,
		Stages:     []model.StageSummary{{Name: "search", Records: len(records), Duration: time.Second}},
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
}

func repoRecord(url, owner string, stats map[string]float64) model.EntityRecord {
	extra := model.NewExtra(owner)
	extra.LanguageStats = stats
	return model.EntityRecord{URL: url, Extra: extra}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
		if _, err := os.Stat(db.Path()); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if _, err := db.SaveRun(context.Background(), newResult(model.Issues, []string{"a"})); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		_ = db.Close()

		reopened, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer reopened.Close()

		runs, err := reopened.ListRuns(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run, got %d", len(runs))
		}
	})
}

// TestSaveAndGetRun tests the archive round trip.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	saved := newResult(model.Repositories, []string{"rust"},
		repoRecord("https://github.com/rust-lang/rust", "rust-lang", map[string]float64{"Rust": 80, "C": 20}),
		repoRecord("https://github.com/tokio-rs/tokio", "tokio-rs", map[string]float64{}),
	)

	id, err := db.SaveRun(ctx, saved)
	if err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive id, got %d", id)
	}

	got, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}

	if got.Type != model.Repositories {
		t.Errorf("expected Repositories, got %v", got.Type)
	}
	if !slices.Equal(got.Keywords, []string{"rust"}) {
		t.Errorf("unexpected keywords %v", got.Keywords)
	}
	if len(got.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got.Records))
	}
	if got.Records[0].Extra.Owner != "rust-lang" || got.Records[0].Extra.LanguageStats["Rust"] != 80 {
		t.Errorf("unexpected first record %+v", got.Records[0].Extra)
	}
	if got.Records[1].Extra.LanguageStats == nil {
		t.Error("expected empty language map to survive the round trip")
	}
	if !got.StartedAt.Equal(saved.StartedAt) || got.Duration() != 3*time.Second {
		t.Errorf("unexpected times: %v to %v", got.StartedAt, got.FinishedAt)
	}
	if len(got.Stages) != 1 || got.Stages[0].Duration != time.Second {
		t.Errorf("unexpected stages %+v", got.Stages)
	}
}

// TestGetRunNotFound tests the missing-run error.
func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	_, err := db.GetRun(context.Background(), 42)
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

// TestListRuns tests listing, filtering and limits.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	results := []*model.CrawlResult{
		newResult(model.Issues, []string{"panic"}, model.EntityRecord{URL: "https://github.com/a/b/issues/1"}),
		newResult(model.Repositories, []string{"rust", "go"},
			repoRecord("https://github.com/a/b", "a", map[string]float64{"Go": 100})),
		newResult(model.Issues, []string{"leak"}),
	}
	for _, r := range results {
		if _, err := db.SaveRun(ctx, r); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if !slices.Equal(runs[0].Keywords, []string{"leak"}) {
			t.Errorf("expected newest run first, got %v", runs[0].Keywords)
		}
		if runs[1].Type != model.Repositories || runs[1].Records != 1 || runs[1].Enriched != 1 {
			t.Errorf("unexpected summary %+v", runs[1])
		}
		if runs[1].Digest == "" || runs[1].StartedAt.IsZero() || runs[1].FinishedAt.IsZero() {
			t.Errorf("expected digest and times, got %+v", runs[1])
		}
	})

	t.Run("filter by type", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "Issues", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 issue runs, got %d", len(runs))
		}
		for _, r := range runs {
			if r.Type != model.Issues {
				t.Errorf("unexpected type %v", r.Type)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "", 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run, got %d", len(runs))
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		t.Parallel()

		_, err := db.ListRuns(ctx, "gists", 0)
		if !errors.Is(err, config.ErrInvalidType) {
			t.Errorf("expected ErrInvalidType, got %v", err)
		}
	})
}

// TestDigest tests the record digest.
func TestDigest(t *testing.T) {
	t.Parallel()

	a := []model.EntityRecord{{URL: "https://github.com/a/b/issues/1"}, {URL: "https://github.com/a/b/issues/2"}}
	b := []model.EntityRecord{{URL: "https://github.com/a/b/issues/2"}, {URL: "https://github.com/a/b/issues/1"}}

	da, err := Digest(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(da) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(da))
	}

	again, _ := Digest(slices.Clone(a))
	if da != again {
		t.Error("expected identical records to have identical digests")
	}

	db, _ := Digest(b)
	if da == db {
		t.Error("expected order to change the digest")
	}

	empty, _ := Digest(nil)
	emptySlice, _ := Digest([]model.EntityRecord{})
	if empty != emptySlice {
		t.Error("expected nil and empty records to share a digest")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-01-02T03:04:05.5Z", time.Date(2026, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{"2026-01-02 03:04:05", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"garbage", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
