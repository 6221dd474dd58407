package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/ghcrawler/internal/model"
)

// FileName is the archive database file inside the data directory.
const FileName = "ghcrawler.db"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// ArchiveDB stores finished crawl results.
type ArchiveDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures ArchiveDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the archive in dbDir.
func Open(dbDir string, opts Options) (*ArchiveDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("archive not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check archive path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &ArchiveDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Path returns the database file path.
func (a *ArchiveDB) Path() string {
	return a.dbPath
}

// Close closes the database connection.
func (a *ArchiveDB) Close() error {
	return a.db.Close()
}

func (a *ArchiveDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_type TEXT NOT NULL,
		keywords TEXT NOT NULL,
		record_count INTEGER NOT NULL,
		enriched_count INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		digest TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_type ON runs(crawl_type);
	CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(digest);
	`

	_, err := a.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary describes an archived run without its records.
type RunSummary struct {
	ID         int64
	Type       model.CrawlType
	Keywords   []string
	Records    int
	Enriched   int
	StartedAt  time.Time
	FinishedAt time.Time
	Digest     string
}

// Digest returns the hex SHA3-256 of the JSON encoding of records.
// Identical result sets have identical digests.
func Digest(records []model.EntityRecord) (string, error) {
	if records == nil {
		records = []model.EntityRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode records: %w", err)
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SaveRun archives result and returns its run ID.
func (a *ArchiveDB) SaveRun(ctx context.Context, result *model.CrawlResult) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}
	keywordsJSON, err := json.Marshal(result.Keywords)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize keywords: %w", err)
	}
	digest, err := Digest(result.Records)
	if err != nil {
		return 0, err
	}

	query := `
	INSERT INTO runs (crawl_type, keywords, record_count, enriched_count, started_at, finished_at, digest, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := a.db.ExecContext(ctx, query,
		result.Type.String(),
		string(keywordsJSON),
		len(result.Records),
		result.EnrichedCount(),
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
		digest,
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return res.LastInsertId()
}

// ListRuns returns archived runs, newest first. An empty crawlType lists
// every type; limit <= 0 means no limit.
func (a *ArchiveDB) ListRuns(ctx context.Context, crawlType string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, crawl_type, keywords, record_count, enriched_count, started_at, finished_at, digest
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if crawlType != "" {
		t, err := model.ParseCrawlType(crawlType)
		if err != nil {
			return nil, err
		}
		query += " AND crawl_type = ?"
		args = append(args, t.String())
	}

	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var (
			run                   RunSummary
			typeName, keywords    string
			startedAt, finishedAt string
		)
		if err := rows.Scan(&run.ID, &typeName, &keywords, &run.Records, &run.Enriched, &startedAt, &finishedAt, &run.Digest); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if err := run.Type.UnmarshalText([]byte(typeName)); err != nil {
			return nil, fmt.Errorf("run %d: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(keywords), &run.Keywords); err != nil {
			return nil, fmt.Errorf("run %d: failed to parse keywords: %w", run.ID, err)
		}
		run.StartedAt = parseTimestamp(startedAt)
		run.FinishedAt = parseTimestamp(finishedAt)

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun returns the archived result of run id.
func (a *ArchiveDB) GetRun(ctx context.Context, id int64) (*model.CrawlResult, error) {
	query := `SELECT result_json FROM runs WHERE id = ?`

	var resultJSON string
	err := a.db.QueryRowContext(ctx, query, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse run %d: %w", id, err)
	}

	return &result, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
}

// parseTimestamp tries each known format and returns the zero time if
// none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
