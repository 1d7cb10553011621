package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"lotscan/internal/crawler"
	"lotscan/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl history: which listing
// pages were fetched when, which products have been seen across runs, and
// per-run summary rows for the history command.
//
// Design decision: We use a single database file for all runs rather than
// one file per run. Cross-run product history (first_seen/last_seen) is the
// point of persisting at all, and a single file keeps backups trivial.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "lotscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; the crawl is sequential anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one row per crawl invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_url TEXT NOT NULL,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		pages INTEGER DEFAULT 0,
		records INTEGER DEFAULT 0,
		unique_records INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages store individual listing-page fetches
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		status_code INTEGER,
		products_found INTEGER DEFAULT 0,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);

	-- Products track every distinct record across all runs
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		image_url TEXT NOT NULL,
		location TEXT NOT NULL,
		usage TEXT NOT NULL,
		description TEXT NOT NULL,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		times_seen INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_products_last_seen ON products(last_seen);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one crawl invocation's summary row.
type Run struct {
	ID            int64
	StartURL      string
	StartedAt     time.Time
	FinishedAt    time.Time
	Pages         int
	Records       int
	UniqueRecords int
}

// StartRun inserts a new run row and returns its ID.
func (cdb *CrawlDB) StartRun(ctx context.Context, startURL string) (int64, error) {
	result, err := cdb.db.ExecContext(ctx,
		`INSERT INTO runs (start_url) VALUES (?)`, startURL)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return result.LastInsertId()
}

// FinishRun stamps a run row with its final counters.
func (cdb *CrawlDB) FinishRun(ctx context.Context, runID int64, pages, records, uniqueRecords int) error {
	_, err := cdb.db.ExecContext(ctx, `
	UPDATE runs SET finished_at = CURRENT_TIMESTAMP, pages = ?, records = ?, unique_records = ?
	WHERE id = ?`,
		pages, records, uniqueRecords, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, start_url, started_at, COALESCE(finished_at, ''), pages, records, unique_records
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.StartURL, &started, &finished, &r.Pages, &r.Records, &r.UniqueRecords); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(started)
		if finished != "" {
			r.FinishedAt = parseTimestamp(finished)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Recorder returns a crawler.Recorder bound to the given run.
// Every page visit inserts a page row and upserts the page's products.
func (cdb *CrawlDB) Recorder(runID int64) crawler.Recorder {
	return &runRecorder{cdb: cdb, runID: runID}
}

// runRecorder persists page visits for a single run.
type runRecorder struct {
	cdb   *CrawlDB
	runID int64
}

// RecordPage implements crawler.Recorder.
func (r *runRecorder) RecordPage(ctx context.Context, visit crawler.PageVisit) error {
	_, err := r.cdb.db.ExecContext(ctx, `
	INSERT INTO pages (run_id, url, status_code, products_found, fetched_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(run_id, url) DO UPDATE SET
		status_code = excluded.status_code,
		products_found = excluded.products_found,
		fetched_at = excluded.fetched_at`,
		r.runID,
		visit.URL,
		visit.StatusCode,
		len(visit.Records),
		visit.FetchedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert page visit: %w", err)
	}

	for _, record := range visit.Records {
		if err := r.cdb.upsertProduct(ctx, record); err != nil {
			return err
		}
	}

	return nil
}

// upsertProduct inserts a product or refreshes its last_seen counters.
func (cdb *CrawlDB) upsertProduct(ctx context.Context, record model.Product) error {
	_, err := cdb.db.ExecContext(ctx, `
	INSERT INTO products (key, title, link, image_url, location, usage, description)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		last_seen = CURRENT_TIMESTAMP,
		times_seen = times_seen + 1`,
		record.Key(),
		record.Title,
		record.Link,
		record.ImageURL,
		record.Location,
		record.Usage,
		record.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// ProductCount returns the number of distinct products seen across all runs.
func (cdb *CrawlDB) ProductCount(ctx context.Context) (int, error) {
	var count int
	if err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// PageCount returns the number of page fetches recorded for a run.
func (cdb *CrawlDB) PageCount(ctx context.Context, runID int64) (int, error) {
	var count int
	if err := cdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pages WHERE run_id = ?`, runID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
