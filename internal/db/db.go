// Package db persists the extraction history in sqlite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// Extraction statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// DB represents the database with separate read/write pools
type DB struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// New creates a new database instance with separate read/write pools
func New(ctx context.Context, dbPath string) (*DB, error) {
	// Connection string with pragmas
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: MUST be 1 connection only
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(4)
	read.SetMaxIdleConns(2)
	read.SetConnMaxIdleTime(time.Minute)

	db := &DB{
		write: write,
		read:  read,
		path:  dbPath,
	}

	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Close closes both database connections
func (db *DB) Close() error {
	writeErr := db.write.Close()
	readErr := db.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS extractions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    archive_path TEXT NOT NULL,
    destination TEXT,
    strategy TEXT,
    files INTEGER NOT NULL DEFAULT 0,
    bytes INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    error TEXT,
    extracted_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_extractions_run ON extractions(run_id);
CREATE INDEX IF NOT EXISTS idx_extractions_archive ON extractions(archive_path);

CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    description TEXT
);
	`

	if _, err := db.write.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	_, err := db.write.ExecContext(ctx,
		"INSERT OR IGNORE INTO schema_migrations (version, description) VALUES (?, ?)",
		schemaVersion, "extraction history")
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return nil
}

// Extraction is one archive processed by one run
type Extraction struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	ArchivePath string    `json:"archive_path"`
	Destination string    `json:"destination,omitempty"`
	Strategy    string    `json:"strategy,omitempty"`
	Files       int       `json:"files"`
	Bytes       int64     `json:"bytes"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// Create inserts an extraction record and sets its ID
func (db *DB) Create(ctx context.Context, e *Extraction) error {
	if e.ExtractedAt.IsZero() {
		e.ExtractedAt = time.Now()
	}

	query := `
INSERT INTO extractions (run_id, archive_path, destination, strategy, files, bytes, status, error, extracted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.write.ExecContext(ctx, query,
		e.RunID,
		e.ArchivePath,
		e.Destination,
		e.Strategy,
		e.Files,
		e.Bytes,
		e.Status,
		e.Error,
		e.ExtractedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert extraction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read extraction id: %w", err)
	}
	e.ID = id

	return nil
}

const selectColumns = `
SELECT id, run_id, archive_path, destination, strategy, files, bytes, status, error, extracted_at
FROM extractions`

// List retrieves all extraction records, newest first
func (db *DB) List(ctx context.Context) ([]Extraction, error) {
	return db.query(ctx, selectColumns+" ORDER BY extracted_at DESC, id DESC")
}

// ListByRun retrieves the records of one run in processing order
func (db *DB) ListByRun(ctx context.Context, runID string) ([]Extraction, error) {
	return db.query(ctx, selectColumns+" WHERE run_id = ? ORDER BY id ASC", runID)
}

func (db *DB) query(ctx context.Context, query string, args ...any) ([]Extraction, error) {
	rows, err := db.read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	defer rows.Close()

	var extractions []Extraction
	for rows.Next() {
		var e Extraction
		var destination, strategy, errText sql.NullString

		err := rows.Scan(
			&e.ID,
			&e.RunID,
			&e.ArchivePath,
			&destination,
			&strategy,
			&e.Files,
			&e.Bytes,
			&e.Status,
			&errText,
			&e.ExtractedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		e.Destination = destination.String
		e.Strategy = strategy.String
		e.Error = errText.String

		extractions = append(extractions, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return extractions, nil
}

// Clear removes every extraction record and returns how many were deleted
func (db *DB) Clear(ctx context.Context) (int64, error) {
	result, err := db.write.ExecContext(ctx, "DELETE FROM extractions")
	if err != nil {
		return 0, fmt.Errorf("clear extractions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}

	return rows, nil
}
