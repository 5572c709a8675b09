package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sweepd/internal/state"
)

//go:embed schema.sql
var schemaSQL string

// Record is one journaled scan cycle.
type Record struct {
	ID              int64
	ScanID          string
	StartedAt       time.Time
	CompletedAt     time.Time
	Directories     int
	FilesConsidered int
	FilesDeleted    int
	BytesFreed      int64
	ErrorCount      int
	Success         bool
}

// Store journals scan cycles in SQLite so an operator can inspect
// enforcement history after the fact. The journal is advisory: losing it
// never affects policy decisions.
type Store struct {
	db      *sql.DB
	path    string
	maxRows int
}

// Open initializes or connects to the journal database. maxRows bounds the
// journal itself; older rows are pruned as new cycles are recorded.
func Open(path string, maxRows int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: path, maxRows: maxRows}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the journal database location.
func (s *Store) Path() string {
	return s.path
}

// RecordScan appends one scan cycle and prunes the journal to its row cap.
func (s *Store) RecordScan(ctx context.Context, summary state.ScanSummary) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO scan_cycles (
            scan_id, started_at, completed_at, directories,
            files_considered, files_deleted, bytes_freed, error_count, success
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ScanID,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.CompletedAt.UTC().Format(time.RFC3339Nano),
		summary.Directories,
		summary.FilesConsidered,
		summary.FilesDeleted,
		summary.BytesFreed,
		summary.ErrorCount,
		boolToInt(summary.Success),
	)
	if err != nil {
		return fmt.Errorf("insert scan cycle: %w", err)
	}
	return s.prune(ctx)
}

// Recent returns the newest limit cycles, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, scan_id, started_at, completed_at, directories,
                files_considered, files_deleted, bytes_freed, error_count, success
         FROM scan_cycles ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query scan cycles: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of journaled cycles.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM scan_cycles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scan cycles: %w", err)
	}
	return n, nil
}

func (s *Store) prune(ctx context.Context) error {
	if s.maxRows <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM scan_cycles WHERE id NOT IN (
            SELECT id FROM scan_cycles ORDER BY id DESC LIMIT ?
        )`,
		s.maxRows,
	)
	if err != nil {
		return fmt.Errorf("prune scan cycles: %w", err)
	}
	return nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec       Record
		started   string
		completed string
		success   int
	)
	if err := rows.Scan(
		&rec.ID, &rec.ScanID, &started, &completed, &rec.Directories,
		&rec.FilesConsidered, &rec.FilesDeleted, &rec.BytesFreed, &rec.ErrorCount, &success,
	); err != nil {
		return Record{}, fmt.Errorf("scan row: %w", err)
	}
	var err error
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Record{}, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.CompletedAt, err = time.Parse(time.RFC3339Nano, completed); err != nil {
		return Record{}, fmt.Errorf("parse completed_at: %w", err)
	}
	rec.Success = success != 0
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
