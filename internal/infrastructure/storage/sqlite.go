package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite-backed run history.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage opens (or creates) the run-history database at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		selected_shops_json TEXT NOT NULL DEFAULT '[]',
		include_closed_orders BOOLEAN NOT NULL DEFAULT 0,
		include_offline_orders BOOLEAN NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL DEFAULT 0,
		message TEXT NOT NULL DEFAULT '',
		total_records INTEGER NOT NULL DEFAULT 0,
		export_filename TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create runs schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun persists one run record
func (s *Storage) SaveRun(run *RunRecord) error {
	shopsJSON, _ := json.Marshal(run.SelectedShops)

	query := `
	INSERT OR REPLACE INTO runs
	(id, kind, started_at, finished_at, selected_shops_json,
	 include_closed_orders, include_offline_orders, success, message,
	 total_records, export_filename)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.ID,
		run.Kind,
		run.StartedAt,
		run.FinishedAt,
		string(shopsJSON),
		run.IncludeClosedOrders,
		run.IncludeOfflineOrders,
		run.Success,
		run.Message,
		run.TotalRecords,
		run.ExportFilename,
	)
	return err
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(id string) (*RunRecord, error) {
	query := `
	SELECT id, kind, started_at, finished_at, selected_shops_json,
	       include_closed_orders, include_offline_orders, success, message,
	       total_records, export_filename
	FROM runs WHERE id = ?
	`

	run, err := scanRun(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first
func (s *Storage) ListRuns(limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, kind, started_at, finished_at, selected_shops_json,
	       include_closed_orders, include_offline_orders, success, message,
	       total_records, export_filename
	FROM runs ORDER BY started_at DESC LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*RunRecord, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	run := &RunRecord{}
	var shopsJSON string
	var startedAt, finishedAt time.Time

	err := row.Scan(
		&run.ID,
		&run.Kind,
		&startedAt,
		&finishedAt,
		&shopsJSON,
		&run.IncludeClosedOrders,
		&run.IncludeOfflineOrders,
		&run.Success,
		&run.Message,
		&run.TotalRecords,
		&run.ExportFilename,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt = startedAt
	run.FinishedAt = finishedAt
	if shopsJSON != "" {
		_ = json.Unmarshal([]byte(shopsJSON), &run.SelectedShops)
	}
	return run, nil
}
