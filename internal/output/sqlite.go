package output

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FocuswithJustin/versefetch/core/batch"
	"github.com/FocuswithJustin/versefetch/internal/validation"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	total      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	run_id    TEXT NOT NULL,
	position  INTEGER NOT NULL,
	reference TEXT NOT NULL,
	text      TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);`

// DriverName returns the database/sql driver used for SQLite output.
func DriverName() string {
	return driverName
}

// SQLite is a record sink backed by a SQLite database file. Each run is
// kept under its own run id; rewriting a run id replaces its rows.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Write stores records under runID in a single transaction.
func (s *SQLite) Write(ctx context.Context, runID string, records []batch.Record) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear run: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, created_at, total) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), len(records)); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, position, reference, text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, runID, i, rec.Reference, rec.Text); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Records returns the records of one run in input order.
func (s *SQLite) Records(ctx context.Context, runID string) ([]batch.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT reference, text FROM records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []batch.Record
	for rows.Next() {
		var rec batch.Record
		if err := rows.Scan(&rec.Reference, &rec.Text); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Runs lists the stored run ids, oldest first.
func (s *SQLite) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id FROM runs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
