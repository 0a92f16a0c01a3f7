// Package store persists harvested records in SQLite. The books table is
// also the harvest checkpoint: an identifier present in it is considered
// done and is skipped on the next run.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lepinkainen/bibcat/internal/record"
	_ "modernc.org/sqlite"
)

// Schema creates the books table and its indexes. Kept idempotent so every
// run can apply it unconditionally on startup.
const Schema = `
CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY NOT NULL,
	oclc_id INTEGER NOT NULL UNIQUE,
	status INTEGER NOT NULL,
	retrieved_at TEXT NOT NULL,
	data JSON
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_books_on_oclc_id ON books(oclc_id);
CREATE INDEX IF NOT EXISTS idx_books_on_status ON books(status);
`

// ErrNotStored is returned by Get for identifiers that have never been
// upserted.
var ErrNotStored = errors.New("record not stored")

// Store wraps the SQLite connection used for record persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the SQLite database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to database: %w", err), closeErr)
	}

	return &Store{db: db}, nil
}

// EnsureSchema applies the books schema if the table does not exist yet.
func (s *Store) EnsureSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Exists reports whether a record for oclcID has already been stored.
// This is a point read on the unique index, not a scan.
func (s *Store) Exists(ctx context.Context, oclcID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM books WHERE oclc_id = ?", oclcID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}
	return true, nil
}

// Upsert inserts the record, fully replacing any previous row for the same
// oclc_id. The payload is JSON-encoded; not-found records store NULL.
func (s *Store) Upsert(ctx context.Context, rec *record.Record) error {
	var data any
	if rec.Payload != nil {
		encoded, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		data = string(encoded)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO books (oclc_id, status, retrieved_at, data) VALUES (?, ?, ?, ?)",
		rec.OCLCID, int(rec.Status), rec.RetrievedAt.Format(time.RFC3339), data)
	if err != nil {
		return fmt.Errorf("failed to upsert record %d: %w", rec.OCLCID, err)
	}
	return nil
}

// Get reads a stored record back, decoding the payload JSON. Returns
// ErrNotStored when the identifier has never been upserted.
func (s *Store) Get(ctx context.Context, oclcID int64) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		status      int
		retrievedAt string
		data        sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT status, retrieved_at, data FROM books WHERE oclc_id = ?", oclcID).
		Scan(&status, &retrievedAt, &data)
	if err == sql.ErrNoRows {
		return nil, ErrNotStored
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %d: %w", oclcID, err)
	}

	ts, err := time.Parse(time.RFC3339, retrievedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse retrieved_at for %d: %w", oclcID, err)
	}

	rec := &record.Record{
		OCLCID:      oclcID,
		Status:      record.Status(status),
		RetrievedAt: ts,
	}
	if data.Valid {
		var payload record.Payload
		if err := json.Unmarshal([]byte(data.String), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload for %d: %w", oclcID, err)
		}
		rec.Payload = &payload
	}
	return rec, nil
}

// Count returns the number of stored records with the given status.
func (s *Store) Count(ctx context.Context, status record.Status) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books WHERE status = ?", int(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
