// Package sqlite is a ledger.Store backed by a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Migrations returns the schema statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// seq keeps insertion order; ids are opaque strings
		`CREATE TABLE IF NOT EXISTS entries (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			label      TEXT NOT NULL,
			amount     TEXT NOT NULL,
			created_at TEXT NOT NULL,
			category   TEXT NOT NULL,
			linked_to  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_category ON entries(category)`,
	}
}

// Store keeps entries in the entries table.
type Store struct {
	db *sql.DB

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the database at path and applies the migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	for _, stmt := range Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Entries(ctx context.Context) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, amount, created_at, category, linked_to
		FROM entries ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ledger.Entry
	for rows.Next() {
		var (
			e                 ledger.Entry
			amount, createdAt string
			category          string
		)
		if err := rows.Scan(&e.ID, &e.Label, &amount, &createdAt, &category, &e.LinkedTo); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("entry %s has invalid amount %q: %w", e.ID, amount, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("entry %s has invalid timestamp %q: %w", e.ID, createdAt, err)
		}
		e.Category = ledger.Category(category)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, e ledger.Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, label, amount, created_at, category, linked_to)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Label, e.Amount.String(), e.CreatedAt.UTC().Format(time.RFC3339Nano), string(e.Category), e.LinkedTo)
	return err
}

func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ledger.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
