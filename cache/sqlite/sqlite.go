// Package sqlite provides a cache.Store backed by SQLite (modernc.org/sqlite,
// pure Go). Entries survive process restarts and can be shared by several
// orchestrator processes on one host.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/agentgroup/cache"
)

const schema = `
CREATE TABLE IF NOT EXISTS response_cache (
	cache_key  TEXT PRIMARY KEY,
	response   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_response_cache_expires ON response_cache(expires_at);
`

// Store implements cache.Store.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers; busy_timeout covers other processes.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and ensures the schema. The caller keeps
// ownership of db.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements cache.Store.
func (s *Store) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	var (
		e                  cache.Entry
		created, expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT response, created_at, expires_at FROM response_cache WHERE cache_key = ?`, key,
	).Scan(&e.Response, &created, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, err
	}
	e.CreatedAt = time.Unix(0, created)
	e.ExpiresAt = time.Unix(0, expiresAt)
	return e, true, nil
}

// Set implements cache.Store.
func (s *Store) Set(ctx context.Context, key string, e cache.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO response_cache (cache_key, response, created_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		   response = excluded.response,
		   created_at = excluded.created_at,
		   expires_at = excluded.expires_at`,
		key, e.Response, e.CreatedAt.UnixNano(), e.ExpiresAt.UnixNano(),
	)
	return err
}

// DeleteExpired implements cache.Store.
func (s *Store) DeleteExpired(ctx context.Context, key string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM response_cache WHERE cache_key = ? AND expires_at < ?`, key, now.UnixNano())
	return err
}

// Sweep implements cache.Store.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM response_cache WHERE expires_at < ?`, now.UnixNano())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Len implements cache.Store.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM response_cache`).Scan(&n)
	return n, err
}

var _ cache.Store = (*Store)(nil)
