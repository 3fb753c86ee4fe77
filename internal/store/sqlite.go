// sqlite.go — Durable key/value store backing launcher state.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite persists small integer records (currently just the last node
// pid) in a single-table sqlite database. Writes are last-writer-wins.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the launcher state database at
// path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// A single writer at a time; the launcher is the only client.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS launcher_state (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init state db: %w", err)
	}
	return &SQLite{db: db}, nil
}

// GetInt returns the value stored under key, with ok=false when the key
// has never been written.
func (s *SQLite) GetInt(key string) (int, bool, error) {
	var v int
	err := s.db.QueryRow(`SELECT value FROM launcher_state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %q: %w", key, err)
	}
	return v, true, nil
}

// SetInt stores value under key, replacing any previous value.
func (s *SQLite) SetInt(key string, value int) error {
	_, err := s.db.Exec(`INSERT INTO launcher_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
