package store

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store owns the corpus database file. It is exclusively written by the
// ingest stage and strictly read-only for every stage after it; the
// handle is threaded explicitly through each stage rather than held as
// shared global state.
type Store struct {
	db   *sql.DB
	path string
}

// Create deletes any stale database at path and opens a fresh one with
// the schema applied. A failure here aborts the run: nothing downstream
// can proceed without the store.
func Create(path string) (*Store, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale database: %w", err)
	}
	// WAL sidecars from a previous run
	os.Remove(path + "-wal")
	os.Remove(path + "-shm")

	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return s, nil
}

// Open opens an existing database without touching its contents. Used
// by the read-only stages (export, audio fetch, status).
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found at %s (run ingest first): %w", path, err)
	}
	return open(path)
}

func open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying database connection for custom queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// Transaction executes a function within a transaction
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
