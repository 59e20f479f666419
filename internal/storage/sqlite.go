package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const blobSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	key  TEXT PRIMARY KEY,
	data BLOB NOT NULL
);
`

// SQLiteStore is a BlobStore backed by a single SQLite database file.
// Upserts run in implicit transactions, so overwrites are atomic.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// blob table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", path, err)
	}

	// SQLite allows one writer at a time; avoid "database is locked"
	// errors from concurrent connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(blobSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Exists reports whether a blob is stored under key.
func (s *SQLiteStore) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM blobs WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: exists %q: %w", key, err)
	}
	return true, nil
}

// ReadAll returns the blob stored under key.
func (s *SQLiteStore) ReadAll(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %q: %w", key, err)
	}
	return data, nil
}

// WriteAll stores data under key, replacing any previous blob.
func (s *SQLiteStore) WriteAll(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (key, data) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		key, data)
	if err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
