package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite stores blobs in a single-table SQLite database. It satisfies the
// put-then-get consistency the poll handler relies on: a successful Put is
// visible to the next Exists.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the blob database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	s := &SQLite{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			file_id      TEXT PRIMARY KEY,
			content      BLOB NOT NULL,
			content_type TEXT NOT NULL DEFAULT '',
			created_at   INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

// Put stores data under key, write-once.
func (s *SQLite) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (file_id, content, content_type, created_at) VALUES (?, ?, ?, ?)`,
		key, data, contentType, time.Now().UnixMilli())
	if err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) && (se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE) {
			return ErrDuplicateKey
		}
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Exists reports whether key names a stored blob.
func (s *SQLite) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM artifacts WHERE file_id = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "exists", Key: key, Err: err}
	}
	return true, nil
}

// GetString fetches a blob as UTF-8 text. A missing key is an error here,
// unlike Exists: callers only read blobs they have already seen exist.
func (s *SQLite) GetString(ctx context.Context, key string) (string, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM artifacts WHERE file_id = ?`, key).Scan(&content)
	if err != nil {
		return "", &StorageError{Op: "get", Key: key, Err: err}
	}
	return string(content), nil
}
