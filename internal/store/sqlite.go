package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/keepnote/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	bucket     TEXT NOT NULL,
	key        TEXT NOT NULL,
	data       BLOB NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (bucket, key)
);
`

// SQLite implements Store on a single local SQLite database.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
// WAL mode and a busy timeout are appended to whatever options the dsn
// already carries.
func OpenSQLite(dsn string) (*SQLite, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	conn, err := sql.Open("sqlite3", dsn+sep+"_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Get returns the document stored under key.
func (s *SQLite) Get(ctx context.Context, bucket, key string) (*Document, error) {
	doc := Document{Key: key}
	err := s.conn.QueryRowContext(ctx,
		`SELECT data, version FROM documents WHERE bucket = ? AND key = ?`,
		bucket, key).Scan(&doc.Data, &doc.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("sqlite get", err)
	}
	return &doc, nil
}

// Insert stores a new document at version 1.
func (s *SQLite) Insert(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO documents (bucket, key, data, version) VALUES (?, ?, ?, 1)`,
		bucket, key, data)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return apperr.ErrAlreadyExists
		}
		return apperr.Storage("sqlite insert", err)
	}
	return nil
}

// Replace overwrites the document under a version check. The UPDATE matches
// on the stored version, so the swap is atomic within SQLite.
func (s *SQLite) Replace(ctx context.Context, bucket, key string, data []byte, version int64) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE documents SET data = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE bucket = ? AND key = ? AND version = ?`,
		data, bucket, key, version)
	if err != nil {
		return apperr.Storage("sqlite replace", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("sqlite replace", err)
	}
	if n == 0 {
		// Distinguish a lost race from a vanished document.
		if _, err := s.Get(ctx, bucket, key); errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrConflict
	}
	return nil
}

// Delete removes the document under key.
func (s *SQLite) Delete(ctx context.Context, bucket, key string) error {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM documents WHERE bucket = ? AND key = ?`, bucket, key)
	if err != nil {
		return apperr.Storage("sqlite delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("sqlite delete", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Verify *SQLite satisfies Store at compile time.
var _ Store = (*SQLite)(nil)
