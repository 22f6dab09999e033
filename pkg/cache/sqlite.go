package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLitePersister keeps snapshots as rows of a single SQLite table, which
// suits CI runners that cache one database file between builds.
type SQLitePersister struct {
	db   *sql.DB
	path string
}

// NewSQLitePersister opens (and if needed creates) the database at path.
func NewSQLitePersister(path string) (*SQLitePersister, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS cache_snapshots (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLitePersister{db: db, path: path}, nil
}

// Path returns the database file.
func (p *SQLitePersister) Path() string { return p.path }

// Load reads the snapshot row for name.
func (p *SQLitePersister) Load(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM cache_snapshots WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save replaces the snapshot row for name.
func (p *SQLitePersister) Save(ctx context.Context, name string, data []byte) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_snapshots (name, data, updated_at) VALUES (?, ?, ?)`,
		name, data, time.Now().UTC())
	return err
}

// Remove deletes the snapshot row for name.
func (p *SQLitePersister) Remove(ctx context.Context, name string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM cache_snapshots WHERE name = ?`, name)
	return err
}

// Close closes the database.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

var _ Persister = (*SQLitePersister)(nil)
