package graph

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteBackend keeps each durable record line as one row of a SQLite table.
// Every Write replaces all rows inside a single transaction.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens (creating if needed) the database at path and runs
// the schema migration.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("graph: create data dir: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("graph: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("graph: pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			seq  INTEGER PRIMARY KEY,
			line TEXT    NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("graph: migration: %w", err)
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Location implements Backend.
func (b *SQLiteBackend) Location() string { return "sqlite://" + b.path }

// Read implements Backend. An empty table is reported as fs.ErrNotExist so
// the store treats it like a first run.
func (b *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT line FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("graph: select records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var buf bytes.Buffer
	n := 0
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("graph: scan record: %w", err)
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("graph: iterate records: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("graph: %s has no records: %w", b.path, fs.ErrNotExist)
	}
	return buf.Bytes(), nil
}

// Write implements Backend.
func (b *SQLiteBackend) Write(ctx context.Context, data []byte) (retErr error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("graph: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("graph: clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (seq, line) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("graph: prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	seq := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		seq++
		if _, err := stmt.ExecContext(ctx, seq, line); err != nil {
			return fmt.Errorf("graph: insert record %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("graph: commit: %w", err)
	}
	return nil
}
