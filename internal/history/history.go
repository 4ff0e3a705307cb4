// SPDX-License-Identifier: MPL-2.0

// Package history persists executed commands to a SQLite database under
// .dev/ so past runs can be listed and re-run.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"devkit-cli/internal/config"
)

// DBName is the history database file inside the .dev directory.
const DBName = "history.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	command     TEXT NOT NULL,
	package     TEXT NOT NULL DEFAULT '',
	variant     TEXT NOT NULL DEFAULT '',
	exit_code   INTEGER NOT NULL,
	started_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at DESC);
`

// Entry is one recorded run.
type Entry struct {
	ID        int64
	Command   string
	Package   string
	Variant   string
	ExitCode  int
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the run exited zero.
func (e Entry) Succeeded() bool { return e.ExitCode == 0 }

// Store is the history database. Safe for use from one process; the
// executor records entries after each run completes.
type Store struct {
	db *sql.DB
}

// Open ensures .dev/ exists under root, opens the database, and creates
// the schema when missing.
func Open(root string) (*Store, error) {
	dir := filepath.Join(root, config.ConfigDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, DBName))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record appends one run.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (command, package, variant, exit_code, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Command, entry.Package, entry.Variant, entry.ExitCode,
		entry.StartedAt.UnixMilli(), entry.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the latest n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, package, variant, exit_code, started_at, duration_ms
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedAt, durationMS int64
		if err := rows.Scan(&e.ID, &e.Command, &e.Package, &e.Variant,
			&e.ExitCode, &startedAt, &durationMS); err != nil {
			return nil, err
		}
		e.StartedAt = time.UnixMilli(startedAt)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
