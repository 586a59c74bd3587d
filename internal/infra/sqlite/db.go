// Package sqlite provides SQLite-based persistent storage for Lectern.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/progress.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "progress.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Per-document reading progress
		`CREATE TABLE IF NOT EXISTS documents (
			slug           TEXT PRIMARY KEY,
			category       TEXT NOT NULL DEFAULT '',
			scroll_percent INTEGER NOT NULL DEFAULT 0,
			completed      BOOLEAN NOT NULL DEFAULT 0,
			completed_at   INTEGER,
			time_spent_ms  INTEGER NOT NULL DEFAULT 0,
			last_read_at   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_completed ON documents(completed)`,

		// Aggregate counters (single row)
		`CREATE TABLE IF NOT EXISTS stats (
			id                 INTEGER PRIMARY KEY CHECK (id = 1),
			total_time_spent_ms INTEGER NOT NULL DEFAULT 0
		)`,

		// Key-value store for engagement state (streak data, points)
		`CREATE TABLE IF NOT EXISTS engagement (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Unlocked achievements
		`CREATE TABLE IF NOT EXISTS achievements (
			id          TEXT PRIMARY KEY,
			unlocked_at INTEGER NOT NULL
		)`,

		// Notification log: the UI polls undismissed entries
		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			dismissed  BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notif_created ON notifications(created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
