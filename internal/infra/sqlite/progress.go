package sqlite

import (
	"database/sql"
	"log"
	"time"

	"github.com/lectern-app/lectern/internal/domain"
)

// ─── Document Progress ──────────────────────────────────────────────────────
// DB implements domain.ProgressPersister.

// UpsertDocument inserts or updates a document's progress record.
// The write is idempotent: replaying the same record leaves the row unchanged.
func (d *DB) UpsertDocument(p domain.DocumentProgress) error {
	_, err := d.db.Exec(
		`INSERT INTO documents (slug, category, scroll_percent, completed, completed_at, time_spent_ms, last_read_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			category=excluded.category,
			scroll_percent=excluded.scroll_percent,
			completed=excluded.completed,
			completed_at=excluded.completed_at,
			time_spent_ms=excluded.time_spent_ms,
			last_read_at=excluded.last_read_at`,
		p.Slug, p.Category, p.ScrollPercent, p.Completed,
		nullableUnix(p.CompletedAt), p.TimeSpent.Milliseconds(), nullableUnix(p.LastReadAt),
	)
	return err
}

// GetDocument retrieves a single document's progress by slug.
// Returns domain.ErrDocumentNotFound when the slug was never tracked.
func (d *DB) GetDocument(slug string) (*domain.DocumentProgress, error) {
	row := d.db.QueryRow(
		`SELECT slug, category, scroll_percent, completed, completed_at, time_spent_ms, last_read_at
		 FROM documents WHERE slug = ?`, slug,
	)
	p, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrDocumentNotFound
	}
	return p, nil
}

// SaveStats writes the aggregate counters.
func (d *DB) SaveStats(s domain.Stats) error {
	_, err := d.db.Exec(
		`INSERT INTO stats (id, total_time_spent_ms) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET total_time_spent_ms=excluded.total_time_spent_ms`,
		s.TotalTimeSpent.Milliseconds(),
	)
	return err
}

// LoadSnapshot reads the full persisted store. A malformed row affects
// only its own document: it is logged and skipped, never propagated.
func (d *DB) LoadSnapshot() (domain.ProgressSnapshot, error) {
	snap := domain.ProgressSnapshot{Documents: make(map[string]domain.DocumentProgress)}

	rows, err := d.db.Query(
		`SELECT slug, category, scroll_percent, completed, completed_at, time_spent_ms, last_read_at
		 FROM documents`,
	)
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanDocument(rows)
		if err != nil {
			log.Printf("[sqlite] skipping malformed progress row: %v", err)
			continue
		}
		if p != nil {
			snap.Documents[p.Slug] = *p
		}
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	var totalMs int64
	err = d.db.QueryRow(`SELECT total_time_spent_ms FROM stats WHERE id = 1`).Scan(&totalMs)
	if err != nil && err != sql.ErrNoRows {
		return snap, err
	}
	snap.Stats.TotalTimeSpent = time.Duration(totalMs) * time.Millisecond

	return snap, nil
}

// Reset deletes all persisted progress, achievements, engagement state,
// and notifications. Backs the explicit user reset action.
func (d *DB) Reset() error {
	for _, stmt := range []string{
		`DELETE FROM documents`,
		`DELETE FROM stats`,
		`DELETE FROM engagement`,
		`DELETE FROM achievements`,
		`DELETE FROM notifications`,
	} {
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ─── Scanners ───────────────────────────────────────────────────────────────

func scanDocument(s scanner) (*domain.DocumentProgress, error) {
	var p domain.DocumentProgress
	var completedAt, lastReadAt sql.NullInt64
	var timeSpentMs int64

	err := s.Scan(&p.Slug, &p.Category, &p.ScrollPercent, &p.Completed,
		&completedAt, &timeSpentMs, &lastReadAt)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}

	p.TimeSpent = time.Duration(timeSpentMs) * time.Millisecond
	if completedAt.Valid {
		p.CompletedAt = time.Unix(completedAt.Int64, 0)
	}
	if lastReadAt.Valid {
		p.LastReadAt = time.Unix(lastReadAt.Int64, 0)
	}
	return &p, nil
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
