package sqlite

import (
	"database/sql"
	"time"

	"github.com/lectern-app/lectern/internal/domain"
)

// ─── Engagement Key-Value ───────────────────────────────────────────────────

// SetEngagement stores an engagement key-value pair.
func (d *DB) SetEngagement(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO engagement (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetEngagement retrieves an engagement value by key.
// Returns "" if key not found.
func (d *DB) GetEngagement(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM engagement WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ─── Achievements ───────────────────────────────────────────────────────────

// UnlockAchievement records an achievement as unlocked.
// Returns false if already unlocked (idempotent).
func (d *DB) UnlockAchievement(id string, at time.Time) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO achievements (id, unlocked_at) VALUES (?, ?)`,
		id, at.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly unlocked
}

// IsAchievementUnlocked checks whether an achievement has been unlocked.
func (d *DB) IsAchievementUnlocked(id string) (bool, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM achievements WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUnlockedAchievements returns all unlocked achievements.
func (d *DB) ListUnlockedAchievements() ([]domain.UnlockedAchievement, error) {
	rows, err := d.db.Query(
		`SELECT id, unlocked_at FROM achievements ORDER BY unlocked_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []domain.UnlockedAchievement
	for rows.Next() {
		var a domain.UnlockedAchievement
		var unlockedAt int64
		if err := rows.Scan(&a.ID, &unlockedAt); err != nil {
			return nil, err
		}
		a.UnlockedAt = time.Unix(unlockedAt, 0)
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// UnlockedAchievementCount returns the total number of unlocked achievements.
func (d *DB) UnlockedAchievementCount() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM achievements`).Scan(&count)
	return count, err
}

// ─── Notification Log ───────────────────────────────────────────────────────
// The emitter is in-process and transient; this log exists so a polling
// UI can fetch toasts it has not yet shown and so dismissals survive the
// round trip.

// InsertNotification records an emitted notification.
func (d *DB) InsertNotification(n domain.Notification) error {
	_, err := d.db.Exec(
		`INSERT INTO notifications (id, kind, title, body, created_at, dismissed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Kind), n.Title, n.Body, n.CreatedAt.Unix(), n.Dismissed,
	)
	return err
}

// ListActiveNotifications returns undismissed notifications, newest first.
func (d *DB) ListActiveNotifications(limit int) ([]domain.Notification, error) {
	rows, err := d.db.Query(
		`SELECT id, kind, title, body, created_at, dismissed
		 FROM notifications WHERE dismissed = 0 ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Body, &createdAt, &n.Dismissed); err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(createdAt, 0)
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationDismissed marks a notification as dismissed.
func (d *DB) MarkNotificationDismissed(id string) error {
	result, err := d.db.Exec(
		`UPDATE notifications SET dismissed = 1 WHERE id = ? AND dismissed = 0`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
