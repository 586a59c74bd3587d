// Package domain defines the core types of the Lectern reading engine.
// Reading progress drives user engagement through completion credit,
// streaks, achievements, and notifications.
// Design rule: completion credit is earned by time on page, never by
// scroll position alone.
package domain

import (
	"strings"
	"time"
)

// DocumentProgress is the persisted reading state for one document,
// keyed by the slug derived from the document's route.
type DocumentProgress struct {
	Slug          string        `json:"slug"`
	Category      string        `json:"category"`
	ScrollPercent int           `json:"scroll_percent"` // 0–100, never regresses
	Completed     bool          `json:"completed"`      // one-way transition
	CompletedAt   time.Time     `json:"completed_at,omitzero"`
	TimeSpent     time.Duration `json:"time_spent_ms"` // cumulative active time
	LastReadAt    time.Time     `json:"last_read_at"`
}

// Stats aggregates counters across all documents.
type Stats struct {
	TotalTimeSpent time.Duration `json:"total_time_spent_ms"`
}

// ProgressSnapshot is a point-in-time copy of the full progress store.
// Readers must treat it as immutable.
type ProgressSnapshot struct {
	Documents map[string]DocumentProgress `json:"documents"`
	Stats     Stats                       `json:"stats"`
}

// CategoryOf derives a document's category from its slug:
// the first path segment ("guides/getting-started" → "guides").
// Top-level documents fall into the "general" category.
func CategoryOf(slug string) string {
	slug = strings.Trim(slug, "/")
	if i := strings.IndexByte(slug, '/'); i > 0 {
		return slug[:i]
	}
	return "general"
}
