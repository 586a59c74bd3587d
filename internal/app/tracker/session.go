package tracker

import (
	"time"

	"github.com/google/uuid"
)

// Session is the ephemeral per-visit state for one document. It is
// created when navigation enters a document route and destroyed when
// navigation leaves it; its final active-time delta is flushed to the
// progress store before destruction. Nothing here is persisted.
type Session struct {
	ID        string
	Slug      string
	StartedAt time.Time
	WordCount int

	clock  *Clock
	scroll *ScrollMonitor

	// judged guards the engagement check: the classifier runs exactly
	// once per visit, the first time scroll crosses the threshold.
	judged bool
}

// newSession creates visit-scoped state for a document.
func newSession(slug string, wordCount int, now time.Time, visible bool, completionPercent int) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Slug:      slug,
		StartedAt: now,
		WordCount: NormalizeWordCount(wordCount),
		clock:     NewClock(now, visible),
		scroll:    NewScrollMonitor(completionPercent),
	}
}
