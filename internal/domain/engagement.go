package domain

import "time"

// ─── Reading-Time Estimates ─────────────────────────────────────────────────

// Estimate holds expected reading durations for a document at three
// reference reading speeds. Higher wpm means a shorter duration, so
// Fast < Average < Minimum for any word count.
type Estimate struct {
	Minimum time.Duration `json:"minimum"` // slow reader (~150 wpm)
	Average time.Duration `json:"average"` // average reader (~200 wpm)
	Fast    time.Duration `json:"fast"`    // fast reader (~300 wpm)
}

// ─── Engagement Verdicts ────────────────────────────────────────────────────

// EngagementLevel grades a reading session.
type EngagementLevel string

const (
	EngagementInsufficient EngagementLevel = "insufficient"
	EngagementQuick        EngagementLevel = "quick"
	EngagementGood         EngagementLevel = "good"
	EngagementExcellent    EngagementLevel = "excellent"
)

// Verdict is the classifier's judgment of one document visit.
// Engaged is false only when the time spent fell below the plausible
// minimum; all other outcomes grant completion credit.
type Verdict struct {
	Engaged bool            `json:"engaged"`
	Ratio   float64         `json:"ratio"` // timeSpent / average estimate
	Level   EngagementLevel `json:"level"`
	Message string          `json:"message"`
}

// ─── Streak Types ───────────────────────────────────────────────────────────

// Streak tracks consecutive calendar days with at least one document read.
type Streak struct {
	CurrentDays int       `json:"current_days"`
	LongestDays int       `json:"longest_days"`
	LastDate    time.Time `json:"last_date"`
}
