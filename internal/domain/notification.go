package domain

import "time"

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationKind keys the pub/sub topics of the notification emitter.
type NotificationKind string

const (
	NotifyCompletion  NotificationKind = "completion"
	NotifyChallenge   NotificationKind = "challenge"
	NotifyAchievement NotificationKind = "achievement-unlocked"
)

// Notification is a transient user-facing message. Each instance carries
// its own auto-dismiss timeout; the challenge timeout is longer because
// the message carries a call to action.
type Notification struct {
	ID           string           `json:"id"` // unique per instance
	Kind         NotificationKind `json:"kind"`
	Title        string           `json:"title"`
	Body         string           `json:"body"`
	CreatedAt    time.Time        `json:"created_at"`
	DismissAfter time.Duration    `json:"dismiss_after_ms"`
	Dismissed    bool             `json:"dismissed"`
}
