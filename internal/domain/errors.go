package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
// No error in the engine is fatal to the reading flow: the worst case is
// a visit not being credited as complete.

var (
	// Progress errors
	ErrDocumentNotFound = errors.New("document not found")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Sync errors
	ErrSyncDisabled    = errors.New("remote sync is not configured")
	ErrSyncUnavailable = errors.New("remote progress store is unreachable")
)
