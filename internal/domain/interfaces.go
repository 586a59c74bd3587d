package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// ProgressPersister abstracts the local backing store for reading progress.
// Implementations must be idempotent upserts: writing the same record twice
// yields the same stored state. Failures are non-fatal to callers — the
// in-memory store stays authoritative and the write is retried later.
type ProgressPersister interface {
	// UpsertDocument writes one document's progress record.
	UpsertDocument(p DocumentProgress) error

	// SaveStats writes the aggregate counters.
	SaveStats(s Stats) error

	// LoadSnapshot reads the full persisted store. Malformed rows are
	// skipped, affecting only the corrupt document.
	LoadSnapshot() (ProgressSnapshot, error)

	// Reset deletes every persisted progress record. Backs the explicit
	// user reset action only.
	Reset() error
}

// RemoteStore abstracts the account-bound progress backend. The engine only
// requires merge semantics from it and treats push failures as transient.
type RemoteStore interface {
	Push(ctx context.Context, docs []DocumentProgress, stats Stats) error
}
