// Package metrics provides Prometheus metrics for Lectern — counters and
// gauges for sessions, completion credit, persistence, sync, and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Reading Sessions ───────────────────────────────────────────────────────

// SessionsStarted counts document sessions created on route changes.
var SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lectern",
	Name:      "sessions_started_total",
	Help:      "Total document reading sessions started.",
})

// TimeTracked accumulates flushed active reading time in seconds.
var TimeTracked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lectern",
	Name:      "active_time_seconds_total",
	Help:      "Total active reading time flushed to the progress store.",
})

// ─── Engagement ─────────────────────────────────────────────────────────────

// DocsCompleted counts documents credited as complete.
var DocsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lectern",
	Name:      "documents_completed_total",
	Help:      "Total documents granted completion credit.",
})

// ChallengesIssued counts visits that reached the end without enough
// active time to be judged engaged.
var ChallengesIssued = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lectern",
	Name:      "challenges_issued_total",
	Help:      "Total visits that reached the end but failed the engagement check.",
})

// AchievementsUnlocked counts achievement unlocks.
var AchievementsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lectern",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
})

// NotificationsEmitted counts published notifications by kind.
var NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lectern",
	Name:      "notifications_emitted_total",
	Help:      "Total notifications published, by kind.",
}, []string{"kind"})

// ─── Persistence ────────────────────────────────────────────────────────────

// PersistFailures counts failed local persistence writes. These are
// non-fatal; the record stays dirty and is retried on the next tick.
var PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lectern",
	Name:      "persist_failures_total",
	Help:      "Total failed local persistence writes (retried later).",
})

// DirtyRecords tracks progress records awaiting a persistence retry.
var DirtyRecords = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lectern",
	Name:      "dirty_records",
	Help:      "Progress records whose last persistence write failed.",
})

// ─── Remote Sync ────────────────────────────────────────────────────────────

// SyncPushes counts successful remote sync pushes.
var SyncPushes = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lectern",
	Name:      "sync_pushes_total",
	Help:      "Total successful pushes to the remote progress store.",
})

// SyncFailures counts failed remote sync attempts.
var SyncFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lectern",
	Name:      "sync_failures_total",
	Help:      "Total failed pushes to the remote progress store.",
})

// SyncBacklog tracks documents queued for remote sync.
var SyncBacklog = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lectern",
	Name:      "sync_backlog",
	Help:      "Documents with local changes not yet pushed to the remote store.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "lectern",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
