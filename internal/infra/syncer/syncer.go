// Package syncer pushes local reading progress to the account-bound
// remote store. The remote is opaque: the engine only requires merge
// semantics from it, and every failure here is transient by definition —
// local state stays authoritative and the push is retried with backoff.
package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lectern-app/lectern/internal/app/progress"
	"github.com/lectern-app/lectern/internal/domain"
	"github.com/lectern-app/lectern/internal/infra/metrics"
)

// Config controls the sync cadence and retry backoff.
type Config struct {
	Interval  time.Duration // how often Flush is attempted
	BaseDelay time.Duration // initial backoff after a failure (doubles)
	MaxDelay  time.Duration // cap on backoff delay
}

// DefaultConfig returns production sync defaults.
func DefaultConfig() Config {
	return Config{
		Interval:  30 * time.Second,
		BaseDelay: 5 * time.Second,
		MaxDelay:  5 * time.Minute,
	}
}

// Syncer watches the progress store's revision counter and pushes a full
// snapshot whenever local changes exist. Push failures back off
// exponentially; they are never surfaced to the reading flow.
type Syncer struct {
	mu     sync.Mutex
	cfg    Config
	remote domain.RemoteStore
	store  *progress.Adapter

	pushedRev int64
	attempt   int
	nextTry   time.Time
	now       func() time.Time
}

// New creates a syncer over the given remote.
func New(cfg Config, remote domain.RemoteStore, store *progress.Adapter) *Syncer {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultConfig().BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig().MaxDelay
	}
	return &Syncer{cfg: cfg, remote: remote, store: store, now: time.Now}
}

// SetNow overrides the syncer's clock source. Tests only.
func (s *Syncer) SetNow(now func() time.Time) { s.now = now }

// Flush pushes the current snapshot when local changes exist and the
// backoff window has passed. Returns true when a push succeeded.
func (s *Syncer) Flush(ctx context.Context) bool {
	s.mu.Lock()
	rev := s.store.Revision()
	if rev == s.pushedRev || s.now().Before(s.nextTry) {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	snap := s.store.Snapshot()
	docs := make([]domain.DocumentProgress, 0, len(snap.Documents))
	for _, doc := range snap.Documents {
		docs = append(docs, doc)
	}

	err := s.remote.Push(ctx, docs, snap.Stats)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.attempt++
		delay := backoff(s.cfg.BaseDelay, s.cfg.MaxDelay, s.attempt)
		s.nextTry = s.now().Add(delay)
		metrics.SyncFailures.Inc()
		log.Printf("[syncer] push failed (attempt %d, retry in %s): %v", s.attempt, delay, err)
		return false
	}

	s.pushedRev = rev
	s.attempt = 0
	s.nextTry = time.Time{}
	metrics.SyncPushes.Inc()
	metrics.SyncBacklog.Set(0)
	return true
}

// Backlog reports whether local changes await a successful push.
func (s *Syncer) Backlog() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Revision() != s.pushedRev
}

// Run flushes on the configured interval until the context is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Backlog() {
				metrics.SyncBacklog.Set(1)
			}
			s.Flush(ctx)
		}
	}
}

// backoff computes baseDelay * 2^(attempt-1), capped at maxDelay.
func backoff(base, max time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay > max {
			return max
		}
	}
	return delay
}
