// Package progress implements the progress store adapter: the sole
// mutation path into the shared reading-progress store. Merges apply to
// the in-memory store first, which stays authoritative for the session;
// persistence failures only mark records dirty for a later retry and are
// never surfaced to the reading flow.
package progress

import (
	"log"
	"sync"
	"time"

	"github.com/lectern-app/lectern/internal/domain"
	"github.com/lectern-app/lectern/internal/infra/metrics"
)

// Adapter merges per-document progress into the shared store.
// A single mutex serializes all writes, so a time flush and a completion
// write can never race into a lost update. Readers get copies and must
// tolerate the store changing between reads.
type Adapter struct {
	mu    sync.Mutex
	docs  map[string]domain.DocumentProgress
	stats domain.Stats

	dirty      map[string]bool
	statsDirty bool
	revision   int64

	persister domain.ProgressPersister
	now       func() time.Time
}

// New creates an adapter over the given persister, hydrating the
// in-memory store from whatever was previously persisted. A load failure
// starts the store empty rather than failing: persistence is best-effort
// in both directions.
func New(p domain.ProgressPersister) *Adapter {
	a := &Adapter{
		docs:      make(map[string]domain.DocumentProgress),
		dirty:     make(map[string]bool),
		persister: p,
		now:       time.Now,
	}

	snap, err := p.LoadSnapshot()
	if err != nil {
		log.Printf("[progress] load snapshot: %v (starting empty)", err)
		return a
	}
	for slug, doc := range snap.Documents {
		a.docs[slug] = doc
	}
	a.stats = snap.Stats
	return a
}

// SetNow overrides the adapter's clock source. Tests only.
func (a *Adapter) SetNow(now func() time.Time) { a.now = now }

// RegisterDocument records that a document exists, so category totals
// include documents that were visited but never completed. Re-registering
// a known document changes nothing.
func (a *Adapter) RegisterDocument(slug string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.docs[slug]; ok {
		return
	}
	a.docs[slug] = domain.DocumentProgress{
		Slug:     slug,
		Category: domain.CategoryOf(slug),
	}
	a.revision++
	a.persistDocLocked(slug)
}

// MergeTimeSpent adds an active-time delta to a document's cumulative
// total and to the aggregate stats, preserving all other fields.
func (a *Adapter) MergeTimeSpent(slug string, delta time.Duration) {
	if delta <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	doc := a.getOrCreateLocked(slug)
	doc.TimeSpent += delta
	doc.LastReadAt = a.now()
	a.docs[slug] = doc

	a.stats.TotalTimeSpent += delta
	a.revision++
	a.persistDocLocked(slug)
	a.persistStatsLocked()
}

// MergeScrollAndCompletion raises a document's scroll percentage and,
// when completed is true, performs the one-way completion transition.
// The merge is idempotent: repeating it with the same arguments yields
// the same stored record, with no duplicate CompletedAt and no double
// counting. Scroll never regresses, and completion is never revoked.
func (a *Adapter) MergeScrollAndCompletion(slug string, scrollPercent int, completed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc := a.getOrCreateLocked(slug)
	changed := false

	if scrollPercent > doc.ScrollPercent {
		doc.ScrollPercent = min(scrollPercent, 100)
		changed = true
	}
	if completed && !doc.Completed {
		doc.Completed = true
		doc.CompletedAt = a.now()
		changed = true
	}

	if !changed {
		return
	}
	a.docs[slug] = doc
	a.revision++
	a.persistDocLocked(slug)
}

// Revision returns a counter that increments on every store mutation.
// The remote syncer compares it against the last revision it pushed.
func (a *Adapter) Revision() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.revision
}

// Get returns a copy of one document's progress.
func (a *Adapter) Get(slug string) (domain.DocumentProgress, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	doc, ok := a.docs[slug]
	return doc, ok
}

// Snapshot returns a copy of the whole store for readers.
func (a *Adapter) Snapshot() domain.ProgressSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	docs := make(map[string]domain.DocumentProgress, len(a.docs))
	for slug, doc := range a.docs {
		docs[slug] = doc
	}
	return domain.ProgressSnapshot{Documents: docs, Stats: a.stats}
}

// Counters derives the aggregate inputs for the achievement evaluator:
// the completed-document count and the per-category completed/total
// ratio over all known documents.
func (a *Adapter) Counters() (docsCompleted int, categoryRatios map[string]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	done := make(map[string]int)
	total := make(map[string]int)
	for _, doc := range a.docs {
		total[doc.Category]++
		if doc.Completed {
			done[doc.Category]++
			docsCompleted++
		}
	}

	categoryRatios = make(map[string]float64, len(total))
	for cat, n := range total {
		categoryRatios[cat] = float64(done[cat]) / float64(n)
	}
	return docsCompleted, categoryRatios
}

// FlushDirty retries persistence for records whose earlier writes failed.
// Called from the periodic tick; remaining failures stay dirty.
func (a *Adapter) FlushDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for slug := range a.dirty {
		doc, ok := a.docs[slug]
		if !ok {
			delete(a.dirty, slug)
			continue
		}
		if err := a.persister.UpsertDocument(doc); err != nil {
			metrics.PersistFailures.Inc()
			continue
		}
		delete(a.dirty, slug)
	}
	if a.statsDirty {
		if err := a.persister.SaveStats(a.stats); err != nil {
			metrics.PersistFailures.Inc()
		} else {
			a.statsDirty = false
		}
	}
	metrics.DirtyRecords.Set(float64(len(a.dirty)))
}

// DirtyCount reports how many document records await a persistence retry.
func (a *Adapter) DirtyCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.dirty)
	if a.statsDirty {
		n++
	}
	return n
}

// Reset wipes all progress, in memory and persisted. This backs the
// explicit user reset action only; nothing in the engine calls it.
func (a *Adapter) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.docs = make(map[string]domain.DocumentProgress)
	a.dirty = make(map[string]bool)
	a.stats = domain.Stats{}
	a.statsDirty = false
	a.revision++

	return a.persister.Reset()
}

func (a *Adapter) getOrCreateLocked(slug string) domain.DocumentProgress {
	doc, ok := a.docs[slug]
	if !ok {
		doc = domain.DocumentProgress{
			Slug:     slug,
			Category: domain.CategoryOf(slug),
		}
	}
	return doc
}

// persistDocLocked writes one record through the persister, marking it
// dirty on failure instead of propagating the error.
func (a *Adapter) persistDocLocked(slug string) {
	if err := a.persister.UpsertDocument(a.docs[slug]); err != nil {
		log.Printf("[progress] persist %s: %v (will retry)", slug, err)
		metrics.PersistFailures.Inc()
		a.dirty[slug] = true
		metrics.DirtyRecords.Set(float64(len(a.dirty)))
		return
	}
	delete(a.dirty, slug)
}

func (a *Adapter) persistStatsLocked() {
	if err := a.persister.SaveStats(a.stats); err != nil {
		log.Printf("[progress] persist stats: %v (will retry)", err)
		metrics.PersistFailures.Inc()
		a.statsDirty = true
		return
	}
	a.statsDirty = false
}
