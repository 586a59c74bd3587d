package progress

import (
	"errors"
	"testing"
	"time"

	"github.com/lectern-app/lectern/internal/domain"
)

// fakePersister is an in-memory domain.ProgressPersister whose writes
// can be made to fail on demand.
type fakePersister struct {
	docs    map[string]domain.DocumentProgress
	stats   domain.Stats
	failing bool

	upserts int
	resets  int
}

func newFakePersister() *fakePersister {
	return &fakePersister{docs: make(map[string]domain.DocumentProgress)}
}

func (f *fakePersister) UpsertDocument(p domain.DocumentProgress) error {
	if f.failing {
		return errors.New("disk full")
	}
	f.upserts++
	f.docs[p.Slug] = p
	return nil
}

func (f *fakePersister) SaveStats(s domain.Stats) error {
	if f.failing {
		return errors.New("disk full")
	}
	f.stats = s
	return nil
}

func (f *fakePersister) LoadSnapshot() (domain.ProgressSnapshot, error) {
	if f.failing {
		return domain.ProgressSnapshot{}, errors.New("disk full")
	}
	docs := make(map[string]domain.DocumentProgress, len(f.docs))
	for k, v := range f.docs {
		docs[k] = v
	}
	return domain.ProgressSnapshot{Documents: docs, Stats: f.stats}, nil
}

func (f *fakePersister) Reset() error {
	f.resets++
	f.docs = make(map[string]domain.DocumentProgress)
	f.stats = domain.Stats{}
	return nil
}

func TestAdapterHydratesFromPersister(t *testing.T) {
	p := newFakePersister()
	p.docs["guides/intro"] = domain.DocumentProgress{
		Slug: "guides/intro", Category: "guides", ScrollPercent: 40,
		TimeSpent: 90 * time.Second,
	}
	p.stats = domain.Stats{TotalTimeSpent: 90 * time.Second}

	a := New(p)

	doc, ok := a.Get("guides/intro")
	if !ok || doc.ScrollPercent != 40 {
		t.Errorf("hydrated doc = %+v, ok=%v", doc, ok)
	}
	if a.Snapshot().Stats.TotalTimeSpent != 90*time.Second {
		t.Error("stats not hydrated")
	}
}

func TestAdapterStartsEmptyOnLoadFailure(t *testing.T) {
	p := newFakePersister()
	p.failing = true

	a := New(p)
	if n := len(a.Snapshot().Documents); n != 0 {
		t.Errorf("store has %d documents, want 0", n)
	}

	// And keeps working once the persister recovers
	p.failing = false
	a.MergeTimeSpent("guides/intro", time.Second)
	if _, ok := a.Get("guides/intro"); !ok {
		t.Error("merge after failed load should work")
	}
}

func TestMergeTimeSpentAccumulates(t *testing.T) {
	a := New(newFakePersister())

	a.MergeTimeSpent("guides/intro", 5*time.Second)
	a.MergeTimeSpent("guides/intro", 3*time.Second)
	a.MergeTimeSpent("guides/intro", 0) // Non-positive deltas are dropped
	a.MergeTimeSpent("guides/intro", -time.Second)

	doc, _ := a.Get("guides/intro")
	if doc.TimeSpent != 8*time.Second {
		t.Errorf("TimeSpent = %v, want %v", doc.TimeSpent, 8*time.Second)
	}
	if got := a.Snapshot().Stats.TotalTimeSpent; got != 8*time.Second {
		t.Errorf("TotalTimeSpent = %v, want %v", got, 8*time.Second)
	}
}

func TestMergeScrollAndCompletionIdempotent(t *testing.T) {
	a := New(newFakePersister())

	a.MergeScrollAndCompletion("guides/intro", 95, true)
	doc, _ := a.Get("guides/intro")
	completedAt := doc.CompletedAt
	if !doc.Completed || completedAt.IsZero() {
		t.Fatalf("doc = %+v, want completed with timestamp", doc)
	}

	// Repeating the merge changes nothing, including the timestamp
	a.MergeScrollAndCompletion("guides/intro", 95, true)
	doc, _ = a.Get("guides/intro")
	if !doc.CompletedAt.Equal(completedAt) {
		t.Error("repeated merge must not rewrite CompletedAt")
	}

	// Scroll never regresses and completion is never revoked
	a.MergeScrollAndCompletion("guides/intro", 50, false)
	doc, _ = a.Get("guides/intro")
	if doc.ScrollPercent != 95 || !doc.Completed {
		t.Errorf("doc = %+v, want scroll 95 and still completed", doc)
	}
}

func TestAdapterCounters(t *testing.T) {
	a := New(newFakePersister())

	a.RegisterDocument("guides/a")
	a.RegisterDocument("guides/b")
	a.RegisterDocument("reference/c")
	a.MergeScrollAndCompletion("guides/a", 100, true)
	a.MergeScrollAndCompletion("reference/c", 100, true)

	completed, ratios := a.Counters()
	if completed != 2 {
		t.Errorf("docsCompleted = %d, want 2", completed)
	}
	if ratios["guides"] != 0.5 {
		t.Errorf("guides ratio = %v, want 0.5", ratios["guides"])
	}
	if ratios["reference"] != 1.0 {
		t.Errorf("reference ratio = %v, want 1.0", ratios["reference"])
	}
}

func TestAdapterRetriesDirtyRecords(t *testing.T) {
	p := newFakePersister()
	a := New(p)

	p.failing = true
	a.MergeTimeSpent("guides/intro", 5*time.Second)

	// Write failed: in-memory state is authoritative, record marked dirty
	doc, _ := a.Get("guides/intro")
	if doc.TimeSpent != 5*time.Second {
		t.Errorf("in-memory TimeSpent = %v, want %v", doc.TimeSpent, 5*time.Second)
	}
	if a.DirtyCount() == 0 {
		t.Fatal("failed write should leave dirty records")
	}

	// Retry still failing: stays dirty
	a.FlushDirty()
	if a.DirtyCount() == 0 {
		t.Fatal("records should stay dirty while the persister fails")
	}

	p.failing = false
	a.FlushDirty()
	if a.DirtyCount() != 0 {
		t.Errorf("DirtyCount = %d after recovery, want 0", a.DirtyCount())
	}
	if got := p.docs["guides/intro"].TimeSpent; got != 5*time.Second {
		t.Errorf("persisted TimeSpent = %v, want %v", got, 5*time.Second)
	}
}

func TestAdapterRevisionAdvances(t *testing.T) {
	a := New(newFakePersister())

	r0 := a.Revision()
	a.MergeTimeSpent("guides/intro", time.Second)
	r1 := a.Revision()
	if r1 <= r0 {
		t.Errorf("revision %d after merge, want > %d", r1, r0)
	}

	// A no-op merge leaves the revision alone
	a.MergeScrollAndCompletion("guides/intro", 0, false)
	if a.Revision() != r1 {
		t.Error("no-op merge must not advance the revision")
	}
}

func TestAdapterReset(t *testing.T) {
	p := newFakePersister()
	a := New(p)

	a.MergeTimeSpent("guides/intro", time.Minute)
	a.MergeScrollAndCompletion("guides/intro", 100, true)

	if err := a.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if n := len(a.Snapshot().Documents); n != 0 {
		t.Errorf("store has %d documents after reset, want 0", n)
	}
	if p.resets != 1 {
		t.Errorf("persister resets = %d, want 1", p.resets)
	}
}
