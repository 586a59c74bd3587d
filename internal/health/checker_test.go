package health

import (
	"context"
	"testing"

	"github.com/lectern-app/lectern/internal/app/progress"
	"github.com/lectern-app/lectern/internal/infra/sqlite"
)

func TestCheckerReportsHealthy(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	c := NewChecker(db, progress.New(db))
	c.runAll(context.Background())

	if !c.Healthy() {
		t.Errorf("Healthy() = false, statuses: %+v", c.Statuses())
	}

	statuses := c.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy || s.Error != "" {
			t.Errorf("check %s unhealthy: %s", s.Name, s.Error)
		}
		if s.CheckedAt.IsZero() {
			t.Errorf("check %s has no timestamp", s.Name)
		}
	}
}

func TestCheckerDetectsClosedDatabase(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := progress.New(db)
	db.Close()

	c := NewChecker(db, store)
	c.runAll(context.Background())

	if c.Healthy() {
		t.Error("Healthy() = true with a closed database")
	}
}

func TestCheckerNoStatusesBeforeFirstRun(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	c := NewChecker(db, progress.New(db))
	if len(c.Statuses()) != 0 {
		t.Error("statuses should be empty before the first run")
	}
	// Vacuously healthy until the first run completes
	if !c.Healthy() {
		t.Error("Healthy() should default to true before the first run")
	}
}
