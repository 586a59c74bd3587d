package tracker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lectern-app/lectern/internal/app/engagement"
	"github.com/lectern-app/lectern/internal/app/notify"
	"github.com/lectern-app/lectern/internal/app/progress"
	"github.com/lectern-app/lectern/internal/domain"
	"github.com/lectern-app/lectern/internal/infra/metrics"
)

const (
	// DefaultTickInterval is how often accumulated active time is
	// flushed into the progress store.
	DefaultTickInterval = 5 * time.Second
	// DefaultMinFlush suppresses noise writes: deltas below this are
	// retained in the clock instead of being persisted.
	DefaultMinFlush = time.Second
)

// Config tunes the tracker's flush cadence and engagement policy.
type Config struct {
	Policy            Policy
	CompletionPercent int
	TickInterval      time.Duration
	MinFlush          time.Duration
}

// DefaultConfig returns the standard time-gated tracker configuration.
func DefaultConfig() Config {
	return Config{
		Policy:            DefaultPolicy(),
		CompletionPercent: DefaultCompletionPercent,
		TickInterval:      DefaultTickInterval,
		MinFlush:          DefaultMinFlush,
	}
}

// Tracker orchestrates one tab's reading sessions. It owns at most one
// active Session at a time, reacts to navigation, scroll and visibility
// events, and drives completion credit, streaks, achievements and
// notifications off the engagement verdict.
//
// All event entry points serialize on one mutex: concurrency here is
// about interleaved callbacks, not parallel readers.
type Tracker struct {
	mu  sync.Mutex
	cfg Config

	store        *progress.Adapter
	streaks      *engagement.StreakService
	achievements *engagement.AchievementService
	emitter      *notify.Emitter

	session *Session
	now     func() time.Time
}

// New wires a tracker to its collaborators.
func New(cfg Config, store *progress.Adapter, streaks *engagement.StreakService,
	achievements *engagement.AchievementService, emitter *notify.Emitter) *Tracker {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.MinFlush <= 0 {
		cfg.MinFlush = DefaultMinFlush
	}
	if cfg.CompletionPercent <= 0 || cfg.CompletionPercent > 100 {
		cfg.CompletionPercent = DefaultCompletionPercent
	}
	return &Tracker{
		cfg:          cfg,
		store:        store,
		streaks:      streaks,
		achievements: achievements,
		emitter:      emitter,
		now:          time.Now,
	}
}

// SetNow overrides the tracker's clock source. Tests only.
func (t *Tracker) SetNow(now func() time.Time) { t.now = now }

// Visit handles a route change into a document. Any in-flight session is
// flushed and destroyed first, so a re-init mid-visit (including a no-op
// change to the same slug) never corrupts accumulated time. The visit is
// registered in the progress store so category totals count it.
func (t *Tracker) Visit(slug string, wordCount int, visible bool) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.session != nil {
		t.teardownLocked(now)
	}

	t.session = newSession(slug, wordCount, now, visible, t.cfg.CompletionPercent)
	t.store.RegisterDocument(slug)
	metrics.SessionsStarted.Inc()
	return t.session
}

// Scroll handles one raw scroll sample for the current document,
// rate-limited upstream to once per animation frame.
func (t *Tracker) Scroll(scrollTop, documentHeight, viewportHeight float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	if s == nil {
		return
	}

	percent := ComputePercent(scrollTop, documentHeight, viewportHeight)
	progressed, reachedEnd := s.scroll.Observe(percent)

	if progressed && !reachedEnd {
		t.store.MergeScrollAndCompletion(s.Slug, s.scroll.Highest(), false)
	}
	if reachedEnd && !s.judged {
		t.judgeLocked(s)
	}
}

// Visibility handles a tab-visibility or window-focus transition.
func (t *Tracker) Visibility(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return
	}
	if active {
		t.session.clock.OnBecameActive(t.now())
	} else {
		t.session.clock.OnBecameInactive(t.now())
	}
}

// Tick flushes accumulated active time into the progress store and
// retries any writes the store could not persist earlier.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s := t.session; s != nil {
		if delta := s.clock.Take(t.now(), t.cfg.MinFlush); delta > 0 {
			t.store.MergeTimeSpent(s.Slug, delta)
			metrics.TimeTracked.Add(delta.Seconds())
		}
	}
	t.store.FlushDirty()
}

// Leave handles navigation away from the current document: the session's
// remaining time is flushed synchronously, then the session is destroyed.
func (t *Tracker) Leave() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil {
		t.teardownLocked(t.now())
	}
}

// Current returns the active session, or nil between documents.
func (t *Tracker) Current() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Run drives the periodic tick until the context is cancelled. The
// ticker stops deterministically on cancellation; pending notification
// auto-dismiss timers are independent of this lifecycle.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Leave()
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

// teardownLocked flushes the tail of a session and destroys it.
func (t *Tracker) teardownLocked(now time.Time) {
	s := t.session
	if delta := s.clock.Take(now, t.cfg.MinFlush); delta > 0 {
		t.store.MergeTimeSpent(s.Slug, delta)
		metrics.TimeTracked.Add(delta.Seconds())
	}
	t.session = nil
}

// judgeLocked runs the engagement check for a session. It is invoked at
// most once per visit, on the first reached-end transition, and always
// observes the most recently flushed time: the clock is drained with no
// minimum threshold before classification.
func (t *Tracker) judgeLocked(s *Session) {
	s.judged = true
	now := t.now()

	if delta := s.clock.Take(now, 0); delta > 0 {
		t.store.MergeTimeSpent(s.Slug, delta)
		metrics.TimeTracked.Add(delta.Seconds())
	}

	total := time.Duration(0)
	if doc, ok := t.store.Get(s.Slug); ok {
		total = doc.TimeSpent
	}

	verdict := t.cfg.Policy.Classify(total, s.WordCount)
	t.store.MergeScrollAndCompletion(s.Slug, s.scroll.Highest(), verdict.Engaged)

	if !verdict.Engaged {
		metrics.ChallengesIssued.Inc()
		t.emitter.Publish(domain.NotifyChallenge, "Not so fast", verdict.Message)
		return
	}

	metrics.DocsCompleted.Inc()
	t.emitter.Publish(domain.NotifyCompletion, "Document completed", verdict.Message)

	if err := t.streaks.RecordReadingDay(now); err != nil {
		log.Printf("[tracker] record streak: %v", err)
	}
	t.unlockAchievementsLocked(now)
}

// unlockAchievementsLocked re-runs the achievement evaluator against the
// updated counters and publishes one notification per new unlock.
func (t *Tracker) unlockAchievementsLocked(now time.Time) {
	streak, err := t.streaks.CurrentStreak()
	if err != nil {
		log.Printf("[tracker] load streak: %v", err)
	}

	completed, ratios := t.store.Counters()
	newly, err := t.achievements.CheckAndUnlock(engagement.Counters{
		DocsCompleted:  completed,
		CategoryRatios: ratios,
		StreakDays:     streak.CurrentDays,
		Now:            now,
	})
	if err != nil {
		log.Printf("[tracker] achievements: %v", err)
		return
	}

	for _, a := range newly {
		metrics.AchievementsUnlocked.Inc()
		t.emitter.Publish(domain.NotifyAchievement, "Achievement unlocked: "+a.Name, a.Description)
	}
}
