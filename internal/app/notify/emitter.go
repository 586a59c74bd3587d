// Package notify implements the notification emitter: a typed in-process
// publish/subscribe registry that fans reading events out to whatever UI
// is listening. The engine never renders anything; it only emits data.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lectern-app/lectern/internal/domain"
	"github.com/lectern-app/lectern/internal/infra/metrics"
)

// Default auto-dismiss timeouts per notification kind. The challenge
// timeout is longer because the message carries a call to action.
const (
	DefaultCompletionTimeout  = 6 * time.Second
	DefaultChallengeTimeout   = 10 * time.Second
	DefaultAchievementTimeout = 5 * time.Second
)

// Handler receives published notifications for one kind.
type Handler func(domain.Notification)

// DismissHandler receives the id of a dismissed notification, whether the
// dismissal was manual or by timeout.
type DismissHandler func(id string)

// Emitter is the pub/sub registry. Subscribers per topic are ordered by
// subscription; publishing with no subscribers is a no-op and never
// queues. Every published notification gets its own auto-dismiss timer,
// keyed by the notification's unique id, so a manual dismissal cancels
// exactly its own timer and a stale timer can never fire against a newer
// instance.
type Emitter struct {
	mu        sync.Mutex
	nextToken int
	subs      map[domain.NotificationKind][]subscription
	dismiss   []subscription
	timeouts  map[domain.NotificationKind]time.Duration
	pending   map[string]*time.Timer // notification id → auto-dismiss timer
}

type subscription struct {
	token   int
	handler Handler
	onDrop  DismissHandler
}

// Timeouts configures the per-kind auto-dismiss durations.
type Timeouts struct {
	Completion  time.Duration
	Challenge   time.Duration
	Achievement time.Duration
}

// DefaultTimeouts returns the standard auto-dismiss durations.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Completion:  DefaultCompletionTimeout,
		Challenge:   DefaultChallengeTimeout,
		Achievement: DefaultAchievementTimeout,
	}
}

// NewEmitter creates an emitter with the given timeouts.
func NewEmitter(t Timeouts) *Emitter {
	if t.Completion <= 0 {
		t.Completion = DefaultCompletionTimeout
	}
	if t.Challenge <= 0 {
		t.Challenge = DefaultChallengeTimeout
	}
	if t.Achievement <= 0 {
		t.Achievement = DefaultAchievementTimeout
	}
	return &Emitter{
		subs: make(map[domain.NotificationKind][]subscription),
		timeouts: map[domain.NotificationKind]time.Duration{
			domain.NotifyCompletion:  t.Completion,
			domain.NotifyChallenge:   t.Challenge,
			domain.NotifyAchievement: t.Achievement,
		},
		pending: make(map[string]*time.Timer),
	}
}

// Subscribe registers a handler for one notification kind. The returned
// function unsubscribes; calling it more than once is harmless.
func (e *Emitter) Subscribe(kind domain.NotificationKind, h Handler) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextToken++
	token := e.nextToken
	e.subs[kind] = append(e.subs[kind], subscription{token: token, handler: h})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.subs[kind] = removeToken(e.subs[kind], token)
	}
}

// SubscribeDismiss registers a handler for dismissal events.
func (e *Emitter) SubscribeDismiss(h DismissHandler) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextToken++
	token := e.nextToken
	e.dismiss = append(e.dismiss, subscription{token: token, onDrop: h})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.dismiss = removeToken(e.dismiss, token)
	}
}

// Publish creates a notification of the given kind, delivers it to the
// kind's subscribers in subscription order, and arms its auto-dismiss
// timer. Returns the notification so callers can reference its id.
func (e *Emitter) Publish(kind domain.NotificationKind, title, body string) domain.Notification {
	e.mu.Lock()

	n := domain.Notification{
		ID:           uuid.NewString(),
		Kind:         kind,
		Title:        title,
		Body:         body,
		CreatedAt:    time.Now(),
		DismissAfter: e.timeouts[kind],
	}

	handlers := make([]Handler, 0, len(e.subs[kind]))
	for _, s := range e.subs[kind] {
		handlers = append(handlers, s.handler)
	}

	id := n.ID
	e.pending[id] = time.AfterFunc(n.DismissAfter, func() {
		e.expire(id)
	})

	e.mu.Unlock()

	metrics.NotificationsEmitted.WithLabelValues(string(kind)).Inc()
	for _, h := range handlers {
		h(n)
	}
	return n
}

// Dismiss cancels a notification's pending auto-dismiss timer and fires
// the dismissal fan-out. Returns false when the id is unknown or already
// dismissed, which callers treat as a no-op, not an error.
func (e *Emitter) Dismiss(id string) bool {
	e.mu.Lock()
	timer, ok := e.pending[id]
	if ok {
		timer.Stop()
		delete(e.pending, id)
	}
	e.mu.Unlock()

	if !ok {
		return false
	}
	e.fanOutDismiss(id)
	return true
}

// PendingCount reports how many notifications still await dismissal.
func (e *Emitter) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// expire handles an auto-dismiss timer firing. The timer may have lost a
// race with a manual Dismiss; the pending map settles it.
func (e *Emitter) expire(id string) {
	e.mu.Lock()
	_, ok := e.pending[id]
	if ok {
		delete(e.pending, id)
	}
	e.mu.Unlock()

	if ok {
		e.fanOutDismiss(id)
	}
}

func (e *Emitter) fanOutDismiss(id string) {
	e.mu.Lock()
	handlers := make([]DismissHandler, 0, len(e.dismiss))
	for _, s := range e.dismiss {
		handlers = append(handlers, s.onDrop)
	}
	e.mu.Unlock()

	for _, h := range handlers {
		h(id)
	}
}

func removeToken(subs []subscription, token int) []subscription {
	i := sort.Search(len(subs), func(i int) bool { return subs[i].token >= token })
	if i < len(subs) && subs[i].token == token {
		return append(subs[:i:i], subs[i+1:]...)
	}
	return subs
}
