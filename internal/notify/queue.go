package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/hylla/lagerkoll/internal/domain"
)

// Default fill values for underspecified notifications.
const (
	DefaultKind     = domain.NotificationInfo
	DefaultDuration = 5 * time.Second
)

// Clock returns the current time.
type Clock func() time.Time

// TimerHandle cancels one pending scheduled expiry. Stop reports whether the
// timer was still pending.
type TimerHandle interface {
	Stop() bool
}

// Scheduler registers a function to run after a delay and returns its
// cancellation handle. Tests substitute a fake to simulate time; the TUI
// passes nil and drives expiry through its own tick messages.
type Scheduler func(d time.Duration, fn func()) TimerHandle

// AfterFuncScheduler schedules on real timers.
func AfterFuncScheduler(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}

// entry pairs a queued notification with its expiry handle.
type entry struct {
	notification domain.Notification
	handle       TimerHandle
}

// Queue owns the ordered list of pending notifications. IDs start at 1 and
// are never reused. The mutex only matters in headless mode, where real
// AfterFunc expiries fire off the event loop.
type Queue struct {
	mu     sync.Mutex
	clock  Clock
	sched  Scheduler
	nextID int
	items  []entry
}

// NewQueue constructs a queue. A nil clock falls back to time.Now; a nil
// scheduler disables automatic expiry.
func NewQueue(clock Clock, sched Scheduler) *Queue {
	if clock == nil {
		clock = time.Now
	}
	return &Queue{
		clock:  clock,
		sched:  sched,
		nextID: 1,
	}
}

// Enqueue assigns the next id, fills defaults, stamps the clock, appends, and
// registers the scheduled expiry when a scheduler is configured.
func (q *Queue) Enqueue(spec domain.NotificationSpec) domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := domain.Notification{
		ID:           q.nextID,
		Message:      spec.Message,
		Kind:         spec.Kind,
		Duration:     spec.Duration,
		Timestamp:    q.clock(),
		Severity:     spec.Severity,
		CurrentCount: spec.CurrentCount,
		Threshold:    spec.Threshold,
	}
	if n.Kind == "" {
		n.Kind = DefaultKind
	}
	if n.Duration <= 0 {
		n.Duration = DefaultDuration
	}
	q.nextID++

	e := entry{notification: n}
	if q.sched != nil {
		id := n.ID
		e.handle = q.sched(n.Duration, func() { q.Dismiss(id) })
	}
	q.items = append(q.items, e)
	return n
}

// Dismiss removes the entry with the given id and cancels its pending expiry.
// Unknown ids are a silent no-op: the entry may already have expired.
func (q *Queue) Dismiss(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for idx, e := range q.items {
		if e.notification.ID != id {
			continue
		}
		if e.handle != nil {
			e.handle.Stop()
		}
		q.items = slices.Delete(q.items, idx, idx+1)
		return
	}
}

// DismissNewest removes the most recently queued entry, if any.
func (q *Queue) DismissNewest() {
	q.mu.Lock()
	var id int
	if len(q.items) > 0 {
		id = q.items[len(q.items)-1].notification.ID
	}
	q.mu.Unlock()
	if id != 0 {
		q.Dismiss(id)
	}
}

// DismissAll clears the queue and cancels every pending expiry.
func (q *Queue) DismissAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.items {
		if e.handle != nil {
			e.handle.Stop()
		}
	}
	q.items = nil
}

// Notifications returns the pending entries in queue order.
func (q *Queue) Notifications() []domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.Notification, 0, len(q.items))
	for _, e := range q.items {
		out = append(out, e.notification)
	}
	return out
}

// Len reports the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
