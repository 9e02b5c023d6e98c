// Package notify keeps the transient toast notifications shown by the
// storefront. Entries expire in the order they were pushed.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the visual category of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Notification is one toast.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Queue is a FIFO of notifications. Every entry is removed ttl after it was
// pushed, oldest first, regardless of kind.
type Queue struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries []Notification
	timers  map[string]*time.Timer
}

// NewQueue returns a queue expiring entries after ttl (DefaultTTL when zero).
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, now: time.Now, timers: make(map[string]*time.Timer)}
}

// Push appends a notification and schedules its expiry.
func (q *Queue) Push(kind Kind, message string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: q.now(),
	}
	q.mu.Lock()
	q.entries = append(q.entries, n)
	q.timers[n.ID] = time.AfterFunc(q.ttl, func() { q.Remove(n.ID) })
	q.mu.Unlock()
	return n
}

func (q *Queue) Success(message string) Notification { return q.Push(KindSuccess, message) }

func (q *Queue) Error(message string) Notification { return q.Push(KindError, message) }

func (q *Queue) Info(message string) Notification { return q.Push(KindInfo, message) }

// List returns the visible notifications, oldest first.
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.entries))
	copy(out, q.entries)
	return out
}

// Remove dismisses a notification early. Unknown IDs are ignored.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	for i, n := range q.entries {
		if n.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Close stops every pending expiry timer and empties the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.entries = nil
}
