// Package notify carries the session manager's process-wide signals to
// UI collaborators (toasts, route guards).
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification names emitted by the session manager.
const (
	TokenExpired   = "token-expired"
	SessionExpired = "session-expired"
	UserLoggedOut  = "user-logged-out"
)

// Event is one emitted signal with a small reason payload.
type Event struct {
	ID     uuid.UUID
	Name   string
	Reason string
	At     time.Time
}

// Notifier publishes events to whoever is listening.
type Notifier interface {
	Publish(event Event)
}

var _ Notifier = (*Bus)(nil)

// Bus is an in-process fan-out Notifier. Handlers run synchronously on
// the publishing goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]func(Event)
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers a handler and returns its removal function.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(event)
	}
}
