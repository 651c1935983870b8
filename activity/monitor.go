// Package activity observes user-interaction signals and feeds them to
// the session manager, so inactivity timeouts track real usage.
package activity

import "sync"

// Kind identifies one class of user-interaction signal.
type Kind string

// The interaction signals the monitor watches. Sources deliver these at
// the document level during the capture phase (or its equivalent), so
// activity inside nested UI still counts.
const (
	KindPointerDown Kind = "pointerdown"
	KindPointerMove Kind = "pointermove"
	KindKeyDown     Kind = "keydown"
	KindScroll      Kind = "scroll"
	KindTouchStart  Kind = "touchstart"
)

// Kinds lists every signal kind the monitor subscribes to.
func Kinds() []Kind {
	return []Kind{KindPointerDown, KindPointerMove, KindKeyDown, KindScroll, KindTouchStart}
}

// Source delivers interaction signals. Subscribe returns the function
// that removes the subscription; implementations must not deliver to a
// removed subscriber.
type Source interface {
	Subscribe(kind Kind, fn func()) (unsubscribe func())
}

// Monitor subscribes to every interaction kind on Start and forwards
// each signal to onActivity. Close removes every subscription; leaking
// them across the page lifetime is a bug.
type Monitor struct {
	source     Source
	onActivity func()

	mu     sync.Mutex
	unsubs []func()
}

// NewMonitor wires a source to an activity callback. The callback is
// typically the session manager's RecordActivity.
func NewMonitor(source Source, onActivity func()) *Monitor {
	return &Monitor{source: source, onActivity: onActivity}
}

// Start subscribes to all interaction kinds. Calling Start on a started
// monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.unsubs) > 0 {
		return
	}
	for _, kind := range Kinds() {
		m.unsubs = append(m.unsubs, m.source.Subscribe(kind, m.onActivity))
	}
}

// Close removes all subscriptions. Idempotent.
func (m *Monitor) Close() {
	m.mu.Lock()
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}
