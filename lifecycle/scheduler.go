// Package lifecycle owns the two session timers: the silent-refresh
// timer armed ahead of token expiry and the inactivity timeout armed
// for non-remembered sessions.
package lifecycle

import (
	"sync"
	"time"

	"github.com/hkominsky/bullseye-client/clock"
)

const (
	// DefaultRefreshThreshold is how far ahead of token expiry the
	// silent refresh fires.
	DefaultRefreshThreshold = 5 * time.Minute

	// DefaultInactivityTimeout ends a non-remembered session after this
	// long without user interaction.
	DefaultInactivityTimeout = 30 * time.Minute
)

// Callbacks are invoked when a timer fires. OnRefreshDue runs the
// silent-refresh path; OnInactivity tears the session down.
type Callbacks struct {
	OnRefreshDue func()
	OnInactivity func()
}

// Scheduler owns at most one live timer handle per kind. Re-arming
// always cancels the prior handle first, so timers replace rather than
// stack.
type Scheduler struct {
	clk       clock.Clock
	cb        Callbacks
	threshold time.Duration

	mu            sync.Mutex
	refresh       clock.Timer
	refreshGen    uint64
	inactivity    clock.Timer
	inactivityGen uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRefreshThreshold overrides the refresh lead time.
func WithRefreshThreshold(d time.Duration) Option {
	return func(s *Scheduler) {
		s.threshold = d
	}
}

func New(clk clock.Clock, cb Callbacks, opts ...Option) *Scheduler {
	s := &Scheduler{
		clk:       clk,
		cb:        cb,
		threshold: DefaultRefreshThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshThreshold returns the configured refresh lead time.
func (s *Scheduler) RefreshThreshold() time.Duration {
	return s.threshold
}

// ScheduleRefresh arms the refresh timer to fire threshold ahead of
// expiry, replacing any armed refresh timer. Returns false without
// arming when the refresh is already due; the caller should refresh
// eagerly instead of waiting on a timer.
func (s *Scheduler) ScheduleRefresh(expiry time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopRefreshLocked()
	delay := expiry.Sub(s.clk.Now()) - s.threshold
	if delay <= 0 {
		return false
	}
	s.refreshGen++
	gen := s.refreshGen
	s.refresh = s.clk.AfterFunc(delay, func() { s.fireRefresh(gen) })
	return true
}

// ScheduleInactivityTimeout (re)arms the inactivity timer. Only ever
// armed for non-remembered sessions; the facade enforces that rule.
func (s *Scheduler) ScheduleInactivityTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopInactivityLocked()
	s.inactivityGen++
	gen := s.inactivityGen
	s.inactivity = s.clk.AfterFunc(d, func() { s.fireInactivity(gen) })
}

// CancelAll disarms both timers. Idempotent and safe to call at any
// point, including while a fired handler's work is still pending.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopRefreshLocked()
	s.stopInactivityLocked()
}

// The fire handlers clear the tracked handle only when it still belongs
// to their own generation. A re-arm can race a system timer that has
// already fired but not yet taken the lock; clearing unconditionally
// would drop the replacement handle and leave it uncancellable.
func (s *Scheduler) fireRefresh(gen uint64) {
	s.mu.Lock()
	if gen == s.refreshGen {
		s.refresh = nil
	}
	s.mu.Unlock()
	if s.cb.OnRefreshDue != nil {
		s.cb.OnRefreshDue()
	}
}

func (s *Scheduler) fireInactivity(gen uint64) {
	s.mu.Lock()
	if gen == s.inactivityGen {
		s.inactivity = nil
	}
	s.mu.Unlock()
	if s.cb.OnInactivity != nil {
		s.cb.OnInactivity()
	}
}

func (s *Scheduler) stopRefreshLocked() {
	if s.refresh != nil {
		s.refresh.Stop()
		s.refresh = nil
	}
}

func (s *Scheduler) stopInactivityLocked() {
	if s.inactivity != nil {
		s.inactivity.Stop()
		s.inactivity = nil
	}
}
