package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/hkominsky/bullseye-client/clock/fakeclock"
	"github.com/hkominsky/bullseye-client/lifecycle"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	clk       *fakeclock.Clock
	sched     *lifecycle.Scheduler
	refreshes atomic.Int64
	timeouts  atomic.Int64
}

func newFixture(t *testing.T, opts ...lifecycle.Option) *fixture {
	t.Helper()
	f := &fixture{clk: fakeclock.New(testStart)}
	f.sched = lifecycle.New(f.clk, lifecycle.Callbacks{
		OnRefreshDue: func() { f.refreshes.Add(1) },
		OnInactivity: func() { f.timeouts.Add(1) },
	}, opts...)
	return f
}

func TestScheduler_RefreshFiresAheadOfExpiry(t *testing.T) {
	f := newFixture(t)
	armed := f.sched.ScheduleRefresh(testStart.Add(30 * time.Minute))
	require.True(t, armed)

	f.clk.Advance(25*time.Minute - time.Second)
	require.EqualValues(t, 0, f.refreshes.Load())

	f.clk.Advance(2 * time.Second)
	require.EqualValues(t, 1, f.refreshes.Load())

	// One-shot: no further fires without re-arming.
	f.clk.Advance(time.Hour)
	require.EqualValues(t, 1, f.refreshes.Load())
}

func TestScheduler_RefreshAlreadyDue(t *testing.T) {
	f := newFixture(t)

	// Inside the threshold window: nothing is armed, the caller is
	// expected to refresh eagerly.
	armed := f.sched.ScheduleRefresh(testStart.Add(4 * time.Minute))
	require.False(t, armed)
	require.Equal(t, 0, f.clk.PendingTimers())

	f.clk.Advance(time.Hour)
	require.EqualValues(t, 0, f.refreshes.Load())
}

func TestScheduler_CustomThreshold(t *testing.T) {
	f := newFixture(t, lifecycle.WithRefreshThreshold(time.Minute))
	require.Equal(t, time.Minute, f.sched.RefreshThreshold())

	require.True(t, f.sched.ScheduleRefresh(testStart.Add(10*time.Minute)))
	f.clk.Advance(9 * time.Minute)
	require.EqualValues(t, 1, f.refreshes.Load())
}

func TestScheduler_ReArmReplaces(t *testing.T) {
	f := newFixture(t)
	f.sched.ScheduleInactivityTimeout(time.Minute)
	f.sched.ScheduleInactivityTimeout(2 * time.Minute)

	f.clk.Advance(time.Minute)
	require.EqualValues(t, 0, f.timeouts.Load())

	f.clk.Advance(time.Minute)
	require.EqualValues(t, 1, f.timeouts.Load())
}

func TestScheduler_InactivityFires(t *testing.T) {
	f := newFixture(t)
	f.sched.ScheduleInactivityTimeout(time.Minute)

	f.clk.Advance(59 * time.Second)
	require.EqualValues(t, 0, f.timeouts.Load())

	f.clk.Advance(time.Second)
	require.EqualValues(t, 1, f.timeouts.Load())
}

func TestScheduler_CancelAllIdempotent(t *testing.T) {
	f := newFixture(t)
	f.sched.ScheduleRefresh(testStart.Add(30 * time.Minute))
	f.sched.ScheduleInactivityTimeout(time.Minute)

	f.sched.CancelAll()
	f.sched.CancelAll()

	f.clk.Advance(time.Hour)
	require.EqualValues(t, 0, f.refreshes.Load())
	require.EqualValues(t, 0, f.timeouts.Load())
	require.Equal(t, 0, f.clk.PendingTimers())
}
