package shortcircuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

type recorder struct {
	mu  sync.Mutex
	got []Transition
}

func (r *recorder) observe(t Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, t)
}

func (r *recorder) all() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Transition(nil), r.got...)
}

func newTestMachine(t *testing.T) (*Machine, *clockz.FakeClock, *recorder) {
	t.Helper()
	clock := clockz.NewFakeClock()
	rec := &recorder{}
	m := New(WithClock(clock), WithObserver(rec.observe))
	t.Cleanup(m.Close)
	return m, clock, rec
}

func advance(clock *clockz.FakeClock, d time.Duration) {
	clock.Advance(d)
	clock.BlockUntilReady()
}

func TestMachine_StartsNormal(t *testing.T) {
	m, _, _ := newTestMachine(t)
	assert.Equal(t, Normal, m.Status())
	assert.Zero(t, m.BlowsIn())
}

func TestMachine_TriggerShortsImmediatelyAndBlowsAfterDelay(t *testing.T) {
	m, clock, rec := newTestMachine(t)

	require.NoError(t, m.Trigger())
	assert.Equal(t, Shorted, m.Status())
	assert.Equal(t, BlowDelay, m.BlowsIn())

	advance(clock, BlowDelay-time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Shorted, m.Status(), "fuse must not blow before the delay")
	assert.Equal(t, time.Millisecond, m.BlowsIn())

	advance(clock, time.Millisecond)
	require.Eventually(t, func() bool { return m.Status() == Blown }, time.Second, 5*time.Millisecond)
	assert.Zero(t, m.BlowsIn())

	got := rec.all()
	require.Len(t, got, 2)
	assert.Equal(t, Transition{From: Normal, To: Shorted, At: got[0].At}, got[0])
	assert.Equal(t, Shorted, got[1].From)
	assert.Equal(t, Blown, got[1].To)
	assert.True(t, got[1].Timer)
}

func TestMachine_TriggerRejectedOutsideNormal(t *testing.T) {
	m, clock, _ := newTestMachine(t)

	require.NoError(t, m.Trigger())
	assert.ErrorIs(t, m.Trigger(), ErrInvalidTransition)
	assert.Equal(t, Shorted, m.Status())

	advance(clock, BlowDelay)
	require.Eventually(t, func() bool { return m.Status() == Blown }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, m.Trigger(), ErrInvalidTransition)
	assert.Equal(t, Blown, m.Status())
}

func TestMachine_ResetOnlyFromBlown(t *testing.T) {
	m, clock, rec := newTestMachine(t)

	assert.ErrorIs(t, m.Reset(), ErrInvalidTransition)
	assert.Equal(t, Normal, m.Status())

	require.NoError(t, m.Trigger())
	assert.ErrorIs(t, m.Reset(), ErrInvalidTransition)
	assert.Equal(t, Shorted, m.Status())

	advance(clock, BlowDelay)
	require.Eventually(t, func() bool { return m.Status() == Blown }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Reset())
	assert.Equal(t, Normal, m.Status())

	// A second reset is rejected and leaves the machine at Normal.
	assert.ErrorIs(t, m.Reset(), ErrInvalidTransition)
	assert.Equal(t, Normal, m.Status())

	assert.Len(t, rec.all(), 3)
}

func TestMachine_FullCycleTwice(t *testing.T) {
	m, clock, _ := newTestMachine(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, m.Trigger())
		advance(clock, BlowDelay)
		require.Eventually(t, func() bool { return m.Status() == Blown }, time.Second, 5*time.Millisecond)
		require.NoError(t, m.Reset())
	}
	assert.Equal(t, Normal, m.Status())
}

func TestMachine_StaleTimerDoesNotBlowNewCycle(t *testing.T) {
	m, clock, rec := newTestMachine(t)

	require.NoError(t, m.Trigger())
	m.mu.Lock()
	firstEpoch := m.epoch
	m.mu.Unlock()

	advance(clock, BlowDelay)
	require.Eventually(t, func() bool { return m.Status() == Blown }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Reset())
	require.NoError(t, m.Trigger())

	// A late callback from the first cycle arrives while the second is shorted.
	m.blow(firstEpoch)
	assert.Equal(t, Shorted, m.Status())

	// And one arriving after a reset to Normal does nothing either.
	before := len(rec.all())
	advance(clock, BlowDelay)
	require.Eventually(t, func() bool { return m.Status() == Blown }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Reset())
	m.blow(firstEpoch)
	assert.Equal(t, Normal, m.Status())
	assert.Len(t, rec.all(), before+2)
}

func TestMachine_CloseStopsPendingTimer(t *testing.T) {
	clock := clockz.NewFakeClock()
	m := New(WithClock(clock))

	require.NoError(t, m.Trigger())
	m.Close()

	advance(clock, 2*BlowDelay)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Shorted, m.Status())
}

func TestVisualFor(t *testing.T) {
	normal := VisualFor(Normal)
	assert.True(t, normal.CanTrigger)
	assert.False(t, normal.CanReset)
	assert.Equal(t, 1.0, normal.FlowSeconds)
	assert.Equal(t, FuseIntact, normal.FuseColor)

	shorted := VisualFor(Shorted)
	assert.False(t, shorted.CanTrigger)
	assert.False(t, shorted.CanReset)
	assert.Equal(t, 0.1, shorted.FlowSeconds)
	assert.True(t, shorted.ShortingWire)

	blown := VisualFor(Blown)
	assert.False(t, blown.FlowVisible)
	assert.True(t, blown.FuseDashed)
	assert.True(t, blown.CanReset)
	assert.Equal(t, FuseBroken, blown.FuseColor)
}
