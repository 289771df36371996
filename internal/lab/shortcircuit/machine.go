// Package shortcircuit sequences the short-circuit demonstration:
// normal -> shorted -> (fuse blows after a fixed delay) -> blown -> reset -> normal.
package shortcircuit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// BlowDelay is how long the circuit stays shorted before the fuse blows.
const BlowDelay = 1500 * time.Millisecond

// Status is one of the three demonstration states.
type Status string

const (
	Normal  Status = "normal"
	Shorted Status = "shorted"
	Blown   Status = "blown"
)

// ErrInvalidTransition is returned for Trigger outside Normal and Reset outside Blown.
var ErrInvalidTransition = errors.New("invalid short-circuit transition")

// Transition describes one state change, including the timer-driven one.
type Transition struct {
	From Status
	To   Status
	At   time.Time
	// Timer is true when the change came from the blow timer rather than a user action.
	Timer bool
}

// Observer is notified after every transition, outside the machine lock.
type Observer func(Transition)

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces the wall clock, mainly for clockz.FakeClock in tests.
func WithClock(c clockz.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithObserver registers a transition observer.
func WithObserver(o Observer) Option {
	return func(m *Machine) { m.observer = o }
}

// Machine is safe for concurrent use.
type Machine struct {
	mu        sync.Mutex
	status    Status
	epoch     uint64
	shortedAt time.Time

	clock    clockz.Clock
	observer Observer

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New returns a machine in the Normal state.
func New(opts ...Option) *Machine {
	m := &Machine{
		status: Normal,
		clock:  clockz.RealClock,
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Status returns the current state.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// BlowsIn reports the time left until the fuse blows, or zero when not shorted.
func (m *Machine) BlowsIn() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != Shorted {
		return 0
	}
	left := BlowDelay - m.clock.Since(m.shortedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Trigger shorts the circuit and schedules the fuse to blow after BlowDelay.
func (m *Machine) Trigger() error {
	m.mu.Lock()
	if m.status != Normal {
		st := m.status
		m.mu.Unlock()
		return fmt.Errorf("%w: trigger from %s", ErrInvalidTransition, st)
	}
	m.epoch++
	epoch := m.epoch
	m.status = Shorted
	m.shortedAt = m.clock.Now()
	timer := m.clock.NewTimer(BlowDelay)
	at := m.shortedAt
	m.mu.Unlock()

	m.wg.Add(1)
	go m.awaitBlow(timer, epoch)

	m.notify(Transition{From: Normal, To: Shorted, At: at})
	return nil
}

// Reset replaces the fuse. Any timer still pending from an earlier cycle becomes stale.
func (m *Machine) Reset() error {
	m.mu.Lock()
	if m.status != Blown {
		st := m.status
		m.mu.Unlock()
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, st)
	}
	m.epoch++
	m.status = Normal
	m.shortedAt = time.Time{}
	at := m.clock.Now()
	m.mu.Unlock()

	m.notify(Transition{From: Blown, To: Normal, At: at})
	return nil
}

// Close stops pending timers and waits for their goroutines. The state is left as is.
func (m *Machine) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.wg.Wait()
}

func (m *Machine) awaitBlow(timer clockz.Timer, epoch uint64) {
	defer m.wg.Done()
	select {
	case <-timer.C():
		m.blow(epoch)
	case <-m.stop:
		timer.Stop()
	}
}

// blow moves Shorted to Blown only if the cycle that scheduled it is still current.
func (m *Machine) blow(epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch || m.status != Shorted {
		m.mu.Unlock()
		return
	}
	m.status = Blown
	at := m.clock.Now()
	m.mu.Unlock()

	m.notify(Transition{From: Shorted, To: Blown, At: at, Timer: true})
}

func (m *Machine) notify(t Transition) {
	if m.observer != nil {
		m.observer(t)
	}
}
