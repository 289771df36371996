package narration

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"ohms_lab/internal/logger"

	"github.com/zoobzio/clockz"
)

// Result reports what happened to an accepted narration.
type Result struct {
	Clip Clip `json:"clip"`
	// Failed is set when the narrator errored. The error itself is only logged.
	Failed bool `json:"failed"`
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateClock sets the clock used to hold the gate during playback.
func WithGateClock(c clockz.Clock) GateOption {
	return func(g *Gate) { g.clock = c }
}

// WithGateLogger sets the logger used for swallowed narrator failures.
func WithGateLogger(l *logger.Logger) GateOption {
	return func(g *Gate) { g.log = l }
}

// Gate lets one narration through at a time. While busy, further requests
// fail fast with ErrBusy and never reach the narrator.
type Gate struct {
	narrator Narrator
	clock    clockz.Clock
	log      *logger.Logger

	busy atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewGate wraps a narrator.
func NewGate(n Narrator, opts ...GateOption) *Gate {
	g := &Gate{
		narrator: n,
		clock:    clockz.RealClock,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Busy reports whether a narration is in flight or still playing.
func (g *Gate) Busy() bool {
	return g.busy.Load()
}

// Narrate speaks text unless another narration is running. The flag is cleared
// when the narrator returns, success or failure; a clip with a playback duration
// keeps the gate closed until that duration has passed.
func (g *Gate) Narrate(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyText
	}
	if !g.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}

	clip, err := g.narrator.Speak(ctx, text)
	if err != nil {
		if g.log != nil {
			g.log.Warnw("narration_failed", "err", err, "text_len", len(text))
		}
		g.busy.Store(false)
		return Result{Clip: Clip{Text: text}, Failed: true}, nil
	}
	if clip.Text == "" {
		clip.Text = text
	}

	if clip.Duration <= 0 {
		g.busy.Store(false)
		return Result{Clip: clip}, nil
	}

	timer := g.clock.NewTimer(clip.Duration)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		select {
		case <-timer.C():
		case <-g.stop:
			timer.Stop()
		}
		g.busy.Store(false)
	}()
	return Result{Clip: clip}, nil
}

// Close releases any playback hold and waits for it.
func (g *Gate) Close() {
	g.stopOnce.Do(func() { close(g.stop) })
	g.wg.Wait()
}
