// Package lab ties one learner's circuit, short-circuit demonstration, quiz and
// narration together into a session.
package lab

import (
	"context"
	"sync"
	"time"

	"ohms_lab/internal/lab/circuit"
	"ohms_lab/internal/lab/narration"
	"ohms_lab/internal/lab/quiz"
	"ohms_lab/internal/lab/shortcircuit"
	"ohms_lab/internal/logger"
	"ohms_lab/internal/models"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Config is what a new session is built from.
type Config struct {
	ID       string
	Quiz     []quiz.Item
	Narrator narration.Narrator
	Clock    clockz.Clock
	Log      *logger.Logger
	// OnShortCircuit sees every short-circuit transition, including the timer-driven one.
	OnShortCircuit func(sessionID string, t shortcircuit.Transition)
}

// Session is one learner's lab. Methods are safe for concurrent use.
type Session struct {
	id    string
	clock clockz.Clock

	mu       sync.Mutex
	section  Section
	circuit  *circuit.Model
	board    *quiz.Board
	lastSeen time.Time

	machine *shortcircuit.Machine
	gate    *narration.Gate
}

// NewSession opens a session on the Theory section with default slider values.
func NewSession(ctx context.Context, cfg Config) *Session {
	clock := cfg.Clock
	if clock == nil {
		clock = clockz.RealClock
	}
	narrator := cfg.Narrator
	if narrator == nil {
		narrator = narration.Silent{}
	}

	s := &Session{
		id:       cfg.ID,
		clock:    clock,
		section:  Theory,
		circuit:  circuit.NewModel(),
		board:    quiz.NewBoard(cfg.Quiz),
		lastSeen: clock.Now(),
	}
	s.machine = shortcircuit.New(
		shortcircuit.WithClock(clock),
		shortcircuit.WithObserver(func(t shortcircuit.Transition) {
			capitan.Emit(context.Background(), ShortCircuitTransition,
				KeySession.Field(s.id),
				KeyFrom.Field(string(t.From)),
				KeyTo.Field(string(t.To)),
			)
			if cfg.OnShortCircuit != nil {
				cfg.OnShortCircuit(s.id, t)
			}
		}),
	)
	s.gate = narration.NewGate(narrator,
		narration.WithGateClock(clock),
		narration.WithGateLogger(cfg.Log),
	)

	capitan.Emit(ctx, SessionOpened, KeySession.Field(s.id))
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Section returns the active section.
func (s *Session) Section() Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.section
}

// SelectSection switches the visible section and returns the previous one.
// It has no effect on the circuit or the demonstration.
func (s *Session) SelectSection(ctx context.Context, sec Section) (Section, error) {
	if _, err := ParseSection(string(sec)); err != nil {
		return "", err
	}
	s.mu.Lock()
	prev := s.section
	s.section = sec
	s.touchLocked()
	s.mu.Unlock()

	capitan.Emit(ctx, SectionChanged,
		KeySession.Field(s.id),
		KeyFrom.Field(string(prev)),
		KeyTo.Field(string(sec)),
	)
	return prev, nil
}

// Circuit returns the current circuit state.
func (s *Session) Circuit() circuit.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.circuit.State()
}

// SetCircuit moves both sliders at once; invalid values leave the circuit unchanged.
func (s *Session) SetCircuit(ctx context.Context, voltage, resistance float64) (circuit.State, error) {
	s.mu.Lock()
	if err := s.circuit.Set(voltage, resistance); err != nil {
		s.mu.Unlock()
		return circuit.State{}, err
	}
	st := s.circuit.State()
	s.touchLocked()
	s.mu.Unlock()

	capitan.Emit(ctx, CircuitChanged, KeySession.Field(s.id))
	return st, nil
}

// TriggerShort starts the short-circuit demonstration.
func (s *Session) TriggerShort() error {
	s.touch()
	return s.machine.Trigger()
}

// ResetShort replaces the blown fuse.
func (s *Session) ResetShort() error {
	s.touch()
	return s.machine.Reset()
}

// ShortCircuit returns the demonstration status.
func (s *Session) ShortCircuit() shortcircuit.Status {
	return s.machine.Status()
}

// ToggleQuiz shows or hides one answer.
func (s *Session) ToggleQuiz(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	shown, err := s.board.Toggle(id)
	if err == nil {
		s.touchLocked()
	}
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	capitan.Emit(ctx, QuizToggled, KeySession.Field(s.id), KeyItem.Field(id))
	return shown, nil
}

// Narrate reads text aloud unless a narration is already playing.
func (s *Session) Narrate(ctx context.Context, text string) (narration.Result, error) {
	s.touch()
	res, err := s.gate.Narrate(ctx, text)

	outcome := OutcomePlayed
	switch {
	case err == narration.ErrBusy:
		outcome = OutcomeBusy
	case err != nil:
		return res, err
	case res.Failed:
		outcome = OutcomeFailed
	}
	capitan.Emit(ctx, NarrationFinished, KeySession.Field(s.id), KeyOutcome.Field(outcome))
	return res, err
}

// Narrating reports whether the narration gate is closed.
func (s *Session) Narrating() bool {
	return s.gate.Busy()
}

// Snapshot captures the full session state.
func (s *Session) Snapshot() models.LabSnapshot {
	s.mu.Lock()
	st := s.circuit.State()
	section := s.section
	views := s.board.Views()
	updated := s.lastSeen
	s.mu.Unlock()

	status := s.machine.Status()
	return models.LabSnapshot{
		SessionID: s.id,
		Section:   string(section),
		Circuit: models.CircuitView{
			Voltage:    st.Voltage,
			Resistance: st.Resistance,
			Current:    st.Current,
			Display:    circuit.Format(st.Current, 3),
			Visual:     circuit.VisualFor(st),
		},
		ShortCircuit: models.ShortCircuitView{
			Status:    status,
			BlowsInMs: s.machine.BlowsIn().Milliseconds(),
			Visual:    shortcircuit.VisualFor(status),
		},
		Quiz:      views,
		Narrating: s.gate.Busy(),
		UpdatedAt: updated.UTC(),
	}
}

// IdleFor reports how long the session has gone without a learner action.
func (s *Session) IdleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Since(s.lastSeen)
}

// Close stops the session's timers.
func (s *Session) Close(ctx context.Context) {
	s.machine.Close()
	s.gate.Close()
	capitan.Emit(ctx, SessionClosed, KeySession.Field(s.id))
}

func (s *Session) touch() {
	s.mu.Lock()
	s.touchLocked()
	s.mu.Unlock()
}

func (s *Session) touchLocked() {
	s.lastSeen = s.clock.Now()
}
