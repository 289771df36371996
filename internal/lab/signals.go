package lab

import "github.com/zoobzio/capitan"

// Lab activity signals.
var (
	SessionOpened = capitan.NewSignal(
		"ohmslab.session.opened",
		"Lab session opened",
	)
	SessionClosed = capitan.NewSignal(
		"ohmslab.session.closed",
		"Lab session closed",
	)
	SectionChanged = capitan.NewSignal(
		"ohmslab.section.changed",
		"Learner switched lesson section",
	)
	CircuitChanged = capitan.NewSignal(
		"ohmslab.circuit.changed",
		"Voltage or resistance changed",
	)
	ShortCircuitTransition = capitan.NewSignal(
		"ohmslab.shortcircuit.transition",
		"Short-circuit demonstration changed state",
	)
	QuizToggled = capitan.NewSignal(
		"ohmslab.quiz.toggled",
		"Quiz answer shown or hidden",
	)
	NarrationFinished = capitan.NewSignal(
		"ohmslab.narration.finished",
		"Narration request handled",
	)
)

// Narration outcomes carried by KeyOutcome.
const (
	OutcomePlayed = "played"
	OutcomeFailed = "failed"
	OutcomeBusy   = "busy"
)

// Field keys for lab signals.
var (
	KeySession = capitan.NewStringKey("session_id")
	KeySection = capitan.NewStringKey("section")
	KeyFrom    = capitan.NewStringKey("from")
	KeyTo      = capitan.NewStringKey("to")
	KeyItem    = capitan.NewStringKey("item")
	KeyOutcome = capitan.NewStringKey("outcome")
)
