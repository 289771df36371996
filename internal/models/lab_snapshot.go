package models

import (
	"time"

	"ohms_lab/internal/lab/circuit"
	"ohms_lab/internal/lab/quiz"
	"ohms_lab/internal/lab/shortcircuit"
)

// LabSnapshot is everything a client needs to render one learner's lab.
type LabSnapshot struct {
	SessionID    string           `json:"session_id"`
	Section      string           `json:"section"`
	Circuit      CircuitView      `json:"circuit"`
	ShortCircuit ShortCircuitView `json:"short_circuit"`
	Quiz         []quiz.View      `json:"quiz"`
	Narrating    bool             `json:"narrating"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CircuitView carries the derived current and the water animation numbers.
type CircuitView struct {
	Voltage    float64        `json:"voltage"`    // V
	Resistance float64        `json:"resistance"` // Ω
	Current    float64        `json:"current"`    // A, always voltage/resistance
	Display    string         `json:"display"`    // current with 3 decimals
	Visual     circuit.Visual `json:"visual"`
}

// ShortCircuitView carries the demonstration status and its animation flags.
type ShortCircuitView struct {
	Status    shortcircuit.Status `json:"status"`
	BlowsInMs int64               `json:"blows_in_ms,omitempty"`
	Visual    shortcircuit.Visual `json:"visual"`
}
