// Package circuit holds the lab's circuit inputs and derives the current from them.
package circuit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Slider bounds for the lab inputs.
const (
	MinVoltage  = 1.0
	MaxVoltage  = 24.0
	VoltageStep = 1.0

	MinResistance  = 10.0
	MaxResistance  = 1000.0
	ResistanceStep = 10.0

	DefaultVoltage    = 12.0
	DefaultResistance = 100.0
)

var (
	// ErrInvalidInput is returned when a value cannot be used in I = U / R.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOutOfRange wraps ErrInvalidInput for values outside the slider bounds.
	ErrOutOfRange = fmt.Errorf("%w: out of range", ErrInvalidInput)
	// ErrOffStep wraps ErrInvalidInput for values between slider steps.
	ErrOffStep = fmt.Errorf("%w: not on a slider step", ErrInvalidInput)
)

// Current computes I = U / R. It refuses non-positive resistance instead of
// returning Inf or NaN.
func Current(voltage, resistance float64) (float64, error) {
	if !finite(voltage) || !finite(resistance) {
		return 0, fmt.Errorf("%w: voltage=%v resistance=%v", ErrInvalidInput, voltage, resistance)
	}
	if resistance <= 0 {
		return 0, fmt.Errorf("%w: resistance must be > 0, got %v", ErrInvalidInput, resistance)
	}
	return voltage / resistance, nil
}

// State is a read-only view of the circuit. Current is always voltage/resistance.
type State struct {
	Voltage    float64 `json:"voltage"`
	Resistance float64 `json:"resistance"`
	Current    float64 `json:"current"`
}

// Model holds the two user inputs. The zero value is not usable; call NewModel.
type Model struct {
	voltage    float64
	resistance float64
}

// NewModel returns a model at the lab's default slider positions.
func NewModel() *Model {
	return &Model{voltage: DefaultVoltage, resistance: DefaultResistance}
}

// Voltage returns the voltage in volts.
func (m *Model) Voltage() float64 { return m.voltage }

// Resistance returns the resistance in ohms.
func (m *Model) Resistance() float64 { return m.resistance }

// Current is recomputed on every call and never cached.
func (m *Model) Current() float64 {
	return m.voltage / m.resistance
}

// State returns a snapshot with the derived current.
func (m *Model) State() State {
	return State{Voltage: m.voltage, Resistance: m.resistance, Current: m.Current()}
}

// SetVoltage validates v against the voltage slider and stores it.
func (m *Model) SetVoltage(v float64) error {
	if err := checkSlider("voltage", v, MinVoltage, MaxVoltage, VoltageStep); err != nil {
		return err
	}
	m.voltage = v
	return nil
}

// SetResistance validates r against the resistance slider and stores it.
func (m *Model) SetResistance(r float64) error {
	if err := checkSlider("resistance", r, MinResistance, MaxResistance, ResistanceStep); err != nil {
		return err
	}
	m.resistance = r
	return nil
}

// Set updates both inputs, or neither when either value is rejected.
func (m *Model) Set(voltage, resistance float64) error {
	if err := checkSlider("voltage", voltage, MinVoltage, MaxVoltage, VoltageStep); err != nil {
		return err
	}
	if err := checkSlider("resistance", resistance, MinResistance, MaxResistance, ResistanceStep); err != nil {
		return err
	}
	m.voltage, m.resistance = voltage, resistance
	return nil
}

// Format renders a current for display. Rounding happens here only.
func Format(current float64, decimals int) string {
	return strconv.FormatFloat(current, 'f', decimals, 64)
}

func checkSlider(name string, v, lo, hi, step float64) error {
	if !finite(v) || v < lo || v > hi {
		return fmt.Errorf("%w: %s %v not in [%v, %v]", ErrOutOfRange, name, v, lo, hi)
	}
	// The resistance slider starts at 10 with step 10, so steps are counted from lo.
	if n := (v - lo) / step; math.Abs(n-math.Round(n)) > 1e-9 {
		return fmt.Errorf("%w: %s %v (step %v)", ErrOffStep, name, v, step)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
