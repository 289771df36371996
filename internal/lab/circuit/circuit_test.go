package circuit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent_KnownValues(t *testing.T) {
	cases := []struct {
		v, r, want float64
	}{
		{12, 100, 0.12},
		{24, 10, 2.4},
		{1, 1000, 0.001},
	}
	for _, tc := range cases {
		got, err := Current(tc.v, tc.r)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, got, 1e-12, "Current(%v, %v)", tc.v, tc.r)
	}
}

func TestCurrent_AllSliderPositions(t *testing.T) {
	for v := MinVoltage; v <= MaxVoltage; v += VoltageStep {
		for r := MinResistance; r <= MaxResistance; r += ResistanceStep {
			got, err := Current(v, r)
			require.NoError(t, err)
			assert.InDelta(t, v/r, got, 1e-12)
		}
	}
}

func TestCurrent_RejectsNonPositiveResistance(t *testing.T) {
	for _, r := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, err := Current(12, r)
		assert.ErrorIs(t, err, ErrInvalidInput, "resistance %v", r)
	}
	_, err := Current(math.NaN(), 100)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestModel_DefaultsAndDerivedCurrent(t *testing.T) {
	m := NewModel()
	assert.Equal(t, DefaultVoltage, m.Voltage())
	assert.Equal(t, DefaultResistance, m.Resistance())
	assert.InDelta(t, 0.12, m.Current(), 1e-12)

	require.NoError(t, m.SetVoltage(24))
	assert.InDelta(t, 0.24, m.Current(), 1e-12)

	require.NoError(t, m.SetResistance(10))
	st := m.State()
	assert.InDelta(t, 2.4, st.Current, 1e-12)
	assert.Equal(t, st.Voltage/st.Resistance, st.Current)
}

func TestModel_RejectsValuesOffTheSlider(t *testing.T) {
	m := NewModel()

	cases := []struct {
		name string
		set  func() error
		want error
	}{
		{"voltage below min", func() error { return m.SetVoltage(0) }, ErrOutOfRange},
		{"voltage above max", func() error { return m.SetVoltage(25) }, ErrOutOfRange},
		{"voltage between steps", func() error { return m.SetVoltage(3.5) }, ErrOffStep},
		{"resistance zero", func() error { return m.SetResistance(0) }, ErrOutOfRange},
		{"resistance above max", func() error { return m.SetResistance(1010) }, ErrOutOfRange},
		{"resistance between steps", func() error { return m.SetResistance(105) }, ErrOffStep},
		{"resistance NaN", func() error { return m.SetResistance(math.NaN()) }, ErrOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.set()
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// Nothing was applied.
	assert.Equal(t, DefaultVoltage, m.Voltage())
	assert.Equal(t, DefaultResistance, m.Resistance())
}

func TestModel_SetIsAllOrNothing(t *testing.T) {
	m := NewModel()
	require.Error(t, m.Set(6, 5))
	assert.Equal(t, DefaultVoltage, m.Voltage())

	require.NoError(t, m.Set(6, 300))
	assert.InDelta(t, 0.02, m.Current(), 1e-12)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.120", Format(0.12, 3))
	assert.Equal(t, "2.40", Format(2.4, 2))
	assert.Equal(t, "0.001", Format(0.001, 3))
}

func TestVisualFor(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		v := VisualFor(State{Voltage: 12, Resistance: 100, Current: 0.12})
		assert.InDelta(t, 50, v.TankFillPercent, 1e-9)
		assert.InDelta(t, 90, v.TankHeightPx, 1e-9)
		assert.InDelta(t, 22.5, v.PipeWidthPx, 1e-9)
		assert.InDelta(t, 0.24, v.FlowSpeed, 1e-9)
		assert.Equal(t, 6, v.BubbleCount)
		assert.InDelta(t, 1.0, v.RestrictionScale, 1e-9)
		assert.InDelta(t, 2.5/0.24, v.FlowCycleSeconds, 1e-9)
	})

	t.Run("flow speed and pipe width are clamped", func(t *testing.T) {
		v := VisualFor(State{Voltage: 24, Resistance: 1000, Current: 0.024})
		assert.Equal(t, pipeMinWidthPx, v.PipeWidthPx)

		v = VisualFor(State{Voltage: 24, Resistance: 10, Current: 2.4})
		assert.Equal(t, maxFlowSpeed, v.FlowSpeed)
		assert.Equal(t, 120, v.BubbleCount)
	})

	t.Run("no flow falls back to slow cycle", func(t *testing.T) {
		v := VisualFor(State{Voltage: 0, Resistance: 100, Current: 0})
		assert.InDelta(t, 25, v.FlowCycleSeconds, 1e-9)
	})
}
