package circuit

import "math"

// Water analogy tuning. Values map straight to pixels and seconds; there is no physics here.
const (
	tankBaseHeightPx  = 40.0
	tankRangePx       = 100.0
	pipeMaxWidthPx    = 40.0
	pipeMinWidthPx    = 5.0
	pipeNarrowingPx   = 35.0
	pipeNarrowingOhms = 200.0
	flowSpeedPerAmp   = 0.5
	maxFlowSpeed      = 2.0
	minFlowSpeed      = 0.1
	bubblesPerAmp     = 50.0
	restrictionOhms   = 100.0
	flowCycleSeconds  = 2.5
)

// Visual is what the water-pipe animation needs to render a circuit state.
type Visual struct {
	TankFillPercent  float64 `json:"tank_fill_percent"`
	TankHeightPx     float64 `json:"tank_height_px"`
	PipeWidthPx      float64 `json:"pipe_width_px"`
	FlowSpeed        float64 `json:"flow_speed"`
	BubbleCount      int     `json:"bubble_count"`
	RestrictionScale float64 `json:"restriction_scale"`
	FlowCycleSeconds float64 `json:"flow_cycle_seconds"`
}

// VisualFor maps a circuit state to animation parameters: higher voltage fills the
// tank, higher resistance narrows the pipe, higher current speeds up the flow.
func VisualFor(s State) Visual {
	level := s.Voltage / MaxVoltage
	speed := math.Min(maxFlowSpeed, s.Current/flowSpeedPerAmp)

	cycleSpeed := speed
	if cycleSpeed <= 0 {
		cycleSpeed = minFlowSpeed
	}

	return Visual{
		TankFillPercent:  level * 100,
		TankHeightPx:     tankBaseHeightPx + level*tankRangePx,
		PipeWidthPx:      math.Max(pipeMinWidthPx, pipeMaxWidthPx-(s.Resistance/pipeNarrowingOhms)*pipeNarrowingPx),
		FlowSpeed:        speed,
		BubbleCount:      int(math.Floor(s.Current * bubblesPerAmp)),
		RestrictionScale: s.Resistance / restrictionOhms,
		FlowCycleSeconds: flowCycleSeconds / cycleSpeed,
	}
}
