package shortcircuit

// Fuse colours used by the animation.
const (
	FuseIntact = "#fbbf24"
	FuseBroken = "#ef4444"
)

// Visual drives the short-circuit SVG.
type Visual struct {
	FuseColor    string  `json:"fuse_color"`
	FuseDashed   bool    `json:"fuse_dashed"`
	FlowVisible  bool    `json:"flow_visible"`
	FlowSeconds  float64 `json:"flow_seconds,omitempty"`
	ShortingWire bool    `json:"shorting_wire"`
	Sparks       bool    `json:"sparks"`
	GlowOpacity  float64 `json:"glow_opacity"`
	CanTrigger   bool    `json:"can_trigger"`
	CanReset     bool    `json:"can_reset"`
}

// VisualFor maps a status to what the animation shows. The trigger control only
// exists in Normal and the reset control only in Blown.
func VisualFor(s Status) Visual {
	switch s {
	case Shorted:
		return Visual{
			FuseColor:    FuseIntact,
			FlowVisible:  true,
			FlowSeconds:  0.1,
			ShortingWire: true,
			Sparks:       true,
			GlowOpacity:  0.2,
		}
	case Blown:
		return Visual{
			FuseColor:  FuseBroken,
			FuseDashed: true,
			CanReset:   true,
		}
	default:
		return Visual{
			FuseColor:   FuseIntact,
			FlowVisible: true,
			FlowSeconds: 1,
			CanTrigger:  true,
		}
	}
}
