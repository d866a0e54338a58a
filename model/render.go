package model

// ColorClass selects the render color for an object. Precedence when
// writing a directive: selected > filtered-out > type-based classes.
type ColorClass int

const (
	ColorSelected ColorClass = iota
	ColorFilteredOut
	ColorStation
	ColorNavigation
	ColorOperator // operator-specific constellation color
	ColorObservation
	ColorCommunication
)

func (c ColorClass) String() string {
	switch c {
	case ColorSelected:
		return "selected"
	case ColorFilteredOut:
		return "filtered-out"
	case ColorStation:
		return "station"
	case ColorNavigation:
		return "navigation"
	case ColorOperator:
		return "operator"
	case ColorObservation:
		return "observation"
	case ColorCommunication:
		return "communication"
	default:
		return "unknown"
	}
}

// Render scale factors. Eligible objects render at full scale, filtered-out
// objects are dimmed rather than hidden, the selected object is amplified.
const (
	ScaleEligible = 1.0
	ScaleFiltered = 0.25
	ScaleSelected = 1.5
)

// RenderDirective is the per-object output of one update tick, consumed by
// the downstream rendering layer. Each tracked object owns one stable slot;
// the slot is overwritten in place every tick, never reallocated.
type RenderDirective struct {
	ID       string
	Lat      float64 // degrees
	Lng      float64 // degrees
	Alt      float64 // km
	Eligible bool
	Selected bool
	Scale    float64
	Color    ColorClass

	// Degenerate marks a slot whose propagation failed this tick;
	// the renderer must not plot it.
	Degenerate bool
}
