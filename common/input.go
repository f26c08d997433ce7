package common

// MouseButton identifies a pointer button. Values match GLFW button indices.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// String returns a readable name for the button.
func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "Left"
	case MouseButtonRight:
		return "Right"
	case MouseButtonMiddle:
		return "Middle"
	default:
		return "Unknown"
	}
}

// Modifiers is a bitmask of keyboard modifiers held during an input event.
// Bit values match GLFW's ModifierKey.
type Modifiers int

const (
	ModNone    Modifiers = 0
	ModShift   Modifiers = 0x0001
	ModControl Modifiers = 0x0002
	ModAlt     Modifiers = 0x0004
	ModSuper   Modifiers = 0x0008
)

// Has reports whether every modifier in other is set in m.
func (m Modifiers) Has(other Modifiers) bool {
	return m&other == other
}

// WheelDeltaPerStep is the angle delta reported for one wheel notch (eighths of a degree, 15° per notch).
const WheelDeltaPerStep = 120
