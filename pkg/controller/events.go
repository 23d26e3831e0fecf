package controller

// PointerKind is the discrete pointer event alphabet consumed by the
// controller state machine.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerWheel
	PointerDoubleClick
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerWheel:
		return "wheel"
	case PointerDoubleClick:
		return "double-click"
	default:
		return "unknown"
	}
}

// PointerEvent is one pointer input in screen (pixel) coordinates.
// WheelDelta is positive for zoom-in.
type PointerEvent struct {
	Kind       PointerKind
	X, Y       float64
	WheelDelta float64
}

// Mode is the controller's primary interaction mode. Hovering is tracked
// separately since it coexists with idle.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeDragging
)

func (m Mode) String() string {
	switch m {
	case ModePanning:
		return "panning"
	case ModeDragging:
		return "dragging"
	default:
		return "idle"
	}
}
