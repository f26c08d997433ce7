package camera

// MouseAction is the interaction a pointer drag or a wheel event performs on a ManipulatedCameraFrame.
type MouseAction int

const (
	NoMouseAction MouseAction = iota
	Rotate
	Zoom
	Translate
	MoveForward
	LookAround
	MoveBackward
	ScreenRotate
	Roll
	Drive
	ScreenTranslate
	ZoomOnRegion
)

var mouseActionNames = [...]string{
	NoMouseAction:   "NoMouseAction",
	Rotate:          "Rotate",
	Zoom:            "Zoom",
	Translate:       "Translate",
	MoveForward:     "MoveForward",
	LookAround:      "LookAround",
	MoveBackward:    "MoveBackward",
	ScreenRotate:    "ScreenRotate",
	Roll:            "Roll",
	Drive:           "Drive",
	ScreenTranslate: "ScreenTranslate",
	ZoomOnRegion:    "ZoomOnRegion",
}

// String returns the action name.
func (a MouseAction) String() string {
	if a < 0 || int(a) >= len(mouseActionNames) {
		return "Unknown"
	}
	return mouseActionNames[a]
}

// isFlying reports whether the action moves the frame from the fly timer.
func (a MouseAction) isFlying() bool {
	return a == MoveForward || a == MoveBackward || a == Drive
}
