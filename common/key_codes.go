package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace     = 32  // Spacebar (ASCII)
	KeyMinus     = 45  // Minus key (ASCII)
	KeyEqual     = 61  // Equal/plus key (ASCII)
	KeyEsc       = 256 // Escape key (GLFW)
	KeyEnter     = 257 // Enter key (GLFW)
	KeyBackspace = 259 // Backspace key (GLFW)
	KeyRight     = 262 // Right arrow (GLFW)
	KeyLeft      = 263 // Left arrow (GLFW)
	KeyDown      = 264 // Down arrow (GLFW)
	KeyUp        = 265 // Up arrow (GLFW)
)

// Function keys, used as keyframe path shortcuts.
const (
	KeyF1  = 290
	KeyF2  = 291
	KeyF3  = 292
	KeyF4  = 293
	KeyF5  = 294
	KeyF6  = 295
	KeyF7  = 296
	KeyF8  = 297
	KeyF9  = 298
	KeyF10 = 299
	KeyF11 = 300
	KeyF12 = 301
)

// Additional non-printable keys
const (
	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)
