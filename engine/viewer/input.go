package viewer

import "github.com/Carmen-Shannon/trackball/common"

// InputSource delivers pointer and keyboard events to a Viewer.
// The GLFW window implements it; tests can drive a Viewer directly instead.
type InputSource interface {
	// SetMouseButtonCallback sets the callback for mouse button presses and releases.
	//
	// Parameters:
	//   - callback: function receiving the button, whether it was pressed, the held modifiers and the cursor position
	SetMouseButtonCallback(callback func(button common.MouseButton, pressed bool, mods common.Modifiers, x, y int))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving the wheel angle delta (120 per notch, positive away from the user) and the held modifiers
	SetScrollCallback(callback func(delta float32, mods common.Modifiers))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code and the held modifiers
	SetKeyDownCallback(callback func(keyCode uint32, mods common.Modifiers))
}
