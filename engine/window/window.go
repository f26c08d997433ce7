package window

import (
	"fmt"

	"github.com/Carmen-Shannon/trackball/common"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving the wheel angle delta (120 per notch, positive away from the user) and the held modifiers
	SetScrollCallback(callback func(delta float32, mods common.Modifiers))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code and the held modifiers
	SetKeyDownCallback(callback func(keyCode uint32, mods common.Modifiers))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code and the held modifiers
	SetKeyUpCallback(callback func(keyCode uint32, mods common.Modifiers))

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

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// PollEvents delivers pending platform events to the callbacks without blocking.
	//
	// Returns:
	//   - bool: false once the window has been closed
	PollEvents() bool

	// Width returns the current window client area width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current window client area height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the framebuffer size in pixels.
	width  int
	height int

	// closeOnEscape closes the window when Escape is pressed.
	closeOnEscape bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onResize      func(width, height int)
	onScroll      func(delta float32, mods common.Modifiers)
	onKeyDown     func(keyCode uint32, mods common.Modifiers)
	onKeyUp       func(keyCode uint32, mods common.Modifiers)
	onMouseButton func(button common.MouseButton, pressed bool, mods common.Modifiers, x, y int)
	onMouseMove   func(x, y int)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options and opens it.
// Applies default values first, then each option in order.
// Panics if the platform window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// newEngineWindow applies the defaults and options without touching the platform.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:         "trackball",
		maxWidth:      1600,
		maxHeight:     1200,
		minWidth:      600,
		minHeight:     200,
		width:         1280,
		height:        720,
		closeOnEscape: true,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = min(max(w.width, w.minWidth), w.maxWidth)
	w.height = min(max(w.height, w.minHeight), w.maxHeight)
	return w
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32, mods common.Modifiers)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32, mods common.Modifiers)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32, mods common.Modifiers)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button common.MouseButton, pressed bool, mods common.Modifiers, x, y int)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int)) {
	w.onMouseMove = callback
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// dispatchKey forwards a key event. It returns true when the event asks the window to close.
func (w *engineWindow) dispatchKey(keyCode uint32, down bool, mods common.Modifiers) bool {
	if keyCode == common.KeyEsc && down && w.closeOnEscape {
		return true
	}
	if down {
		if w.onKeyDown != nil {
			w.onKeyDown(keyCode, mods)
		}
	} else if w.onKeyUp != nil {
		w.onKeyUp(keyCode, mods)
	}
	return false
}

// dispatchScroll converts a vertical scroll offset in notches into a wheel angle delta.
func (w *engineWindow) dispatchScroll(yoff float64, mods common.Modifiers) {
	if w.onScroll != nil && yoff != 0 {
		w.onScroll(float32(yoff*common.WheelDeltaPerStep), mods)
	}
}

func (w *engineWindow) dispatchMouseButton(button common.MouseButton, pressed bool, mods common.Modifiers, x, y float64) {
	if w.onMouseButton != nil {
		w.onMouseButton(button, pressed, mods, int(x), int(y))
	}
}

func (w *engineWindow) dispatchMouseMove(x, y float64) {
	if w.onMouseMove != nil {
		w.onMouseMove(int(x), int(y))
	}
}

func (w *engineWindow) dispatchResize(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
