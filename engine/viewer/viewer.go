package viewer

import (
	"image"
	"log"
	"time"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/camera"
	"github.com/Carmen-Shannon/trackball/engine/frame"
	"github.com/Carmen-Shannon/trackball/engine/keyframe"
	"github.com/Carmen-Shannon/trackball/engine/signal"
	"github.com/Carmen-Shannon/trackball/engine/timer"
)

const (
	// keyboardMoveSteps is the number of fly speed units moved per arrow key press.
	keyboardMoveSteps = 10
	flySpeedFactor    = 1.5
)

type viewerImpl struct {
	id         signal.ID
	logger     *log.Logger
	scheduler  timer.Scheduler
	camera     camera.Camera
	ownsCamera bool

	sceneRadius float32
	mode        CameraMode

	mouseBindings map[MouseBinding]ActionBinding
	wheelBindings map[common.Modifiers]camera.MouseAction

	// button that started the running mouse action
	activeButton common.MouseButton
	buttonDown   bool

	needsRedraw bool
	redrawCount int
	drawFunc    func(c camera.Camera)

	animateFunc     func()
	animationPeriod time.Duration
	animationTimer  timer.Timer

	watchedPaths map[int]keyframe.KeyFrameInterpolator
}

// Viewer turns window input into camera motion and tracks when its scene must be redrawn.
// It owns the mapping of mouse buttons, wheel and keys to ManipulatedCameraFrame actions and
// keyframe path commands.
//
// A Viewer requests a redraw whenever its camera frame is manipulated, spins or is interpolated,
// and whenever a camera path reaches its end. It is not safe for concurrent use.
type Viewer interface {
	// ID returns the identity the viewer uses when subscribing to other buses.
	//
	// Returns:
	//   - signal.ID: the viewer identity
	ID() signal.ID

	// Camera returns the camera the viewer drives.
	//
	// Returns:
	//   - camera.Camera: the viewer camera
	Camera() camera.Camera

	// CameraMode returns the current camera mode.
	//
	// Returns:
	//   - CameraMode: Revolve or Fly
	CameraMode() CameraMode

	// SetCameraMode switches to the given mode and restores that mode's default bindings.
	// Entering Fly mode makes the current camera up vector the scene vertical and stops spinning.
	//
	// Parameters:
	//   - mode: the new camera mode
	SetCameraMode(mode CameraMode)

	// ToggleCameraMode switches between Revolve and Fly.
	ToggleCameraMode()

	// SetMouseBinding binds a button and modifier combination to a camera frame action.
	// Binding NoMouseAction removes the combination.
	//
	// Parameters:
	//   - button: the mouse button
	//   - mods: the modifiers that must be held
	//   - action: the action started on press
	//   - withConstraint: false to suspend the frame constraint during the action
	SetMouseBinding(button common.MouseButton, mods common.Modifiers, action camera.MouseAction, withConstraint bool)

	// MouseBindingFor returns the action bound to a button and modifier combination.
	//
	// Parameters:
	//   - button: the mouse button
	//   - mods: the held modifiers
	//
	// Returns:
	//   - ActionBinding: the bound action
	//   - bool: false if the combination is not bound
	MouseBindingFor(button common.MouseButton, mods common.Modifiers) (ActionBinding, bool)

	// SetWheelBinding binds a modifier combination to the action performed by the wheel.
	// Binding NoMouseAction removes the combination.
	//
	// Parameters:
	//   - mods: the modifiers that must be held
	//   - action: Zoom, MoveForward or MoveBackward
	SetWheelBinding(mods common.Modifiers, action camera.MouseAction)

	// WheelBindingFor returns the wheel action bound to a modifier combination.
	//
	// Parameters:
	//   - mods: the held modifiers
	//
	// Returns:
	//   - camera.MouseAction: the bound action
	//   - bool: false if the combination is not bound
	WheelBindingFor(mods common.Modifiers) (camera.MouseAction, bool)

	// MousePress starts the action bound to the button and modifiers at the given position.
	//
	// Parameters:
	//   - button: the pressed button
	//   - mods: the held modifiers
	//   - pos: the cursor position in pixels, origin at the top left corner
	MousePress(button common.MouseButton, mods common.Modifiers, pos image.Point)

	// MouseMove forwards a cursor move to the running action, if any.
	//
	// Parameters:
	//   - pos: the cursor position in pixels
	MouseMove(pos image.Point)

	// MouseRelease ends the action started by the released button.
	//
	// Parameters:
	//   - button: the released button
	//   - pos: the cursor position in pixels
	MouseRelease(button common.MouseButton, pos image.Point)

	// Wheel performs the wheel action bound to the held modifiers.
	//
	// Parameters:
	//   - mods: the held modifiers
	//   - delta: the wheel angle delta, 120 per notch
	Wheel(mods common.Modifiers, delta float32)

	// KeyPress handles the viewer shortcuts.
	// F1 to F12 play or stop the matching path, Alt adds a keyframe to it and Shift deletes it.
	// Space toggles the camera mode, Enter toggles the animation, arrows move the camera and
	// equal and minus change the fly speed.
	//
	// Parameters:
	//   - key: the virtual key code
	//   - mods: the held modifiers
	//
	// Returns:
	//   - bool: true if the key was handled
	KeyPress(key uint32, mods common.Modifiers) bool

	// Resize updates the camera screen size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// RequestRedraw marks the viewer as needing a redraw.
	RequestRedraw()

	// NeedsRedraw reports whether a redraw was requested since the last Draw.
	//
	// Returns:
	//   - bool: true if the viewer must be redrawn
	NeedsRedraw() bool

	// Draw runs the draw callback and clears the redraw request.
	Draw()

	// RedrawCount returns the number of Draw calls so far.
	//
	// Returns:
	//   - int: the draw count
	RedrawCount() int

	// StartAnimation starts calling the animate callback at the animation period.
	StartAnimation()

	// StopAnimation stops the animation.
	StopAnimation()

	// ToggleAnimation starts or stops the animation.
	ToggleAnimation()

	// AnimationIsStarted reports whether the animation is running.
	//
	// Returns:
	//   - bool: true while animating
	AnimationIsStarted() bool

	// AttachInput routes the pointer and keyboard events of an input source to the viewer.
	//
	// Parameters:
	//   - source: the input source, usually the window
	AttachInput(source InputSource)

	// Release removes the viewer subscriptions and timer. A camera created by the viewer is released too.
	Release()
}

var _ Viewer = &viewerImpl{}

// NewViewer creates a Viewer in Revolve mode. Unless a camera is supplied, the viewer creates one
// showing the entire scene.
//
// Parameters:
//   - scheduler: the scheduler driving the camera and animation timers
//   - options: functional options to configure the viewer
//
// Returns:
//   - Viewer: the newly created viewer
func NewViewer(scheduler timer.Scheduler, options ...ViewerBuilderOption) Viewer {
	v := &viewerImpl{
		id:              signal.NextID(),
		logger:          log.Default(),
		scheduler:       scheduler,
		mode:            Revolve,
		needsRedraw:     true,
		animationPeriod: 40 * time.Millisecond,
		watchedPaths:    make(map[int]keyframe.KeyFrameInterpolator),
	}
	for _, option := range options {
		option(v)
	}

	if v.camera == nil {
		v.camera = camera.NewCamera(scheduler, camera.WithLogger(v.logger))
		v.ownsCamera = true
	}
	if v.sceneRadius > 0 {
		v.camera.SetSceneRadius(v.sceneRadius)
		v.camera.ShowEntireScene()
	}

	v.mouseBindings = defaultMouseBindings(v.mode)
	v.wheelBindings = defaultWheelBindings(v.mode)
	if v.mode == Fly {
		v.camera.Frame().UpdateSceneUpVector()
	}

	bus := v.camera.Frame().Signals()
	signal.Connect(bus, camera.Manipulated, v.id, v.RequestRedraw)
	signal.Connect(bus, camera.Spun, v.id, v.RequestRedraw)
	signal.Connect(bus, frame.Interpolated, v.id, v.RequestRedraw)
	signal.ConnectArgs(v.camera.Signals(), camera.PathChanged, v.id, v.watchPath)
	for _, key := range v.camera.PathKeys() {
		v.watchPath(key)
	}

	v.animationTimer = scheduler.NewTimer()
	signal.Connect(v.animationTimer.Signals(), timer.Timeout, v.id, v.animate)
	return v
}

func (v *viewerImpl) ID() signal.ID {
	return v.id
}

func (v *viewerImpl) Camera() camera.Camera {
	return v.camera
}

func (v *viewerImpl) CameraMode() CameraMode {
	return v.mode
}

func (v *viewerImpl) SetCameraMode(mode CameraMode) {
	if mode == v.mode {
		return
	}
	v.mode = mode
	if mode == Fly {
		v.camera.Frame().UpdateSceneUpVector()
		v.camera.Frame().StopSpinning()
	}
	v.mouseBindings = defaultMouseBindings(mode)
	v.wheelBindings = defaultWheelBindings(mode)
	v.logger.Printf("[Viewer] camera mode: %s", mode)
}

func (v *viewerImpl) ToggleCameraMode() {
	if v.mode == Revolve {
		v.SetCameraMode(Fly)
	} else {
		v.SetCameraMode(Revolve)
	}
}

func (v *viewerImpl) SetMouseBinding(button common.MouseButton, mods common.Modifiers, action camera.MouseAction, withConstraint bool) {
	key := MouseBinding{Button: button, Modifiers: mods}
	if action == camera.NoMouseAction {
		delete(v.mouseBindings, key)
		return
	}
	v.mouseBindings[key] = ActionBinding{Action: action, WithConstraint: withConstraint}
}

func (v *viewerImpl) MouseBindingFor(button common.MouseButton, mods common.Modifiers) (ActionBinding, bool) {
	b, ok := v.mouseBindings[MouseBinding{Button: button, Modifiers: mods}]
	return b, ok
}

func (v *viewerImpl) SetWheelBinding(mods common.Modifiers, action camera.MouseAction) {
	if action == camera.NoMouseAction {
		delete(v.wheelBindings, mods)
		return
	}
	v.wheelBindings[mods] = action
}

func (v *viewerImpl) WheelBindingFor(mods common.Modifiers) (camera.MouseAction, bool) {
	a, ok := v.wheelBindings[mods]
	return a, ok
}

func (v *viewerImpl) MousePress(button common.MouseButton, mods common.Modifiers, pos image.Point) {
	if v.buttonDown {
		return
	}
	b, ok := v.MouseBindingFor(button, mods)
	if !ok {
		return
	}
	f := v.camera.Frame()
	f.StartAction(b.Action, b.WithConstraint)
	f.MousePressEvent(pos, v.camera)
	v.activeButton = button
	v.buttonDown = true
}

func (v *viewerImpl) MouseMove(pos image.Point) {
	f := v.camera.Frame()
	if !v.buttonDown || !f.IsManipulated() {
		return
	}
	f.MouseMoveEvent(pos, v.camera)
	if f.Action() == camera.ZoomOnRegion {
		v.RequestRedraw()
	}
}

func (v *viewerImpl) MouseRelease(button common.MouseButton, pos image.Point) {
	if !v.buttonDown || button != v.activeButton {
		return
	}
	v.buttonDown = false
	f := v.camera.Frame()
	if f.IsManipulated() {
		f.MouseReleaseEvent(pos, v.camera)
	}
	v.RequestRedraw()
}

func (v *viewerImpl) Wheel(mods common.Modifiers, delta float32) {
	if v.buttonDown {
		return
	}
	action, ok := v.WheelBindingFor(mods)
	if !ok {
		return
	}
	f := v.camera.Frame()
	f.StartAction(action, true)
	f.WheelEvent(delta, v.camera)
}

func (v *viewerImpl) KeyPress(key uint32, mods common.Modifiers) bool {
	if key >= common.KeyF1 && key <= common.KeyF12 {
		return v.pathCommand(int(key-common.KeyF1)+1, mods)
	}
	if mods != common.ModNone {
		return false
	}

	f := v.camera.Frame()
	switch key {
	case common.KeySpace:
		v.ToggleCameraMode()
	case common.KeyEnter:
		v.ToggleAnimation()
	case common.KeyLeft:
		v.moveCamera(common.Vec{-1, 0, 0})
	case common.KeyRight:
		v.moveCamera(common.Vec{1, 0, 0})
	case common.KeyUp:
		v.moveCamera(common.Vec{0, 1, 0})
	case common.KeyDown:
		v.moveCamera(common.Vec{0, -1, 0})
	case common.KeyEqual:
		f.SetFlySpeed(f.FlySpeed() * flySpeedFactor)
	case common.KeyMinus:
		f.SetFlySpeed(f.FlySpeed() / flySpeedFactor)
	default:
		return false
	}
	v.RequestRedraw()
	return true
}

func (v *viewerImpl) Resize(width, height int) {
	v.camera.SetScreenWidthAndHeight(width, height)
	v.RequestRedraw()
}

func (v *viewerImpl) RequestRedraw() {
	v.needsRedraw = true
}

func (v *viewerImpl) NeedsRedraw() bool {
	return v.needsRedraw
}

func (v *viewerImpl) Draw() {
	if v.drawFunc != nil {
		v.drawFunc(v.camera)
	}
	v.needsRedraw = false
	v.redrawCount++
}

func (v *viewerImpl) RedrawCount() int {
	return v.redrawCount
}

func (v *viewerImpl) StartAnimation() {
	v.animationTimer.Start(v.animationPeriod)
}

func (v *viewerImpl) StopAnimation() {
	v.animationTimer.Stop()
}

func (v *viewerImpl) ToggleAnimation() {
	if v.AnimationIsStarted() {
		v.StopAnimation()
	} else {
		v.StartAnimation()
	}
}

func (v *viewerImpl) AnimationIsStarted() bool {
	return v.animationTimer.IsActive()
}

func (v *viewerImpl) AttachInput(source InputSource) {
	source.SetMouseButtonCallback(func(button common.MouseButton, pressed bool, mods common.Modifiers, x, y int) {
		if pressed {
			v.MousePress(button, mods, image.Pt(x, y))
		} else {
			v.MouseRelease(button, image.Pt(x, y))
		}
	})
	source.SetMouseMoveCallback(func(x, y int) {
		v.MouseMove(image.Pt(x, y))
	})
	source.SetScrollCallback(func(delta float32, mods common.Modifiers) {
		v.Wheel(mods, delta)
	})
	source.SetKeyDownCallback(func(keyCode uint32, mods common.Modifiers) {
		v.KeyPress(keyCode, mods)
	})
}

func (v *viewerImpl) Release() {
	v.animationTimer.Stop()
	v.scheduler.Remove(v.animationTimer)
	for key := range v.watchedPaths {
		v.unwatchPath(key)
	}
	v.camera.Frame().Signals().UnsubscribeAll(v.id)
	v.camera.Signals().UnsubscribeAll(v.id)
	if v.ownsCamera {
		v.camera.Release()
	}
}

// pathCommand runs the F-key command for the path at key.
func (v *viewerImpl) pathCommand(key int, mods common.Modifiers) bool {
	switch mods {
	case common.ModAlt:
		v.camera.AddKeyFrameToPath(key)
		v.logger.Printf("[Viewer] added keyframe %d to path %d", v.camera.KeyFrameInterpolator(key).NumberOfKeyFrames(), key)
	case common.ModShift:
		if v.camera.KeyFrameInterpolator(key) == nil {
			v.logger.Printf("[Viewer] path %d is undefined", key)
			return true
		}
		v.camera.DeletePath(key)
		v.logger.Printf("[Viewer] path %d deleted", key)
	case common.ModNone:
		kfi := v.camera.KeyFrameInterpolator(key)
		if kfi == nil {
			v.logger.Printf("[Viewer] path %d is undefined", key)
			return true
		}
		v.camera.PlayPath(key)
		if kfi.InterpolationIsStarted() {
			v.logger.Printf("[Viewer] playing path %d", key)
		}
	default:
		return false
	}
	v.RequestRedraw()
	return true
}

// moveCamera translates the camera along a camera-space axis by keyboardMoveSteps fly speed units.
func (v *viewerImpl) moveCamera(axis common.Vec) {
	f := v.camera.Frame()
	f.Translate(f.InverseTransformOf(axis.Mul(keyboardMoveSteps * f.FlySpeed())))
}

// watchPath subscribes to the end of the path at key. A replaced path is unwatched first.
func (v *viewerImpl) watchPath(key int) {
	v.unwatchPath(key)
	if kfi := v.camera.KeyFrameInterpolator(key); kfi != nil {
		signal.Connect(kfi.Signals(), keyframe.EndReached, v.id, v.RequestRedraw)
		v.watchedPaths[key] = kfi
	}
	v.RequestRedraw()
}

func (v *viewerImpl) unwatchPath(key int) {
	if kfi, ok := v.watchedPaths[key]; ok {
		kfi.Signals().UnsubscribeAll(v.id)
		delete(v.watchedPaths, key)
	}
}

func (v *viewerImpl) animate() {
	if v.animateFunc != nil {
		v.animateFunc()
	}
	v.RequestRedraw()
}
