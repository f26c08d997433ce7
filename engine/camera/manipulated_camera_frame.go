package camera

import (
	"image"
	"time"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/frame"
	"github.com/Carmen-Shannon/trackball/engine/signal"
	"github.com/Carmen-Shannon/trackball/engine/timer"
)

var (
	// Manipulated is emitted on the frame's bus after every user-driven displacement and after every fly tick.
	Manipulated = signal.NewSignal("manipulated")

	// Spun is emitted on the frame's bus after every spinning step.
	Spun = signal.NewSignal("spun")
)

const (
	// wheelSensitivityCoef converts a wheel angle delta into a zoom delta.
	wheelSensitivityCoef = 8e-4

	flyTickPeriod        = 10 * time.Millisecond
	finalDrawAfterWheel  = 400 * time.Millisecond
	flyWheelCoefficient  = 0.2
	driveSpeedCoef       = 0.01
	zoomOnPivotMinRadius = 0.02
	zoomMinDepthRadius   = 0.2
)

type manipulatedCameraFrameImpl struct {
	frame.Frame

	scheduler     timer.Scheduler
	flyTimer      timer.Timer
	spinningTimer timer.Timer

	action              MouseAction
	previousConstraint  frame.Constraint
	constraintSuspended bool

	pressPos image.Point
	prevPos  image.Point

	// mouse direction lock used by ScreenTranslate
	dirIsFixed bool
	horizontal bool

	mouseSpeed   float32
	delay        time.Duration
	lastMoveTime time.Time
	isSpinning   bool
	spinningQuat common.Quaternion

	rotationSensitivity    float32
	translationSensitivity float32
	spinningSensitivity    float32
	wheelSensitivity       float32
	zoomSensitivity        float32

	pivotPoint                    common.Vec
	flySpeed                      float32
	driveSpeed                    float32
	sceneUpVector                 common.Vec
	rotatesAroundUpVector         bool
	constrainedRotationIsReversed bool
	zoomsOnPivotPoint             bool
}

// ManipulatedCameraFrame is the Frame of a Camera, moved by pointer, wheel and periodic fly input.
//
// Pointer motion is interpreted in an inverted way with respect to an object frame: dragging
// to the right moves the camera to the left so that the scene appears to follow the pointer.
// The frame rotates around its pivot point, flies along its view direction while a fly action
// is active, and keeps spinning after a fast rotation is released.
//
// Every displacement emits Manipulated on the frame's bus; spinning steps emit Spun.
// A ManipulatedCameraFrame is not safe for concurrent use; it must be driven from the goroutine
// that polls its scheduler.
type ManipulatedCameraFrame interface {
	frame.Frame

	// Action returns the action in progress.
	//
	// Returns:
	//   - MouseAction: NoMouseAction when idle
	Action() MouseAction

	// IsManipulated reports whether an action is in progress.
	//
	// Returns:
	//   - bool: true between StartAction and the matching release
	IsManipulated() bool

	// StartAction begins an action. Without constraint the frame constraint is suspended until
	// the action ends. Fly actions start the repeating fly timer.
	//
	// Parameters:
	//   - action: the action to perform
	//   - withConstraint: false to ignore the frame constraint during the action
	StartAction(action MouseAction, withConstraint bool)

	// MousePressEvent records the press position of an action.
	//
	// Parameters:
	//   - pos: the pointer position in pixels, top-left origin
	//   - view: the camera the frame belongs to
	MousePressEvent(pos image.Point, view View)

	// MouseMoveEvent applies the displacement of the current action for a pointer move.
	//
	// Parameters:
	//   - pos: the pointer position in pixels, top-left origin
	//   - view: the camera the frame belongs to
	MouseMoveEvent(pos image.Point, view View)

	// MouseReleaseEvent ends the current action.
	// A fast rotation starts spinning; ZoomOnRegion fits the dragged rectangle.
	//
	// Parameters:
	//   - pos: the pointer position in pixels, top-left origin
	//   - view: the camera the frame belongs to
	MouseReleaseEvent(pos image.Point, view View)

	// WheelEvent applies a wheel step for the current action and ends it.
	// A final Manipulated is emitted 400 ms after the last wheel event.
	//
	// Parameters:
	//   - delta: the wheel angle delta, common.WheelDeltaPerStep per notch
	//   - view: the camera the frame belongs to
	WheelEvent(delta float32, view View)

	// Zoom moves the frame forward along its view direction by delta times the pivot depth
	// (at least 20% of the scene radius). When zooming on the pivot point, the frame instead moves
	// by delta times its offset from the pivot and never approaches closer than 2% of the scene radius:
	// a larger negative delta stops at that distance.
	//
	// Parameters:
	//   - delta: the relative zoom amount
	//   - view: the camera the frame belongs to
	Zoom(delta float32, view View)

	// PivotPoint returns the world-space point the frame rotates and zooms around.
	//
	// Returns:
	//   - common.Vec: the pivot point
	PivotPoint() common.Vec

	// SetPivotPoint sets the world-space pivot point.
	//
	// Parameters:
	//   - point: the new pivot point
	SetPivotPoint(point common.Vec)

	// FlySpeed returns the distance travelled per fly tick.
	//
	// Returns:
	//   - float32: the fly speed in scene units
	FlySpeed() float32

	// SetFlySpeed sets the distance travelled per fly tick.
	//
	// Parameters:
	//   - speed: the fly speed in scene units
	SetFlySpeed(speed float32)

	// SceneUpVector returns the world-space vertical used by fly and constrained rotations.
	//
	// Returns:
	//   - common.Vec: the scene up vector
	SceneUpVector() common.Vec

	// SetSceneUpVector sets the world-space vertical.
	//
	// Parameters:
	//   - up: the new up vector
	SetSceneUpVector(up common.Vec)

	// UpdateSceneUpVector sets the scene up vector to the current frame Y axis.
	UpdateSceneUpVector()

	// RotatesAroundUpVector reports whether Rotate keeps the scene up vector vertical.
	//
	// Returns:
	//   - bool: true for the constrained rotation mode
	RotatesAroundUpVector() bool

	// SetRotatesAroundUpVector toggles the constrained rotation mode.
	//
	// Parameters:
	//   - constrained: true to rotate around the scene up vector
	SetRotatesAroundUpVector(constrained bool)

	// ZoomsOnPivotPoint reports whether zooming moves towards the pivot point instead of along the view direction.
	//
	// Returns:
	//   - bool: true when zooming on the pivot point
	ZoomsOnPivotPoint() bool

	// SetZoomsOnPivotPoint toggles zooming on the pivot point.
	//
	// Parameters:
	//   - enabled: true to zoom towards the pivot point
	SetZoomsOnPivotPoint(enabled bool)

	// RotationSensitivity returns the rotation speed multiplier (default 1).
	RotationSensitivity() float32

	// SetRotationSensitivity sets the rotation speed multiplier.
	SetRotationSensitivity(sensitivity float32)

	// TranslationSensitivity returns the translation speed multiplier (default 1).
	TranslationSensitivity() float32

	// SetTranslationSensitivity sets the translation speed multiplier.
	SetTranslationSensitivity(sensitivity float32)

	// SpinningSensitivity returns the minimum pointer speed, in pixels per millisecond,
	// that starts spinning on release (default 0.3).
	SpinningSensitivity() float32

	// SetSpinningSensitivity sets the spinning threshold.
	SetSpinningSensitivity(sensitivity float32)

	// WheelSensitivity returns the wheel speed multiplier (default 1).
	WheelSensitivity() float32

	// SetWheelSensitivity sets the wheel speed multiplier.
	SetWheelSensitivity(sensitivity float32)

	// ZoomSensitivity returns the drag zoom speed multiplier (default 1).
	ZoomSensitivity() float32

	// SetZoomSensitivity sets the drag zoom speed multiplier.
	SetZoomSensitivity(sensitivity float32)

	// SpinningQuaternion returns the rotation applied at every spinning step.
	//
	// Returns:
	//   - common.Quaternion: the incremental rotation, in frame coordinates
	SpinningQuaternion() common.Quaternion

	// SetSpinningQuaternion sets the rotation applied at every spinning step.
	//
	// Parameters:
	//   - q: the incremental rotation, in frame coordinates
	SetSpinningQuaternion(q common.Quaternion)

	// StartSpinning rotates the frame around its pivot point by the spinning quaternion every interval.
	//
	// Parameters:
	//   - interval: the spinning period
	StartSpinning(interval time.Duration)

	// StopSpinning stops the spinning timer.
	StopSpinning()

	// IsSpinning reports whether the spinning timer is active.
	//
	// Returns:
	//   - bool: true while spinning
	IsSpinning() bool

	// Release stops the fly and spinning timers and removes them from the scheduler.
	// The frame must not be used afterwards.
	Release()
}

var _ ManipulatedCameraFrame = &manipulatedCameraFrameImpl{}

// NewManipulatedCameraFrame creates a camera frame whose fly and spinning timers tick on scheduler.
//
// Parameters:
//   - scheduler: the scheduler delivering fly and spinning ticks
//   - options: functional options to configure the frame
//
// Returns:
//   - ManipulatedCameraFrame: the newly created camera frame
func NewManipulatedCameraFrame(scheduler timer.Scheduler, options ...ManipulatedCameraFrameBuilderOption) ManipulatedCameraFrame {
	m := &manipulatedCameraFrameImpl{
		scheduler:              scheduler,
		flyTimer:               scheduler.NewTimer(),
		spinningTimer:          scheduler.NewTimer(),
		spinningQuat:           common.QuaternionIdentity(),
		rotationSensitivity:    1,
		translationSensitivity: 1,
		spinningSensitivity:    0.3,
		wheelSensitivity:       1,
		zoomSensitivity:        1,
		sceneUpVector:          common.Vec{0, 1, 0},
	}
	for _, option := range options {
		option(m)
	}
	if m.Frame == nil {
		m.Frame = frame.NewFrame()
	}
	signal.Declare(m.Signals(), Manipulated)
	signal.Declare(m.Signals(), Spun)
	signal.Connect(m.flyTimer.Signals(), timer.Timeout, m.ID(), m.flyUpdate)
	signal.Connect(m.spinningTimer.Signals(), timer.Timeout, m.ID(), m.spinUpdate)
	return m
}

func (m *manipulatedCameraFrameImpl) Action() MouseAction {
	return m.action
}

func (m *manipulatedCameraFrameImpl) IsManipulated() bool {
	return m.action != NoMouseAction
}

func (m *manipulatedCameraFrameImpl) StartAction(action MouseAction, withConstraint bool) {
	m.action = action
	if withConstraint {
		m.previousConstraint = nil
		m.constraintSuspended = false
	} else {
		m.previousConstraint = m.Constraint()
		m.constraintSuspended = true
		m.SetConstraint(nil)
	}

	switch action {
	case Rotate, ScreenRotate:
		m.mouseSpeed = 0
		m.StopSpinning()
	case ScreenTranslate:
		m.dirIsFixed = false
	}

	switch action {
	case MoveForward, MoveBackward, Drive:
		m.flyTimer.SetSingleShot(false)
		m.flyTimer.Start(flyTickPeriod)
	case Rotate:
		m.constrainedRotationIsReversed = m.TransformOf(m.sceneUpVector)[1] < 0
	}
}

func (m *manipulatedCameraFrameImpl) MousePressEvent(pos image.Point, view View) {
	m.prevPos = pos
	m.pressPos = pos
	m.lastMoveTime = m.scheduler.Now()
}

func (m *manipulatedCameraFrameImpl) MouseMoveEvent(pos image.Point, view View) {
	switch m.action {
	case Translate:
		delta := m.prevPos.Sub(pos)
		trans := m.scaleToScreen(common.Vec{float32(delta.X), float32(-delta.Y), 0}, view)
		m.Translate(m.InverseTransformOf(trans.Mul(m.translationSensitivity)))

	case MoveForward, MoveBackward, LookAround:
		m.Rotate(m.pitchYawQuaternion(pos, view))

	case Drive:
		m.Rotate(m.turnQuaternion(pos.X, view))
		m.driveSpeed = driveSpeedCoef * float32(pos.Y-m.pressPos.Y)

	case Zoom:
		m.Zoom(m.deltaWithPrevPos(pos, view), view)

	case Rotate:
		var rot common.Quaternion
		if m.rotatesAroundUpVector {
			dx := 2 * m.rotationSensitivity * float32(m.prevPos.X-pos.X) / float32(view.ScreenWidth())
			dy := 2 * m.rotationSensitivity * float32(m.prevPos.Y-pos.Y) / float32(view.ScreenHeight())
			if m.constrainedRotationIsReversed {
				dx = -dx
			}
			verticalAxis := m.TransformOf(m.sceneUpVector)
			rot = common.NewQuaternion(verticalAxis, dx).Mul(common.NewQuaternion(common.Vec{1, 0, 0}, dy))
		} else {
			center := view.ProjectedCoordinatesOf(m.pivotPoint)
			rot = m.deformedBallQuaternion(pos, center[0], center[1], view)
		}
		m.computeMouseSpeed(pos)
		m.SetSpinningQuaternion(rot)
		m.spin()

	case ScreenRotate:
		center := view.ProjectedCoordinatesOf(m.pivotPoint)
		angle := math32.Atan2(float32(pos.Y)-center[1], float32(pos.X)-center[0]) -
			math32.Atan2(float32(m.prevPos.Y)-center[1], float32(m.prevPos.X)-center[0])
		rot := common.NewQuaternion(common.Vec{0, 0, 1}, angle)
		m.computeMouseSpeed(pos)
		m.SetSpinningQuaternion(rot)
		m.spin()
		m.UpdateSceneUpVector()

	case Roll:
		angle := math32.Pi * float32(pos.X-m.prevPos.X) / float32(view.ScreenWidth())
		rot := common.NewQuaternion(common.Vec{0, 0, 1}, angle)
		m.Rotate(rot)
		m.SetSpinningQuaternion(rot)
		m.UpdateSceneUpVector()

	case ScreenTranslate:
		var trans common.Vec
		switch m.mouseOriginalDirection(pos) {
		case 1:
			trans = common.Vec{float32(m.prevPos.X - pos.X), 0, 0}
		case -1:
			trans = common.Vec{0, float32(pos.Y - m.prevPos.Y), 0}
		}
		trans = m.scaleToScreen(trans, view)
		m.Translate(m.InverseTransformOf(trans.Mul(m.translationSensitivity)))

	case ZoomOnRegion, NoMouseAction:
	}

	if m.action != NoMouseAction {
		m.prevPos = pos
		if m.action != ZoomOnRegion {
			signal.Fire(m.Signals(), Manipulated)
		}
	}
}

func (m *manipulatedCameraFrameImpl) MouseReleaseEvent(pos image.Point, view View) {
	if m.action.isFlying() {
		m.flyTimer.Stop()
	}
	if m.action == ZoomOnRegion {
		view.FitScreenRegion(image.Rectangle{Min: m.pressPos, Max: pos}.Canon())
	}

	m.restoreConstraint()
	if (m.action == Rotate || m.action == ScreenRotate) && m.mouseSpeed >= m.spinningSensitivity {
		m.StartSpinning(m.delay)
	}
	m.action = NoMouseAction
}

func (m *manipulatedCameraFrameImpl) WheelEvent(delta float32, view View) {
	switch m.action {
	case Zoom:
		m.Zoom(m.wheelDelta(delta), view)
		signal.Fire(m.Signals(), Manipulated)
	case MoveForward, MoveBackward:
		m.Translate(m.InverseTransformOf(common.Vec{0, 0, flyWheelCoefficient * m.flySpeed * delta}))
		signal.Fire(m.Signals(), Manipulated)
	}

	m.restoreConstraint()

	// the fly timer doubles as the final redraw trigger once the wheel stops
	m.flyTimer.SetSingleShot(true)
	m.flyTimer.Start(finalDrawAfterWheel)

	m.action = NoMouseAction
}

func (m *manipulatedCameraFrameImpl) Zoom(delta float32, view View) {
	sceneRadius := view.SceneRadius()
	if m.zoomsOnPivotPoint {
		direction := m.Position().Sub(m.pivotPoint)
		distance, minDistance := direction.Len(), zoomOnPivotMinRadius*sceneRadius
		if distance <= minDistance && delta <= 0 {
			return
		}
		if delta < 0 {
			// stop at the minimum distance instead of crossing the pivot
			delta = common.Max32(delta, minDistance/distance-1)
		}
		m.Translate(direction.Mul(delta))
		return
	}
	coef := common.Max32(math32.Abs(m.CoordinatesOf(m.pivotPoint)[2]), zoomMinDepthRadius*sceneRadius)
	m.Translate(m.InverseTransformOf(common.Vec{0, 0, -coef * delta}))
}

func (m *manipulatedCameraFrameImpl) PivotPoint() common.Vec {
	return m.pivotPoint
}

func (m *manipulatedCameraFrameImpl) SetPivotPoint(point common.Vec) {
	m.pivotPoint = point
}

func (m *manipulatedCameraFrameImpl) FlySpeed() float32 {
	return m.flySpeed
}

func (m *manipulatedCameraFrameImpl) SetFlySpeed(speed float32) {
	m.flySpeed = speed
}

func (m *manipulatedCameraFrameImpl) SceneUpVector() common.Vec {
	return m.sceneUpVector
}

func (m *manipulatedCameraFrameImpl) SetSceneUpVector(up common.Vec) {
	m.sceneUpVector = up
}

func (m *manipulatedCameraFrameImpl) UpdateSceneUpVector() {
	m.sceneUpVector = m.InverseTransformOf(common.Vec{0, 1, 0})
}

func (m *manipulatedCameraFrameImpl) RotatesAroundUpVector() bool {
	return m.rotatesAroundUpVector
}

func (m *manipulatedCameraFrameImpl) SetRotatesAroundUpVector(constrained bool) {
	m.rotatesAroundUpVector = constrained
}

func (m *manipulatedCameraFrameImpl) ZoomsOnPivotPoint() bool {
	return m.zoomsOnPivotPoint
}

func (m *manipulatedCameraFrameImpl) SetZoomsOnPivotPoint(enabled bool) {
	m.zoomsOnPivotPoint = enabled
}

func (m *manipulatedCameraFrameImpl) RotationSensitivity() float32 {
	return m.rotationSensitivity
}

func (m *manipulatedCameraFrameImpl) SetRotationSensitivity(sensitivity float32) {
	m.rotationSensitivity = sensitivity
}

func (m *manipulatedCameraFrameImpl) TranslationSensitivity() float32 {
	return m.translationSensitivity
}

func (m *manipulatedCameraFrameImpl) SetTranslationSensitivity(sensitivity float32) {
	m.translationSensitivity = sensitivity
}

func (m *manipulatedCameraFrameImpl) SpinningSensitivity() float32 {
	return m.spinningSensitivity
}

func (m *manipulatedCameraFrameImpl) SetSpinningSensitivity(sensitivity float32) {
	m.spinningSensitivity = sensitivity
}

func (m *manipulatedCameraFrameImpl) WheelSensitivity() float32 {
	return m.wheelSensitivity
}

func (m *manipulatedCameraFrameImpl) SetWheelSensitivity(sensitivity float32) {
	m.wheelSensitivity = sensitivity
}

func (m *manipulatedCameraFrameImpl) ZoomSensitivity() float32 {
	return m.zoomSensitivity
}

func (m *manipulatedCameraFrameImpl) SetZoomSensitivity(sensitivity float32) {
	m.zoomSensitivity = sensitivity
}

func (m *manipulatedCameraFrameImpl) SpinningQuaternion() common.Quaternion {
	return m.spinningQuat
}

func (m *manipulatedCameraFrameImpl) SetSpinningQuaternion(q common.Quaternion) {
	m.spinningQuat = q
}

func (m *manipulatedCameraFrameImpl) StartSpinning(interval time.Duration) {
	m.isSpinning = true
	m.spinningTimer.Start(interval)
}

func (m *manipulatedCameraFrameImpl) StopSpinning() {
	m.spinningTimer.Stop()
	m.isSpinning = false
}

func (m *manipulatedCameraFrameImpl) IsSpinning() bool {
	return m.isSpinning
}

func (m *manipulatedCameraFrameImpl) Release() {
	m.flyTimer.Stop()
	m.StopSpinning()
	m.scheduler.Remove(m.flyTimer)
	m.scheduler.Remove(m.spinningTimer)
}

// flyUpdate moves the frame one fly step. It also serves as the delayed final redraw after wheel events.
func (m *manipulatedCameraFrameImpl) flyUpdate() {
	var disp common.Vec
	switch m.action {
	case MoveForward:
		disp[2] = -m.flySpeed
		m.Translate(m.LocalInverseTransformOf(disp))
	case MoveBackward:
		disp[2] = m.flySpeed
		m.Translate(m.LocalInverseTransformOf(disp))
	case Drive:
		disp[2] = m.flySpeed * m.driveSpeed
		m.Translate(m.LocalInverseTransformOf(disp))
	}
	signal.Fire(m.Signals(), Manipulated)
}

func (m *manipulatedCameraFrameImpl) spinUpdate() {
	m.spin()
	signal.Fire(m.Signals(), Spun)
}

func (m *manipulatedCameraFrameImpl) spin() {
	m.RotateAroundPoint(m.spinningQuat, m.pivotPoint)
}

func (m *manipulatedCameraFrameImpl) restoreConstraint() {
	if m.constraintSuspended {
		m.SetConstraint(m.previousConstraint)
		m.previousConstraint = nil
		m.constraintSuspended = false
	}
}

// scaleToScreen converts a pixel displacement into a displacement at the pivot depth.
func (m *manipulatedCameraFrameImpl) scaleToScreen(trans common.Vec, view View) common.Vec {
	switch view.Type() {
	case Perspective:
		depth := math32.Abs(m.CoordinatesOf(m.pivotPoint)[2])
		return trans.Mul(2 * math32.Tan(view.FieldOfView()/2) * depth / float32(view.ScreenHeight()))
	case Orthographic:
		w, h := view.OrthoWidthHeight()
		trans[0] *= 2 * w / float32(view.ScreenWidth())
		trans[1] *= 2 * h / float32(view.ScreenHeight())
	}
	return trans
}

// turnQuaternion rotates around the frame Y axis proportionally to the horizontal pointer motion.
func (m *manipulatedCameraFrameImpl) turnQuaternion(x int, view View) common.Quaternion {
	angle := m.rotationSensitivity * float32(m.prevPos.X-x) / float32(view.ScreenWidth())
	return common.NewQuaternion(common.Vec{0, 1, 0}, angle)
}

// pitchYawQuaternion combines a pitch around the frame X axis with a yaw around the scene up vector.
func (m *manipulatedCameraFrameImpl) pitchYawQuaternion(pos image.Point, view View) common.Quaternion {
	rotX := common.NewQuaternion(common.Vec{1, 0, 0},
		m.rotationSensitivity*float32(m.prevPos.Y-pos.Y)/float32(view.ScreenHeight()))
	rotY := common.NewQuaternion(m.TransformOf(m.sceneUpVector),
		m.rotationSensitivity*float32(m.prevPos.X-pos.X)/float32(view.ScreenWidth()))
	return rotY.Mul(rotX)
}
