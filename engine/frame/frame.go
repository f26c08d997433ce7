package frame

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/signal"
)

var (
	// Modified is emitted every time the position or orientation of a frame changes.
	Modified = signal.NewSignal("modified")

	// Interpolated is emitted when a keyframe interpolator has written a new pose into the frame.
	Interpolated = signal.NewSignal("interpolated")
)

type frameImpl struct {
	id  signal.ID
	bus *signal.Bus

	position    common.Vec
	orientation common.Quaternion

	constraint Constraint
}

// Frame is a coordinate system defined by a position and an orientation in world space.
// Displacements can be filtered by an optional Constraint.
//
// A Frame is not safe for concurrent use; it is meant to be driven from the event loop goroutine.
type Frame interface {
	// ID returns the identity the frame uses when subscribing to other buses.
	//
	// Returns:
	//   - signal.ID: the frame identity
	ID() signal.ID

	// Signals returns the bus on which Modified and Interpolated are emitted.
	//
	// Returns:
	//   - *signal.Bus: the frame's bus
	Signals() *signal.Bus

	// Position returns the frame origin in world coordinates.
	//
	// Returns:
	//   - common.Vec: the position
	Position() common.Vec

	// Orientation returns the frame rotation in world coordinates.
	//
	// Returns:
	//   - common.Quaternion: the orientation
	Orientation() common.Quaternion

	// SetPosition moves the frame origin, ignoring the constraint.
	//
	// Parameters:
	//   - position: the new position
	SetPosition(position common.Vec)

	// SetOrientation sets the frame rotation, ignoring the constraint. The quaternion is normalized.
	//
	// Parameters:
	//   - orientation: the new orientation
	SetOrientation(orientation common.Quaternion)

	// SetPositionAndOrientation sets both values with a single Modified emission, ignoring the constraint.
	//
	// Parameters:
	//   - position: the new position
	//   - orientation: the new orientation
	SetPositionAndOrientation(position common.Vec, orientation common.Quaternion)

	// SetPositionWithConstraint moves the frame towards position, filtered by the constraint.
	//
	// Parameters:
	//   - position: the requested position
	//
	// Returns:
	//   - common.Vec: the position actually reached
	SetPositionWithConstraint(position common.Vec) common.Vec

	// SetOrientationWithConstraint rotates the frame towards orientation, filtered by the constraint.
	//
	// Parameters:
	//   - orientation: the requested orientation
	//
	// Returns:
	//   - common.Quaternion: the orientation actually reached
	SetOrientationWithConstraint(orientation common.Quaternion) common.Quaternion

	// SetPositionAndOrientationWithConstraint moves and rotates the frame towards the requested pose.
	// The displacement is filtered by the constraint; without one the pose is applied as is.
	//
	// Parameters:
	//   - position: the requested position
	//   - orientation: the requested orientation
	SetPositionAndOrientationWithConstraint(position common.Vec, orientation common.Quaternion)

	// Translate moves the frame by t (world coordinates), filtered by the constraint.
	//
	// Parameters:
	//   - t: the translation
	Translate(t common.Vec)

	// Rotate composes the frame orientation with q (frame coordinates), filtered by the constraint.
	//
	// Parameters:
	//   - q: the rotation
	Rotate(q common.Quaternion)

	// RotateAroundPoint rotates the frame by q (frame coordinates) around point (world coordinates).
	// Both the orientation and the position change.
	//
	// Parameters:
	//   - q: the rotation
	//   - point: the world-space center of rotation
	RotateAroundPoint(q common.Quaternion, point common.Vec)

	// CoordinatesOf converts a world-space point into frame coordinates.
	CoordinatesOf(p common.Vec) common.Vec

	// InverseCoordinatesOf converts a frame-space point into world coordinates.
	InverseCoordinatesOf(p common.Vec) common.Vec

	// TransformOf converts a world-space vector into frame coordinates (rotation only).
	TransformOf(v common.Vec) common.Vec

	// InverseTransformOf converts a frame-space vector into world coordinates (rotation only).
	InverseTransformOf(v common.Vec) common.Vec

	// LocalInverseTransformOf converts a frame-space vector into the coordinates of the
	// reference system, which is the world for every frame of this package.
	LocalInverseTransformOf(v common.Vec) common.Vec

	// Matrix returns the frame-to-world transform.
	//
	// Returns:
	//   - mgl32.Mat4: translation times rotation, column-major
	Matrix() mgl32.Mat4

	// Constraint returns the attached constraint, or nil.
	Constraint() Constraint

	// SetConstraint attaches a constraint. Pass nil to remove it.
	SetConstraint(c Constraint)
}

var _ Frame = &frameImpl{}

// NewFrame creates a Frame at the world origin with the identity orientation.
//
// Parameters:
//   - options: functional options to configure the frame
//
// Returns:
//   - Frame: the newly created frame
func NewFrame(options ...FrameBuilderOption) Frame {
	f := &frameImpl{
		id:          signal.NextID(),
		bus:         signal.NewBus(Modified, Interpolated),
		orientation: common.QuaternionIdentity(),
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *frameImpl) ID() signal.ID {
	return f.id
}

func (f *frameImpl) Signals() *signal.Bus {
	return f.bus
}

func (f *frameImpl) Position() common.Vec {
	return f.position
}

func (f *frameImpl) Orientation() common.Quaternion {
	return f.orientation
}

func (f *frameImpl) SetPosition(position common.Vec) {
	f.position = position
	f.modified()
}

func (f *frameImpl) SetOrientation(orientation common.Quaternion) {
	f.orientation = orientation.Normalize()
	f.modified()
}

func (f *frameImpl) SetPositionAndOrientation(position common.Vec, orientation common.Quaternion) {
	f.position = position
	f.orientation = orientation.Normalize()
	f.modified()
}

func (f *frameImpl) SetPositionWithConstraint(position common.Vec) common.Vec {
	delta := position.Sub(f.position)
	if f.constraint != nil {
		delta = f.constraint.ConstrainTranslation(delta, f)
	}
	f.position = f.position.Add(delta)
	f.modified()
	return f.position
}

func (f *frameImpl) SetOrientationWithConstraint(orientation common.Quaternion) common.Quaternion {
	delta := f.orientation.Inverse().Mul(orientation)
	if f.constraint != nil {
		delta = f.constraint.ConstrainRotation(delta, f)
	}
	f.orientation = f.orientation.Mul(delta.Normalize()).Normalize()
	f.modified()
	return f.orientation
}

func (f *frameImpl) SetPositionAndOrientationWithConstraint(position common.Vec, orientation common.Quaternion) {
	if f.constraint == nil {
		f.SetPositionAndOrientation(position, orientation)
		return
	}
	deltaT := f.constraint.ConstrainTranslation(position.Sub(f.position), f)
	deltaQ := f.constraint.ConstrainRotation(f.orientation.Inverse().Mul(orientation), f)
	f.position = f.position.Add(deltaT)
	f.orientation = f.orientation.Mul(deltaQ.Normalize()).Normalize()
	f.modified()
}

func (f *frameImpl) Translate(t common.Vec) {
	if f.constraint != nil {
		t = f.constraint.ConstrainTranslation(t, f)
	}
	f.position = f.position.Add(t)
	f.modified()
}

func (f *frameImpl) Rotate(q common.Quaternion) {
	if f.constraint != nil {
		q = f.constraint.ConstrainRotation(q, f)
	}
	f.orientation = f.orientation.Mul(q).Normalize()
	f.modified()
}

func (f *frameImpl) RotateAroundPoint(q common.Quaternion, point common.Vec) {
	if f.constraint != nil {
		q = f.constraint.ConstrainRotation(q, f)
	}
	f.orientation = f.orientation.Mul(q).Normalize()

	worldRotation := common.NewQuaternion(f.InverseTransformOf(common.Axis(q)), common.Angle(q))
	trans := point.Add(worldRotation.Rotate(f.position.Sub(point))).Sub(f.position)
	if f.constraint != nil {
		trans = f.constraint.ConstrainTranslation(trans, f)
	}
	f.position = f.position.Add(trans)
	f.modified()
}

func (f *frameImpl) CoordinatesOf(p common.Vec) common.Vec {
	return common.InverseRotate(f.orientation, p.Sub(f.position))
}

func (f *frameImpl) InverseCoordinatesOf(p common.Vec) common.Vec {
	return f.orientation.Rotate(p).Add(f.position)
}

func (f *frameImpl) TransformOf(v common.Vec) common.Vec {
	return common.InverseRotate(f.orientation, v)
}

func (f *frameImpl) InverseTransformOf(v common.Vec) common.Vec {
	return f.orientation.Rotate(v)
}

func (f *frameImpl) LocalInverseTransformOf(v common.Vec) common.Vec {
	return f.orientation.Rotate(v)
}

func (f *frameImpl) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(f.position[0], f.position[1], f.position[2]).Mul4(f.orientation.Mat4())
}

func (f *frameImpl) Constraint() Constraint {
	return f.constraint
}

func (f *frameImpl) SetConstraint(c Constraint) {
	f.constraint = c
}

// modified notifies subscribers that the pose changed.
func (f *frameImpl) modified() {
	signal.Fire(f.bus, Modified)
}
