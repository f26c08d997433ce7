package camera

import (
	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/frame"
)

// ManipulatedCameraFrameBuilderOption is a functional option for configuring a ManipulatedCameraFrame.
type ManipulatedCameraFrameBuilderOption func(*manipulatedCameraFrameImpl)

// WithFrame wraps an existing frame instead of creating one at the origin.
// The wrapped frame's bus also carries Manipulated and Spun.
//
// Parameters:
//   - f: the frame to manipulate
//
// Returns:
//   - ManipulatedCameraFrameBuilderOption: option function to apply
func WithFrame(f frame.Frame) ManipulatedCameraFrameBuilderOption {
	return func(m *manipulatedCameraFrameImpl) {
		m.Frame = f
	}
}

// WithPivotPoint sets the initial pivot point.
//
// Parameters:
//   - point: the world-space pivot point
//
// Returns:
//   - ManipulatedCameraFrameBuilderOption: option function to apply
func WithPivotPoint(point common.Vec) ManipulatedCameraFrameBuilderOption {
	return func(m *manipulatedCameraFrameImpl) {
		m.pivotPoint = point
	}
}

// WithFlySpeed sets the distance travelled per fly tick.
//
// Parameters:
//   - speed: the fly speed in scene units
//
// Returns:
//   - ManipulatedCameraFrameBuilderOption: option function to apply
func WithFlySpeed(speed float32) ManipulatedCameraFrameBuilderOption {
	return func(m *manipulatedCameraFrameImpl) {
		m.flySpeed = speed
	}
}

// WithSceneUpVector sets the world-space vertical.
//
// Parameters:
//   - up: the scene up vector
//
// Returns:
//   - ManipulatedCameraFrameBuilderOption: option function to apply
func WithSceneUpVector(up common.Vec) ManipulatedCameraFrameBuilderOption {
	return func(m *manipulatedCameraFrameImpl) {
		m.sceneUpVector = up
	}
}

// WithRotatesAroundUpVector enables the constrained rotation mode.
//
// Parameters:
//   - constrained: true to rotate around the scene up vector
//
// Returns:
//   - ManipulatedCameraFrameBuilderOption: option function to apply
func WithRotatesAroundUpVector(constrained bool) ManipulatedCameraFrameBuilderOption {
	return func(m *manipulatedCameraFrameImpl) {
		m.rotatesAroundUpVector = constrained
	}
}

// WithZoomsOnPivotPoint makes zoom actions move towards the pivot point.
//
// Parameters:
//   - enabled: true to zoom on the pivot point
//
// Returns:
//   - ManipulatedCameraFrameBuilderOption: option function to apply
func WithZoomsOnPivotPoint(enabled bool) ManipulatedCameraFrameBuilderOption {
	return func(m *manipulatedCameraFrameImpl) {
		m.zoomsOnPivotPoint = enabled
	}
}

// Sensitivities groups the speed multipliers of a ManipulatedCameraFrame. Zero fields keep the defaults.
type Sensitivities struct {
	Rotation    float32
	Translation float32
	Spinning    float32
	Wheel       float32
	Zoom        float32
}

// WithSensitivities overrides the non-zero speed multipliers.
//
// Parameters:
//   - s: the multipliers to apply
//
// Returns:
//   - ManipulatedCameraFrameBuilderOption: option function to apply
func WithSensitivities(s Sensitivities) ManipulatedCameraFrameBuilderOption {
	return func(m *manipulatedCameraFrameImpl) {
		m.rotationSensitivity = common.Coalesce(s.Rotation, m.rotationSensitivity)
		m.translationSensitivity = common.Coalesce(s.Translation, m.translationSensitivity)
		m.spinningSensitivity = common.Coalesce(s.Spinning, m.spinningSensitivity)
		m.wheelSensitivity = common.Coalesce(s.Wheel, m.wheelSensitivity)
		m.zoomSensitivity = common.Coalesce(s.Zoom, m.zoomSensitivity)
	}
}
