package frame

import "github.com/Carmen-Shannon/trackball/common"

// FrameBuilderOption is a functional option for configuring a Frame.
type FrameBuilderOption func(*frameImpl)

// WithPosition sets the initial position of the frame.
//
// Parameters:
//   - position: world-space position
//
// Returns:
//   - FrameBuilderOption: option function to apply
func WithPosition(position common.Vec) FrameBuilderOption {
	return func(f *frameImpl) {
		f.position = position
	}
}

// WithOrientation sets the initial orientation of the frame. The quaternion is normalized.
//
// Parameters:
//   - orientation: world-space orientation
//
// Returns:
//   - FrameBuilderOption: option function to apply
func WithOrientation(orientation common.Quaternion) FrameBuilderOption {
	return func(f *frameImpl) {
		f.orientation = orientation.Normalize()
	}
}

// WithConstraint attaches a constraint filtering every constrained displacement.
//
// Parameters:
//   - c: the constraint
//
// Returns:
//   - FrameBuilderOption: option function to apply
func WithConstraint(c Constraint) FrameBuilderOption {
	return func(f *frameImpl) {
		f.constraint = c
	}
}
