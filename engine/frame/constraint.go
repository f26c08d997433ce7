package frame

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/trackball/common"
)

// Constraint filters the displacements applied to a Frame.
// Translations are expressed in world coordinates, rotations in the frame's coordinates.
type Constraint interface {
	// ConstrainTranslation returns the admissible part of translation.
	//
	// Parameters:
	//   - translation: the requested world-space translation
	//   - f: the frame being moved
	//
	// Returns:
	//   - common.Vec: the translation to apply
	ConstrainTranslation(translation common.Vec, f Frame) common.Vec

	// ConstrainRotation returns the admissible part of rotation.
	//
	// Parameters:
	//   - rotation: the requested rotation, in frame coordinates
	//   - f: the frame being rotated
	//
	// Returns:
	//   - common.Quaternion: the rotation to apply
	ConstrainRotation(rotation common.Quaternion, f Frame) common.Quaternion
}

// ConstraintType selects how an AxisPlaneConstraint filters a displacement.
type ConstraintType int

const (
	// Free leaves the displacement untouched.
	Free ConstraintType = iota
	// Axis keeps only the component along the constraint direction.
	Axis
	// Plane removes the component along the constraint direction. Rotations are left free.
	Plane
	// Forbidden cancels the displacement.
	Forbidden
)

// AxisPlaneConstraint restricts translations and rotations to an axis or a plane whose
// directions are given in world coordinates.
type AxisPlaneConstraint struct {
	TranslationType      ConstraintType
	TranslationDirection common.Vec
	RotationType         ConstraintType
	RotationDirection    common.Vec
}

var _ Constraint = &AxisPlaneConstraint{}

func (c *AxisPlaneConstraint) ConstrainTranslation(translation common.Vec, _ Frame) common.Vec {
	switch c.TranslationType {
	case Axis:
		if c.TranslationDirection.LenSqr() == 0 {
			return translation
		}
		return common.ProjectOnAxis(translation, c.TranslationDirection)
	case Plane:
		if c.TranslationDirection.LenSqr() == 0 {
			return translation
		}
		return common.ProjectOnPlane(translation, c.TranslationDirection)
	case Forbidden:
		return common.Vec{}
	default:
		return translation
	}
}

func (c *AxisPlaneConstraint) ConstrainRotation(rotation common.Quaternion, f Frame) common.Quaternion {
	switch c.RotationType {
	case Axis:
		if c.RotationDirection.LenSqr() == 0 {
			return rotation
		}
		axis := f.TransformOf(c.RotationDirection)
		v := common.ProjectOnAxis(rotation.V, axis)
		return common.NewQuaternion(v, 2*math32.Acos(common.Clamp(rotation.W, -1, 1)))
	case Forbidden:
		return common.QuaternionIdentity()
	default:
		return rotation
	}
}
