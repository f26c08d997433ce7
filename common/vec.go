package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vec is a 3D vector of float32 components used for positions, directions and tangents.
// It is a value type: every operation returns a new vector.
type Vec = mgl32.Vec3

// ProjectOnAxis returns the projection of v on the axis defined by direction.
// The direction does not need to be normalized but must not be null.
//
// Parameters:
//   - v: the vector to project
//   - direction: the axis direction
//
// Returns:
//   - Vec: the projected vector, colinear with direction
func ProjectOnAxis(v, direction Vec) Vec {
	return direction.Mul(v.Dot(direction) / direction.LenSqr())
}

// ProjectOnPlane returns the projection of v on the plane through the origin whose normal is normal.
// The normal does not need to be normalized but must not be null.
//
// Parameters:
//   - v: the vector to project
//   - normal: the plane normal
//
// Returns:
//   - Vec: the projected vector, orthogonal to normal
func ProjectOnPlane(v, normal Vec) Vec {
	return v.Sub(normal.Mul(v.Dot(normal) / normal.LenSqr()))
}

// OrthogonalVec returns a vector orthogonal to v.
// Its norm depends on v and is zero only for a null vector. The mapping is not continuous.
//
// Parameters:
//   - v: the reference vector
//
// Returns:
//   - Vec: a vector orthogonal to v
func OrthogonalVec(v Vec) Vec {
	ax, ay, az := math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])
	switch {
	case ay >= 0.9*ax && az >= 0.9*ax:
		return Vec{0, -v[2], v[1]}
	case ax >= 0.9*ay && az >= 0.9*ay:
		return Vec{-v[2], 0, v[0]}
	default:
		return Vec{-v[1], v[0], 0}
	}
}

// SquaredDistance returns the squared euclidean distance between a and b.
func SquaredDistance(a, b Vec) float32 {
	return a.Sub(b).LenSqr()
}
