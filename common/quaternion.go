package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Quaternion represents a rotation as W + V (x, y, z). Rotations are expected to be unit quaternions;
// keeping the norm at one after composition is the caller's responsibility.
type Quaternion = mgl32.Quat

// QuaternionIdentity returns the null rotation.
func QuaternionIdentity() Quaternion {
	return mgl32.QuatIdent()
}

// NewQuaternion builds the rotation of angle radians around axis.
// The axis does not need to be normalized. A null axis (norm below 1e-8) yields the identity.
//
// Parameters:
//   - axis: the rotation axis
//   - angle: the rotation angle in radians
//
// Returns:
//   - Quaternion: the unit rotation
func NewQuaternion(axis Vec, angle float32) Quaternion {
	norm := axis.Len()
	if norm < 1e-8 {
		return QuaternionIdentity()
	}
	s := math32.Sin(angle / 2)
	return Quaternion{W: math32.Cos(angle / 2), V: axis.Mul(s / norm)}
}

// QuaternionFromTo returns a rotation that maps the direction from onto the direction to.
// When either vector is null the identity is returned. Opposite directions yield a half turn
// around a vector orthogonal to from.
//
// Parameters:
//   - from: the source direction
//   - to: the destination direction
//
// Returns:
//   - Quaternion: the rotation from from to to
func QuaternionFromTo(from, to Vec) Quaternion {
	fromSq := from.LenSqr()
	toSq := to.LenSqr()
	if fromSq < 1e-10 || toSq < 1e-10 {
		return QuaternionIdentity()
	}
	axis := from.Cross(to)
	axisSq := axis.LenSqr()
	if axisSq < 1e-10 {
		axis = OrthogonalVec(from)
	}
	angle := math32.Asin(Clamp(math32.Sqrt(axisSq/(fromSq*toSq)), 0, 1))
	if from.Dot(to) < 0 {
		angle = math32.Pi - angle
	}
	return NewQuaternion(axis, angle)
}

// Negate returns -q, which represents the same rotation as q.
func Negate(q Quaternion) Quaternion {
	return Quaternion{W: -q.W, V: q.V.Mul(-1)}
}

// Angle returns the rotation angle of q in [0, π].
func Angle(q Quaternion) float32 {
	angle := 2 * math32.Acos(Clamp(q.W, -1, 1))
	if angle <= math32.Pi {
		return angle
	}
	return 2*math32.Pi - angle
}

// Axis returns the normalized rotation axis of q, oriented so that Angle(q) stays in [0, π].
func Axis(q Quaternion) Vec {
	res := q.V
	if sinus := res.Len(); sinus > 1e-8 {
		res = res.Mul(1 / sinus)
	}
	if math32.Acos(Clamp(q.W, -1, 1)) <= math32.Pi/2 {
		return res
	}
	return res.Mul(-1)
}

// InverseRotate applies the inverse rotation of q to v.
func InverseRotate(q Quaternion, v Vec) Vec {
	return q.Conjugate().Rotate(v)
}

// Log returns the logarithm of the unit quaternion q, as a pure quaternion (W = 0).
// Near-identity rotations (vector part below 1e-6) return the raw vector part.
//
// Parameters:
//   - q: a unit quaternion
//
// Returns:
//   - Quaternion: log(q)
func Log(q Quaternion) Quaternion {
	length := q.V.Len()
	if length < 1e-6 {
		return Quaternion{W: 0, V: q.V}
	}
	coef := math32.Acos(Clamp(q.W, -1, 1)) / length
	return Quaternion{W: 0, V: q.V.Mul(coef)}
}

// Exp returns the exponential of q, which is expected to be a pure quaternion (W = 0).
//
// Parameters:
//   - q: a pure quaternion
//
// Returns:
//   - Quaternion: exp(q)
func Exp(q Quaternion) Quaternion {
	theta := q.V.Len()
	if theta < 1e-6 {
		return Quaternion{W: math32.Cos(theta), V: q.V}
	}
	coef := math32.Sin(theta) / theta
	return Quaternion{W: math32.Cos(theta), V: q.V.Mul(coef)}
}

// LnDif returns log(a⁻¹·b), the logarithm of the rotation that brings a onto b.
func LnDif(a, b Quaternion) Quaternion {
	return Log(a.Inverse().Mul(b).Normalize())
}

// SquadTangent returns the squad tangent of center given its neighbours before and after.
// Used as the inner control point of a squad segment.
//
// Parameters:
//   - before: the previous keyframe orientation
//   - center: the orientation the tangent is computed at
//   - after: the next keyframe orientation
//
// Returns:
//   - Quaternion: the tangent quaternion
func SquadTangent(before, center, after Quaternion) Quaternion {
	l1 := LnDif(center, before)
	l2 := LnDif(center, after)
	e := Quaternion{W: -0.25 * (l1.W + l2.W), V: l1.V.Add(l2.V).Mul(-0.25)}
	return center.Mul(Exp(e))
}

// Slerp spherically interpolates between a (t = 0) and b (t = 1).
// When allowFlip is true and the quaternions lie in opposite hemispheres, the shortest arc is used.
// Nearly identical orientations fall back to linear blending. The result is not normalized.
//
// Parameters:
//   - a: the start orientation
//   - b: the end orientation
//   - t: the interpolation parameter
//   - allowFlip: whether the shortest path may be taken by negating a
//
// Returns:
//   - Quaternion: the interpolated quaternion
func Slerp(a, b Quaternion, t float32, allowFlip bool) Quaternion {
	cosAngle := a.Dot(b)

	var c1, c2 float32
	if 1-math32.Abs(cosAngle) < 0.01 {
		c1 = 1 - t
		c2 = t
	} else {
		angle := math32.Acos(Clamp(math32.Abs(cosAngle), -1, 1))
		sinAngle := math32.Sin(angle)
		c1 = math32.Sin(angle*(1-t)) / sinAngle
		c2 = math32.Sin(angle*t) / sinAngle
	}

	if allowFlip && cosAngle < 0 {
		c1 = -c1
	}

	return Quaternion{
		W: c1*a.W + c2*b.W,
		V: a.V.Mul(c1).Add(b.V.Mul(c2)),
	}
}

// Squad performs spherical quadrangle interpolation between a and b using the tangents tgA and tgB.
//
// Parameters:
//   - a: the start orientation
//   - tgA: the squad tangent at a
//   - tgB: the squad tangent at b
//   - b: the end orientation
//   - t: the interpolation parameter in [0, 1]
//
// Returns:
//   - Quaternion: the interpolated quaternion
func Squad(a, tgA, tgB, b Quaternion, t float32) Quaternion {
	ab := Slerp(a, b, t, true)
	tg := Slerp(tgA, tgB, t, false)
	return Slerp(ab, tg, 2*t*(1-t), false)
}

// QuaternionFromRotatedBasis returns the rotation mapping the world axes onto the given basis.
// The three vectors must form an orthogonal right-handed basis; they are normalized here.
//
// Parameters:
//   - x: the image of the X axis
//   - y: the image of the Y axis
//   - z: the image of the Z axis
//
// Returns:
//   - Quaternion: the unit rotation
func QuaternionFromRotatedBasis(x, y, z Vec) Quaternion {
	m := mgl32.Mat3FromCols(x.Normalize(), y.Normalize(), z.Normalize())
	return mgl32.Mat4ToQuat(m.Mat4()).Normalize()
}
