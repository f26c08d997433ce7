package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func assertVecInDelta(t *testing.T, expected, actual Vec) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], eps, "component %d of %v", i, actual)
	}
}

// assertSameRotation compares two rotations up to the sign of the quaternion.
func assertSameRotation(t *testing.T, expected, actual Quaternion) {
	t.Helper()
	dot := expected.Normalize().Dot(actual.Normalize())
	assert.InDelta(t, 1, math32.Abs(dot), eps, "expected %v, got %v", expected, actual)
}

func TestNewQuaternionNullAxisIsIdentity(t *testing.T) {
	q := NewQuaternion(Vec{0, 0, 0}, 1.2)
	assert.Equal(t, QuaternionIdentity(), q)
}

func TestNewQuaternionRotatesVectors(t *testing.T) {
	q := NewQuaternion(Vec{0, 0, 5}, math32.Pi/2)
	assertVecInDelta(t, Vec{0, 1, 0}, q.Rotate(Vec{1, 0, 0}))
	assertVecInDelta(t, Vec{1, 0, 0}, InverseRotate(q, Vec{0, 1, 0}))
}

func TestAxisAndAngle(t *testing.T) {
	q := NewQuaternion(Vec{0, 1, 0}, 0.8)
	assert.InDelta(t, 0.8, Angle(q), eps)
	assertVecInDelta(t, Vec{0, 1, 0}, Axis(q))

	n := Negate(q)
	assert.InDelta(t, 0.8, Angle(n), eps)
	assertVecInDelta(t, Vec{0, 1, 0}, Axis(n))
}

func TestQuaternionFromTo(t *testing.T) {
	q := QuaternionFromTo(Vec{1, 0, 0}, Vec{0, 0, 2})
	assertVecInDelta(t, Vec{0, 0, 1}, q.Rotate(Vec{1, 0, 0}))

	opposite := QuaternionFromTo(Vec{1, 0, 0}, Vec{-1, 0, 0})
	assertVecInDelta(t, Vec{-1, 0, 0}, opposite.Rotate(Vec{1, 0, 0}))

	assert.Equal(t, QuaternionIdentity(), QuaternionFromTo(Vec{}, Vec{1, 0, 0}))
}

func TestLogExpRoundTrip(t *testing.T) {
	q := NewQuaternion(Vec{1, 2, 3}, 1.0)
	l := Log(q)
	assert.Zero(t, l.W)
	assertSameRotation(t, q, Exp(l))

	ident := Log(QuaternionIdentity())
	assert.Equal(t, Vec{}, ident.V)
}

func TestSlerpEndpoints(t *testing.T) {
	a := NewQuaternion(Vec{0, 0, 1}, 0.2)
	b := NewQuaternion(Vec{1, 0, 0}, 1.4)

	assertSameRotation(t, a, Slerp(a, b, 0, true))
	assertSameRotation(t, b, Slerp(a, b, 1, true))
}

func TestSlerpMidpoint(t *testing.T) {
	a := QuaternionIdentity()
	b := NewQuaternion(Vec{0, 0, 1}, math32.Pi/2)

	mid := Slerp(a, b, 0.5, true)
	assert.InDelta(t, 1, mid.Len(), eps)
	assertSameRotation(t, NewQuaternion(Vec{0, 0, 1}, math32.Pi/4), mid)
}

func TestSlerpTakesShortestArcWhenFlipAllowed(t *testing.T) {
	a := QuaternionIdentity()
	b := Negate(NewQuaternion(Vec{0, 0, 1}, math32.Pi/2))

	mid := Slerp(a, b, 0.5, true)
	assertSameRotation(t, NewQuaternion(Vec{0, 0, 1}, math32.Pi/4), mid)
}

func TestSlerpNearlyIdenticalUsesLinearBlend(t *testing.T) {
	a := NewQuaternion(Vec{0, 1, 0}, 0.3)
	b := NewQuaternion(Vec{0, 1, 0}, 0.301)

	mid := Slerp(a, b, 0.5, false)
	assert.InDelta(t, 0.5*(a.W+b.W), mid.W, 1e-6)
}

func TestSquadEndpoints(t *testing.T) {
	a := NewQuaternion(Vec{0, 0, 1}, 0.1)
	b := NewQuaternion(Vec{0, 1, 0}, 1.1)
	tgA := SquadTangent(a, a, b)
	tgB := SquadTangent(a, b, b)

	assertSameRotation(t, a, Squad(a, tgA, tgB, b, 0))
	assertSameRotation(t, b, Squad(a, tgA, tgB, b, 1))
}

func TestSquadTangentOfUniformRotationIsCenter(t *testing.T) {
	axis := Vec{0, 0, 1}
	before := NewQuaternion(axis, 0)
	center := NewQuaternion(axis, 0.5)
	after := NewQuaternion(axis, 1)

	tg := SquadTangent(before, center, after)
	require.InDelta(t, 1, tg.Len(), eps)
	assertSameRotation(t, center, tg)
}

func TestLnDifOfIdenticalRotationsIsZero(t *testing.T) {
	q := NewQuaternion(Vec{1, 1, 0}, 0.7)
	d := LnDif(q, q)
	assert.InDelta(t, 0, d.V.Len(), eps)
}

func TestQuaternionFromRotatedBasis(t *testing.T) {
	// camera looking down -X with Y up: its Z axis points to +X
	q := QuaternionFromRotatedBasis(Vec{0, 0, -1}, Vec{0, 2, 0}, Vec{3, 0, 0})
	assertVecInDelta(t, Vec{0, 0, -1}, q.Rotate(Vec{1, 0, 0}))
	assertVecInDelta(t, Vec{0, 1, 0}, q.Rotate(Vec{0, 1, 0}))
	assertVecInDelta(t, Vec{-1, 0, 0}, q.Rotate(Vec{0, 0, -1}))
}
