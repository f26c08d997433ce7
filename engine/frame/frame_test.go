package frame

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/signal"
)

const eps = 1e-4

func assertVecInDelta(t *testing.T, expected, actual common.Vec) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], eps, "component %d of %v", i, actual)
	}
}

func countModified(f Frame) *int {
	n := new(int)
	signal.Connect(f.Signals(), Modified, signal.NextID(), func() { *n++ })
	return n
}

func TestNewFrameDefaults(t *testing.T) {
	f := NewFrame()
	assert.Equal(t, common.Vec{}, f.Position())
	assert.Equal(t, common.QuaternionIdentity(), f.Orientation())
	assert.Nil(t, f.Constraint())
	assert.True(t, f.Signals().Declared(Modified.Name()))
	assert.True(t, f.Signals().Declared(Interpolated.Name()))
}

func TestMutationsEmitModified(t *testing.T) {
	f := NewFrame()
	n := countModified(f)

	f.SetPosition(common.Vec{1, 0, 0})
	f.SetOrientation(common.NewQuaternion(common.Vec{0, 1, 0}, 1))
	f.Translate(common.Vec{0, 1, 0})
	f.Rotate(common.NewQuaternion(common.Vec{0, 1, 0}, 0.5))
	f.SetPositionAndOrientationWithConstraint(common.Vec{}, common.QuaternionIdentity())

	assert.Equal(t, 5, *n)
}

func TestCoordinateConversions(t *testing.T) {
	f := NewFrame(
		WithPosition(common.Vec{1, 2, 3}),
		WithOrientation(common.NewQuaternion(common.Vec{0, 0, 1}, math32.Pi/2)),
	)

	local := f.CoordinatesOf(common.Vec{1, 3, 3})
	assertVecInDelta(t, common.Vec{1, 0, 0}, local)
	assertVecInDelta(t, common.Vec{1, 3, 3}, f.InverseCoordinatesOf(local))

	assertVecInDelta(t, common.Vec{0, 1, 0}, f.InverseTransformOf(common.Vec{1, 0, 0}))
	assertVecInDelta(t, common.Vec{1, 0, 0}, f.TransformOf(common.Vec{0, 1, 0}))
	assertVecInDelta(t, f.InverseTransformOf(common.Vec{0, 0, 1}), f.LocalInverseTransformOf(common.Vec{0, 0, 1}))

	m := f.Matrix()
	p := m.Mul4x1(common.Vec{1, 0, 0}.Vec4(1)).Vec3()
	assertVecInDelta(t, common.Vec{1, 3, 3}, p)
}

func TestRotateAroundPoint(t *testing.T) {
	f := NewFrame(WithPosition(common.Vec{2, 0, 0}))
	f.RotateAroundPoint(common.NewQuaternion(common.Vec{0, 0, 1}, math32.Pi/2), common.Vec{1, 0, 0})

	assertVecInDelta(t, common.Vec{1, 1, 0}, f.Position())
	assertVecInDelta(t, common.Vec{0, 1, 0}, f.InverseTransformOf(common.Vec{1, 0, 0}))
}

func TestSetPositionAndOrientationWithoutConstraint(t *testing.T) {
	f := NewFrame()
	q := common.NewQuaternion(common.Vec{1, 1, 0}, 0.7)
	f.SetPositionAndOrientationWithConstraint(common.Vec{4, 5, 6}, q)

	assertVecInDelta(t, common.Vec{4, 5, 6}, f.Position())
	assert.InDelta(t, 1, math32.Abs(f.Orientation().Dot(q)), eps)
}

func TestAxisTranslationConstraint(t *testing.T) {
	c := &AxisPlaneConstraint{TranslationType: Axis, TranslationDirection: common.Vec{0, 1, 0}}
	f := NewFrame(WithConstraint(c))

	f.Translate(common.Vec{3, 4, 5})
	assertVecInDelta(t, common.Vec{0, 4, 0}, f.Position())

	reached := f.SetPositionWithConstraint(common.Vec{7, 7, 7})
	assertVecInDelta(t, common.Vec{0, 7, 0}, reached)
}

func TestPlaneTranslationConstraint(t *testing.T) {
	c := &AxisPlaneConstraint{TranslationType: Plane, TranslationDirection: common.Vec{0, 1, 0}}
	f := NewFrame(WithConstraint(c))

	f.SetPositionAndOrientationWithConstraint(common.Vec{3, 4, 5}, common.QuaternionIdentity())
	assertVecInDelta(t, common.Vec{3, 0, 5}, f.Position())
}

func TestForbiddenConstraint(t *testing.T) {
	c := &AxisPlaneConstraint{TranslationType: Forbidden, RotationType: Forbidden}
	f := NewFrame(WithConstraint(c))

	f.Translate(common.Vec{1, 1, 1})
	f.Rotate(common.NewQuaternion(common.Vec{1, 0, 0}, 1))
	reached := f.SetOrientationWithConstraint(common.NewQuaternion(common.Vec{0, 1, 0}, 1))

	assert.Equal(t, common.Vec{}, f.Position())
	assert.InDelta(t, 1, reached.W, eps)
}

func TestAxisRotationConstraint(t *testing.T) {
	c := &AxisPlaneConstraint{RotationType: Axis, RotationDirection: common.Vec{0, 1, 0}}
	f := NewFrame(WithConstraint(c))

	f.Rotate(common.NewQuaternion(common.Vec{0, 1, 0}, 0.5))
	assert.InDelta(t, 0.5, common.Angle(f.Orientation()), eps)

	f.Rotate(common.NewQuaternion(common.Vec{1, 0, 0}, 0.5))
	assert.InDelta(t, 0.5, common.Angle(f.Orientation()), eps)
	assertVecInDelta(t, common.Vec{0, 1, 0}, common.Axis(f.Orientation()))
}

func TestSetConstraintNilFreesFrame(t *testing.T) {
	f := NewFrame(WithConstraint(&AxisPlaneConstraint{TranslationType: Forbidden}))
	f.SetConstraint(nil)
	f.Translate(common.Vec{1, 0, 0})
	assertVecInDelta(t, common.Vec{1, 0, 0}, f.Position())
}
