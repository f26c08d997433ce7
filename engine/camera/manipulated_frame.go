package camera

import (
	"image"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/trackball/common"
)

// computeMouseSpeed updates the pointer speed, in pixels per millisecond, from the last move.
func (m *manipulatedCameraFrameImpl) computeMouseSpeed(pos image.Point) {
	delta := pos.Sub(m.prevPos)
	dist := math32.Sqrt(float32(delta.X*delta.X + delta.Y*delta.Y))

	now := m.scheduler.Now()
	m.delay = now.Sub(m.lastMoveTime)
	m.lastMoveTime = now

	ms := float32(m.delay.Milliseconds())
	if ms <= 0 {
		m.mouseSpeed = dist
		return
	}
	m.mouseSpeed = dist / ms
}

// deltaWithPrevPos returns the dominant relative pointer motion since the previous position.
func (m *manipulatedCameraFrameImpl) deltaWithPrevPos(pos image.Point, view View) float32 {
	dx := float32(pos.X-m.prevPos.X) / float32(view.ScreenWidth())
	dy := float32(pos.Y-m.prevPos.Y) / float32(view.ScreenHeight())
	value := dy
	if math32.Abs(dx) > math32.Abs(dy) {
		value = dx
	}
	return value * m.zoomSensitivity
}

func (m *manipulatedCameraFrameImpl) wheelDelta(delta float32) float32 {
	return delta * m.wheelSensitivity * wheelSensitivityCoef
}

// mouseOriginalDirection returns 1 for a horizontal drag, -1 for a vertical one and 0 while undecided.
// The direction is locked at the first move that is not a perfect diagonal.
func (m *manipulatedCameraFrameImpl) mouseOriginalDirection(pos image.Point) int {
	if !m.dirIsFixed {
		delta := pos.Sub(m.pressPos)
		ax, ay := absInt(delta.X), absInt(delta.Y)
		m.dirIsFixed = ax != ay
		m.horizontal = ax > ay
	}
	switch {
	case !m.dirIsFixed:
		return 0
	case m.horizontal:
		return 1
	default:
		return -1
	}
}

// deformedBallQuaternion maps the pointer motion around the projected center (cx, cy) to a rotation
// on a virtual trackball of unit size.
func (m *manipulatedCameraFrameImpl) deformedBallQuaternion(pos image.Point, cx, cy float32, view View) common.Quaternion {
	w, h := float32(view.ScreenWidth()), float32(view.ScreenHeight())
	px := m.rotationSensitivity * (float32(m.prevPos.X) - cx) / w
	py := m.rotationSensitivity * (cy - float32(m.prevPos.Y)) / h
	dx := m.rotationSensitivity * (float32(pos.X) - cx) / w
	dy := m.rotationSensitivity * (cy - float32(pos.Y)) / h

	p1 := common.Vec{px, py, projectOnBall(px, py)}
	p2 := common.Vec{dx, dy, projectOnBall(dx, dy)}
	axis := p2.Cross(p1)
	sin := math32.Sqrt(axis.LenSqr() / p1.LenSqr() / p2.LenSqr())
	angle := 5 * math32.Asin(common.Clamp(sin, 0, 1))
	return common.NewQuaternion(axis, angle)
}

// projectOnBall returns the height of the trackball surface above (x, y): a sphere near the
// center blended into a hyperbolic sheet.
func projectOnBall(x, y float32) float32 {
	const sizeLimit = 0.5
	d := x*x + y*y
	if d < sizeLimit {
		return math32.Sqrt(1 - d)
	}
	return sizeLimit / math32.Sqrt(d)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
