package keyframe

import (
	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/frame"
)

// Pose is a position and an orientation in world coordinates.
type Pose struct {
	Position    common.Vec
	Orientation common.Quaternion
}

// keyFrame is a sample of the path. When source is set, position and orientation are
// re-read from it before every tangent rebuild; otherwise they are a snapshot taken at insertion.
type keyFrame struct {
	time        float32
	position    common.Vec
	orientation common.Quaternion

	tgP common.Vec
	tgQ common.Quaternion

	source frame.Frame
}

func newSnapshotKeyFrame(position common.Vec, orientation common.Quaternion, t float32) keyFrame {
	return keyFrame{time: t, position: position, orientation: orientation}
}

func newSourceKeyFrame(source frame.Frame, t float32) keyFrame {
	kf := keyFrame{time: t, source: source}
	kf.updateValuesFromSource()
	return kf
}

func (kf *keyFrame) updateValuesFromSource() {
	kf.position = kf.source.Position()
	kf.orientation = kf.source.Orientation()
}

// flipOrientationIfNeeded keeps the orientation in the same hemisphere as prev.
func (kf *keyFrame) flipOrientationIfNeeded(prev common.Quaternion) {
	if prev.Dot(kf.orientation) < 0 {
		kf.orientation = common.Negate(kf.orientation)
	}
}

func (kf *keyFrame) computeTangent(prev, next *keyFrame) {
	kf.tgP = next.position.Sub(prev.position).Mul(0.5)
	kf.tgQ = common.SquadTangent(prev.orientation, kf.orientation, next.orientation)
}

func (kf *keyFrame) pose() Pose {
	return Pose{Position: kf.position, Orientation: kf.orientation}
}
