package keyframe

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/frame"
	"github.com/Carmen-Shannon/trackball/engine/signal"
	"github.com/Carmen-Shannon/trackball/engine/timer"
)

var (
	// Interpolated is emitted after every evaluation that wrote a pose into the frame.
	Interpolated = signal.NewSignal("interpolated")

	// EndReached is emitted when playback passes the first or last keyframe, looping or not.
	EndReached = signal.NewSignal("endReached")
)

// pathSteps is the number of polyline samples per path segment.
const pathSteps = 30

type keyFrameInterpolatorImpl struct {
	id     signal.ID
	bus    *signal.Bus
	logger *log.Logger

	scheduler timer.Scheduler
	timer     timer.Timer
	frame     frame.Frame

	keyFrames []keyFrame
	path      []Pose

	interpolationTime  float32
	interpolationSpeed float32
	period             int
	loop               bool
	started            bool

	pathIsValid        bool
	valuesAreValid     bool
	currentFrameValid  bool
	splineCacheIsValid bool

	// current holds the indices of the keyframes before, at the start, at the end and after
	// the segment bracketing the interpolation time.
	current [4]int
	v1, v2  common.Vec
}

// KeyFrameInterpolator plays back a path of keyframes into a Frame.
//
// Positions are interpolated with a Catmull-Rom spline and orientations with squad. Playback
// is driven by a repeating timer of the scheduler: each tick evaluates the path at the current
// time and advances it by speed * period. Derived values (tangents, segment coefficients, the
// polyline) are cached and rebuilt lazily after any change of the path or of a keyframe source.
//
// A KeyFrameInterpolator is not safe for concurrent use; it must be driven from the goroutine
// that polls its scheduler.
type KeyFrameInterpolator interface {
	// ID returns the identity the interpolator uses when subscribing to other buses.
	//
	// Returns:
	//   - signal.ID: the interpolator identity
	ID() signal.ID

	// Signals returns the bus on which Interpolated and EndReached are emitted.
	//
	// Returns:
	//   - *signal.Bus: the interpolator's bus
	Signals() *signal.Bus

	// Frame returns the frame driven by the interpolator, or nil.
	//
	// Returns:
	//   - frame.Frame: the driven frame
	Frame() frame.Frame

	// SetFrame changes the driven frame. The interpolator's Interpolated event is forwarded
	// to the frame's own Interpolated event.
	//
	// Parameters:
	//   - f: the frame to drive, or nil to detach
	SetFrame(f frame.Frame)

	// AddKeyFrame appends a keyframe that follows source: whenever source is modified, the
	// path is rebuilt from its new pose.
	//
	// Parameters:
	//   - source: the frame defining the keyframe pose
	//   - t: the keyframe time in seconds, not lower than LastTime
	//
	// Returns:
	//   - bool: false if source is nil or t precedes the last keyframe
	AddKeyFrame(source frame.Frame, t float32) bool

	// AddKeyFrameSnapshot appends a keyframe with a fixed pose.
	//
	// Parameters:
	//   - position: the keyframe position
	//   - orientation: the keyframe orientation
	//   - t: the keyframe time in seconds, not lower than LastTime
	//
	// Returns:
	//   - bool: false if t precedes the last keyframe
	AddKeyFrameSnapshot(position common.Vec, orientation common.Quaternion, t float32) bool

	// AppendKeyFrame is AddKeyFrame with a time one second after the last keyframe, or 0 on an empty path.
	AppendKeyFrame(source frame.Frame) bool

	// AppendKeyFrameSnapshot is AddKeyFrameSnapshot with a time one second after the last keyframe,
	// or 0 on an empty path.
	AppendKeyFrameSnapshot(position common.Vec, orientation common.Quaternion) bool

	// DeletePath stops playback and removes every keyframe.
	DeletePath()

	// NumberOfKeyFrames returns the number of keyframes of the path.
	NumberOfKeyFrames() int

	// KeyFrame returns the pose of keyframe i. Keyframes following a source report the source's current pose.
	//
	// Parameters:
	//   - i: the keyframe index
	//
	// Returns:
	//   - Pose: the keyframe pose
	//   - bool: false if i is out of range
	KeyFrame(i int) (Pose, bool)

	// KeyFrameTime returns the time of keyframe i.
	//
	// Parameters:
	//   - i: the keyframe index
	//
	// Returns:
	//   - float32: the keyframe time in seconds
	//   - bool: false if i is out of range
	KeyFrameTime(i int) (float32, bool)

	// FirstTime returns the time of the first keyframe, or 0 on an empty path.
	FirstTime() float32

	// LastTime returns the time of the last keyframe, or 0 on an empty path.
	LastTime() float32

	// Duration returns LastTime() - FirstTime().
	Duration() float32

	// InterpolationTime returns the current playback time in seconds.
	InterpolationTime() float32

	// SetInterpolationTime changes the playback time without evaluating the path.
	SetInterpolationTime(t float32)

	// InterpolationSpeed returns the playback speed. Negative values play the path backwards.
	InterpolationSpeed() float32

	// SetInterpolationSpeed changes the playback speed.
	SetInterpolationSpeed(speed float32)

	// InterpolationPeriod returns the tick period in milliseconds.
	InterpolationPeriod() int

	// SetInterpolationPeriod changes the tick period used by the next StartInterpolation.
	SetInterpolationPeriod(period int)

	// LoopInterpolation reports whether playback wraps around at the ends of the path.
	LoopInterpolation() bool

	// SetLoopInterpolation enables or disables looping.
	SetLoopInterpolation(loop bool)

	// InterpolationIsStarted reports whether playback is running.
	InterpolationIsStarted() bool

	// StartInterpolation starts playback. A non-negative period replaces the current period.
	// Playback that would start past the end of the path (in the direction of the speed)
	// restarts from the other end. The first evaluation runs synchronously.
	//
	// Parameters:
	//   - period: the tick period in milliseconds, or a negative value to keep the current one
	StartInterpolation(period int)

	// StopInterpolation stops playback. No tick is delivered afterwards.
	StopInterpolation()

	// ResetInterpolation stops playback and rewinds the time to FirstTime. The frame is not moved.
	ResetInterpolation()

	// ToggleInterpolation starts playback when stopped and stops it when started.
	ToggleInterpolation()

	// InterpolateAtTime sets the time to t and writes the path pose at t into the frame.
	// Nothing is written when the path is empty or no frame is attached.
	//
	// Parameters:
	//   - t: the evaluation time in seconds
	InterpolateAtTime(t float32)

	// Update evaluates the path at the current time and advances the time by one tick.
	// It is called by the playback timer.
	Update()

	// Path returns the interpolated path as a polyline of poses, rebuilt only after the path changed.
	//
	// Returns:
	//   - []Pose: pathSteps poses per segment followed by the last keyframe
	Path() []Pose

	// Release deletes the path, detaches the frame and removes the playback timer from the scheduler.
	Release()
}

var _ KeyFrameInterpolator = &keyFrameInterpolatorImpl{}

// NewKeyFrameInterpolator creates an interpolator ticking on scheduler with a 40 ms period and unit speed.
//
// Parameters:
//   - scheduler: the scheduler delivering playback ticks
//   - options: functional options to configure the interpolator
//
// Returns:
//   - KeyFrameInterpolator: the newly created interpolator
func NewKeyFrameInterpolator(scheduler timer.Scheduler, options ...KeyFrameInterpolatorBuilderOption) KeyFrameInterpolator {
	k := &keyFrameInterpolatorImpl{
		id:                 signal.NextID(),
		bus:                signal.NewBus(Interpolated, EndReached),
		logger:             log.Default(),
		scheduler:          scheduler,
		timer:              scheduler.NewTimer(),
		interpolationSpeed: 1,
		period:             40,
		pathIsValid:        false,
		valuesAreValid:     true,
		currentFrameValid:  false,
		splineCacheIsValid: false,
	}
	for _, option := range options {
		option(k)
	}
	signal.Connect(k.timer.Signals(), timer.Timeout, k.id, k.Update)
	return k
}

func (k *keyFrameInterpolatorImpl) ID() signal.ID {
	return k.id
}

func (k *keyFrameInterpolatorImpl) Signals() *signal.Bus {
	return k.bus
}

func (k *keyFrameInterpolatorImpl) Frame() frame.Frame {
	return k.frame
}

func (k *keyFrameInterpolatorImpl) SetFrame(f frame.Frame) {
	if k.frame != nil {
		k.bus.Unsubscribe(Interpolated.Name(), k.frame.ID())
	}
	k.frame = f
	if f != nil {
		signal.Connect(k.bus, Interpolated, f.ID(), signal.Forwarder(f.Signals(), frame.Interpolated))
	}
}

func (k *keyFrameInterpolatorImpl) AddKeyFrame(source frame.Frame, t float32) bool {
	if source == nil {
		k.logger.Printf("[KeyFrameInterpolator] ignoring nil keyframe source")
		return false
	}
	if !k.acceptsTime(t) {
		return false
	}
	k.keyFrames = append(k.keyFrames, newSourceKeyFrame(source, t))
	signal.Connect(source.Signals(), frame.Modified, k.id, k.invalidateValues)
	k.pathChanged()
	return true
}

func (k *keyFrameInterpolatorImpl) AddKeyFrameSnapshot(position common.Vec, orientation common.Quaternion, t float32) bool {
	if !k.acceptsTime(t) {
		return false
	}
	k.keyFrames = append(k.keyFrames, newSnapshotKeyFrame(position, orientation, t))
	k.pathChanged()
	return true
}

func (k *keyFrameInterpolatorImpl) AppendKeyFrame(source frame.Frame) bool {
	return k.AddKeyFrame(source, k.nextAppendTime())
}

func (k *keyFrameInterpolatorImpl) AppendKeyFrameSnapshot(position common.Vec, orientation common.Quaternion) bool {
	return k.AddKeyFrameSnapshot(position, orientation, k.nextAppendTime())
}

func (k *keyFrameInterpolatorImpl) DeletePath() {
	k.StopInterpolation()
	for _, kf := range k.keyFrames {
		if kf.source != nil {
			kf.source.Signals().Unsubscribe(frame.Modified.Name(), k.id)
		}
	}
	k.keyFrames = nil
	k.path = nil
	k.pathIsValid = false
	k.valuesAreValid = false
	k.currentFrameValid = false
	k.splineCacheIsValid = false
}

func (k *keyFrameInterpolatorImpl) NumberOfKeyFrames() int {
	return len(k.keyFrames)
}

func (k *keyFrameInterpolatorImpl) KeyFrame(i int) (Pose, bool) {
	if i < 0 || i >= len(k.keyFrames) {
		return Pose{}, false
	}
	kf := &k.keyFrames[i]
	if kf.source != nil {
		return Pose{Position: kf.source.Position(), Orientation: kf.source.Orientation()}, true
	}
	return kf.pose(), true
}

func (k *keyFrameInterpolatorImpl) KeyFrameTime(i int) (float32, bool) {
	if i < 0 || i >= len(k.keyFrames) {
		return 0, false
	}
	return k.keyFrames[i].time, true
}

func (k *keyFrameInterpolatorImpl) FirstTime() float32 {
	if len(k.keyFrames) == 0 {
		return 0
	}
	return k.keyFrames[0].time
}

func (k *keyFrameInterpolatorImpl) LastTime() float32 {
	if len(k.keyFrames) == 0 {
		return 0
	}
	return k.keyFrames[len(k.keyFrames)-1].time
}

func (k *keyFrameInterpolatorImpl) Duration() float32 {
	return k.LastTime() - k.FirstTime()
}

func (k *keyFrameInterpolatorImpl) InterpolationTime() float32 {
	return k.interpolationTime
}

func (k *keyFrameInterpolatorImpl) SetInterpolationTime(t float32) {
	k.interpolationTime = t
}

func (k *keyFrameInterpolatorImpl) InterpolationSpeed() float32 {
	return k.interpolationSpeed
}

func (k *keyFrameInterpolatorImpl) SetInterpolationSpeed(speed float32) {
	k.interpolationSpeed = speed
}

func (k *keyFrameInterpolatorImpl) InterpolationPeriod() int {
	return k.period
}

func (k *keyFrameInterpolatorImpl) SetInterpolationPeriod(period int) {
	k.period = period
}

func (k *keyFrameInterpolatorImpl) LoopInterpolation() bool {
	return k.loop
}

func (k *keyFrameInterpolatorImpl) SetLoopInterpolation(loop bool) {
	k.loop = loop
}

func (k *keyFrameInterpolatorImpl) InterpolationIsStarted() bool {
	return k.started
}

func (k *keyFrameInterpolatorImpl) StartInterpolation(period int) {
	if period >= 0 {
		k.period = period
	}
	if len(k.keyFrames) == 0 {
		return
	}
	if k.interpolationSpeed > 0 && k.interpolationTime >= k.LastTime() {
		k.interpolationTime = k.FirstTime()
	}
	if k.interpolationSpeed < 0 && k.interpolationTime <= k.FirstTime() {
		k.interpolationTime = k.LastTime()
	}
	k.timer.Start(time.Duration(k.period) * time.Millisecond)
	k.started = true
	k.Update()
}

func (k *keyFrameInterpolatorImpl) StopInterpolation() {
	k.timer.Stop()
	k.started = false
}

func (k *keyFrameInterpolatorImpl) ResetInterpolation() {
	k.StopInterpolation()
	k.interpolationTime = k.FirstTime()
}

func (k *keyFrameInterpolatorImpl) ToggleInterpolation() {
	if k.started {
		k.StopInterpolation()
	} else {
		k.StartInterpolation(-1)
	}
}

func (k *keyFrameInterpolatorImpl) Update() {
	if len(k.keyFrames) == 0 {
		k.StopInterpolation()
		return
	}
	k.InterpolateAtTime(k.interpolationTime)

	k.interpolationTime += k.interpolationSpeed * float32(k.period) / 1000

	first, last := k.FirstTime(), k.LastTime()
	switch {
	case k.interpolationTime > last:
		if k.loop {
			k.interpolationTime = first + k.interpolationTime - last
		} else {
			k.InterpolateAtTime(last)
			k.StopInterpolation()
		}
		signal.Fire(k.bus, EndReached)
	case k.interpolationTime < first:
		if k.loop {
			k.interpolationTime = last - first + k.interpolationTime
		} else {
			k.InterpolateAtTime(first)
			k.StopInterpolation()
		}
		signal.Fire(k.bus, EndReached)
	}
}

func (k *keyFrameInterpolatorImpl) InterpolateAtTime(t float32) {
	k.interpolationTime = t
	if len(k.keyFrames) == 0 || k.frame == nil {
		return
	}

	if !k.valuesAreValid {
		k.updateModifiedFrameValues()
	}
	k.updateCurrentKeyFrameForTime(t)
	if !k.splineCacheIsValid {
		k.updateSplineCache()
	}

	kf1 := &k.keyFrames[k.current[1]]
	kf2 := &k.keyFrames[k.current[2]]

	var alpha float32
	if dt := kf2.time - kf1.time; dt != 0 {
		alpha = (t - kf1.time) / dt
	}

	pos := kf1.position.Add(kf1.tgP.Add(k.v1.Add(k.v2.Mul(alpha)).Mul(alpha)).Mul(alpha))
	q := common.Squad(kf1.orientation, kf1.tgQ, kf2.tgQ, kf2.orientation, alpha)
	k.frame.SetPositionAndOrientationWithConstraint(pos, q)

	signal.Fire(k.bus, Interpolated)
}

func (k *keyFrameInterpolatorImpl) Path() []Pose {
	if !k.pathIsValid {
		k.buildPath()
	}
	out := make([]Pose, len(k.path))
	copy(out, k.path)
	return out
}

func (k *keyFrameInterpolatorImpl) Release() {
	k.DeletePath()
	k.SetFrame(nil)
	k.timer.Signals().Unsubscribe(timer.Timeout.Name(), k.id)
	k.scheduler.Remove(k.timer)
}

// acceptsTime reports whether a keyframe at t keeps the path monotone, logging the rejection otherwise.
func (k *keyFrameInterpolatorImpl) acceptsTime(t float32) bool {
	if len(k.keyFrames) > 0 && t < k.LastTime() {
		k.logger.Printf("[KeyFrameInterpolator] rejecting keyframe at %.3fs: time precedes last keyframe at %.3fs", t, k.LastTime())
		return false
	}
	return true
}

func (k *keyFrameInterpolatorImpl) nextAppendTime() float32 {
	if len(k.keyFrames) == 0 {
		return 0
	}
	return k.LastTime() + 1
}

// pathChanged invalidates every cache depending on the keyframe list and rewinds playback.
func (k *keyFrameInterpolatorImpl) pathChanged() {
	k.valuesAreValid = false
	k.pathIsValid = false
	k.currentFrameValid = false
	k.splineCacheIsValid = false
	k.ResetInterpolation()
}

// invalidateValues is called when a keyframe source is modified.
func (k *keyFrameInterpolatorImpl) invalidateValues() {
	k.valuesAreValid = false
	k.pathIsValid = false
	k.splineCacheIsValid = false
}

// updateModifiedFrameValues refreshes source keyframes, keeps consecutive orientations in the
// same hemisphere, then recomputes every tangent. Boundary keyframes are their own missing neighbour.
func (k *keyFrameInterpolatorImpl) updateModifiedFrameValues() {
	prevQ := k.keyFrames[0].orientation
	for i := range k.keyFrames {
		kf := &k.keyFrames[i]
		if kf.source != nil {
			kf.updateValuesFromSource()
		}
		kf.flipOrientationIfNeeded(prevQ)
		prevQ = kf.orientation
	}

	last := len(k.keyFrames) - 1
	for i := range k.keyFrames {
		prev := &k.keyFrames[max(i-1, 0)]
		next := &k.keyFrames[min(i+1, last)]
		k.keyFrames[i].computeTangent(prev, next)
	}
	k.valuesAreValid = true
}

// updateCurrentKeyFrameForTime moves the four-keyframe window so that current[1] and current[2]
// bracket t. The window only slides when it is valid; it is re-seeked from the first keyframe otherwise.
func (k *keyFrameInterpolatorImpl) updateCurrentKeyFrameForTime(t float32) {
	last := len(k.keyFrames) - 1
	if !k.currentFrameValid {
		k.current[1] = 0
	}
	for k.keyFrames[k.current[1]].time > t {
		k.currentFrameValid = false
		if k.current[1] == 0 {
			break
		}
		k.current[1]--
	}

	if !k.currentFrameValid {
		k.current[2] = k.current[1]
	}
	for k.keyFrames[k.current[2]].time < t {
		k.currentFrameValid = false
		if k.current[2] == last {
			break
		}
		k.current[2]++
	}

	if !k.currentFrameValid {
		k.current[1] = k.current[2]
		if k.current[1] > 0 && t < k.keyFrames[k.current[2]].time {
			k.current[1]--
		}
		k.current[0] = max(k.current[1]-1, 0)
		k.current[3] = min(k.current[2]+1, last)
		k.currentFrameValid = true
		k.splineCacheIsValid = false
	}
}

func (k *keyFrameInterpolatorImpl) updateSplineCache() {
	kf1 := &k.keyFrames[k.current[1]]
	kf2 := &k.keyFrames[k.current[2]]
	delta := kf2.position.Sub(kf1.position)
	k.v1 = delta.Mul(3).Sub(kf1.tgP.Mul(2)).Sub(kf2.tgP)
	k.v2 = delta.Mul(-2).Add(kf1.tgP).Add(kf2.tgP)
	k.splineCacheIsValid = true
}

// buildPath samples every segment of the path into k.path.
func (k *keyFrameInterpolatorImpl) buildPath() {
	k.path = k.path[:0]
	if len(k.keyFrames) == 0 {
		k.pathIsValid = true
		return
	}
	if !k.valuesAreValid {
		k.updateModifiedFrameValues()
	}

	if len(k.keyFrames) == 1 {
		k.path = append(k.path, k.keyFrames[0].pose())
		k.pathIsValid = true
		return
	}

	for i := 0; i+1 < len(k.keyFrames); i++ {
		kf1 := &k.keyFrames[i]
		kf2 := &k.keyFrames[i+1]
		diff := kf2.position.Sub(kf1.position)
		v1 := diff.Mul(3).Sub(kf1.tgP.Mul(2)).Sub(kf2.tgP)
		v2 := diff.Mul(-2).Add(kf1.tgP).Add(kf2.tgP)

		for step := 0; step < pathSteps; step++ {
			alpha := float32(step) / pathSteps
			k.path = append(k.path, Pose{
				Position:    kf1.position.Add(kf1.tgP.Add(v1.Add(v2.Mul(alpha)).Mul(alpha)).Mul(alpha)),
				Orientation: common.Squad(kf1.orientation, kf1.tgQ, kf2.tgQ, kf2.orientation, alpha).Normalize(),
			})
		}
	}
	k.path = append(k.path, k.keyFrames[len(k.keyFrames)-1].pose())
	k.pathIsValid = true
}
