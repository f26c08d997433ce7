package viewer

import (
	"bytes"
	"image"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/camera"
	"github.com/Carmen-Shannon/trackball/engine/keyframe"
	"github.com/Carmen-Shannon/trackball/engine/timer"
)

const eps = 1e-4

type viewerFixture struct {
	clock     *timer.ManualClock
	scheduler timer.Scheduler
	viewer    Viewer
	logs      *bytes.Buffer
}

func newViewerFixture(options ...ViewerBuilderOption) *viewerFixture {
	clock := timer.NewManualClock(time.Unix(0, 0))
	scheduler := timer.NewScheduler(timer.WithClock(clock.Now))
	logs := &bytes.Buffer{}
	options = append([]ViewerBuilderOption{WithLogger(log.New(logs, "", 0))}, options...)
	return &viewerFixture{
		clock:     clock,
		scheduler: scheduler,
		viewer:    NewViewer(scheduler, options...),
		logs:      logs,
	}
}

func (fx *viewerFixture) advance(d time.Duration, steps int) {
	for i := 0; i < steps; i++ {
		fx.clock.Advance(d)
		fx.scheduler.Poll()
	}
}

// fakeInput records the callbacks registered by AttachInput.
type fakeInput struct {
	button func(common.MouseButton, bool, common.Modifiers, int, int)
	move   func(int, int)
	scroll func(float32, common.Modifiers)
	key    func(uint32, common.Modifiers)
}

func (f *fakeInput) SetMouseButtonCallback(cb func(button common.MouseButton, pressed bool, mods common.Modifiers, x, y int)) {
	f.button = cb
}

func (f *fakeInput) SetMouseMoveCallback(cb func(x, y int)) {
	f.move = cb
}

func (f *fakeInput) SetScrollCallback(cb func(delta float32, mods common.Modifiers)) {
	f.scroll = cb
}

func (f *fakeInput) SetKeyDownCallback(cb func(keyCode uint32, mods common.Modifiers)) {
	f.key = cb
}

func TestViewerDefaults(t *testing.T) {
	v := newViewerFixture().viewer
	assert.Equal(t, Revolve, v.CameraMode())
	assert.True(t, v.NeedsRedraw())
	assert.False(t, v.AnimationIsStarted())

	b, ok := v.MouseBindingFor(common.MouseButtonLeft, common.ModNone)
	require.True(t, ok)
	assert.Equal(t, ActionBinding{Action: camera.Rotate, WithConstraint: true}, b)

	b, ok = v.MouseBindingFor(common.MouseButtonMiddle, common.ModShift)
	require.True(t, ok)
	assert.Equal(t, camera.ZoomOnRegion, b.Action)

	b, ok = v.MouseBindingFor(common.MouseButtonRight, common.ModControl)
	require.True(t, ok)
	assert.Equal(t, camera.ScreenTranslate, b.Action)

	action, ok := v.WheelBindingFor(common.ModNone)
	require.True(t, ok)
	assert.Equal(t, camera.Zoom, action)

	_, ok = v.MouseBindingFor(common.MouseButtonRight, common.ModAlt)
	assert.False(t, ok)
}

func TestViewerDrawClearsRequest(t *testing.T) {
	var drawn []camera.Camera
	v := newViewerFixture(WithDrawFunc(func(c camera.Camera) {
		drawn = append(drawn, c)
	})).viewer

	v.Draw()
	assert.False(t, v.NeedsRedraw())
	assert.Equal(t, 1, v.RedrawCount())
	require.Len(t, drawn, 1)
	assert.Same(t, v.Camera(), drawn[0])

	v.RequestRedraw()
	assert.True(t, v.NeedsRedraw())
}

func TestViewerToggleCameraMode(t *testing.T) {
	fx := newViewerFixture()
	v := fx.viewer

	v.ToggleCameraMode()
	assert.Equal(t, Fly, v.CameraMode())
	assert.Contains(t, fx.logs.String(), "[Viewer] camera mode: Fly")

	b, ok := v.MouseBindingFor(common.MouseButtonLeft, common.ModNone)
	require.True(t, ok)
	assert.Equal(t, camera.MoveForward, b.Action)
	b, _ = v.MouseBindingFor(common.MouseButtonLeft, common.ModControl)
	assert.Equal(t, camera.Drive, b.Action)
	action, _ := v.WheelBindingFor(common.ModNone)
	assert.Equal(t, camera.MoveForward, action)
	_, ok = v.MouseBindingFor(common.MouseButtonMiddle, common.ModShift)
	assert.False(t, ok)

	assert.True(t, v.KeyPress(common.KeySpace, common.ModNone))
	assert.Equal(t, Revolve, v.CameraMode())
}

func TestViewerFlyModeOption(t *testing.T) {
	v := newViewerFixture(WithCameraMode(Fly)).viewer
	assert.Equal(t, Fly, v.CameraMode())
	b, ok := v.MouseBindingFor(common.MouseButtonRight, common.ModNone)
	require.True(t, ok)
	assert.Equal(t, camera.MoveBackward, b.Action)
}

func TestViewerSetBindings(t *testing.T) {
	v := newViewerFixture().viewer

	v.SetMouseBinding(common.MouseButtonRight, common.ModAlt, camera.Roll, false)
	b, ok := v.MouseBindingFor(common.MouseButtonRight, common.ModAlt)
	require.True(t, ok)
	assert.Equal(t, ActionBinding{Action: camera.Roll, WithConstraint: false}, b)

	v.SetMouseBinding(common.MouseButtonLeft, common.ModNone, camera.NoMouseAction, true)
	_, ok = v.MouseBindingFor(common.MouseButtonLeft, common.ModNone)
	assert.False(t, ok)

	v.SetWheelBinding(common.ModShift, camera.MoveBackward)
	action, ok := v.WheelBindingFor(common.ModShift)
	require.True(t, ok)
	assert.Equal(t, camera.MoveBackward, action)

	v.SetWheelBinding(common.ModNone, camera.NoMouseAction)
	_, ok = v.WheelBindingFor(common.ModNone)
	assert.False(t, ok)
}

func TestViewerMouseDragRequestsRedraw(t *testing.T) {
	v := newViewerFixture().viewer
	start := v.Camera().Position()
	v.Draw()

	v.MousePress(common.MouseButtonRight, common.ModNone, image.Pt(300, 200))
	assert.True(t, v.Camera().Frame().IsManipulated())
	assert.Equal(t, camera.Translate, v.Camera().Frame().Action())
	assert.False(t, v.NeedsRedraw())

	v.MouseMove(image.Pt(310, 200))
	assert.True(t, v.NeedsRedraw())
	assert.Less(t, v.Camera().Position()[0], start[0])

	v.Draw()
	v.MouseRelease(common.MouseButtonRight, image.Pt(310, 200))
	assert.True(t, v.NeedsRedraw())
	assert.False(t, v.Camera().Frame().IsManipulated())
}

func TestViewerIgnoresUnboundAndForeignButtons(t *testing.T) {
	v := newViewerFixture().viewer
	start := v.Camera().Position()

	v.MousePress(common.MouseButtonRight, common.ModAlt|common.ModShift, image.Pt(300, 200))
	assert.False(t, v.Camera().Frame().IsManipulated())
	v.MouseMove(image.Pt(320, 220))
	assert.Equal(t, start, v.Camera().Position())

	v.MousePress(common.MouseButtonRight, common.ModNone, image.Pt(300, 200))
	// a second button does not replace the running action
	v.MousePress(common.MouseButtonLeft, common.ModNone, image.Pt(300, 200))
	assert.Equal(t, camera.Translate, v.Camera().Frame().Action())

	v.MouseRelease(common.MouseButtonLeft, image.Pt(300, 200))
	assert.True(t, v.Camera().Frame().IsManipulated())
	v.MouseRelease(common.MouseButtonRight, image.Pt(300, 200))
	assert.False(t, v.Camera().Frame().IsManipulated())
}

func TestViewerZoomOnRegion(t *testing.T) {
	v := newViewerFixture().viewer
	start := v.Camera().Position()
	v.Draw()

	v.MousePress(common.MouseButtonMiddle, common.ModShift, image.Pt(150, 100))
	v.MouseMove(image.Pt(450, 300))
	assert.True(t, v.NeedsRedraw())
	assert.Equal(t, start, v.Camera().Position())

	v.MouseRelease(common.MouseButtonMiddle, image.Pt(450, 300))
	assert.Less(t, v.Camera().Position()[2], start[2])
}

func TestViewerWheelZoomsAndSettles(t *testing.T) {
	fx := newViewerFixture()
	v := fx.viewer
	start := v.Camera().Position()
	v.Draw()

	v.Wheel(common.ModNone, common.WheelDeltaPerStep)
	assert.True(t, v.NeedsRedraw())
	assert.NotEqual(t, start[2], v.Camera().Position()[2])
	assert.False(t, v.Camera().Frame().IsManipulated())

	v.Draw()
	fx.advance(400*time.Millisecond, 1)
	assert.True(t, v.NeedsRedraw())

	v.Draw()
	v.Wheel(common.ModAlt, common.WheelDeltaPerStep)
	assert.False(t, v.NeedsRedraw())
}

func TestViewerKeyboardMoves(t *testing.T) {
	v := newViewerFixture().viewer
	start := v.Camera().Position()

	assert.True(t, v.KeyPress(common.KeyRight, common.ModNone))
	assert.InDelta(t, start[0]+0.1, v.Camera().Position()[0], eps)
	assert.True(t, v.KeyPress(common.KeyUp, common.ModNone))
	assert.InDelta(t, start[1]+0.1, v.Camera().Position()[1], eps)
	assert.True(t, v.KeyPress(common.KeyLeft, common.ModNone))
	assert.True(t, v.KeyPress(common.KeyDown, common.ModNone))
	assert.InDelta(t, start[0], v.Camera().Position()[0], eps)
	assert.InDelta(t, start[1], v.Camera().Position()[1], eps)

	assert.True(t, v.KeyPress(common.KeyEqual, common.ModNone))
	assert.InDelta(t, 0.015, v.Camera().Frame().FlySpeed(), eps)
	assert.True(t, v.KeyPress(common.KeyMinus, common.ModNone))
	assert.InDelta(t, 0.01, v.Camera().Frame().FlySpeed(), eps)

	assert.False(t, v.KeyPress(common.KeyRight, common.ModControl))
	assert.False(t, v.KeyPress(common.KeyBackspace, common.ModNone))
}

func TestViewerPathKeys(t *testing.T) {
	fx := newViewerFixture()
	v := fx.viewer
	start := v.Camera().Position()

	assert.True(t, v.KeyPress(common.KeyF1, common.ModAlt))
	v.KeyPress(common.KeyRight, common.ModNone)
	assert.True(t, v.KeyPress(common.KeyF1, common.ModAlt))
	assert.Contains(t, fx.logs.String(), "[Viewer] added keyframe 2 to path 1")

	kfi := v.Camera().KeyFrameInterpolator(1)
	require.NotNil(t, kfi)
	assert.Equal(t, 2, kfi.NumberOfKeyFrames())
	assert.Equal(t, 1, kfi.Signals().Subscribers(keyframe.EndReached.Name()))

	assert.True(t, v.KeyPress(common.KeyF1, common.ModNone))
	assert.True(t, kfi.InterpolationIsStarted())
	assert.Contains(t, fx.logs.String(), "[Viewer] playing path 1")
	assert.InDelta(t, start[0], v.Camera().Position()[0], eps)

	v.Draw()
	fx.advance(40*time.Millisecond, 30)
	assert.False(t, kfi.InterpolationIsStarted())
	assert.True(t, v.NeedsRedraw())
	assert.InDelta(t, start[0]+0.1, v.Camera().Position()[0], 1e-3)

	assert.True(t, v.KeyPress(common.KeyF1, common.ModShift))
	assert.Nil(t, v.Camera().KeyFrameInterpolator(1))
	assert.Zero(t, kfi.Signals().Subscribers(keyframe.EndReached.Name()))
	assert.Contains(t, fx.logs.String(), "[Viewer] path 1 deleted")

	assert.True(t, v.KeyPress(common.KeyF12, common.ModNone))
	assert.Contains(t, fx.logs.String(), "[Viewer] path 12 is undefined")
	assert.False(t, v.KeyPress(common.KeyF3, common.ModControl))
}

func TestViewerWatchesExistingPaths(t *testing.T) {
	clock := timer.NewManualClock(time.Unix(0, 0))
	scheduler := timer.NewScheduler(timer.WithClock(clock.Now))
	c := camera.NewCamera(scheduler)
	c.AddKeyFrameToPath(4)

	v := NewViewer(scheduler, WithCamera(c))
	assert.Equal(t, 1, c.KeyFrameInterpolator(4).Signals().Subscribers(keyframe.EndReached.Name()))

	v.Release()
	assert.Zero(t, c.KeyFrameInterpolator(4).Signals().Subscribers(keyframe.EndReached.Name()))
	// the camera belongs to the caller
	assert.Equal(t, []int{4}, c.PathKeys())
}

func TestViewerAnimation(t *testing.T) {
	steps := 0
	fx := newViewerFixture(WithAnimateFunc(func() { steps++ }), WithAnimationPeriod(20*time.Millisecond))
	v := fx.viewer

	assert.True(t, v.KeyPress(common.KeyEnter, common.ModNone))
	assert.True(t, v.AnimationIsStarted())

	v.Draw()
	fx.advance(20*time.Millisecond, 3)
	assert.Equal(t, 3, steps)
	assert.True(t, v.NeedsRedraw())

	v.ToggleAnimation()
	assert.False(t, v.AnimationIsStarted())
	fx.advance(20*time.Millisecond, 3)
	assert.Equal(t, 3, steps)
}

func TestViewerSceneRadiusAndResize(t *testing.T) {
	v := newViewerFixture(WithSceneRadius(10)).viewer
	assert.Equal(t, float32(10), v.Camera().SceneRadius())
	assert.InDelta(t, 26.131259, v.Camera().Position()[2], 1e-3)

	v.Draw()
	v.Resize(800, 600)
	assert.Equal(t, 800, v.Camera().ScreenWidth())
	assert.Equal(t, 600, v.Camera().ScreenHeight())
	assert.True(t, v.NeedsRedraw())
}

func TestViewerAttachInput(t *testing.T) {
	v := newViewerFixture().viewer
	in := &fakeInput{}
	v.AttachInput(in)
	require.NotNil(t, in.button)
	require.NotNil(t, in.move)
	require.NotNil(t, in.scroll)
	require.NotNil(t, in.key)

	start := v.Camera().Position()
	in.button(common.MouseButtonRight, true, common.ModNone, 300, 200)
	in.move(290, 200)
	in.button(common.MouseButtonRight, false, common.ModNone, 290, 200)
	assert.Greater(t, v.Camera().Position()[0], start[0])
	assert.False(t, v.Camera().Frame().IsManipulated())

	z := v.Camera().Position()[2]
	in.scroll(common.WheelDeltaPerStep, common.ModNone)
	assert.NotEqual(t, z, v.Camera().Position()[2])

	in.key(common.KeySpace, common.ModNone)
	assert.Equal(t, Fly, v.CameraMode())
}

func TestViewerReleaseRemovesTimers(t *testing.T) {
	fx := newViewerFixture()
	fx.viewer.KeyPress(common.KeyF2, common.ModAlt)
	fx.viewer.StartAnimation()
	fx.viewer.Release()
	assert.Zero(t, fx.scheduler.Len())
}
