package camera

import (
	"bytes"
	"image"
	"log"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/signal"
	"github.com/Carmen-Shannon/trackball/engine/timer"
)

// defaultDistance is the distance at which a π/4 camera sees the whole unit sphere.
const defaultDistance = 2.6131259

type cameraFixture struct {
	clock     *timer.ManualClock
	scheduler timer.Scheduler
	camera    Camera
	logs      *bytes.Buffer
	changed   []int
}

func newCameraFixture(options ...CameraBuilderOption) *cameraFixture {
	clock := timer.NewManualClock(time.Unix(0, 0))
	scheduler := timer.NewScheduler(timer.WithClock(clock.Now))
	logs := &bytes.Buffer{}
	options = append([]CameraBuilderOption{WithLogger(log.New(logs, "", 0))}, options...)
	fx := &cameraFixture{
		clock:     clock,
		scheduler: scheduler,
		camera:    NewCamera(scheduler, options...),
		logs:      logs,
	}
	signal.ConnectArgs(fx.camera.Signals(), PathChanged, signal.NextID(), func(key int) {
		fx.changed = append(fx.changed, key)
	})
	return fx
}

// play advances the clock by the given number of interpolation periods, polling after each.
func (fx *cameraFixture) play(periods int) {
	for i := 0; i < periods; i++ {
		fx.clock.Advance(40 * time.Millisecond)
		fx.scheduler.Poll()
	}
}

func TestCameraDefaults(t *testing.T) {
	c := newCameraFixture().camera
	assert.Equal(t, Perspective, c.Type())
	assert.InDelta(t, math32.Pi/4, c.FieldOfView(), eps)
	assert.Equal(t, float32(1), c.SceneRadius())
	assert.Equal(t, 600, c.ScreenWidth())
	assert.Equal(t, 400, c.ScreenHeight())
	assert.InDelta(t, 1.5, c.AspectRatio(), eps)
	assert.InDelta(t, 0.01, c.Frame().FlySpeed(), eps)
	assert.Equal(t, common.Vec{}, c.PivotPoint())

	assertVecInDelta(t, common.Vec{0, 0, defaultDistance}, c.Position(), eps)
	assertVecInDelta(t, common.Vec{0, 0, -1}, c.ViewDirection(), eps)
	assertVecInDelta(t, common.Vec{0, 1, 0}, c.UpVector(), eps)
	assertVecInDelta(t, common.Vec{1, 0, 0}, c.RightVector(), eps)
}

func TestCameraClippingPlanes(t *testing.T) {
	c := newCameraFixture().camera
	assert.InDelta(t, 0.881075, c.ZNear(), 1e-4)
	assert.InDelta(t, 4.345177, c.ZFar(), 1e-4)

	c.SetPosition(common.Vec{0, 0, 0.5})
	assert.InDelta(t, 0.0086603, c.ZNear(), 1e-5)

	c.SetType(Orthographic)
	assert.Zero(t, c.ZNear())
}

func TestCameraSceneRadiusSetsFlySpeed(t *testing.T) {
	fx := newCameraFixture()
	fx.camera.SetSceneRadius(10)
	assert.Equal(t, float32(10), fx.camera.SceneRadius())
	assert.InDelta(t, 0.1, fx.camera.Frame().FlySpeed(), eps)

	fx.camera.SetSceneRadius(-1)
	assert.Equal(t, float32(10), fx.camera.SceneRadius())
	assert.Contains(t, fx.logs.String(), "[Camera] ignoring scene radius")
}

func TestCameraScreenSizeIsAtLeastOnePixel(t *testing.T) {
	c := newCameraFixture().camera
	c.SetScreenWidthAndHeight(0, -5)
	assert.Equal(t, 1, c.ScreenWidth())
	assert.Equal(t, 1, c.ScreenHeight())
}

func TestCameraHorizontalFieldOfViewRoundTrip(t *testing.T) {
	c := newCameraFixture().camera
	hfov := c.HorizontalFieldOfView()
	assert.Greater(t, hfov, c.FieldOfView())

	c.SetHorizontalFieldOfView(math32.Pi / 2)
	assert.InDelta(t, math32.Pi/2, c.HorizontalFieldOfView(), eps)
}

func TestCameraOrthoWidthHeight(t *testing.T) {
	c := newCameraFixture(WithType(Orthographic)).camera
	// an orthographic camera fits the unit sphere at 1/tan(π/8) from the pivot
	assert.InDelta(t, 2.414214, c.Position()[2], 1e-4)
	w, h := c.OrthoWidthHeight()
	assert.InDelta(t, 1.5, w, 1e-4)
	assert.InDelta(t, 1, h, 1e-4)

	c.SetType(Perspective)
	c.SetPosition(common.Vec{0, 0, defaultDistance})
	c.SetType(Orthographic)
	w, h = c.OrthoWidthHeight()
	assert.InDelta(t, 1.623588, w, 1e-4)
	assert.InDelta(t, 1.082392, h, 1e-4)
}

func TestCameraViewMatrixFollowsFrame(t *testing.T) {
	c := newCameraFixture().camera
	before := c.ViewMatrix()

	c.SetPosition(common.Vec{1, 2, 3})
	after := c.ViewMatrix()
	assert.NotEqual(t, before, after)

	origin := after.Mul4x1(c.Position().Vec4(1))
	assert.InDelta(t, 0, origin[0], eps)
	assert.InDelta(t, 0, origin[1], eps)
	assert.InDelta(t, 0, origin[2], eps)
}

func TestCameraProjectionUsesTopLeftOrigin(t *testing.T) {
	c := newCameraFixture().camera
	center := c.ProjectedCoordinatesOf(common.Vec{})
	assert.InDelta(t, 300, center[0], 1e-2)
	assert.InDelta(t, 200, center[1], 1e-2)
	assert.Greater(t, center[2], float32(0))
	assert.Less(t, center[2], float32(1))

	above := c.ProjectedCoordinatesOf(common.Vec{0, 0.5, 0})
	assert.Less(t, above[1], center[1])
}

func TestCameraUnprojectInvertsProject(t *testing.T) {
	c := newCameraFixture().camera
	p := common.Vec{0.3, -0.2, 0.1}
	back, err := c.UnprojectedCoordinatesOf(c.ProjectedCoordinatesOf(p))
	require.NoError(t, err)
	assertVecInDelta(t, p, back, 1e-3)
}

func TestCameraConvertClickToLineThroughCenter(t *testing.T) {
	c := newCameraFixture().camera
	origin, dir := c.ConvertClickToLine(image.Pt(300, 200))
	assertVecInDelta(t, c.Position(), origin, eps)
	assertVecInDelta(t, common.Vec{0, 0, -1}, dir, eps)

	c.SetType(Orthographic)
	origin, dir = c.ConvertClickToLine(image.Pt(0, 0))
	w, h := c.OrthoWidthHeight()
	assertVecInDelta(t, common.Vec{-w, h, defaultDistance}, origin, 1e-3)
	assertVecInDelta(t, common.Vec{0, 0, -1}, dir, eps)
}

func TestCameraLookAt(t *testing.T) {
	c := newCameraFixture().camera
	c.SetPosition(common.Vec{0, 0, 5})
	c.LookAt(common.Vec{5, 0, 5})
	assertVecInDelta(t, common.Vec{1, 0, 0}, c.ViewDirection(), eps)
	assertVecInDelta(t, common.Vec{0, 1, 0}, c.UpVector(), eps)

	before := c.Orientation()
	c.SetViewDirection(common.Vec{})
	assert.Equal(t, before, c.Orientation())
}

func TestCameraSetUpVector(t *testing.T) {
	c := newCameraFixture().camera
	c.SetUpVector(common.Vec{1, 0, 0}, true)
	assertVecInDelta(t, common.Vec{1, 0, 0}, c.UpVector(), eps)
	assertVecInDelta(t, common.Vec{1, 0, 0}, c.Frame().SceneUpVector(), eps)
	assertVecInDelta(t, common.Vec{0, 0, defaultDistance}, c.Position(), eps)
}

func TestCameraFitBoundingBox(t *testing.T) {
	c := newCameraFixture().camera
	c.FitBoundingBox(common.Vec{-2, -1, -1}, common.Vec{2, 1, 1})
	// diameter 4, so the sphere of radius 2 is fitted
	assertVecInDelta(t, common.Vec{0, 0, 2 * defaultDistance}, c.Position(), 1e-3)
}

func TestCameraFitScreenRegion(t *testing.T) {
	c := newCameraFixture().camera
	c.FitScreenRegion(image.Rect(150, 100, 450, 300))
	assertVecInDelta(t, common.Vec{0, 0, 1.538219}, c.Position(), 1e-3)
}

func TestCameraCenterScene(t *testing.T) {
	c := newCameraFixture().camera
	c.SetPosition(common.Vec{3, -2, 4})
	c.CenterScene()
	assertVecInDelta(t, common.Vec{0, 0, 4}, c.Position(), eps)
}

func TestCameraSceneCenterMovesPivot(t *testing.T) {
	c := newCameraFixture().camera
	c.SetSceneCenter(common.Vec{1, 1, 1})
	assert.Equal(t, common.Vec{1, 1, 1}, c.PivotPoint())
	assert.Equal(t, common.Vec{1, 1, 1}, c.Frame().PivotPoint())
}

func TestCameraKeyFramePaths(t *testing.T) {
	fx := newCameraFixture()
	c := fx.camera
	start := c.Position()

	c.AddKeyFrameToPath(1)
	c.SetPosition(common.Vec{4, 0, defaultDistance})
	c.AddKeyFrameToPath(1)

	kfi := c.KeyFrameInterpolator(1)
	require.NotNil(t, kfi)
	assert.Equal(t, 2, kfi.NumberOfKeyFrames())
	assert.Equal(t, []int{1}, c.PathKeys())
	assert.Equal(t, []int{1}, fx.changed)

	c.PlayPath(1)
	require.True(t, kfi.InterpolationIsStarted())
	assertVecInDelta(t, start, c.Position(), eps)

	fx.play(30)
	assert.False(t, kfi.InterpolationIsStarted())
	assertVecInDelta(t, common.Vec{4, 0, defaultDistance}, c.Position(), 1e-3)

	c.ResetPath(1)
	assertVecInDelta(t, start, c.Position(), 1e-3)

	c.DeletePath(1)
	assert.Nil(t, c.KeyFrameInterpolator(1))
	assert.Empty(t, c.PathKeys())
	assert.Equal(t, []int{1, 1}, fx.changed)
}

func TestCameraPathChangedCarriesKey(t *testing.T) {
	fx := newCameraFixture()
	bus := fx.camera.Signals()

	var keys []int
	require.True(t, signal.ConnectArgs(bus, PathChanged, signal.NextID(), func(key int) {
		keys = append(keys, key)
	}))
	assert.False(t, signal.Connect(bus, signal.NewSignal(PathChanged.Name()), signal.NextID(), func() {}))

	fx.camera.AddKeyFrameToPath(5)
	fx.camera.AddKeyFrameToPath(5)
	fx.camera.DeletePath(5)
	assert.Equal(t, []int{5, 5}, keys)
	assert.Equal(t, []int{5, 5}, fx.changed)
}

func TestCameraPlayPathTogglesAndResetStops(t *testing.T) {
	fx := newCameraFixture()
	c := fx.camera
	c.AddKeyFrameToPath(3)
	c.SetPosition(common.Vec{0, 4, 0})
	c.AddKeyFrameToPath(3)
	kfi := c.KeyFrameInterpolator(3)

	c.PlayPath(3)
	fx.play(5)
	c.PlayPath(3)
	assert.False(t, kfi.InterpolationIsStarted())

	c.PlayPath(3)
	c.ResetPath(3)
	assert.False(t, kfi.InterpolationIsStarted())

	// unknown keys are ignored
	c.PlayPath(7)
	c.ResetPath(7)
	c.DeletePath(7)
	assert.Equal(t, []int{3}, c.PathKeys())
}

func TestCameraInterpolateTo(t *testing.T) {
	fx := newCameraFixture()
	target := common.NewQuaternion(common.Vec{0, 1, 0}, 0.5)
	fx.camera.InterpolateTo(common.Vec{1, 2, 3}, target, 1)
	fx.play(30)

	assertVecInDelta(t, common.Vec{1, 2, 3}, fx.camera.Position(), 1e-3)
	assert.InDelta(t, 1, math32.Abs(target.Dot(fx.camera.Orientation())), eps)
}

func TestCameraReleaseClearsTimers(t *testing.T) {
	fx := newCameraFixture()
	fx.camera.AddKeyFrameToPath(1)
	fx.camera.Release()
	assert.Empty(t, fx.camera.PathKeys())
	assert.Zero(t, fx.scheduler.Len())
}

func TestCameraFrameOptions(t *testing.T) {
	c := newCameraFixture(
		WithSceneRadius(5),
		WithFrameOptions(WithZoomsOnPivotPoint(true), WithFlySpeed(3), WithSensitivities(Sensitivities{Wheel: 2})),
	).camera
	assert.True(t, c.Frame().ZoomsOnPivotPoint())
	assert.Equal(t, float32(2), c.Frame().WheelSensitivity())
	// fly speed follows the scene radius
	assert.InDelta(t, 0.05, c.Frame().FlySpeed(), eps)
}
