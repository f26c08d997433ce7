package camera

import (
	"fmt"
	"image"
	"log"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/frame"
	"github.com/Carmen-Shannon/trackball/engine/keyframe"
	"github.com/Carmen-Shannon/trackball/engine/signal"
	"github.com/Carmen-Shannon/trackball/engine/timer"
)

// PathChanged is emitted on the camera's bus with the path key whenever a keyframe path is
// created, replaced or deleted.
var PathChanged = signal.NewKey[int, signal.None]("pathChanged")

type cameraImpl struct {
	id        signal.ID
	bus       *signal.Bus
	logger    *log.Logger
	scheduler timer.Scheduler

	frame        ManipulatedCameraFrame
	frameOptions []ManipulatedCameraFrameBuilderOption

	projectionType       Type
	fieldOfView          float32
	orthoCoef            float32
	sceneRadius          float32
	sceneCenter          common.Vec
	screenWidth          int
	screenHeight         int
	zNearCoefficient     float32
	zClippingCoefficient float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewIsUpToDate       bool
	projectionIsUpToDate bool

	paths            map[int]keyframe.KeyFrameInterpolator
	interpolationKfi keyframe.KeyFrameInterpolator
}

// Camera holds the projection parameters of a viewer and owns the ManipulatedCameraFrame that
// positions it. View and projection matrices are computed lazily and cached until the frame
// moves or a projection parameter changes.
//
// A Camera also keeps keyframe paths addressed by an integer key, all played back into its frame.
// It is not safe for concurrent use; it must be driven from the goroutine that polls its scheduler.
type Camera interface {
	View

	// ID returns the identity the camera uses when subscribing to other buses.
	//
	// Returns:
	//   - signal.ID: the camera identity
	ID() signal.ID

	// Signals returns the bus on which PathChanged is emitted.
	//
	// Returns:
	//   - *signal.Bus: the camera's bus
	Signals() *signal.Bus

	// Frame returns the frame positioning the camera.
	//
	// Returns:
	//   - ManipulatedCameraFrame: the camera frame
	Frame() ManipulatedCameraFrame

	// Position returns the camera position in world coordinates.
	//
	// Returns:
	//   - common.Vec: the frame position
	Position() common.Vec

	// SetPosition moves the camera, ignoring the frame constraint.
	//
	// Parameters:
	//   - position: the new position
	SetPosition(position common.Vec)

	// Orientation returns the camera orientation in world coordinates.
	//
	// Returns:
	//   - common.Quaternion: the frame orientation
	Orientation() common.Quaternion

	// SetOrientation rotates the camera and aligns the scene up vector with the new Y axis.
	//
	// Parameters:
	//   - orientation: the new orientation
	SetOrientation(orientation common.Quaternion)

	// SetType changes the projection type.
	//
	// Parameters:
	//   - t: Perspective or Orthographic
	SetType(t Type)

	// SetFieldOfView sets the vertical field of view.
	//
	// Parameters:
	//   - fov: the field of view in radians
	SetFieldOfView(fov float32)

	// HorizontalFieldOfView returns the horizontal field of view derived from the aspect ratio.
	//
	// Returns:
	//   - float32: the horizontal field of view in radians
	HorizontalFieldOfView() float32

	// SetHorizontalFieldOfView sets the vertical field of view that yields hfov horizontally.
	//
	// Parameters:
	//   - hfov: the horizontal field of view in radians
	SetHorizontalFieldOfView(hfov float32)

	// AspectRatio returns the screen width divided by its height.
	//
	// Returns:
	//   - float32: the aspect ratio
	AspectRatio() float32

	// SetScreenWidthAndHeight sets the viewport size. Values below 1 are raised to 1.
	//
	// Parameters:
	//   - width: the width in pixels
	//   - height: the height in pixels
	SetScreenWidthAndHeight(width, height int)

	// SetSceneRadius sets the radius of the scene bounding sphere and scales the fly speed to 1% of it.
	// Non-positive values are logged and ignored.
	//
	// Parameters:
	//   - radius: the new scene radius
	SetSceneRadius(radius float32)

	// SceneCenter returns the center of the scene bounding sphere.
	//
	// Returns:
	//   - common.Vec: the scene center
	SceneCenter() common.Vec

	// SetSceneCenter sets the center of the scene bounding sphere and moves the pivot point onto it.
	//
	// Parameters:
	//   - center: the new scene center
	SetSceneCenter(center common.Vec)

	// PivotPoint returns the point the camera rotates around.
	//
	// Returns:
	//   - common.Vec: the pivot point
	PivotPoint() common.Vec

	// SetPivotPoint sets the point the camera rotates around.
	// In orthographic mode the frustum is rescaled so that the image does not change.
	//
	// Parameters:
	//   - point: the new pivot point
	SetPivotPoint(point common.Vec)

	// ZNear returns the near clipping distance derived from the scene sphere.
	//
	// Returns:
	//   - float32: the near plane distance
	ZNear() float32

	// ZFar returns the far clipping distance derived from the scene sphere.
	//
	// Returns:
	//   - float32: the far plane distance
	ZFar() float32

	// DistanceToSceneCenter returns the depth of the scene center along the view direction.
	//
	// Returns:
	//   - float32: the distance to the scene center
	DistanceToSceneCenter() float32

	// ViewDirection returns the normalized world-space direction the camera looks at.
	//
	// Returns:
	//   - common.Vec: the frame -Z axis
	ViewDirection() common.Vec

	// UpVector returns the normalized world-space up direction of the camera.
	//
	// Returns:
	//   - common.Vec: the frame Y axis
	UpVector() common.Vec

	// RightVector returns the normalized world-space right direction of the camera.
	//
	// Returns:
	//   - common.Vec: the frame X axis
	RightVector() common.Vec

	// SetUpVector rotates the camera so that its Y axis is aligned with up.
	//
	// Parameters:
	//   - up: the new world-space up direction
	//   - noMove: false to rotate around the pivot point instead of in place
	SetUpVector(up common.Vec, noMove bool)

	// SetViewDirection rotates the camera so that it looks along direction, keeping its up vector
	// as vertical as possible. A null direction is ignored.
	//
	// Parameters:
	//   - direction: the new world-space view direction
	SetViewDirection(direction common.Vec)

	// LookAt rotates the camera so that it looks at target.
	//
	// Parameters:
	//   - target: the world-space point to look at
	LookAt(target common.Vec)

	// FitSphere moves the camera along its view direction so that the sphere fills the screen.
	//
	// Parameters:
	//   - center: the sphere center
	//   - radius: the sphere radius
	FitSphere(center common.Vec, radius float32)

	// FitBoundingBox moves the camera so that the axis-aligned box fills the screen.
	//
	// Parameters:
	//   - minCorner: the lowest corner
	//   - maxCorner: the highest corner
	FitBoundingBox(minCorner, maxCorner common.Vec)

	// ShowEntireScene fits the scene bounding sphere.
	ShowEntireScene()

	// CenterScene translates the camera so that the scene center is on the view axis.
	CenterScene()

	// UnprojectedCoordinatesOf converts screen coordinates (top-left origin, depth in [0, 1]) to world coordinates.
	//
	// Parameters:
	//   - p: pixel x, pixel y and normalized depth
	//
	// Returns:
	//   - common.Vec: the world-space point
	//   - error: an error if the view-projection matrix is singular
	UnprojectedCoordinatesOf(p common.Vec) (common.Vec, error)

	// ConvertClickToLine returns the world-space ray passing through a pixel.
	//
	// Parameters:
	//   - pixel: the pixel, top-left origin
	//
	// Returns:
	//   - origin: the ray origin
	//   - direction: the normalized ray direction
	ConvertClickToLine(pixel image.Point) (origin, direction common.Vec)

	// ViewMatrix returns the world-to-camera transform.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix, column-major
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the camera-to-clip transform.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix, column-major
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined world-to-clip transform.
	//
	// Returns:
	//   - mgl32.Mat4: projection times view
	ViewProjectionMatrix() mgl32.Mat4

	// KeyFrameInterpolator returns the path stored under key.
	//
	// Parameters:
	//   - key: the path key
	//
	// Returns:
	//   - keyframe.KeyFrameInterpolator: the path, or nil when none is stored
	KeyFrameInterpolator(key int) keyframe.KeyFrameInterpolator

	// SetKeyFrameInterpolator stores a path under key and makes it drive the camera frame.
	// A previous path under the same key is released. Passing nil deletes the path.
	//
	// Parameters:
	//   - key: the path key
	//   - kfi: the path to store
	SetKeyFrameInterpolator(key int, kfi keyframe.KeyFrameInterpolator)

	// PathKeys returns the keys of the stored paths in ascending order.
	//
	// Returns:
	//   - []int: the path keys
	PathKeys() []int

	// AddKeyFrameToPath appends the current camera pose to the path under key, creating the path if needed.
	// Keyframes are one second apart.
	//
	// Parameters:
	//   - key: the path key
	AddKeyFrameToPath(key int)

	// PlayPath starts the path under key, or stops it when it is playing.
	//
	// Parameters:
	//   - key: the path key
	PlayPath(key int)

	// DeletePath stops and releases the path under key.
	//
	// Parameters:
	//   - key: the path key
	DeletePath(key int)

	// ResetPath stops the path under key when it is playing; otherwise it rewinds it and moves
	// the camera to its first keyframe.
	//
	// Parameters:
	//   - key: the path key
	ResetPath(key int)

	// InterpolateTo smoothly moves the camera to the given pose.
	//
	// Parameters:
	//   - position: the destination position
	//   - orientation: the destination orientation
	//   - duration: the travel time in seconds
	InterpolateTo(position common.Vec, orientation common.Quaternion, duration float32)

	// Release deletes every path and releases the camera frame timers.
	Release()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective Camera with a π/4 field of view, a unit scene radius and a 600x400 screen.
// Unless a frame is supplied, the camera is placed on the Z axis so that the scene sphere is entirely visible.
//
// Parameters:
//   - scheduler: the scheduler driving the frame and path timers
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(scheduler timer.Scheduler, options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		id:                   signal.NextID(),
		bus:                  signal.NewBus(),
		logger:               log.Default(),
		scheduler:            scheduler,
		projectionType:       Perspective,
		fieldOfView:          math32.Pi / 4,
		sceneRadius:          1,
		screenWidth:          600,
		screenHeight:         400,
		zNearCoefficient:     0.005,
		zClippingCoefficient: math32.Sqrt(3),
		paths:                make(map[int]keyframe.KeyFrameInterpolator),
	}
	signal.Declare(c.bus, PathChanged)
	for _, option := range options {
		option(c)
	}
	c.orthoCoef = math32.Tan(c.fieldOfView / 2)

	positioned := c.frame != nil
	if !positioned {
		c.frame = NewManipulatedCameraFrame(scheduler, c.frameOptions...)
	}
	c.frame.SetFlySpeed(0.01 * c.sceneRadius)
	c.frame.SetPivotPoint(c.sceneCenter)
	signal.Connect(c.frame.Signals(), frame.Modified, c.id, c.invalidate)

	c.interpolationKfi = keyframe.NewKeyFrameInterpolator(scheduler,
		keyframe.WithFrame(c.frame),
		keyframe.WithLogger(c.logger),
	)

	if !positioned {
		c.ShowEntireScene()
	}
	return c
}

func (c *cameraImpl) ID() signal.ID {
	return c.id
}

func (c *cameraImpl) Signals() *signal.Bus {
	return c.bus
}

func (c *cameraImpl) Frame() ManipulatedCameraFrame {
	return c.frame
}

func (c *cameraImpl) Position() common.Vec {
	return c.frame.Position()
}

func (c *cameraImpl) SetPosition(position common.Vec) {
	c.frame.SetPosition(position)
}

func (c *cameraImpl) Orientation() common.Quaternion {
	return c.frame.Orientation()
}

func (c *cameraImpl) SetOrientation(orientation common.Quaternion) {
	c.frame.SetOrientation(orientation)
	c.frame.UpdateSceneUpVector()
}

func (c *cameraImpl) Type() Type {
	return c.projectionType
}

func (c *cameraImpl) SetType(t Type) {
	if t == Orthographic && c.projectionType == Perspective {
		c.orthoCoef = math32.Tan(c.fieldOfView / 2)
	}
	c.projectionType = t
	c.projectionIsUpToDate = false
}

func (c *cameraImpl) FieldOfView() float32 {
	return c.fieldOfView
}

func (c *cameraImpl) SetFieldOfView(fov float32) {
	c.fieldOfView = fov
	c.projectionIsUpToDate = false
}

func (c *cameraImpl) HorizontalFieldOfView() float32 {
	return 2 * math32.Atan(math32.Tan(c.fieldOfView/2)*c.AspectRatio())
}

func (c *cameraImpl) SetHorizontalFieldOfView(hfov float32) {
	c.SetFieldOfView(2 * math32.Atan(math32.Tan(hfov/2)/c.AspectRatio()))
}

func (c *cameraImpl) AspectRatio() float32 {
	return float32(c.screenWidth) / float32(c.screenHeight)
}

func (c *cameraImpl) ScreenWidth() int {
	return c.screenWidth
}

func (c *cameraImpl) ScreenHeight() int {
	return c.screenHeight
}

func (c *cameraImpl) SetScreenWidthAndHeight(width, height int) {
	c.screenWidth = max(width, 1)
	c.screenHeight = max(height, 1)
	c.projectionIsUpToDate = false
}

func (c *cameraImpl) SceneRadius() float32 {
	return c.sceneRadius
}

func (c *cameraImpl) SetSceneRadius(radius float32) {
	if radius <= 0 {
		c.logger.Printf("[Camera] ignoring scene radius %g: radius must be positive", radius)
		return
	}
	c.sceneRadius = radius
	c.projectionIsUpToDate = false
	c.frame.SetFlySpeed(0.01 * radius)
}

func (c *cameraImpl) SceneCenter() common.Vec {
	return c.sceneCenter
}

func (c *cameraImpl) SetSceneCenter(center common.Vec) {
	c.sceneCenter = center
	c.SetPivotPoint(center)
	c.projectionIsUpToDate = false
}

func (c *cameraImpl) PivotPoint() common.Vec {
	return c.frame.PivotPoint()
}

func (c *cameraImpl) SetPivotPoint(point common.Vec) {
	prevDist := math32.Abs(c.frame.CoordinatesOf(c.frame.PivotPoint())[2])
	c.frame.SetPivotPoint(point)
	newDist := math32.Abs(c.frame.CoordinatesOf(point)[2])
	if prevDist > 1e-9 && newDist > 1e-9 {
		c.orthoCoef *= prevDist / newDist
	}
	c.projectionIsUpToDate = false
}

func (c *cameraImpl) ZNear() float32 {
	zNearScene := c.zClippingCoefficient * c.sceneRadius
	z := c.DistanceToSceneCenter() - zNearScene

	zMin := c.zNearCoefficient * zNearScene
	if z < zMin {
		if c.projectionType == Perspective {
			return zMin
		}
		return 0
	}
	return z
}

func (c *cameraImpl) ZFar() float32 {
	return c.DistanceToSceneCenter() + c.zClippingCoefficient*c.sceneRadius
}

func (c *cameraImpl) DistanceToSceneCenter() float32 {
	return math32.Abs(c.frame.CoordinatesOf(c.sceneCenter)[2])
}

func (c *cameraImpl) OrthoWidthHeight() (halfWidth, halfHeight float32) {
	dist := c.orthoCoef * math32.Abs(c.frame.CoordinatesOf(c.frame.PivotPoint())[2])
	aspect := c.AspectRatio()
	if aspect < 1 {
		return dist, dist / aspect
	}
	return dist * aspect, dist
}

func (c *cameraImpl) ViewDirection() common.Vec {
	return c.frame.InverseTransformOf(common.Vec{0, 0, -1})
}

func (c *cameraImpl) UpVector() common.Vec {
	return c.frame.InverseTransformOf(common.Vec{0, 1, 0})
}

func (c *cameraImpl) RightVector() common.Vec {
	return c.frame.InverseTransformOf(common.Vec{1, 0, 0})
}

func (c *cameraImpl) SetUpVector(up common.Vec, noMove bool) {
	q := common.QuaternionFromTo(common.Vec{0, 1, 0}, c.frame.TransformOf(up))
	if !noMove {
		pivot := c.frame.PivotPoint()
		rotated := c.frame.Orientation().Mul(q).Rotate(c.frame.CoordinatesOf(pivot))
		c.frame.SetPosition(pivot.Sub(rotated))
	}
	c.frame.Rotate(q)
	c.frame.UpdateSceneUpVector()
}

func (c *cameraImpl) SetViewDirection(direction common.Vec) {
	if direction.LenSqr() < 1e-10 {
		return
	}
	xAxis := direction.Cross(c.UpVector())
	if xAxis.LenSqr() < 1e-10 {
		// direction is colinear with the up vector; keep the current X axis
		xAxis = c.frame.InverseTransformOf(common.Vec{1, 0, 0})
	}
	q := common.QuaternionFromRotatedBasis(xAxis, xAxis.Cross(direction), direction.Mul(-1))
	c.frame.SetOrientationWithConstraint(q)
}

func (c *cameraImpl) LookAt(target common.Vec) {
	c.SetViewDirection(target.Sub(c.Position()))
}

func (c *cameraImpl) FitSphere(center common.Vec, radius float32) {
	var distance float32
	switch c.projectionType {
	case Perspective:
		yview := radius / math32.Sin(c.fieldOfView/2)
		xview := radius / math32.Sin(c.HorizontalFieldOfView()/2)
		distance = common.Max32(xview, yview)
	case Orthographic:
		distance = center.Sub(c.PivotPoint()).Dot(c.ViewDirection()) + radius/c.orthoCoef
	}
	c.frame.SetPositionWithConstraint(center.Sub(c.ViewDirection().Mul(distance)))
}

func (c *cameraImpl) FitBoundingBox(minCorner, maxCorner common.Vec) {
	size := maxCorner.Sub(minCorner)
	diameter := common.Max32(math32.Abs(size[0]), math32.Abs(size[1]))
	diameter = common.Max32(math32.Abs(size[2]), diameter)
	c.FitSphere(minCorner.Add(maxCorner).Mul(0.5), 0.5*diameter)
}

func (c *cameraImpl) ShowEntireScene() {
	c.FitSphere(c.sceneCenter, c.sceneRadius)
}

func (c *cameraImpl) CenterScene() {
	shift := c.Position().Sub(c.sceneCenter)
	proj := common.ProjectOnAxis(shift, c.ViewDirection())
	c.frame.Translate(proj.Sub(shift))
}

func (c *cameraImpl) FitScreenRegion(region image.Rectangle) {
	vd := c.ViewDirection()
	distToPlane := c.DistanceToSceneCenter()
	center := region.Min.Add(region.Max).Div(2)

	onPlane := func(pixel image.Point) common.Vec {
		orig, dir := c.ConvertClickToLine(pixel)
		return orig.Add(dir.Mul(distToPlane / dir.Dot(vd)))
	}
	newCenter := onPlane(center)
	pointX := onPlane(image.Pt(region.Min.X, center.Y))
	pointY := onPlane(image.Pt(center.X, region.Min.Y))

	var distance float32
	switch c.projectionType {
	case Perspective:
		distX := pointX.Sub(newCenter).Len() / math32.Sin(c.HorizontalFieldOfView()/2)
		distY := pointY.Sub(newCenter).Len() / math32.Sin(c.fieldOfView/2)
		distance = common.Max32(distX, distY)
	case Orthographic:
		aspect := c.AspectRatio()
		dist := newCenter.Sub(c.PivotPoint()).Dot(vd)
		distX := pointX.Sub(newCenter).Len() / c.orthoCoef / max(aspect, 1)
		distY := pointY.Sub(newCenter).Len() / c.orthoCoef / max(1/aspect, 1)
		distance = dist + common.Max32(distX, distY)
	}
	c.frame.SetPositionWithConstraint(newCenter.Sub(vd.Mul(distance)))
}

func (c *cameraImpl) ProjectedCoordinatesOf(p common.Vec) common.Vec {
	win := mgl32.Project(p, c.ViewMatrix(), c.ProjectionMatrix(), 0, 0, c.screenWidth, c.screenHeight)
	return common.Vec{win[0], float32(c.screenHeight) - win[1], win[2]}
}

func (c *cameraImpl) UnprojectedCoordinatesOf(p common.Vec) (common.Vec, error) {
	win := common.Vec{p[0], float32(c.screenHeight) - p[1], p[2]}
	obj, err := mgl32.UnProject(win, c.ViewMatrix(), c.ProjectionMatrix(), 0, 0, c.screenWidth, c.screenHeight)
	if err != nil {
		return common.Vec{}, fmt.Errorf("failed to unproject %v: %w", p, err)
	}
	return obj, nil
}

func (c *cameraImpl) ConvertClickToLine(pixel image.Point) (origin, direction common.Vec) {
	w, h := float32(c.screenWidth), float32(c.screenHeight)
	switch c.projectionType {
	case Orthographic:
		hw, hh := c.OrthoWidthHeight()
		origin = c.frame.InverseCoordinatesOf(common.Vec{
			(2*float32(pixel.X)/w - 1) * hw,
			-(2*float32(pixel.Y)/h - 1) * hh,
			0,
		})
		return origin, c.ViewDirection()
	default:
		tanHalf := math32.Tan(c.fieldOfView / 2)
		origin = c.Position()
		local := common.Vec{
			(2*float32(pixel.X)/w - 1) * tanHalf * c.AspectRatio(),
			(2*(h-float32(pixel.Y))/h - 1) * tanHalf,
			-1,
		}
		direction = c.frame.InverseCoordinatesOf(local).Sub(origin).Normalize()
		return origin, direction
	}
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	if !c.viewIsUpToDate {
		c.computeViewMatrix()
	}
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	if !c.projectionIsUpToDate {
		c.computeProjectionMatrix()
	}
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

func (c *cameraImpl) KeyFrameInterpolator(key int) keyframe.KeyFrameInterpolator {
	return c.paths[key]
}

func (c *cameraImpl) SetKeyFrameInterpolator(key int, kfi keyframe.KeyFrameInterpolator) {
	if prev, ok := c.paths[key]; ok && prev != kfi {
		prev.Release()
	}
	if kfi == nil {
		delete(c.paths, key)
	} else {
		kfi.SetFrame(c.frame)
		c.paths[key] = kfi
	}
	signal.Emit(c.bus, PathChanged, key)
}

func (c *cameraImpl) PathKeys() []int {
	keys := make([]int, 0, len(c.paths))
	for key := range c.paths {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (c *cameraImpl) AddKeyFrameToPath(key int) {
	kfi, ok := c.paths[key]
	if !ok {
		kfi = keyframe.NewKeyFrameInterpolator(c.scheduler, keyframe.WithLogger(c.logger))
		c.SetKeyFrameInterpolator(key, kfi)
	}
	kfi.AppendKeyFrameSnapshot(c.frame.Position(), c.frame.Orientation())
}

func (c *cameraImpl) PlayPath(key int) {
	if kfi, ok := c.paths[key]; ok {
		kfi.ToggleInterpolation()
	}
}

func (c *cameraImpl) DeletePath(key int) {
	if _, ok := c.paths[key]; ok {
		c.SetKeyFrameInterpolator(key, nil)
	}
}

func (c *cameraImpl) ResetPath(key int) {
	kfi, ok := c.paths[key]
	if !ok {
		return
	}
	if kfi.InterpolationIsStarted() {
		kfi.StopInterpolation()
		return
	}
	kfi.ResetInterpolation()
	kfi.InterpolateAtTime(kfi.InterpolationTime())
}

func (c *cameraImpl) InterpolateTo(position common.Vec, orientation common.Quaternion, duration float32) {
	kfi := c.interpolationKfi
	kfi.DeletePath()
	kfi.AddKeyFrameSnapshot(c.frame.Position(), c.frame.Orientation(), 0)
	kfi.AddKeyFrameSnapshot(c.frame.Position().Mul(0.3).Add(position.Mul(0.7)), orientation, 0.4*duration)
	kfi.AddKeyFrameSnapshot(position, orientation, duration)
	kfi.StartInterpolation(-1)
}

func (c *cameraImpl) Release() {
	for _, key := range c.PathKeys() {
		c.DeletePath(key)
	}
	c.interpolationKfi.Release()
	c.frame.Signals().Unsubscribe(frame.Modified.Name(), c.id)
	c.frame.Release()
}

func (c *cameraImpl) invalidate() {
	c.viewIsUpToDate = false
	c.projectionIsUpToDate = false
}

// computeViewMatrix inverts the frame transform: rotation by the conjugate orientation, then
// translation by the rotated negated position.
func (c *cameraImpl) computeViewMatrix() {
	q := c.frame.Orientation().Inverse()
	t := q.Rotate(c.frame.Position()).Mul(-1)
	m := q.Mat4()
	m[12], m[13], m[14] = t[0], t[1], t[2]
	c.viewMatrix = m
	c.viewIsUpToDate = true
}

func (c *cameraImpl) computeProjectionMatrix() {
	zNear, zFar := c.ZNear(), c.ZFar()
	switch c.projectionType {
	case Orthographic:
		w, h := c.OrthoWidthHeight()
		c.projectionMatrix = mgl32.Ortho(-w, w, -h, h, zNear, zFar)
	default:
		c.projectionMatrix = mgl32.Perspective(c.fieldOfView, c.AspectRatio(), zNear, zFar)
	}
	c.projectionIsUpToDate = true
}
