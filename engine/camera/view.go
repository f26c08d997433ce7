package camera

import (
	"image"

	"github.com/Carmen-Shannon/trackball/common"
)

// Type is the projection of a Camera.
type Type int

const (
	Perspective Type = iota
	Orthographic
)

// String returns the projection name.
func (t Type) String() string {
	if t == Orthographic {
		return "Orthographic"
	}
	return "Perspective"
}

// View is the part of a camera a ManipulatedCameraFrame reads while it converts pointer
// motion into displacements. Camera implements it; tests may provide a fixed view.
type View interface {
	// SceneRadius returns the radius of the sphere enclosing the scene.
	//
	// Returns:
	//   - float32: the scene radius
	SceneRadius() float32

	// ScreenWidth returns the viewport width in pixels.
	//
	// Returns:
	//   - int: the width, at least 1
	ScreenWidth() int

	// ScreenHeight returns the viewport height in pixels.
	//
	// Returns:
	//   - int: the height, at least 1
	ScreenHeight() int

	// Type returns the projection type.
	//
	// Returns:
	//   - Type: Perspective or Orthographic
	Type() Type

	// FieldOfView returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: the vertical field of view
	FieldOfView() float32

	// OrthoWidthHeight returns the half extents of the orthographic frustum.
	//
	// Returns:
	//   - halfWidth: half the frustum width at the pivot depth
	//   - halfHeight: half the frustum height at the pivot depth
	OrthoWidthHeight() (halfWidth, halfHeight float32)

	// ProjectedCoordinatesOf projects a world-space point on the screen.
	// The result has its origin at the top left corner, y pointing down, and a depth in [0, 1].
	//
	// Parameters:
	//   - p: the world-space point
	//
	// Returns:
	//   - common.Vec: pixel x, pixel y and normalized depth
	ProjectedCoordinatesOf(p common.Vec) common.Vec

	// FitScreenRegion moves the camera so that the pixel rectangle fills the viewport.
	//
	// Parameters:
	//   - region: the screen rectangle, top-left origin
	FitScreenRegion(region image.Rectangle)
}
