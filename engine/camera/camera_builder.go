package camera

import (
	"log"

	"github.com/Carmen-Shannon/trackball/common"
)

type CameraBuilderOption func(*cameraImpl)

// WithType sets the projection type.
//
// Parameters:
//   - t: Perspective or Orthographic
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection type
func WithType(t Type) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projectionType = t
	}
}

// WithFieldOfView sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFieldOfView(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fieldOfView = fov
	}
}

// WithScreenSize sets the viewport size in pixels. Values below 1 are raised to 1.
//
// Parameters:
//   - width: the viewport width
//   - height: the viewport height
//
// Returns:
//   - CameraBuilderOption: a function that sets the screen size
func WithScreenSize(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.screenWidth = max(width, 1)
		c.screenHeight = max(height, 1)
	}
}

// WithSceneRadius sets the radius of the scene bounding sphere. Non-positive values are ignored.
//
// Parameters:
//   - radius: the scene radius
//
// Returns:
//   - CameraBuilderOption: a function that sets the scene radius
func WithSceneRadius(radius float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if radius > 0 {
			c.sceneRadius = radius
		}
	}
}

// WithSceneCenter sets the center of the scene bounding sphere, which is also the initial pivot point.
//
// Parameters:
//   - center: the scene center
//
// Returns:
//   - CameraBuilderOption: a function that sets the scene center
func WithSceneCenter(center common.Vec) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.sceneCenter = center
	}
}

// WithClippingCoefficients overrides the near and clipping coefficients used to derive zNear and zFar.
//
// Parameters:
//   - zNear: fraction of the clipping distance kept as minimum near plane (default 0.005)
//   - zClipping: multiple of the scene radius clipped around the scene center (default √3)
//
// Returns:
//   - CameraBuilderOption: a function that sets the clipping coefficients
func WithClippingCoefficients(zNear, zClipping float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.zNearCoefficient = zNear
		c.zClippingCoefficient = zClipping
	}
}

// WithCameraFrame uses an existing camera frame. Its pose is kept as is.
//
// Parameters:
//   - f: the camera frame
//
// Returns:
//   - CameraBuilderOption: functional option to set the camera frame
func WithCameraFrame(f ManipulatedCameraFrame) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.frame = f
	}
}

// WithFrameOptions configures the frame the camera creates. It has no effect together with WithCameraFrame.
// The fly speed is always derived from the scene radius.
//
// Parameters:
//   - options: options applied to the created ManipulatedCameraFrame
//
// Returns:
//   - CameraBuilderOption: functional option to set the frame options
func WithFrameOptions(options ...ManipulatedCameraFrameBuilderOption) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.frameOptions = append(c.frameOptions, options...)
	}
}

// WithLogger sets the logger used for diagnostics of the camera and its paths.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - CameraBuilderOption: functional option to set the logger
func WithLogger(logger *log.Logger) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.logger = logger
	}
}
