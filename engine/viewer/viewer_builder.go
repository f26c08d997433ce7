package viewer

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/trackball/engine/camera"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
type ViewerBuilderOption func(*viewerImpl)

// WithCamera uses an existing camera instead of creating one. The caller keeps ownership of it.
//
// Parameters:
//   - c: the camera to drive
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithCamera(c camera.Camera) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.camera = c
	}
}

// WithSceneRadius sets the camera scene radius and fits the camera to the scene. Non-positive values are ignored.
//
// Parameters:
//   - radius: the scene radius
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithSceneRadius(radius float32) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.sceneRadius = radius
	}
}

// WithCameraMode sets the initial camera mode and its default bindings.
//
// Parameters:
//   - mode: Revolve or Fly
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithCameraMode(mode CameraMode) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.mode = mode
	}
}

// WithLogger sets the logger used for viewer diagnostics and for the camera the viewer creates.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithLogger(logger *log.Logger) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.logger = logger
	}
}

// WithDrawFunc sets the callback run by Draw.
//
// Parameters:
//   - draw: function receiving the viewer camera
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithDrawFunc(draw func(c camera.Camera)) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.drawFunc = draw
	}
}

// WithAnimateFunc sets the callback run at every animation step.
//
// Parameters:
//   - animate: function advancing the scene
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithAnimateFunc(animate func()) ViewerBuilderOption {
	return func(v *viewerImpl) {
		v.animateFunc = animate
	}
}

// WithAnimationPeriod sets the delay between animation steps (default 40ms). Non-positive values are ignored.
//
// Parameters:
//   - period: the animation period
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithAnimationPeriod(period time.Duration) ViewerBuilderOption {
	return func(v *viewerImpl) {
		if period > 0 {
			v.animationPeriod = period
		}
	}
}
