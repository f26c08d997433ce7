package keyframe

import (
	"log"

	"github.com/Carmen-Shannon/trackball/engine/frame"
)

// KeyFrameInterpolatorBuilderOption is a functional option for configuring a KeyFrameInterpolator.
type KeyFrameInterpolatorBuilderOption func(*keyFrameInterpolatorImpl)

// WithFrame sets the frame driven by the interpolator.
//
// Parameters:
//   - f: the frame to drive
//
// Returns:
//   - KeyFrameInterpolatorBuilderOption: option function to apply
func WithFrame(f frame.Frame) KeyFrameInterpolatorBuilderOption {
	return func(k *keyFrameInterpolatorImpl) {
		k.SetFrame(f)
	}
}

// WithPeriod sets the playback tick period in milliseconds. Negative values are ignored.
//
// Parameters:
//   - period: tick period in milliseconds (default 40)
//
// Returns:
//   - KeyFrameInterpolatorBuilderOption: option function to apply
func WithPeriod(period int) KeyFrameInterpolatorBuilderOption {
	return func(k *keyFrameInterpolatorImpl) {
		if period >= 0 {
			k.period = period
		}
	}
}

// WithSpeed sets the playback speed. Negative values play the path backwards.
//
// Parameters:
//   - speed: playback speed (default 1)
//
// Returns:
//   - KeyFrameInterpolatorBuilderOption: option function to apply
func WithSpeed(speed float32) KeyFrameInterpolatorBuilderOption {
	return func(k *keyFrameInterpolatorImpl) {
		k.interpolationSpeed = speed
	}
}

// WithLoop enables looping playback.
//
// Parameters:
//   - loop: true to wrap around at the ends of the path
//
// Returns:
//   - KeyFrameInterpolatorBuilderOption: option function to apply
func WithLoop(loop bool) KeyFrameInterpolatorBuilderOption {
	return func(k *keyFrameInterpolatorImpl) {
		k.loop = loop
	}
}

// WithLogger sets the logger receiving diagnostics about rejected keyframes.
//
// Parameters:
//   - logger: the destination logger (default log.Default())
//
// Returns:
//   - KeyFrameInterpolatorBuilderOption: option function to apply
func WithLogger(logger *log.Logger) KeyFrameInterpolatorBuilderOption {
	return func(k *keyFrameInterpolatorImpl) {
		if logger != nil {
			k.logger = logger
		}
	}
}
