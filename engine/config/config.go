package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine"
	"github.com/Carmen-Shannon/trackball/engine/camera"
	"github.com/Carmen-Shannon/trackball/engine/viewer"
	"github.com/Carmen-Shannon/trackball/engine/window"
)

// Settings is the content of a trackball settings file.
// Sections left out of the file keep their Default values.
type Settings struct {
	Window WindowSettings `toml:"window"`
	Engine EngineSettings `toml:"engine"`
	Camera CameraSettings `toml:"camera"`
	Viewer ViewerSettings `toml:"viewer"`
}

type WindowSettings struct {
	Title         string `toml:"title"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	CloseOnEscape bool   `toml:"close_on_escape"`
}

type EngineSettings struct {
	TickRate   float64 `toml:"tick_rate"`
	FrameLimit float64 `toml:"frame_limit"`
	Profiling  bool    `toml:"profiling"`
}

// CameraSettings configures the camera and its frame. Type is "perspective" or "orthographic";
// FieldOfView is the vertical field of view in degrees.
type CameraSettings struct {
	Type                  string              `toml:"type"`
	FieldOfView           float32             `toml:"field_of_view"`
	SceneRadius           float32             `toml:"scene_radius"`
	SceneCenter           [3]float32          `toml:"scene_center"`
	ZoomsOnPivotPoint     bool                `toml:"zooms_on_pivot_point"`
	RotatesAroundUpVector bool                `toml:"rotates_around_up_vector"`
	Sensitivity           SensitivitySettings `toml:"sensitivity"`
}

// SensitivitySettings mirrors camera.Sensitivities. Zero values keep the camera defaults.
type SensitivitySettings struct {
	Rotation    float32 `toml:"rotation"`
	Translation float32 `toml:"translation"`
	Spinning    float32 `toml:"spinning"`
	Wheel       float32 `toml:"wheel"`
	Zoom        float32 `toml:"zoom"`
}

// ViewerSettings configures the viewer. Mode is "revolve" or "fly".
type ViewerSettings struct {
	Mode              string `toml:"mode"`
	AnimationPeriodMs int    `toml:"animation_period_ms"`
}

// Default returns the settings used when no file is given.
//
// Returns:
//   - Settings: the default settings
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Title:         "trackball",
			Width:         1280,
			Height:        720,
			CloseOnEscape: true,
		},
		Engine: EngineSettings{
			TickRate: 60,
		},
		Camera: CameraSettings{
			Type:        "perspective",
			FieldOfView: 45,
			SceneRadius: 1,
		},
		Viewer: ViewerSettings{
			Mode:              "revolve",
			AnimationPeriodMs: 40,
		},
	}
}

// Load reads and parses a settings file.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Settings: the defaults overridden by the file
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("loading settings %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes TOML settings on top of Default. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Settings: the decoded settings
//   - error: error if decoding or validation fails
func Parse(data []byte) (Settings, error) {
	s := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports every invalid value of the settings.
//
// Returns:
//   - error: the joined validation errors, or nil
func (s Settings) Validate() error {
	var errs []error
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height))
	}
	if s.Engine.TickRate < 0 || s.Engine.FrameLimit < 0 {
		errs = append(errs, errors.New("engine rates must not be negative"))
	}
	if _, err := s.Camera.projectionType(); err != nil {
		errs = append(errs, err)
	}
	if s.Camera.FieldOfView <= 0 || s.Camera.FieldOfView >= 180 {
		errs = append(errs, fmt.Errorf("camera field of view %g must be between 0 and 180 degrees", s.Camera.FieldOfView))
	}
	if s.Camera.SceneRadius <= 0 {
		errs = append(errs, fmt.Errorf("camera scene radius %g must be positive", s.Camera.SceneRadius))
	}
	if _, err := s.Viewer.cameraMode(); err != nil {
		errs = append(errs, err)
	}
	if s.Viewer.AnimationPeriodMs <= 0 {
		errs = append(errs, fmt.Errorf("viewer animation period %dms must be positive", s.Viewer.AnimationPeriodMs))
	}
	return errors.Join(errs...)
}

// WindowOptions converts the window section to window builder options.
//
// Returns:
//   - []window.WindowBuilderOption: the options to pass to window.NewWindow
func (s Settings) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(s.Window.Title),
		window.WithWidth(s.Window.Width),
		window.WithHeight(s.Window.Height),
		window.WithCloseOnEscape(s.Window.CloseOnEscape),
	}
}

// EngineOptions converts the engine section to engine builder options.
//
// Returns:
//   - []engine.EngineBuilderOption: the options to pass to engine.NewEngine
func (s Settings) EngineOptions() []engine.EngineBuilderOption {
	return []engine.EngineBuilderOption{
		engine.WithTickRate(s.Engine.TickRate),
		engine.WithRenderFrameLimit(s.Engine.FrameLimit),
		engine.WithProfiling(s.Engine.Profiling),
	}
}

// CameraOptions converts the camera section to camera builder options, including the camera frame options.
//
// Returns:
//   - []camera.CameraBuilderOption: the options to pass to camera.NewCamera
func (s Settings) CameraOptions() []camera.CameraBuilderOption {
	c := s.Camera
	t, _ := c.projectionType()
	sens := c.Sensitivity
	return []camera.CameraBuilderOption{
		camera.WithType(t),
		camera.WithFieldOfView(common.DegToRad(c.FieldOfView)),
		camera.WithScreenSize(s.Window.Width, s.Window.Height),
		camera.WithSceneRadius(c.SceneRadius),
		camera.WithSceneCenter(common.Vec(c.SceneCenter)),
		camera.WithFrameOptions(
			camera.WithZoomsOnPivotPoint(c.ZoomsOnPivotPoint),
			camera.WithRotatesAroundUpVector(c.RotatesAroundUpVector),
			camera.WithSensitivities(camera.Sensitivities{
				Rotation:    sens.Rotation,
				Translation: sens.Translation,
				Spinning:    sens.Spinning,
				Wheel:       sens.Wheel,
				Zoom:        sens.Zoom,
			}),
		),
	}
}

// ViewerOptions converts the viewer section to viewer builder options.
//
// Returns:
//   - []viewer.ViewerBuilderOption: the options to pass to viewer.NewViewer
func (s Settings) ViewerOptions() []viewer.ViewerBuilderOption {
	mode, _ := s.Viewer.cameraMode()
	return []viewer.ViewerBuilderOption{
		viewer.WithCameraMode(mode),
		viewer.WithAnimationPeriod(time.Duration(s.Viewer.AnimationPeriodMs) * time.Millisecond),
	}
}

func (c CameraSettings) projectionType() (camera.Type, error) {
	switch c.Type {
	case "perspective":
		return camera.Perspective, nil
	case "orthographic":
		return camera.Orthographic, nil
	default:
		return camera.Perspective, fmt.Errorf("unknown camera type %q", c.Type)
	}
}

func (v ViewerSettings) cameraMode() (viewer.CameraMode, error) {
	switch v.Mode {
	case "revolve":
		return viewer.Revolve, nil
	case "fly":
		return viewer.Fly, nil
	default:
		return viewer.Revolve, fmt.Errorf("unknown viewer mode %q", v.Mode)
	}
}
