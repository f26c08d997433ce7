package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/camera"
	"github.com/Carmen-Shannon/trackball/engine/timer"
	"github.com/Carmen-Shannon/trackball/engine/viewer"
)

const sample = `
[window]
title = "paths"
width = 800

[engine]
tick_rate = 30.0
profiling = true

[camera]
type = "orthographic"
field_of_view = 60.0
scene_radius = 5.0
scene_center = [1.0, 2.0, 3.0]
zooms_on_pivot_point = true

[camera.sensitivity]
wheel = 2.0

[viewer]
mode = "fly"
animation_period_ms = 20
`

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, "trackball", s.Window.Title)
	assert.Equal(t, float64(60), s.Engine.TickRate)
	assert.Equal(t, "perspective", s.Camera.Type)
	assert.Equal(t, "revolve", s.Viewer.Mode)
}

func TestParseOverridesDefaults(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "paths", s.Window.Title)
	assert.Equal(t, 800, s.Window.Width)
	assert.Equal(t, 720, s.Window.Height)
	assert.True(t, s.Window.CloseOnEscape)
	assert.Equal(t, float64(30), s.Engine.TickRate)
	assert.True(t, s.Engine.Profiling)
	assert.Equal(t, [3]float32{1, 2, 3}, s.Camera.SceneCenter)
	assert.Equal(t, float32(2), s.Camera.Sensitivity.Wheel)
	assert.Zero(t, s.Camera.Sensitivity.Rotation)
	assert.Equal(t, 20, s.Viewer.AnimationPeriodMs)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[camera]\nfov = 10.0\n"))
	require.Error(t, err)
	var strict *toml.StrictMissingError
	assert.True(t, errors.As(err, &strict))
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte("[camera]\ntype = \"fisheye\"\nscene_radius = -1.0\n[viewer]\nmode = \"walk\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown camera type "fisheye"`)
	assert.Contains(t, err.Error(), "scene radius -1 must be positive")
	assert.Contains(t, err.Error(), `unknown viewer mode "walk"`)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackball.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fly", s.Viewer.Mode)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOptionsBuildConfiguredComponents(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	clock := timer.NewManualClock(time.Unix(0, 0))
	scheduler := timer.NewScheduler(timer.WithClock(clock.Now))
	c := camera.NewCamera(scheduler, s.CameraOptions()...)

	assert.Equal(t, camera.Orthographic, c.Type())
	assert.InDelta(t, math32.Pi/3, c.FieldOfView(), 1e-5)
	assert.Equal(t, 800, c.ScreenWidth())
	assert.Equal(t, 720, c.ScreenHeight())
	assert.Equal(t, float32(5), c.SceneRadius())
	assert.Equal(t, common.Vec{1, 2, 3}, c.SceneCenter())
	assert.True(t, c.Frame().ZoomsOnPivotPoint())
	assert.False(t, c.Frame().RotatesAroundUpVector())
	assert.Equal(t, float32(2), c.Frame().WheelSensitivity())
	assert.Equal(t, float32(1), c.Frame().RotationSensitivity())

	v := viewer.NewViewer(scheduler, append(s.ViewerOptions(), viewer.WithCamera(c))...)
	assert.Equal(t, viewer.Fly, v.CameraMode())

	assert.Len(t, s.WindowOptions(), 4)
	assert.Len(t, s.EngineOptions(), 3)
}
