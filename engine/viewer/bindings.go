package viewer

import (
	"github.com/Carmen-Shannon/trackball/common"
	"github.com/Carmen-Shannon/trackball/engine/camera"
)

// CameraMode selects the default mouse and wheel bindings of a Viewer.
type CameraMode int

const (
	// Revolve turns the camera around its pivot point.
	Revolve CameraMode = iota
	// Fly moves the camera through the scene.
	Fly
)

// String returns the mode name.
func (m CameraMode) String() string {
	if m == Fly {
		return "Fly"
	}
	return "Revolve"
}

// MouseBinding is the button and modifier combination that starts a mouse action.
type MouseBinding struct {
	Button    common.MouseButton
	Modifiers common.Modifiers
}

// ActionBinding is the camera frame action started by a MouseBinding.
type ActionBinding struct {
	Action         camera.MouseAction
	WithConstraint bool
}

func defaultMouseBindings(mode CameraMode) map[MouseBinding]ActionBinding {
	bind := func(action camera.MouseAction) ActionBinding {
		return ActionBinding{Action: action, WithConstraint: true}
	}
	if mode == Fly {
		return map[MouseBinding]ActionBinding{
			{common.MouseButtonLeft, common.ModNone}:    bind(camera.MoveForward),
			{common.MouseButtonMiddle, common.ModNone}:  bind(camera.LookAround),
			{common.MouseButtonRight, common.ModNone}:   bind(camera.MoveBackward),
			{common.MouseButtonLeft, common.ModControl}: bind(camera.Drive),
			{common.MouseButtonLeft, common.ModAlt}:     bind(camera.Roll),
		}
	}
	return map[MouseBinding]ActionBinding{
		{common.MouseButtonLeft, common.ModNone}:     bind(camera.Rotate),
		{common.MouseButtonMiddle, common.ModNone}:   bind(camera.Zoom),
		{common.MouseButtonRight, common.ModNone}:    bind(camera.Translate),
		{common.MouseButtonLeft, common.ModControl}:  bind(camera.ScreenRotate),
		{common.MouseButtonRight, common.ModControl}: bind(camera.ScreenTranslate),
		{common.MouseButtonMiddle, common.ModShift}:  bind(camera.ZoomOnRegion),
		{common.MouseButtonLeft, common.ModAlt}:      bind(camera.Roll),
	}
}

func defaultWheelBindings(mode CameraMode) map[common.Modifiers]camera.MouseAction {
	if mode == Fly {
		return map[common.Modifiers]camera.MouseAction{common.ModNone: camera.MoveForward}
	}
	return map[common.Modifiers]camera.MouseAction{common.ModNone: camera.Zoom}
}
