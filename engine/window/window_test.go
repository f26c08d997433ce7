package window

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/trackball/common"
)

func TestNewEngineWindowDefaults(t *testing.T) {
	w := newEngineWindow()
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.True(t, w.closeOnEscape)
	assert.False(t, w.IsRunning())
	assert.False(t, w.PollEvents())
	assert.Error(t, w.Close())
}

func TestNewEngineWindowClampsSize(t *testing.T) {
	w := newEngineWindow(WithWidth(4000), WithHeight(10), WithTitle("paths"))
	assert.Equal(t, 1600, w.Width())
	assert.Equal(t, 200, w.Height())
	assert.Equal(t, "paths", w.title)

	w = newEngineWindow(WithMinWidth(100), WithWidth(300), WithMaxHeight(500), WithHeight(800))
	assert.Equal(t, 300, w.Width())
	assert.Equal(t, 500, w.Height())
}

func TestDispatchKey(t *testing.T) {
	w := newEngineWindow()
	var down, up []uint32
	var downMods common.Modifiers
	w.SetKeyDownCallback(func(keyCode uint32, mods common.Modifiers) {
		down = append(down, keyCode)
		downMods = mods
	})
	w.SetKeyUpCallback(func(keyCode uint32, mods common.Modifiers) {
		up = append(up, keyCode)
	})

	assert.False(t, w.dispatchKey(common.KeyF1, true, common.ModAlt))
	assert.False(t, w.dispatchKey(common.KeyF1, false, common.ModNone))
	assert.Equal(t, []uint32{common.KeyF1}, down)
	assert.Equal(t, []uint32{common.KeyF1}, up)
	assert.Equal(t, common.ModAlt, downMods)

	assert.True(t, w.dispatchKey(common.KeyEsc, true, common.ModNone))
	assert.Len(t, down, 1)

	w.closeOnEscape = false
	assert.False(t, w.dispatchKey(common.KeyEsc, true, common.ModNone))
	assert.Len(t, down, 2)
}

func TestDispatchScrollUsesWheelSteps(t *testing.T) {
	w := newEngineWindow()
	var deltas []float32
	var lastMods common.Modifiers
	w.SetScrollCallback(func(delta float32, mods common.Modifiers) {
		deltas = append(deltas, delta)
		lastMods = mods
	})

	w.dispatchScroll(1, common.ModShift)
	w.dispatchScroll(-0.5, common.ModNone)
	w.dispatchScroll(0, common.ModNone)
	assert.Equal(t, []float32{120, -60}, deltas)
	assert.Equal(t, common.ModNone, lastMods)
}

func TestDispatchPointerAndResize(t *testing.T) {
	w := newEngineWindow()
	type press struct {
		button  common.MouseButton
		pressed bool
		mods    common.Modifiers
		x, y    int
	}
	var presses []press
	var moves [][2]int
	var sizes [][2]int
	w.SetMouseButtonCallback(func(button common.MouseButton, pressed bool, mods common.Modifiers, x, y int) {
		presses = append(presses, press{button, pressed, mods, x, y})
	})
	w.SetMouseMoveCallback(func(x, y int) {
		moves = append(moves, [2]int{x, y})
	})
	w.SetResizeCallback(func(width, height int) {
		sizes = append(sizes, [2]int{width, height})
	})

	w.dispatchMouseButton(common.MouseButtonMiddle, true, common.ModShift, 10.7, 20.2)
	w.dispatchMouseMove(30.9, 40)
	w.dispatchResize(800, 600)

	assert.Equal(t, []press{{common.MouseButtonMiddle, true, common.ModShift, 10, 20}}, presses)
	assert.Equal(t, [][2]int{{30, 40}}, moves)
	assert.Equal(t, [][2]int{{800, 600}}, sizes)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
}
