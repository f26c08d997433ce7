package engine

import (
	"log"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/trackball/engine/profiler"
	"github.com/Carmen-Shannon/trackball/engine/signal"
	"github.com/Carmen-Shannon/trackball/engine/timer"
	"github.com/Carmen-Shannon/trackball/engine/viewer"
	"github.com/Carmen-Shannon/trackball/engine/window"
)

// maxIdle bounds the sleep of an iteration that drew nothing, so window events stay responsive.
const maxIdle = 5 * time.Millisecond

// engine implements the Engine interface.
// Runs window polling, timers and drawing on the goroutine that calls Run.
type engine struct {
	id     signal.ID
	logger *log.Logger

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window    window.Window
	scheduler timer.Scheduler

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickTimer      timer.Timer
	tickCallback   func(deltaTime float32)
	lastTick       time.Time

	viewers    map[int]viewer.Viewer
	focusedKey int
	hasFocus   bool

	renderFrameLimit time.Duration // minimum iteration duration; 0 = uncapped
	lastDrawn        int
}

// Engine is the main entry point for the engine.
// It owns the scheduler that drives every camera timer and runs a single-threaded loop:
// poll window events, fire due timers, then draw every viewer that requested a redraw.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil when running headless
	Window() window.Window

	// Scheduler returns the scheduler polled by the loop. Cameras and viewers must be created with it.
	//
	// Returns:
	//   - timer.Scheduler: the engine scheduler
	Scheduler() timer.Scheduler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// The change takes effect immediately.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for scene logic that does not belong to a viewer animation.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional loop rate cap in iterations per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum iterations per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddViewer registers a viewer at the given key.
	// Viewers are drawn in ascending key order. The first viewer added receives the window input.
	//
	// Parameters:
	//   - key: the key determining draw order (lower draws first)
	//   - v: the Viewer to register
	AddViewer(key int, v viewer.Viewer)

	// RemoveViewer removes the viewer at the given key.
	// If it had the window input, the input moves to the lowest remaining key, or is detached when none is left.
	//
	// Parameters:
	//   - key: the key of the viewer to remove
	RemoveViewer(key int)

	// Viewer retrieves the viewer registered at the given key.
	// Returns nil if no viewer exists at that key.
	//
	// Parameters:
	//   - key: the key of the viewer to retrieve
	//
	// Returns:
	//   - viewer.Viewer: the viewer at the key, or nil if not found
	Viewer(key int) viewer.Viewer

	// Viewers returns a copy of all registered viewers.
	//
	// Returns:
	//   - map[int]viewer.Viewer: a copy of the viewers map
	Viewers() map[int]viewer.Viewer

	// Focus routes the window input to the viewer at the given key.
	//
	// Parameters:
	//   - key: the key of the viewer to focus
	//
	// Returns:
	//   - bool: false if no viewer exists at that key
	Focus(key int) bool

	// Step runs one loop iteration: poll window events, fire due timers, draw the viewers
	// that requested a redraw and update the profiler.
	//
	// Returns:
	//   - bool: false once the window has been closed or Quit was called
	Step() bool

	// Run starts the main loop on the calling goroutine. Blocks until the window closes or Quit is called.
	Run()

	// Quit stops the main loop and the tick timer.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// A real-time scheduler is created unless one is supplied.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		id:             signal.NextID(),
		logger:         log.Default(),
		quitChannel:    make(chan struct{}),
		viewers:        make(map[int]viewer.Viewer),
		engineTickRate: time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.scheduler == nil {
		e.scheduler = timer.NewScheduler()
	}
	e.profiler = profiler.NewProfiler(profiler.WithClock(e.scheduler.Now), profiler.WithLogger(e.logger))

	e.tickTimer = e.scheduler.NewTimer()
	signal.Connect(e.tickTimer.Signals(), timer.Timeout, e.id, e.tick)
	e.lastTick = e.scheduler.Now()
	e.tickTimer.Start(e.engineTickRate)

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			for _, v := range e.viewers {
				v.Resize(width, height)
			}
		})
	}

	for _, key := range e.sortedKeys() {
		e.attach(key)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scheduler() timer.Scheduler {
	return e.scheduler
}

func (e *engine) Run() {
	defer func() {
		// Recover from panics inside the loop to report them before shutting down.
		if r := recover(); r != nil {
			e.logger.Printf("[Engine] loop recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	for {
		start := time.Now()
		if !e.Step() {
			return
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		} else if e.lastDrawn == 0 {
			e.idle()
		}
	}
}

// Step runs one iteration of the loop.
func (e *engine) Step() bool {
	select {
	case <-e.quitChannel:
		return false
	default:
	}

	if e.window != nil && !e.window.PollEvents() {
		e.signalQuit()
		return false
	}

	e.scheduler.Poll()

	drawn := 0
	for _, key := range e.sortedKeys() {
		if v := e.viewers[key]; v.NeedsRedraw() {
			v.Draw()
			drawn++
		}
	}

	e.lastDrawn = drawn

	if e.profilingEnabled {
		e.profiler.Tick(drawn)
	}
	return true
}

// Quit stops the main loop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to stop the loop.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		e.tickTimer.Stop()
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// The tick timer is restarted with the new period.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.engineTickRate = time.Duration(float64(time.Second) / fps)
	e.tickTimer.Start(e.engineTickRate)
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderFrameLimit sets an optional loop rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddViewer(key int, v viewer.Viewer) {
	e.viewers[key] = v
	e.attach(key)
}

func (e *engine) RemoveViewer(key int) {
	delete(e.viewers, key)
	if e.hasFocus && e.focusedKey == key {
		e.hasFocus = false
		if keys := e.sortedKeys(); len(keys) > 0 {
			e.Focus(keys[0])
		} else {
			e.detachInput()
		}
	}
}

func (e *engine) Viewer(key int) viewer.Viewer {
	return e.viewers[key]
}

func (e *engine) Viewers() map[int]viewer.Viewer {
	cp := make(map[int]viewer.Viewer, len(e.viewers))
	for k, v := range e.viewers {
		cp[k] = v
	}
	return cp
}

func (e *engine) Focus(key int) bool {
	v, ok := e.viewers[key]
	if !ok {
		return false
	}
	e.focusedKey = key
	e.hasFocus = true
	if e.window != nil {
		v.AttachInput(e.window)
	}
	return true
}

// attach sizes a newly registered viewer to the window and gives it the input if nothing has focus.
func (e *engine) attach(key int) {
	v := e.viewers[key]
	if e.window != nil {
		v.Resize(e.window.Width(), e.window.Height())
	}
	if !e.hasFocus {
		e.Focus(key)
	}
}

// detachInput clears the input callbacks a removed viewer installed on the window.
func (e *engine) detachInput() {
	if e.window == nil {
		return
	}
	e.window.SetMouseButtonCallback(nil)
	e.window.SetMouseMoveCallback(nil)
	e.window.SetScrollCallback(nil)
	e.window.SetKeyDownCallback(nil)
}

func (e *engine) tick() {
	now := e.scheduler.Now()
	dt := float32(now.Sub(e.lastTick).Seconds())
	e.lastTick = now

	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

// idle sleeps until the next timer deadline, at most maxIdle.
func (e *engine) idle() {
	wait := maxIdle
	if deadline, ok := e.scheduler.NextDeadline(); ok {
		wait = min(wait, deadline.Sub(e.scheduler.Now()))
	}
	if wait > 0 {
		time.Sleep(wait)
	}
}

func (e *engine) sortedKeys() []int {
	keys := make([]int, 0, len(e.viewers))
	for k := range e.viewers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
