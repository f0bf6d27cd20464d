package engine

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/Carmen-Shannon/helix-go/engine/camera"
	"github.com/Carmen-Shannon/helix-go/engine/profiler"
	"github.com/Carmen-Shannon/helix-go/engine/renderer"
	"github.com/Carmen-Shannon/helix-go/engine/renderer/backend"
	"github.com/Carmen-Shannon/helix-go/engine/scene"
	"github.com/Carmen-Shannon/helix-go/engine/window"
)

// maxTicksPerFrame bounds the catch-up ticks run after a long frame.
const maxTicksPerFrame = 5

// engine implements the Engine interface.
// Window events, game ticks and rendering share one goroutine.
type engine struct {
	running bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes    map[int]scene.Scene
	sceneKeys []int // keys of scenes, ascending

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	now   func() time.Time
	sleep func(time.Duration)
}

// Engine is the main entry point for the engine.
// It orchestrates the window, the fixed-rate game tick and the renderer's frame graph.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	Renderer() renderer.Renderer

	// Camera returns the camera scenes are rendered through.
	Camera() camera.Camera

	// SetCamera replaces the view camera.
	//
	// Parameters:
	//   - c: the camera
	SetCamera(c camera.Camera)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, input processing and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the tick length in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// The active scene with the lowest key is the one rendered each frame.
	//
	// Parameters:
	//   - key: the z-index determining priority (lower wins)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Run drives the loop on the calling goroutine until Quit is called, the window closes, ctx is
	// done or the renderer loses its device.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: the fatal frame error that stopped the loop, nil otherwise
	Run(ctx context.Context) error

	// Quit stops the loop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine drawing through r.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - r: the renderer
//   - cam: the view camera
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(r renderer.Renderer, cam camera.Camera, options ...EngineBuilderOption) Engine {
	if r == nil {
		panic("engine: renderer is required")
	}
	e := &engine{
		quitChannel:    make(chan struct{}),
		scenes:         make(map[int]scene.Scene),
		renderer:       r,
		camera:         cam,
		profiler:       profiler.NewProfiler(),
		engineTickRate: time.Second / 60,
		now:            time.Now,
		sleep:          time.Sleep,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) SetCamera(c camera.Camera) {
	e.camera = c
}

// resize propagates a framebuffer size change to the renderer and the camera aspect.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.renderer.Resize(width, height)
	if e.camera != nil {
		e.camera.SetAspect(float32(width) / float32(height))
		e.camera.SetRenderTargetSize(width, height)
	}
}

func (e *engine) Run(ctx context.Context) error {
	e.running = true
	defer func() { e.running = false }()

	last := e.now()
	var pending time.Duration

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.quitChannel:
			return nil
		default:
		}

		if e.window != nil && !e.window.PollEvents() {
			return nil
		}

		frameStart := e.now()
		elapsed := frameStart.Sub(last)
		last = frameStart
		dt := float32(elapsed.Seconds())

		pending += elapsed
		ticks := 0
		for pending >= e.engineTickRate && ticks < maxTicksPerFrame {
			if e.tickCallback != nil {
				e.tickCallback(float32(e.engineTickRate.Seconds()))
			}
			pending -= e.engineTickRate
			ticks++
		}
		if ticks == maxTicksPerFrame {
			pending = 0
		}

		if err := e.renderFrame(); err != nil {
			return err
		}

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}

		if e.profilingEnabled && e.profiler != nil {
			e.profiler.Tick(e.renderer.Stats())
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - e.now().Sub(frameStart); remaining > 0 {
				e.sleep(remaining)
			}
		}
	}
}

// renderFrame draws the active scene with the lowest key. Aborted frames are already reported by
// the renderer; only a lost device stops the loop.
func (e *engine) renderFrame() error {
	s := e.activeScene()
	if s == nil || e.camera == nil {
		return nil
	}
	e.camera.Update()
	err := e.renderer.Render(e.camera, s)
	if errors.Is(err, backend.ErrContextLost) {
		common.Logger().Error("render device lost, stopping", "err", err)
		return err
	}
	return nil
}

// activeScene returns the active scene with the lowest key, or nil.
func (e *engine) activeScene() scene.Scene {
	for _, k := range e.sceneKeys {
		if s := e.scenes[k]; s.Active() {
			return s
		}
	}
	return nil
}

// Quit signals the loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
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

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect on the next frame.
func (e *engine) SetTickRate(fps float64) {
	e.engineTickRate = tickDuration(fps)
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	if i, found := slices.BinarySearch(e.sceneKeys, key); !found {
		e.sceneKeys = slices.Insert(e.sceneKeys, i, key)
	}
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	if i, found := slices.BinarySearch(e.sceneKeys, key); found {
		e.sceneKeys = slices.Delete(e.sceneKeys, i, i+1)
	}
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	out := make(map[int]scene.Scene, len(e.scenes))
	for k, s := range e.scenes {
		out[k] = s
	}
	return out
}

func tickDuration(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
