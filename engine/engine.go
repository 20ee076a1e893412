package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/mo-kasiri/Three-IK/common"
	"github.com/mo-kasiri/Three-IK/engine/profiler"
	"github.com/mo-kasiri/Three-IK/engine/scene"
	"github.com/mo-kasiri/Three-IK/engine/window"
)

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window
	input  *inputRouter

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	keyCallback    func(keyCode uint32)

	scenesMu *sync.Mutex
	scenes   map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxPixelRatio    float32
}

// Engine is the main entry point for the engine.
// It orchestrates the engine loop, render loop, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Profiler returns the engine profiler, for callers that record named timings.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// Camera controllers of active scenes are updated at this rate, then the tick callback runs.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called at the start of each render frame, before any scene is
	// prepared or drawn. Use this for per-frame simulation and GPU buffer updates.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetKeyCallback registers the function called on every key press. Escape always quits.
	//
	// Parameters:
	//   - callback: receives the GLFW key code, see common.Key*
	SetKeyCallback(callback func(keyCode uint32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order during the render loop.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key, or nil.
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	Scenes() map[int]scene.Scene

	// Resize applies a framebuffer size to every scene: the surface is sized by the pixel ratio limit and the
	// camera aspect and controller viewport follow the framebuffer.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	Resize(width, height int)

	// Run starts the engine goroutines and pumps window events on the calling goroutine until the window closes
	// or Quit is called. It returns once the engine goroutines have stopped.
	Run()

	// Quit signals all engine goroutines to stop and closes the window.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// When a window is attached its resize, pointer, scroll and key callbacks are routed through the engine.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenesMu:         &sync.Mutex{},
		scenes:           make(map[int]scene.Scene),
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		maxPixelRatio:    2,
	}

	for _, opt := range options {
		opt(e)
	}

	e.input = newInputRouter(e.activeScenes, e.handleKey)
	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
		e.window.SetMouseButtonCallback(e.input.button)
		e.window.SetMouseMoveCallback(e.input.move)
		e.window.SetScrollCallback(e.input.scroll)
		e.window.SetKeyDownCallback(e.input.key)
		e.window.SetContentScaleCallback(func(float32) {
			e.Resize(e.window.Width(), e.window.Height())
		})
		e.Resize(e.window.Width(), e.window.Height())
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
	}
	e.signalQuit()
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit and asks the window loop to stop.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// handleKey quits on Escape and forwards every other key to the key callback.
func (e *engine) handleKey(keyCode uint32) {
	if keyCode == common.KeyEsc {
		e.Quit()
		return
	}
	if e.keyCallback != nil {
		e.keyCallback(keyCode)
	}
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// activeScenes returns the active scenes in ascending z-index order.
func (e *engine) activeScenes() []scene.Scene {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Each tick advances camera damping of the active scenes and fires the tick callback. Listens for dynamic rate
// changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			updateCameras(e.activeScenes())
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// updateCameras steps every active scene's orbit controller and refreshes the camera matrices when it moved.
func updateCameras(scenes []scene.Scene) {
	for _, s := range scenes {
		cam := s.Camera()
		if cam == nil {
			continue
		}
		if ctrl := cam.Controller(); ctrl != nil && ctrl.Update() {
			cam.Update()
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if err := renderFrame(e.activeScenes()); err != nil {
				log.Printf("[Engine] %v", err)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame draws the given scenes into one render pass owned by the first scene's renderer:
// every scene is prepared, then BeginFrame, each scene's draw calls, EndFrame and Present.
// A frame whose surface texture cannot be acquired is skipped.
func renderFrame(scenes []scene.Scene) error {
	if len(scenes) == 0 {
		return nil
	}
	r := scenes[0].Renderer()
	if r == nil {
		return nil
	}

	for _, s := range scenes {
		s.Prepare()
	}
	if err := r.BeginFrame(); err != nil {
		return err
	}

	var drawErr error
	for _, s := range scenes {
		if err := s.DrawCalls(); err != nil && drawErr == nil {
			drawErr = err
		}
	}
	r.EndFrame()
	r.Present()
	return drawErr
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	scale := float32(1)
	if e.window != nil {
		scale = e.window.ContentScale()
	}
	sw, sh := common.SurfaceSize(width, height, scale, e.maxPixelRatio)

	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	for _, s := range e.scenes {
		if r := s.Renderer(); r != nil {
			r.Resize(sw, sh)
		}
		if c := s.Camera(); c != nil {
			c.SetAspect(float32(width) / float32(height))
			if ctrl := c.Controller(); ctrl != nil {
				ctrl.SetViewport(width, height)
			}
		}
	}
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
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetKeyCallback(callback func(keyCode uint32)) {
	e.keyCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
