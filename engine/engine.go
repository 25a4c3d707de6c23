package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"

	"go.uber.org/zap"
)

// engine implements the Engine interface.
// Input arrives on the window (main) thread, the camera is updated on the tick goroutine and
// frames are drawn on the render goroutine.
type engine struct {
	log *zap.Logger

	tickRateChannel chan time.Duration

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window     window.Window
	renderer   renderer.Renderer
	camera     camera.Camera
	controller camera.CameraController

	uniform       *camera.CameraUniform
	uniformBuffer renderer.Buffer

	modelsMu sync.RWMutex
	models   []model.Model

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate   time.Duration
	tickCallback     func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine runs the viewer: it feeds window input to the camera controller, advances the camera at a
// fixed tick rate and draws every registered model each frame.
type Engine interface {
	// Window returns the window the engine reads input from.
	Window() window.Window

	// Renderer returns the renderer the engine draws with.
	Renderer() renderer.Renderer

	// Camera returns the camera driven by the controller.
	Camera() camera.Camera

	// Controller returns the camera controller receiving window input.
	Controller() camera.CameraController

	// AddModel registers a model to be drawn every frame. The caller keeps ownership.
	//
	// Parameters:
	//   - m: the model to draw
	AddModel(m model.Model)

	// RemoveModel stops drawing a model. The model is not released; call Release on it
	// after removing it.
	//
	// Parameters:
	//   - m: the model to remove
	//
	// Returns:
	//   - bool: true if the model was registered
	RemoveModel(m model.Model) bool

	// Models returns a copy of the registered models in draw order.
	//
	// Returns:
	//   - []model.Model: the registered models
	Models() []model.Model

	// EnableProfiler enables periodic frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables periodic frame statistics.
	DisableProfiler()

	// SetTickRate sets the camera update rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called after the camera update on every tick.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the tick and render loops and processes window messages until the window
	// closes or Quit is called. Once both loops have exited the window is destroyed and the
	// camera uniform released. Must be called from the goroutine that created the window.
	Run()

	// Quit signals the engine loops to stop. Safe to call more than once.
	Quit()
}

// NewEngine creates a new Engine from the provided options.
// A window and a renderer are required; the camera and controller default to NewCamera and
// NewCameraController. The surface is sized to the window and the camera uniform buffer is
// created and bound here.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if a dependency is missing, the surface cannot be configured or the camera
//     uniform cannot be bound
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		log:             logger.Named("engine"),
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		return nil, errors.New("engine requires a window")
	}
	if e.renderer == nil {
		return nil, errors.New("engine requires a renderer")
	}
	if e.camera == nil {
		e.camera = camera.NewCamera(camera.WithAspect(aspectOf(e.window.Width(), e.window.Height())))
	}
	if e.controller == nil {
		e.controller = camera.NewCameraController()
	}

	if err := e.renderer.Resize(e.window.Width(), e.window.Height()); err != nil {
		return nil, fmt.Errorf("configuring surface: %w", err)
	}

	e.uniform = camera.NewCameraUniform()
	e.uniform.UpdateViewProj(e.camera)
	buf, err := e.renderer.CreateUniformBuffer("camera uniform", e.uniform.Marshal())
	if err != nil {
		return nil, fmt.Errorf("creating camera uniform: %w", err)
	}
	if err := e.renderer.SetCamera(buf); err != nil {
		buf.Release()
		return nil, fmt.Errorf("binding camera uniform: %w", err)
	}
	e.uniformBuffer = buf

	e.window.SetKeyDownCallback(func(key uint32) {
		e.controller.ProcessKeyboard(key, true)
	})
	e.window.SetKeyUpCallback(func(key uint32) {
		e.controller.ProcessKeyboard(key, false)
	})
	e.window.SetMouseMotionCallback(func(dx, dy float64) {
		e.controller.ProcessMouseMotion(dx, dy)
	})
	e.window.SetResizeCallback(e.resize)
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			e.window.RequestClose()
		default:
		}
	})

	return e, nil
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

func (e *engine) Controller() camera.CameraController {
	return e.controller
}

func (e *engine) AddModel(m model.Model) {
	if m == nil {
		return
	}
	e.modelsMu.Lock()
	defer e.modelsMu.Unlock()
	e.models = append(e.models, m)
}

func (e *engine) RemoveModel(m model.Model) bool {
	e.modelsMu.Lock()
	defer e.modelsMu.Unlock()
	i := slices.Index(e.models, m)
	if i < 0 {
		return false
	}
	e.models = slices.Delete(e.models, i, i+1)
	return true
}

func (e *engine) Models() []model.Model {
	e.modelsMu.RLock()
	defer e.modelsMu.RUnlock()
	return slices.Clone(e.models)
}

func (e *engine) Run() {
	e.running.Store(true)
	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	e.running.Store(false)

	_ = e.window.Close()
	e.uniformBuffer.Release()
	e.log.Info("engine stopped")
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel exactly once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handle launches the tick and render goroutines.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate tick loop until the quit channel is closed.
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
			e.tick(float32(now.Sub(lastTick).Seconds()))
			lastTick = now
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// tick applies pending input to the camera and runs the tick callback.
func (e *engine) tick(dt float32) {
	e.controller.UpdateCamera(e.camera)
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

// handleRender draws frames until the quit channel is closed.
// A panic inside a frame is logged and stops the engine.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("render goroutine recovered from panic", zap.Any("panic", r))
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		start := time.Now()
		if err := e.renderOnce(); err != nil {
			e.log.Warn("frame dropped", zap.Error(err))
		}

		if e.profilingEnabled.Load() {
			stats := e.renderer.Stats()
			e.profiler.Tick(
				zap.Int64("live_buffers", stats.LiveBuffers),
				zap.Int64("live_textures", stats.LiveTextures),
				zap.Int64("buffer_bytes", stats.BufferBytes),
			)
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderOnce uploads the current view-projection matrix and draws every registered model.
//
// Returns:
//   - error: error if the uniform upload or the frame failed
func (e *engine) renderOnce() error {
	e.uniform.UpdateViewProj(e.camera)
	if err := e.renderer.WriteBuffer(e.uniformBuffer, e.uniform.Marshal()); err != nil {
		return fmt.Errorf("updating camera uniform: %w", err)
	}
	return e.renderer.RenderFrame(e.drawItems())
}

// drawItems flattens the registered models into one draw per mesh.
// Meshes without a material are drawn with the renderer's fallback textures.
func (e *engine) drawItems() []renderer.DrawItem {
	e.modelsMu.RLock()
	defer e.modelsMu.RUnlock()

	var items []renderer.DrawItem
	for _, m := range e.models {
		m.ForEachDrawable(func(mesh *model.Mesh, mat *model.Material) {
			item := renderer.DrawItem{
				VertexBuffer: mesh.VertexBuffer,
				IndexBuffer:  mesh.IndexBuffer,
				ElementCount: mesh.ElementCount,
			}
			if mat != nil {
				item.DiffuseTexture = mat.DiffuseTexture
				item.NormalTexture = mat.NormalTexture
			}
			items = append(items, item)
		})
	}
	return items
}

// resize reconfigures the surface and the camera aspect ratio for a new framebuffer size.
func (e *engine) resize(width, height int) {
	if err := e.renderer.Resize(width, height); err != nil {
		e.log.Warn("resize failed", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
		return
	}
	e.camera.SetAspect(aspectOf(width, height))
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the tick rate in ticks per second.
// If the engine is running, the change takes effect on the next tick.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)
	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}

	// Replace any pending update with the newest rate.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameInterval(fps)
}

// aspectOf returns width/height, or 1 when the height is not positive.
func aspectOf(width, height int) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// tickInterval converts a tick rate into a ticker period, defaulting to 60 per second.
func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

// frameInterval converts a frame cap into a minimum frame duration; 0 means uncapped.
func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
