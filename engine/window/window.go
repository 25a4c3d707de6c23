package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Window provides the platform window and the viewer's input boundary.
// Key events carry GLFW key codes (see common/key_codes.go) and pointer motion is
// delivered as raw deltas with the cursor captured.
type Window interface {
	// SetUpdateCallback sets the function called once per message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseMotionCallback sets the callback for raw pointer motion.
	// The first cursor sample after the window opens only primes the tracker.
	//
	// Parameters:
	//   - callback: function receiving the horizontal and vertical delta in pixels
	SetMouseMotionCallback(callback func(dx, dy float64))

	// SurfaceDescriptor returns a platform-specific wgpu.SurfaceDescriptor for the window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// RequestClose asks the message loop to stop without destroying the window, so the
	// surface stays valid until Close is called.
	RequestClose()

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never initialized
	Close() error

	// ProcessMessages polls events and calls the update callback until the window closes.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	width  int
	height int

	// internalWindow holds the platform window (glfwWindow).
	internalWindow any

	motion motionTracker

	onUpdate      func()
	onResize      func(width, height int)
	onKeyDown     func(keyCode uint32)
	onKeyUp       func(keyCode uint32)
	onMouseMotion func(dx, dy float64)
}

var _ Window = &engineWindow{}

// newEngineWindow returns an engineWindow holding the defaults with options applied.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy-scene",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// NewWindow creates and opens a new Window with the specified options.
// Must be called from the main goroutine; the calling OS thread is locked.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("creating platform window: %w", err)
	}
	logger.Named("window").Info("window opened",
		zap.String("title", w.title),
		zap.Int("width", w.width),
		zap.Int("height", w.height),
	)
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseMotionCallback(callback func(dx, dy float64)) {
	w.onMouseMotion = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !platformProcessMessages(w) {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// handleKey routes a key event to the registered callbacks.
// Pressing Escape is not forwarded and asks the platform layer to close the window.
//
// Parameters:
//   - key: the key code
//   - pressed: true for press and repeat, false for release
//
// Returns:
//   - bool: true if the window should close
func (w *engineWindow) handleKey(key uint32, pressed bool) bool {
	if key == common.KeyEsc {
		return pressed
	}
	if pressed {
		if w.onKeyDown != nil {
			w.onKeyDown(key)
		}
		return false
	}
	if w.onKeyUp != nil {
		w.onKeyUp(key)
	}
	return false
}

// handleCursor converts an absolute cursor position into a motion event.
func (w *engineWindow) handleCursor(x, y float64) {
	dx, dy, ok := w.motion.delta(x, y)
	if !ok || w.onMouseMotion == nil {
		return
	}
	w.onMouseMotion(dx, dy)
}

// handleResize records the new framebuffer size and notifies the resize callback.
// Zero sizes are reported by minimized windows and are ignored.
func (w *engineWindow) handleResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

// motionTracker turns absolute cursor positions into deltas.
type motionTracker struct {
	primed bool
	lastX  float64
	lastY  float64
}

// delta returns the offset from the previous sample. The first sample only primes
// the tracker and reports ok == false.
func (m *motionTracker) delta(x, y float64) (dx, dy float64, ok bool) {
	if !m.primed {
		m.primed = true
		m.lastX, m.lastY = x, y
		return 0, 0, false
	}
	dx, dy = x-m.lastX, y-m.lastY
	m.lastX, m.lastY = x, y
	return dx, dy, true
}

// reset forgets the previous sample so the next one primes the tracker again.
func (m *motionTracker) reset() {
	m.primed = false
}
