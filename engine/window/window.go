package window

import (
	"github.com/Carmen-Shannon/helix-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides the native window a WebGPU surface is created on, plus the input events the
// host loop consumes. It is driven from the thread that created it.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key
	SetKeyDownCallback(callback func(key common.Key))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key
	SetKeyUpCallback(callback func(key common.Key))

	// SetDragCallback sets the callback for cursor movement while the middle mouse button is held.
	//
	// Parameters:
	//   - callback: function receiving the cursor delta in pixels
	SetDragCallback(callback func(dx, dy float32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil once closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents dispatches pending events to the callbacks without blocking.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	PollEvents() bool

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never opened or is already closed
	Close() error

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	// size limits applied while the user resizes; zero leaves a side unconstrained
	minWidth, minHeight int
	maxWidth, maxHeight int

	// framebuffer size in pixels
	width, height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow *glfwWindow

	onResize func(width, height int)
	onScroll func(delta float32)
	onKeyUp  func(key common.Key)
	onKeyDn  func(key common.Key)
	onDrag   func(dx, dy float32)

	dragging     bool
	lastX, lastY float64
}

var _ Window = &engineWindow{}

// NewWindow opens a window with the specified options. It must be called from the main
// goroutine; the calling goroutine is locked to its OS thread.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: if GLFW cannot be initialized or the window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:  "helix",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	common.Logger().Info("window opened", "title", w.title, "width", w.width, "height", w.height)
	return w, nil
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key common.Key)) {
	w.onKeyDn = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(key common.Key)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// resized records a framebuffer size change and forwards it.
func (w *engineWindow) resized(width, height int) {
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	if w.onResize != nil && width > 0 && height > 0 {
		w.onResize(width, height)
	}
}

// cursorMoved forwards the cursor delta while dragging.
func (w *engineWindow) cursorMoved(x, y float64) {
	dx, dy := x-w.lastX, y-w.lastY
	w.lastX, w.lastY = x, y
	if w.dragging && w.onDrag != nil {
		w.onDrag(float32(dx), float32(dy))
	}
}
