package window

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window provides a platform window that owns an OpenGL context, plus input event handling.
// The context is current on the OS thread that created the window; every method except
// RequestClose must be called from that thread.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration, after events
	// are polled and before the back buffer is presented.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SwapBuffers presents the back buffer of the window's context.
	SwapBuffers()

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	// Safe to call from any goroutine.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback and presents each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the GLFW implementation of the Window interface.
type engineWindow struct {
	title         string
	width, height int // framebuffer size in pixels

	glMajor, glMinor int
	vsync            bool
	resizable        bool

	// native is nil once the window has been closed.
	native         *glfw.Window
	closeRequested atomic.Bool

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options and makes its GL context current
// on the calling goroutine's OS thread, which stays locked for the lifetime of the window.
// Applies default values first, then each option in order. Panics if GLFW cannot create the
// window or context.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window with a current context
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:     "glvm",
		width:     1280,
		height:    720,
		glMajor:   4,
		glMinor:   6,
		vsync:     true,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := w.open(); err != nil {
		panic(fmt.Sprintf("failed to create window: %v", err))
	}
	return w
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

func (w *engineWindow) SwapBuffers() {
	if w.native != nil {
		w.native.SwapBuffers()
	}
}

func (w *engineWindow) IsRunning() bool {
	return w.native != nil && !w.closeRequested.Load() && !w.native.ShouldClose()
}

func (w *engineWindow) RequestClose() {
	w.closeRequested.Store(true)
}

func (w *engineWindow) Close() error {
	if w.native == nil {
		return fmt.Errorf("window is not open")
	}
	w.native.Destroy()
	w.native = nil
	glfw.Terminate()
	return nil
}

// ProcessMessages polls events, runs the update callback and presents, until the window closes.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		glfw.PollEvents()
		if !w.IsRunning() {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		w.SwapBuffers()
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
