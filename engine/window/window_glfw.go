package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// open initializes GLFW, creates the window with a core profile context of the requested
// version and makes the context current on this thread.
//
// GLFW reference: https://www.glfw.org/docs/latest/context_guide.html
func (w *engineWindow) open() error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	hints := map[glfw.Hint]int{
		glfw.ClientAPI:               glfw.OpenGLAPI,
		glfw.ContextVersionMajor:     w.glMajor,
		glfw.ContextVersionMinor:     w.glMinor,
		glfw.OpenGLProfile:           glfw.OpenGLCoreProfile,
		glfw.OpenGLForwardCompatible: glfw.True,
		glfw.Resizable:               glfw.False,
	}
	if w.resizable {
		hints[glfw.Resizable] = glfw.True
	}
	for hint, value := range hints {
		glfw.WindowHint(hint, value)
	}

	native, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	native.MakeContextCurrent()

	interval := 0
	if w.vsync {
		interval = 1
	}
	glfw.SwapInterval(interval)

	native.SetKeyCallback(w.handleKey)
	native.SetFramebufferSizeCallback(w.handleFramebufferSize)
	w.width, w.height = native.GetFramebufferSize()
	w.native = native
	return nil
}

// handleKey closes the window on Escape and forwards every other key to the key callbacks.
// Repeats count as presses.
func (w *engineWindow) handleKey(native *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		native.SetShouldClose(true)
		return
	}
	switch action {
	case glfw.Press, glfw.Repeat:
		if w.onKeyDown != nil {
			w.onKeyDown(uint32(key))
		}
	case glfw.Release:
		if w.onKeyUp != nil {
			w.onKeyUp(uint32(key))
		}
	}
}

// handleFramebufferSize tracks the framebuffer size in pixels, which is what Viewport expects,
// rather than the window size in screen coordinates.
func (w *engineWindow) handleFramebufferSize(_ *glfw.Window, width, height int) {
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
