package gl_device

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/tliron/commonlog"
)

var (
	log = commonlog.GetLogger("glvm.gl_device")

	mu      sync.Mutex
	version string
)

// Loader returns a vm.Loader backed by the go-gl OpenGL 4.6 core bindings.
// The returned loader must run on the thread that owns the current GL context,
// which is the case when it is invoked through vm.Executor.Init from the render loop.
//
// Returns:
//   - vm.Loader: loader that initializes the bindings and maps every entry point
func Loader() vm.Loader {
	return func() (*vm.EntryPoints, error) {
		if err := gl.Init(); err != nil {
			return nil, fmt.Errorf("gl_device: init bindings: %w", err)
		}

		v := gl.GoStr(gl.GetString(gl.VERSION))
		mu.Lock()
		version = v
		mu.Unlock()
		log.Infof("OpenGL %s, renderer %s", v, gl.GoStr(gl.GetString(gl.RENDERER)))

		return entryPoints(), nil
	}
}

// Version returns the GL version string reported by the driver.
//
// Returns:
//   - string: the version string, empty until a Loader has run
func Version() string {
	mu.Lock()
	defer mu.Unlock()
	return version
}

func entryPoints() *vm.EntryPoints {
	return &vm.EntryPoints{
		BindVertexArray:          gl.BindVertexArray,
		UseProgram:               gl.UseProgram,
		ActiveTexture:            gl.ActiveTexture,
		BindSampler:              gl.BindSampler,
		BindTexture:              gl.BindTexture,
		BindBufferBase:           gl.BindBufferBase,
		BindBufferRange:          gl.BindBufferRange,
		BindFramebuffer:          gl.BindFramebuffer,
		Viewport:                 gl.Viewport,
		Enable:                   gl.Enable,
		Disable:                  gl.Disable,
		DepthFunc:                gl.DepthFunc,
		CullFace:                 gl.CullFace,
		BlendFuncSeparate:        gl.BlendFuncSeparate,
		BlendEquationSeparate:    gl.BlendEquationSeparate,
		BlendColor:               gl.BlendColor,
		PolygonMode:              gl.PolygonMode,
		StencilFuncSeparate:      gl.StencilFuncSeparate,
		StencilOpSeparate:        gl.StencilOpSeparate,
		PatchParameteri:          gl.PatchParameteri,
		DrawElements:             gl.DrawElements,
		DrawArrays:               gl.DrawArrays,
		DrawElementsInstanced:    gl.DrawElementsInstanced,
		DrawArraysInstanced:      gl.DrawArraysInstanced,
		Clear:                    gl.Clear,
		BindImageTexture:         gl.BindImageTexture,
		ClearColor:               gl.ClearColor,
		ClearDepth:               gl.ClearDepth,
		GetError:                 gl.GetError,
		BindBuffer:               gl.BindBuffer,
		VertexAttribPointer:      gl.VertexAttribPointer,
		VertexAttribDivisor:      gl.VertexAttribDivisor,
		EnableVertexAttribArray:  gl.EnableVertexAttribArray,
		DisableVertexAttribArray: gl.DisableVertexAttribArray,
		Uniform1fv:               gl.Uniform1fv,
		Uniform1iv:               gl.Uniform1iv,
		Uniform2fv:               gl.Uniform2fv,
		Uniform2iv:               gl.Uniform2iv,
		Uniform3fv:               gl.Uniform3fv,
		Uniform3iv:               gl.Uniform3iv,
		Uniform4fv:               gl.Uniform4fv,
		Uniform4iv:               gl.Uniform4iv,
		UniformMatrix2fv:         gl.UniformMatrix2fv,
		UniformMatrix3fv:         gl.UniformMatrix3fv,
		UniformMatrix4fv:         gl.UniformMatrix4fv,
	}
}
