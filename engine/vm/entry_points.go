package vm

import (
	"reflect"
	"unsafe"
)

// EntryPoints is the table of native functions instructions are dispatched to. Every field has
// the signature of the corresponding OpenGL binding so a loader can assign them directly.
type EntryPoints struct {
	BindVertexArray          func(array uint32)
	UseProgram               func(program uint32)
	ActiveTexture            func(texture uint32)
	BindSampler              func(unit uint32, sampler uint32)
	BindTexture              func(target uint32, texture uint32)
	BindBufferBase           func(target uint32, index uint32, buffer uint32)
	BindBufferRange          func(target uint32, index uint32, buffer uint32, offset int, size int)
	BindFramebuffer          func(target uint32, framebuffer uint32)
	Viewport                 func(x int32, y int32, width int32, height int32)
	Enable                   func(cap uint32)
	Disable                  func(cap uint32)
	DepthFunc                func(xfunc uint32)
	CullFace                 func(mode uint32)
	BlendFuncSeparate        func(srcRGB uint32, dstRGB uint32, srcAlpha uint32, dstAlpha uint32)
	BlendEquationSeparate    func(modeRGB uint32, modeAlpha uint32)
	BlendColor               func(red float32, green float32, blue float32, alpha float32)
	PolygonMode              func(face uint32, mode uint32)
	StencilFuncSeparate      func(face uint32, xfunc uint32, ref int32, mask uint32)
	StencilOpSeparate        func(face uint32, sfail uint32, dpfail uint32, dppass uint32)
	PatchParameteri          func(pname uint32, value int32)
	DrawElements             func(mode uint32, count int32, xtype uint32, indices unsafe.Pointer)
	DrawArrays               func(mode uint32, first int32, count int32)
	DrawElementsInstanced    func(mode uint32, count int32, xtype uint32, indices unsafe.Pointer, instancecount int32)
	DrawArraysInstanced      func(mode uint32, first int32, count int32, instancecount int32)
	Clear                    func(mask uint32)
	BindImageTexture         func(unit uint32, texture uint32, level int32, layered bool, layer int32, access uint32, format uint32)
	ClearColor               func(red float32, green float32, blue float32, alpha float32)
	ClearDepth               func(depth float64)
	GetError                 func() uint32
	BindBuffer               func(target uint32, buffer uint32)
	VertexAttribPointer      func(index uint32, size int32, xtype uint32, normalized bool, stride int32, pointer unsafe.Pointer)
	VertexAttribDivisor      func(index uint32, divisor uint32)
	EnableVertexAttribArray  func(index uint32)
	DisableVertexAttribArray func(index uint32)
	Uniform1fv               func(location int32, count int32, value *float32)
	Uniform1iv               func(location int32, count int32, value *int32)
	Uniform2fv               func(location int32, count int32, value *float32)
	Uniform2iv               func(location int32, count int32, value *int32)
	Uniform3fv               func(location int32, count int32, value *float32)
	Uniform3iv               func(location int32, count int32, value *int32)
	Uniform4fv               func(location int32, count int32, value *float32)
	Uniform4iv               func(location int32, count int32, value *int32)
	UniformMatrix2fv         func(location int32, count int32, transpose bool, value *float32)
	UniformMatrix3fv         func(location int32, count int32, transpose bool, value *float32)
	UniformMatrix4fv         func(location int32, count int32, transpose bool, value *float32)
}

// Loader resolves the native entry points. It is called once, on the thread that owns the
// graphics context, by Executor.Init.
type Loader func() (*EntryPoints, error)

// Missing returns the names of the entry points that are still nil.
//
// Returns:
//   - []string: field names of unresolved entry points, empty when the table is complete
func (ep *EntryPoints) Missing() []string {
	var missing []string
	v := reflect.ValueOf(ep).Elem()
	t := v.Type()
	for n := 0; n < v.NumField(); n++ {
		if v.Field(n).IsNil() {
			missing = append(missing, t.Field(n).Name)
		}
	}
	return missing
}
