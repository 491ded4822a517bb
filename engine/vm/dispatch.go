package vm

// dispatch calls the entry point bound to in.Code with its argument slots reinterpreted for
// that opcode.
func (x *executor) dispatch(in Instruction) {
	ep := x.ep
	a := &in.Args
	switch in.Code {
	case BindVertexArray:
		ep.BindVertexArray(a[0].Uint())
	case BindProgram:
		ep.UseProgram(a[0].Uint())
	case ActiveTexture:
		ep.ActiveTexture(a[0].Uint())
	case BindSampler:
		ep.BindSampler(a[0].Uint(), a[1].Uint())
	case BindTexture:
		ep.BindTexture(a[0].Uint(), a[1].Uint())
	case BindBufferBase:
		ep.BindBufferBase(a[0].Uint(), a[1].Uint(), a[2].Uint())
	case BindBufferRange:
		ep.BindBufferRange(a[0].Uint(), a[1].Uint(), a[2].Uint(), int(a[3].Int64()), int(a[4].Int64()))
	case BindFramebuffer:
		ep.BindFramebuffer(a[0].Uint(), a[1].Uint())
	case Viewport:
		ep.Viewport(a[0].Int(), a[1].Int(), a[2].Int(), a[3].Int())
	case Enable:
		ep.Enable(a[0].Uint())
	case Disable:
		ep.Disable(a[0].Uint())
	case DepthFunc:
		ep.DepthFunc(a[0].Uint())
	case CullFace:
		ep.CullFace(a[0].Uint())
	case BlendFuncSeparate:
		ep.BlendFuncSeparate(a[0].Uint(), a[1].Uint(), a[2].Uint(), a[3].Uint())
	case BlendEquationSeparate:
		ep.BlendEquationSeparate(a[0].Uint(), a[1].Uint())
	case BlendColor:
		ep.BlendColor(a[0].Float(), a[1].Float(), a[2].Float(), a[3].Float())
	case PolygonMode:
		ep.PolygonMode(a[0].Uint(), a[1].Uint())
	case StencilFuncSeparate:
		ep.StencilFuncSeparate(a[0].Uint(), a[1].Uint(), a[2].Int(), a[3].Uint())
	case StencilOpSeparate:
		ep.StencilOpSeparate(a[0].Uint(), a[1].Uint(), a[2].Uint(), a[3].Uint())
	case PatchParameter:
		ep.PatchParameteri(a[0].Uint(), a[1].Int())
	case DrawElements:
		ep.DrawElements(a[0].Uint(), a[1].Int(), a[2].Uint(), a[3].Pointer())
	case DrawArrays:
		ep.DrawArrays(a[0].Uint(), a[1].Int(), a[2].Int())
	case DrawElementsInstanced:
		ep.DrawElementsInstanced(a[0].Uint(), a[1].Int(), a[2].Uint(), a[3].Pointer(), a[4].Int())
	case DrawArraysInstanced:
		ep.DrawArraysInstanced(a[0].Uint(), a[1].Int(), a[2].Int(), a[3].Int())
	case Clear:
		ep.Clear(a[0].Uint())
	case BindImageTexture:
		ep.BindImageTexture(a[0].Uint(), a[1].Uint(), a[2].Int(), false, 0, a[3].Uint(), a[4].Uint())
	case ClearColor:
		ep.ClearColor(a[0].Float(), a[1].Float(), a[2].Float(), a[3].Float())
	case ClearDepth:
		ep.ClearDepth(a[0].Double())
	case GetError:
		x.queryError(a[0])
	case BindBuffer:
		ep.BindBuffer(a[0].Uint(), a[1].Uint())
	case VertexAttribPointer:
		normalized := a[2]&VertexAttribNormalized != 0
		ep.VertexAttribPointer(a[0].Uint(), a[1].Int(), a[2].Uint(), normalized, a[3].Int(), a[4].Pointer())
	case VertexAttribDivisor:
		ep.VertexAttribDivisor(a[0].Uint(), a[1].Uint())
	case EnableVertexAttribArray:
		ep.EnableVertexAttribArray(a[0].Uint())
	case DisableVertexAttribArray:
		ep.DisableVertexAttribArray(a[0].Uint())
	case Uniform1fv:
		ep.Uniform1fv(a[0].Int(), a[1].Int(), (*float32)(a[2].Pointer()))
	case Uniform1iv:
		ep.Uniform1iv(a[0].Int(), a[1].Int(), (*int32)(a[2].Pointer()))
	case Uniform2fv:
		ep.Uniform2fv(a[0].Int(), a[1].Int(), (*float32)(a[2].Pointer()))
	case Uniform2iv:
		ep.Uniform2iv(a[0].Int(), a[1].Int(), (*int32)(a[2].Pointer()))
	case Uniform3fv:
		ep.Uniform3fv(a[0].Int(), a[1].Int(), (*float32)(a[2].Pointer()))
	case Uniform3iv:
		ep.Uniform3iv(a[0].Int(), a[1].Int(), (*int32)(a[2].Pointer()))
	case Uniform4fv:
		ep.Uniform4fv(a[0].Int(), a[1].Int(), (*float32)(a[2].Pointer()))
	case Uniform4iv:
		ep.Uniform4iv(a[0].Int(), a[1].Int(), (*int32)(a[2].Pointer()))
	case UniformMatrix2fv:
		ep.UniformMatrix2fv(a[0].Int(), a[1].Int(), a[2].Bool(), (*float32)(a[3].Pointer()))
	case UniformMatrix3fv:
		ep.UniformMatrix3fv(a[0].Int(), a[1].Int(), a[2].Bool(), (*float32)(a[3].Pointer()))
	case UniformMatrix4fv:
		ep.UniformMatrix4fv(a[0].Int(), a[1].Int(), a[2].Bool(), (*float32)(a[3].Pointer()))
	}
}

// queryError polls the context error flag. The code is written to the uint32 at out when out is
// non-zero and handed to the error handler when it is not EnumNoError.
func (x *executor) queryError(out Word) {
	code := x.ep.GetError()
	if out != 0 {
		*(*uint32)(out.Pointer()) = code
	}
	if code != EnumNoError && x.onError != nil {
		x.onError(code)
	}
}
