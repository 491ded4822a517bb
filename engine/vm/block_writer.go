package vm

import "unsafe"

// BlockWriter records typed instructions into one block of a fragment. Each method appends one
// instruction with the argument encoding its opcode expects.
type BlockWriter struct {
	a     Arena
	f     Fragment
	block int
}

// NewBlockWriter returns a writer appending to block of f.
//
// Parameters:
//   - a: the arena owning the fragment
//   - f: the fragment to record into
//   - block: the block index returned by NewBlock
//
// Returns:
//   - *BlockWriter: the writer
func NewBlockWriter(a Arena, f Fragment, block int) *BlockWriter {
	return &BlockWriter{a: a, f: f, block: block}
}

// Fragment returns the fragment the writer records into.
func (w *BlockWriter) Fragment() Fragment { return w.f }

// Block returns the block index the writer records into.
func (w *BlockWriter) Block() int { return w.block }

// Reset clears the block so it can be recorded again.
func (w *BlockWriter) Reset() *BlockWriter {
	w.a.ClearBlock(w.f, w.block)
	return w
}

func (w *BlockWriter) emit(code Code, args ...Word) *BlockWriter {
	w.a.Append(w.f, w.block, code, args...)
	return w
}

func (w *BlockWriter) BindVertexArray(array uint32) *BlockWriter {
	return w.emit(BindVertexArray, UintWord(array))
}

func (w *BlockWriter) BindProgram(program uint32) *BlockWriter {
	return w.emit(BindProgram, UintWord(program))
}

func (w *BlockWriter) ActiveTexture(texture uint32) *BlockWriter {
	return w.emit(ActiveTexture, UintWord(texture))
}

func (w *BlockWriter) BindSampler(unit, sampler uint32) *BlockWriter {
	return w.emit(BindSampler, UintWord(unit), UintWord(sampler))
}

func (w *BlockWriter) BindTexture(target, texture uint32) *BlockWriter {
	return w.emit(BindTexture, UintWord(target), UintWord(texture))
}

func (w *BlockWriter) BindBufferBase(target, index, buffer uint32) *BlockWriter {
	return w.emit(BindBufferBase, UintWord(target), UintWord(index), UintWord(buffer))
}

func (w *BlockWriter) BindBufferRange(target, index, buffer uint32, offset, size int) *BlockWriter {
	return w.emit(BindBufferRange, UintWord(target), UintWord(index), UintWord(buffer), IntWord(int64(offset)), IntWord(int64(size)))
}

func (w *BlockWriter) BindFramebuffer(target, framebuffer uint32) *BlockWriter {
	return w.emit(BindFramebuffer, UintWord(target), UintWord(framebuffer))
}

func (w *BlockWriter) Viewport(x, y, width, height int32) *BlockWriter {
	return w.emit(Viewport, IntWord(int64(x)), IntWord(int64(y)), IntWord(int64(width)), IntWord(int64(height)))
}

func (w *BlockWriter) Enable(capability uint32) *BlockWriter {
	return w.emit(Enable, UintWord(capability))
}

func (w *BlockWriter) Disable(capability uint32) *BlockWriter {
	return w.emit(Disable, UintWord(capability))
}

func (w *BlockWriter) DepthFunc(fn uint32) *BlockWriter {
	return w.emit(DepthFunc, UintWord(fn))
}

func (w *BlockWriter) CullFace(mode uint32) *BlockWriter {
	return w.emit(CullFace, UintWord(mode))
}

func (w *BlockWriter) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha uint32) *BlockWriter {
	return w.emit(BlendFuncSeparate, UintWord(srcRGB), UintWord(dstRGB), UintWord(srcAlpha), UintWord(dstAlpha))
}

func (w *BlockWriter) BlendEquationSeparate(modeRGB, modeAlpha uint32) *BlockWriter {
	return w.emit(BlendEquationSeparate, UintWord(modeRGB), UintWord(modeAlpha))
}

func (w *BlockWriter) BlendColor(r, g, b, a float32) *BlockWriter {
	return w.emit(BlendColor, FloatWord(r), FloatWord(g), FloatWord(b), FloatWord(a))
}

func (w *BlockWriter) PolygonMode(face, mode uint32) *BlockWriter {
	return w.emit(PolygonMode, UintWord(face), UintWord(mode))
}

func (w *BlockWriter) StencilFuncSeparate(face, fn uint32, ref int32, mask uint32) *BlockWriter {
	return w.emit(StencilFuncSeparate, UintWord(face), UintWord(fn), IntWord(int64(ref)), UintWord(mask))
}

func (w *BlockWriter) StencilOpSeparate(face, sfail, dpfail, dppass uint32) *BlockWriter {
	return w.emit(StencilOpSeparate, UintWord(face), UintWord(sfail), UintWord(dpfail), UintWord(dppass))
}

func (w *BlockWriter) PatchParameter(pname uint32, value int32) *BlockWriter {
	return w.emit(PatchParameter, UintWord(pname), IntWord(int64(value)))
}

// DrawElements draws count indices of type xtype read at byte offset of the bound element buffer.
func (w *BlockWriter) DrawElements(mode uint32, count int32, xtype uint32, offset int) *BlockWriter {
	return w.emit(DrawElements, UintWord(mode), IntWord(int64(count)), UintWord(xtype), IntWord(int64(offset)))
}

func (w *BlockWriter) DrawArrays(mode uint32, first, count int32) *BlockWriter {
	return w.emit(DrawArrays, UintWord(mode), IntWord(int64(first)), IntWord(int64(count)))
}

func (w *BlockWriter) DrawElementsInstanced(mode uint32, count int32, xtype uint32, offset int, instances int32) *BlockWriter {
	return w.emit(DrawElementsInstanced, UintWord(mode), IntWord(int64(count)), UintWord(xtype), IntWord(int64(offset)), IntWord(int64(instances)))
}

func (w *BlockWriter) DrawArraysInstanced(mode uint32, first, count, instances int32) *BlockWriter {
	return w.emit(DrawArraysInstanced, UintWord(mode), IntWord(int64(first)), IntWord(int64(count)), IntWord(int64(instances)))
}

func (w *BlockWriter) Clear(mask uint32) *BlockWriter {
	return w.emit(Clear, UintWord(mask))
}

// BindImageTexture binds a single, non-layered level of texture to an image unit.
func (w *BlockWriter) BindImageTexture(unit, texture uint32, level int32, access, format uint32) *BlockWriter {
	return w.emit(BindImageTexture, UintWord(unit), UintWord(texture), IntWord(int64(level)), UintWord(access), UintWord(format))
}

func (w *BlockWriter) ClearColor(r, g, b, a float32) *BlockWriter {
	return w.emit(ClearColor, FloatWord(r), FloatWord(g), FloatWord(b), FloatWord(a))
}

func (w *BlockWriter) ClearDepth(depth float64) *BlockWriter {
	return w.emit(ClearDepth, DoubleWord(depth))
}

// GetError records an error query. When out is non-nil the code is stored there at replay;
// out must stay valid (and pinned, for Go memory) while the instruction is recorded.
func (w *BlockWriter) GetError(out *uint32) *BlockWriter {
	return w.emit(GetError, PtrWord(unsafe.Pointer(out)))
}

func (w *BlockWriter) BindBuffer(target, buffer uint32) *BlockWriter {
	return w.emit(BindBuffer, UintWord(target), UintWord(buffer))
}

// VertexAttribPointer describes attribute index as read from the bound array buffer at offset.
func (w *BlockWriter) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) *BlockWriter {
	t := UintWord(xtype)
	if normalized {
		t |= VertexAttribNormalized
	}
	return w.emit(VertexAttribPointer, UintWord(index), IntWord(int64(size)), t, IntWord(int64(stride)), IntWord(int64(offset)))
}

func (w *BlockWriter) VertexAttribDivisor(index, divisor uint32) *BlockWriter {
	return w.emit(VertexAttribDivisor, UintWord(index), UintWord(divisor))
}

func (w *BlockWriter) EnableVertexAttribArray(index uint32) *BlockWriter {
	return w.emit(EnableVertexAttribArray, UintWord(index))
}

func (w *BlockWriter) DisableVertexAttribArray(index uint32) *BlockWriter {
	return w.emit(DisableVertexAttribArray, UintWord(index))
}

// Uniform records a vector uniform upload. code must be one of the Uniform{1,2,3,4}{f,i}v
// opcodes; data points at count vectors and must stay valid while the instruction is recorded.
func (w *BlockWriter) Uniform(code Code, location, count int32, data unsafe.Pointer) *BlockWriter {
	return w.emit(code, IntWord(int64(location)), IntWord(int64(count)), PtrWord(data))
}

// UniformMatrix records a matrix uniform upload. code must be one of the UniformMatrix{2,3,4}fv
// opcodes.
func (w *BlockWriter) UniformMatrix(code Code, location, count int32, transpose bool, data *float32) *BlockWriter {
	return w.emit(code, IntWord(int64(location)), IntWord(int64(count)), BoolWord(transpose), PtrWord(unsafe.Pointer(data)))
}
