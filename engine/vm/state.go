package vm

// category is a family of context state written by one or more state opcodes. The declaration
// order is the sorting rank: state that is expensive to change comes first so that cheaper state
// is grouped after it.
type category uint8

const (
	catNone category = iota
	catFramebuffer
	catProgram
	catVertexArray
	catBuffer
	catIndexedBuffer
	catAttribArray
	catAttribDivisor
	catActiveTexture
	catTexture
	catSampler
	catImageTexture
	catViewport
	catCapability
	catDepthFunc
	catCullFace
	catPolygonMode
	catBlendFunc
	catBlendEquation
	catBlendColor
	catStencilFunc
	catStencilOp
	catPatch
	catClearColor
	catClearDepth
)

func (c category) bit() uint32 {
	return 1 << c
}

var codeCategory = map[Code]category{
	BindFramebuffer:          catFramebuffer,
	BindProgram:              catProgram,
	BindVertexArray:          catVertexArray,
	BindBuffer:               catBuffer,
	BindBufferBase:           catIndexedBuffer,
	BindBufferRange:          catIndexedBuffer,
	EnableVertexAttribArray:  catAttribArray,
	DisableVertexAttribArray: catAttribArray,
	VertexAttribDivisor:      catAttribDivisor,
	ActiveTexture:            catActiveTexture,
	BindTexture:              catTexture,
	BindSampler:              catSampler,
	BindImageTexture:         catImageTexture,
	Viewport:                 catViewport,
	Enable:                   catCapability,
	Disable:                  catCapability,
	DepthFunc:                catDepthFunc,
	CullFace:                 catCullFace,
	PolygonMode:              catPolygonMode,
	BlendFuncSeparate:        catBlendFunc,
	BlendEquationSeparate:    catBlendEquation,
	BlendColor:               catBlendColor,
	StencilFuncSeparate:      catStencilFunc,
	StencilOpSeparate:        catStencilOp,
	PatchParameter:           catPatch,
	ClearColor:               catClearColor,
	ClearDepth:               catClearDepth,
}

// access is the coarse footprint of a state instruction used to decide which instructions may
// be reordered: two instructions conflict when one writes a category the other reads or writes.
type access struct {
	cat    category
	writes uint32
	reads  uint32
}

func accessOf(in Instruction) access {
	cat := codeCategory[in.Code]
	acc := access{cat: cat, writes: cat.bit()}
	switch in.Code {
	case BindBufferBase, BindBufferRange:
		// also replaces the generic binding of the target
		acc.writes |= catBuffer.bit()
	case BindTexture:
		acc.reads = catActiveTexture.bit()
	case BindBuffer:
		if in.Args[0].Uint() == EnumElementArrayBuffer {
			acc.reads = catVertexArray.bit()
		}
	case EnableVertexAttribArray, DisableVertexAttribArray, VertexAttribDivisor:
		acc.reads = catVertexArray.bit()
	}
	return acc
}

func (a access) conflicts(b access) bool {
	return a.writes&(b.writes|b.reads) != 0 || a.reads&b.writes != 0
}

// unknownScope stands for implicit state whose value is not known at the start of a replay.
const unknownScope = ^Word(0)

// stateKey names one cache slot of the redundancy pass. scope holds the implicit state the
// slot depends on (active texture unit, bound vertex array) and sel the explicit selector
// (capability, target, binding index, face, pname).
type stateKey struct {
	cat   category
	scope Word
	sel   Word
}

// effect is what a state instruction does to the cache: it sets each of its keys to the
// matching value.
type effect struct {
	keys   [2]stateKey
	values [2]Instruction
	n      int
}

func (e *effect) current(cache map[stateKey]Instruction) bool {
	for i, k := range e.keys[:e.n] {
		v, ok := cache[k]
		if !ok || v != e.values[i] {
			return false
		}
	}
	return true
}

func (e *effect) apply(cache map[stateKey]Instruction) {
	for i, k := range e.keys[:e.n] {
		cache[k] = e.values[i]
	}
}

// scopeTracker follows the implicit state that state keys depend on while walking a stream.
type scopeTracker struct {
	activeTexture Word
	vertexArray   Word
}

func newScopeTracker() scopeTracker {
	return scopeTracker{activeTexture: unknownScope, vertexArray: unknownScope}
}

// effectOf returns the effect of a state instruction at the tracker's position and advances
// the tracker past it.
func (t *scopeTracker) effectOf(in Instruction) effect {
	cat := codeCategory[in.Code]
	value := in
	clear(value.Args[in.Code.Arity():])
	e := effect{n: 1, keys: [2]stateKey{{cat: cat}}}
	sel := in.Args[0]

	switch in.Code {
	case Enable, Disable, BindSampler, PatchParameter, BindImageTexture:
		e.keys[0].sel = sel
		value.Args[0] = 0
	case BindTexture:
		e.keys[0] = stateKey{cat: cat, scope: t.activeTexture, sel: sel}
		value.Args[0] = 0
	case VertexAttribDivisor, EnableVertexAttribArray, DisableVertexAttribArray:
		e.keys[0] = stateKey{cat: cat, scope: t.vertexArray, sel: sel}
		value.Args[0] = 0
	case BindBuffer:
		e.keys[0].sel = sel
		if sel.Uint() == EnumElementArrayBuffer {
			e.keys[0].scope = t.vertexArray
		}
		value.Args[0] = 0
	case BindBufferBase, BindBufferRange:
		// The indexed bind also replaces the generic binding of the target, which then holds
		// what BindBuffer(target, buffer) would have set.
		e.keys[0] = stateKey{cat: cat, scope: sel, sel: in.Args[1]}
		e.keys[1] = stateKey{cat: catBuffer, sel: sel}
		e.values[1] = Instruction{Code: BindBuffer}
		e.values[1].Args[1] = in.Args[2]
		e.n = 2
		value.Args[0], value.Args[1] = 0, 0
		e.values[0] = value
		return e
	case BindFramebuffer:
		value.Args[0] = 0
		if sel.Uint() == EnumFramebuffer {
			e.keys[0].sel = Word(EnumDrawFramebuffer)
			e.keys[1] = stateKey{cat: cat, sel: Word(EnumReadFramebuffer)}
			e.n = 2
		} else {
			e.keys[0].sel = sel
		}
	case PolygonMode, StencilFuncSeparate, StencilOpSeparate:
		value.Args[0] = 0
		if sel.Uint() == EnumFrontAndBack {
			e.keys[0].sel = Word(EnumFront)
			e.keys[1] = stateKey{cat: cat, sel: Word(EnumBack)}
			e.n = 2
		} else {
			e.keys[0].sel = sel
		}
	case ActiveTexture:
		t.activeTexture = sel
	case BindVertexArray:
		t.vertexArray = sel
	}
	e.values[0] = value
	if e.n == 2 {
		e.values[1] = value
	}
	return e
}
