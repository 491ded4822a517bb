package vm

import "fmt"

// Code identifies the native entry point an Instruction is dispatched to.
// The set is closed and numbered to match the native command stream format.
type Code uint32

const (
	BindVertexArray          Code = 1
	BindProgram              Code = 2
	ActiveTexture            Code = 3
	BindSampler              Code = 4
	BindTexture              Code = 5
	BindBufferBase           Code = 6
	BindBufferRange          Code = 7
	BindFramebuffer          Code = 8
	Viewport                 Code = 9
	Enable                   Code = 10
	Disable                  Code = 11
	DepthFunc                Code = 12
	CullFace                 Code = 13
	BlendFuncSeparate        Code = 14
	BlendEquationSeparate    Code = 15
	BlendColor               Code = 16
	PolygonMode              Code = 17
	StencilFuncSeparate      Code = 18
	StencilOpSeparate        Code = 19
	PatchParameter           Code = 20
	DrawElements             Code = 21
	DrawArrays               Code = 22
	DrawElementsInstanced    Code = 23
	DrawArraysInstanced      Code = 24
	Clear                    Code = 25
	BindImageTexture         Code = 26
	ClearColor               Code = 27
	ClearDepth               Code = 28
	GetError                 Code = 29
	BindBuffer               Code = 30
	VertexAttribPointer      Code = 31
	VertexAttribDivisor      Code = 32
	EnableVertexAttribArray  Code = 33
	DisableVertexAttribArray Code = 34
	Uniform1fv               Code = 35
	Uniform1iv               Code = 36
	Uniform2fv               Code = 37
	Uniform2iv               Code = 38
	Uniform3fv               Code = 39
	Uniform3iv               Code = 40
	Uniform4fv               Code = 41
	Uniform4iv               Code = 42
	UniformMatrix2fv         Code = 43
	UniformMatrix3fv         Code = 44
	UniformMatrix4fv         Code = 45

	lastCode = UniformMatrix4fv
)

// MaxArgs is the number of argument slots carried by every Instruction.
const MaxArgs = 5

// VertexAttribNormalized is or-ed into the type slot of a VertexAttribPointer instruction to
// request normalized fixed-point conversion. The native call takes six arguments, so the flag
// rides in the otherwise unused high half of the type enumerant.
const VertexAttribNormalized Word = 1 << 32

// Kind classifies what an opcode does to the graphics context.
type Kind uint8

const (
	// KindState sets a piece of context state from its arguments alone. Only state
	// instructions take part in redundancy elimination and sorting.
	KindState Kind = iota
	// KindData sets state from external data (host memory or the bound array buffer).
	// Data instructions are never elided and are never moved.
	KindData
	// KindDraw submits geometry.
	KindDraw
	// KindClear clears the bound framebuffer.
	KindClear
	// KindQuery reads context state back to the host.
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindData:
		return "data"
	case KindDraw:
		return "draw"
	case KindClear:
		return "clear"
	case KindQuery:
		return "query"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ArgKind describes how an argument slot is reinterpreted at dispatch.
type ArgKind uint8

const (
	ArgUint     ArgKind = iota // object name or unsigned count
	ArgInt                     // signed integer
	ArgEnum                    // enumerant
	ArgBitfield                // or-ed bit mask
	ArgFloat                   // float32 bit pattern
	ArgDouble                  // float64 bit pattern
	ArgBool                    // 0 or 1
	ArgOffset                  // byte offset into a bound buffer
	ArgPointer                 // host memory address
)

func (k ArgKind) String() string {
	switch k {
	case ArgUint:
		return "uint"
	case ArgInt:
		return "int"
	case ArgEnum:
		return "enum"
	case ArgBitfield:
		return "bitfield"
	case ArgFloat:
		return "float"
	case ArgDouble:
		return "double"
	case ArgBool:
		return "bool"
	case ArgOffset:
		return "offset"
	case ArgPointer:
		return "pointer"
	}
	return fmt.Sprintf("ArgKind(%d)", uint8(k))
}

// OpInfo is the static description of one opcode.
type OpInfo struct {
	// Name is the opcode name used by disassembly, scripts and capture files.
	Name string
	// Kind classifies the effect of the opcode on the context.
	Kind Kind
	// Args lists the kind of every argument slot the opcode consumes; len(Args) is its arity.
	Args []ArgKind
}

var opTable = buildOpTable()

func buildOpTable() [lastCode + 1]OpInfo {
	u, i, e, f := ArgUint, ArgInt, ArgEnum, ArgFloat
	uni3 := []ArgKind{i, i, ArgPointer}
	mat4 := []ArgKind{i, i, ArgBool, ArgPointer}
	enum4 := []ArgKind{e, e, e, e}

	return [lastCode + 1]OpInfo{
		BindVertexArray:          {"BindVertexArray", KindState, []ArgKind{u}},
		BindProgram:              {"BindProgram", KindState, []ArgKind{u}},
		ActiveTexture:            {"ActiveTexture", KindState, []ArgKind{e}},
		BindSampler:              {"BindSampler", KindState, []ArgKind{u, u}},
		BindTexture:              {"BindTexture", KindState, []ArgKind{e, u}},
		BindBufferBase:           {"BindBufferBase", KindState, []ArgKind{e, u, u}},
		BindBufferRange:          {"BindBufferRange", KindState, []ArgKind{e, u, u, ArgOffset, i}},
		BindFramebuffer:          {"BindFramebuffer", KindState, []ArgKind{e, u}},
		Viewport:                 {"Viewport", KindState, []ArgKind{i, i, i, i}},
		Enable:                   {"Enable", KindState, []ArgKind{e}},
		Disable:                  {"Disable", KindState, []ArgKind{e}},
		DepthFunc:                {"DepthFunc", KindState, []ArgKind{e}},
		CullFace:                 {"CullFace", KindState, []ArgKind{e}},
		BlendFuncSeparate:        {"BlendFuncSeparate", KindState, enum4},
		BlendEquationSeparate:    {"BlendEquationSeparate", KindState, []ArgKind{e, e}},
		BlendColor:               {"BlendColor", KindState, []ArgKind{f, f, f, f}},
		PolygonMode:              {"PolygonMode", KindState, []ArgKind{e, e}},
		StencilFuncSeparate:      {"StencilFuncSeparate", KindState, []ArgKind{e, e, i, u}},
		StencilOpSeparate:        {"StencilOpSeparate", KindState, enum4},
		PatchParameter:           {"PatchParameter", KindState, []ArgKind{e, i}},
		DrawElements:             {"DrawElements", KindDraw, []ArgKind{e, i, e, ArgOffset}},
		DrawArrays:               {"DrawArrays", KindDraw, []ArgKind{e, i, i}},
		DrawElementsInstanced:    {"DrawElementsInstanced", KindDraw, []ArgKind{e, i, e, ArgOffset, i}},
		DrawArraysInstanced:      {"DrawArraysInstanced", KindDraw, []ArgKind{e, i, i, i}},
		Clear:                    {"Clear", KindClear, []ArgKind{ArgBitfield}},
		BindImageTexture:         {"BindImageTexture", KindState, []ArgKind{u, u, i, e, e}},
		ClearColor:               {"ClearColor", KindState, []ArgKind{f, f, f, f}},
		ClearDepth:               {"ClearDepth", KindState, []ArgKind{ArgDouble}},
		GetError:                 {"GetError", KindQuery, []ArgKind{ArgPointer}},
		BindBuffer:               {"BindBuffer", KindState, []ArgKind{e, u}},
		VertexAttribPointer:      {"VertexAttribPointer", KindData, []ArgKind{u, i, e, i, ArgOffset}},
		VertexAttribDivisor:      {"VertexAttribDivisor", KindState, []ArgKind{u, u}},
		EnableVertexAttribArray:  {"EnableVertexAttribArray", KindState, []ArgKind{u}},
		DisableVertexAttribArray: {"DisableVertexAttribArray", KindState, []ArgKind{u}},
		Uniform1fv:               {"Uniform1fv", KindData, uni3},
		Uniform1iv:               {"Uniform1iv", KindData, uni3},
		Uniform2fv:               {"Uniform2fv", KindData, uni3},
		Uniform2iv:               {"Uniform2iv", KindData, uni3},
		Uniform3fv:               {"Uniform3fv", KindData, uni3},
		Uniform3iv:               {"Uniform3iv", KindData, uni3},
		Uniform4fv:               {"Uniform4fv", KindData, uni3},
		Uniform4iv:               {"Uniform4iv", KindData, uni3},
		UniformMatrix2fv:         {"UniformMatrix2fv", KindData, mat4},
		UniformMatrix3fv:         {"UniformMatrix3fv", KindData, mat4},
		UniformMatrix4fv:         {"UniformMatrix4fv", KindData, mat4},
	}
}

var codesByName = func() map[string]Code {
	m := make(map[string]Code, len(opTable))
	for c := BindVertexArray; c <= lastCode; c++ {
		m[opTable[c].Name] = c
	}
	return m
}()

// Codes returns every valid opcode in ascending order.
func Codes() []Code {
	codes := make([]Code, 0, lastCode)
	for c := BindVertexArray; c <= lastCode; c++ {
		codes = append(codes, c)
	}
	return codes
}

// ParseCode looks up an opcode by its name.
//
// Parameters:
//   - name: the opcode name, e.g. "BindProgram"
//
// Returns:
//   - Code: the opcode
//   - bool: false if no opcode has that name
func ParseCode(name string) (Code, bool) {
	c, ok := codesByName[name]
	return c, ok
}

// Valid reports whether c belongs to the opcode set.
func (c Code) Valid() bool {
	return c >= BindVertexArray && c <= lastCode
}

// Info returns the static description of c. It panics if c is not valid.
func (c Code) Info() OpInfo {
	if !c.Valid() {
		panic(fmt.Sprintf("vm: invalid opcode %d", uint32(c)))
	}
	return opTable[c]
}

// Arity returns the number of argument slots c consumes.
func (c Code) Arity() int {
	return len(c.Info().Args)
}

// Kind returns the effect class of c.
func (c Code) Kind() Kind {
	return c.Info().Kind
}

func (c Code) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Code(%d)", uint32(c))
	}
	return opTable[c].Name
}
