package script

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
)

type elemKind uint8

const (
	elemFloat elemKind = iota
	elemInt
	elemUint
)

func (k elemKind) String() string {
	switch k {
	case elemFloat:
		return "floats"
	case elemInt:
		return "ints"
	}
	return "uints"
}

// dataRef is a resolved "@name" reference.
type dataRef struct {
	ptr  unsafe.Pointer
	elem elemKind
	n    int
}

// resolver turns a data array name into a pointer, pinning it if needed.
type resolver func(name string) (dataRef, error)

// pointerTarget describes what the pointer slot of an opcode points at: the element type,
// the number of elements per counted item, and the slot holding the count (-1 for one item).
type pointerTarget struct {
	elem       elemKind
	components int
	countSlot  int
}

var pointerTargets = map[vm.Code]pointerTarget{
	vm.Uniform1fv:       {elemFloat, 1, 1},
	vm.Uniform2fv:       {elemFloat, 2, 1},
	vm.Uniform3fv:       {elemFloat, 3, 1},
	vm.Uniform4fv:       {elemFloat, 4, 1},
	vm.Uniform1iv:       {elemInt, 1, 1},
	vm.Uniform2iv:       {elemInt, 2, 1},
	vm.Uniform3iv:       {elemInt, 3, 1},
	vm.Uniform4iv:       {elemInt, 4, 1},
	vm.UniformMatrix2fv: {elemFloat, 4, 1},
	vm.UniformMatrix3fv: {elemFloat, 9, 1},
	vm.UniformMatrix4fv: {elemFloat, 16, 1},
	vm.GetError:         {elemUint, 1, -1},
}

// ParseInstruction assembles one instruction from its text form: the opcode name followed by
// one argument per slot, separated by spaces or commas. Pointer arguments may only be null.
//
// Parameters:
//   - line: the instruction text, e.g. "BlendFuncSeparate GL_SRC_ALPHA GL_ONE_MINUS_SRC_ALPHA GL_ONE GL_ZERO"
//
// Returns:
//   - vm.Instruction: the assembled instruction
//   - error: a description of the first malformed token
func ParseInstruction(line string) (vm.Instruction, error) {
	return parseInstruction(line, func(name string) (dataRef, error) {
		return dataRef{}, fmt.Errorf("no data arrays to resolve @%s", name)
	})
}

func parseInstruction(line string, resolve resolver) (vm.Instruction, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(fields) == 0 {
		return vm.Instruction{}, fmt.Errorf("empty instruction")
	}
	code, ok := vm.ParseCode(fields[0])
	if !ok {
		return vm.Instruction{}, fmt.Errorf("unknown opcode %q", fields[0])
	}
	info := code.Info()
	args := fields[1:]
	if len(args) != len(info.Args) {
		return vm.Instruction{}, fmt.Errorf("%s takes %d arguments, got %d", info.Name, len(info.Args), len(args))
	}

	words := make([]vm.Word, len(args))
	var ref *dataRef
	for k, tok := range args {
		if info.Args[k] == vm.ArgPointer && strings.HasPrefix(tok, "@") {
			r, err := resolve(tok[1:])
			if err != nil {
				return vm.Instruction{}, fmt.Errorf("%s argument %d: %w", info.Name, k, err)
			}
			ref = &r
			words[k] = vm.PtrWord(r.ptr)
			continue
		}
		w, err := parseArg(info.Args[k], tok)
		if err != nil {
			return vm.Instruction{}, fmt.Errorf("%s argument %d: %w", info.Name, k, err)
		}
		words[k] = w
	}

	if ref != nil {
		if err := checkRef(code, words, *ref); err != nil {
			return vm.Instruction{}, fmt.Errorf("%s: %w", info.Name, err)
		}
	}
	return vm.NewInstruction(code, words...), nil
}

// checkRef verifies that a data array has the element type the opcode reads and is long
// enough for the recorded count.
func checkRef(code vm.Code, words []vm.Word, ref dataRef) error {
	target, ok := pointerTargets[code]
	if !ok {
		return fmt.Errorf("does not read host data")
	}
	if ref.elem != target.elem {
		return fmt.Errorf("reads %v, data array holds %v", target.elem, ref.elem)
	}
	count := 1
	if target.countSlot >= 0 {
		count = int(words[target.countSlot].Int())
	}
	if need := count * target.components; count < 0 || need > ref.n {
		return fmt.Errorf("count %d needs %d elements, data array has %d", count, need, ref.n)
	}
	return nil
}

// parseArg converts one token to a Word according to the slot kind.
func parseArg(kind vm.ArgKind, tok string) (vm.Word, error) {
	switch kind {
	case vm.ArgUint, vm.ArgEnum, vm.ArgBitfield:
		return parseBits(tok)
	case vm.ArgInt:
		if v, ok := Symbol(tok); ok {
			return vm.IntWord(int64(int32(v))), nil
		}
		v, err := strconv.ParseInt(tok, 0, 32)
		if err != nil {
			return 0, err
		}
		return vm.IntWord(v), nil
	case vm.ArgFloat:
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return 0, err
		}
		return vm.FloatWord(float32(v)), nil
	case vm.ArgDouble:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, err
		}
		return vm.DoubleWord(v), nil
	case vm.ArgBool:
		v, err := strconv.ParseBool(tok)
		if err != nil {
			return 0, err
		}
		return vm.BoolWord(v), nil
	case vm.ArgOffset:
		v, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return 0, err
		}
		if v < 0 {
			return 0, fmt.Errorf("negative offset %d", v)
		}
		return vm.IntWord(v), nil
	case vm.ArgPointer:
		if tok == "null" || tok == "0" {
			return 0, nil
		}
		return 0, fmt.Errorf("pointer arguments must be null or an @data reference, got %q", tok)
	}
	return 0, fmt.Errorf("unsupported argument kind %v", kind)
}

// parseBits parses an unsigned value: a number, a GL constant, or several of them joined by '|'.
func parseBits(tok string) (vm.Word, error) {
	var w vm.Word
	for part := range strings.SplitSeq(tok, "|") {
		part = strings.TrimSpace(part)
		if part == normalizedKeyword {
			w |= vm.VertexAttribNormalized
			continue
		}
		if v, ok := Symbol(part); ok {
			w |= vm.Word(v)
			continue
		}
		v, err := strconv.ParseUint(part, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("unknown constant or number %q", part)
		}
		w |= vm.Word(v)
	}
	return w, nil
}
