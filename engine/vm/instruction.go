package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Instruction is one recorded deferred call: an opcode and its argument slots.
// Slots beyond the opcode's arity are zero and ignored.
type Instruction struct {
	Code Code
	Args [MaxArgs]Word
}

// NewInstruction builds an Instruction, panicking if code is not a valid opcode or args does not
// match its arity.
//
// Parameters:
//   - code: the opcode
//   - args: exactly code.Arity() argument words
//
// Returns:
//   - Instruction: the instruction
func NewInstruction(code Code, args ...Word) Instruction {
	if !code.Valid() {
		panic(fmt.Sprintf("vm: invalid opcode %d", uint32(code)))
	}
	if n := code.Arity(); len(args) != n {
		panic(fmt.Sprintf("vm: %s takes %d arguments, got %d", code, n, len(args)))
	}
	in := Instruction{Code: code}
	copy(in.Args[:], args)
	return in
}

// Used returns the argument slots the opcode consumes.
func (in Instruction) Used() []Word {
	return in.Args[:in.Code.Arity()]
}

// String disassembles the instruction, formatting every slot according to its argument kind.
func (in Instruction) String() string {
	if !in.Code.Valid() {
		return in.Code.String()
	}
	var sb strings.Builder
	sb.WriteString(in.Code.String())
	for n, kind := range opTable[in.Code].Args {
		sb.WriteByte(' ')
		sb.WriteString(FormatArg(kind, in.Args[n]))
	}
	return sb.String()
}

// FormatArg renders one argument word according to its kind.
func FormatArg(kind ArgKind, w Word) string {
	switch kind {
	case ArgInt:
		return strconv.FormatInt(int64(w.Int()), 10)
	case ArgOffset:
		return strconv.FormatInt(w.Int64(), 10)
	case ArgEnum, ArgBitfield, ArgPointer:
		return "0x" + strconv.FormatUint(uint64(w), 16)
	case ArgFloat:
		return strconv.FormatFloat(float64(w.Float()), 'g', -1, 32)
	case ArgDouble:
		return strconv.FormatFloat(w.Double(), 'g', -1, 64)
	case ArgBool:
		return strconv.FormatBool(w.Bool())
	}
	return strconv.FormatUint(uint64(w), 10)
}
