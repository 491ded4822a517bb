package vm

import (
	"math"
	"unsafe"
)

// Word is a single instruction argument slot. Each opcode reinterprets its slots as integers,
// float bit patterns, enumerants, buffer offsets or host pointers.
type Word uint64

// IntWord stores a signed integer in a Word.
func IntWord(v int64) Word { return Word(uint64(v)) }

// UintWord stores an unsigned 32-bit value (object name, enumerant, bitfield) in a Word.
func UintWord(v uint32) Word { return Word(v) }

// FloatWord stores the bit pattern of a float32 in a Word.
func FloatWord(v float32) Word { return Word(math.Float32bits(v)) }

// DoubleWord stores the bit pattern of a float64 in a Word.
func DoubleWord(v float64) Word { return Word(math.Float64bits(v)) }

// BoolWord stores a boolean as 0 or 1.
func BoolWord(v bool) Word {
	if v {
		return 1
	}
	return 0
}

// PtrWord stores a host pointer in a Word. The pointee must stay valid and must not move until
// every fragment holding the Word has been cleared or deleted; Go memory has to be pinned with a
// runtime.Pinner by the caller.
func PtrWord(p unsafe.Pointer) Word { return Word(uintptr(p)) }

// Int returns the Word as a signed 32-bit integer.
func (w Word) Int() int32 { return int32(w) }

// Int64 returns the Word as a signed 64-bit integer.
func (w Word) Int64() int64 { return int64(w) }

// Uint returns the low 32 bits of the Word.
func (w Word) Uint() uint32 { return uint32(w) }

// Float returns the Word reinterpreted as a float32 bit pattern.
func (w Word) Float() float32 { return math.Float32frombits(uint32(w)) }

// Double returns the Word reinterpreted as a float64 bit pattern.
func (w Word) Double() float64 { return math.Float64frombits(uint64(w)) }

// Bool reports whether the Word is non-zero.
func (w Word) Bool() bool { return w != 0 }

// Pointer returns the Word as a host pointer or buffer offset.
func (w Word) Pointer() unsafe.Pointer {
	return unsafe.Pointer(uintptr(w))
}
