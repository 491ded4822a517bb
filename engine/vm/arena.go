package vm

import (
	"fmt"
)

// Fragment is a stable handle to a fragment stored in an Arena. Handles stay comparable and
// cheap to copy; a handle whose fragment was deleted is detected by its generation.
type Fragment struct {
	index      uint32
	generation uint32
}

// NilFragment is the zero handle. It never refers to a live fragment.
var NilFragment = Fragment{}

// IsNil reports whether f is the zero handle.
func (f Fragment) IsNil() bool {
	return f == NilFragment
}

func (f Fragment) String() string {
	if f.IsNil() {
		return "fragment(nil)"
	}
	return fmt.Sprintf("fragment(%d.%d)", f.index, f.generation)
}

// fragment is the storage behind a Fragment handle.
type fragment struct {
	blocks     [][]Instruction
	next       Fragment
	generation uint32
	live       bool
}

// arena is the implementation of the Arena interface.
type arena struct {
	slots []*fragment
	free  []uint32
	live  int
}

// Arena owns fragments and their blocks. Fragments are created and deleted explicitly and refer
// to each other only through next links, so deleting one never affects another.
//
// Misuse (a stale handle, an out-of-range block index, an unknown opcode or an argument count
// that does not match the opcode) is a programming error and panics.
//
// An Arena is not safe for concurrent use. Distinct fragments that already exist may be recorded
// from different goroutines as long as no fragment is created or deleted meanwhile.
type Arena interface {
	// Create allocates an empty fragment with no blocks and no next link.
	//
	// Returns:
	//   - Fragment: the handle of the new fragment
	Create() Fragment

	// Delete releases a fragment. Links pointing at it from other fragments are left in place and
	// reported as ErrDanglingLink when a chain through them is replayed.
	//
	// Parameters:
	//   - f: the fragment to delete
	Delete(f Fragment)

	// Valid reports whether f refers to a live fragment of this arena.
	//
	// Parameters:
	//   - f: the handle to check
	//
	// Returns:
	//   - bool: true if f is live
	Valid(f Fragment) bool

	// Len returns the number of live fragments.
	Len() int

	// HasNext reports whether f has an outgoing link.
	//
	// Parameters:
	//   - f: the fragment to inspect
	//
	// Returns:
	//   - bool: true if a next fragment is set
	HasNext(f Fragment) bool

	// Next returns the fragment f links to, or NilFragment.
	//
	// Parameters:
	//   - f: the fragment to inspect
	//
	// Returns:
	//   - Fragment: the next fragment, or NilFragment if there is none
	Next(f Fragment) Fragment

	// Link sets left's outgoing link to right, replacing any previous link.
	// Ownership of either fragment does not change.
	//
	// Parameters:
	//   - left: the fragment whose link is set
	//   - right: the fragment to replay after left
	Link(left, right Fragment)

	// Unlink clears left's outgoing link.
	//
	// Parameters:
	//   - left: the fragment whose link is cleared
	Unlink(left Fragment)

	// NewBlock appends an empty block to f.
	//
	// Parameters:
	//   - f: the fragment to extend
	//
	// Returns:
	//   - int: the index of the new block; indices start at 0 and increase by one per call
	NewBlock(f Fragment) int

	// ClearBlock removes every instruction from one block, leaving the other blocks and the block
	// order untouched.
	//
	// Parameters:
	//   - f: the owning fragment
	//   - block: the block index returned by NewBlock
	ClearBlock(f Fragment, block int)

	// Append records one instruction at the end of a block.
	//
	// Parameters:
	//   - f: the owning fragment
	//   - block: the block index returned by NewBlock
	//   - code: the opcode
	//   - args: exactly code.Arity() argument words
	Append(f Fragment, block int, code Code, args ...Word)

	// AppendInstruction records a prepared instruction at the end of a block.
	//
	// Parameters:
	//   - f: the owning fragment
	//   - block: the block index returned by NewBlock
	//   - in: the instruction to record
	AppendInstruction(f Fragment, block int, in Instruction)

	// Clear removes every block of f. Block indices restart at 0; the outgoing link is kept.
	//
	// Parameters:
	//   - f: the fragment to clear
	Clear(f Fragment)

	// BlockCount returns the number of blocks in f.
	BlockCount(f Fragment) int

	// Instructions returns a copy of one block's instructions.
	//
	// Parameters:
	//   - f: the owning fragment
	//   - block: the block index
	//
	// Returns:
	//   - []Instruction: the block content in recording order
	Instructions(f Fragment, block int) []Instruction

	// Visit calls fn for every instruction of f in block order, without following the link.
	//
	// Parameters:
	//   - f: the fragment to walk
	//   - fn: the callback invoked per instruction
	Visit(f Fragment, fn func(Instruction))

	// Chain returns the fragments reachable from head by following next links, head first.
	//
	// Parameters:
	//   - head: the first fragment of the chain
	//
	// Returns:
	//   - []Fragment: the chain in replay order
	//   - error: ErrInvalidFragment, ErrDanglingLink or ErrCycle
	Chain(head Fragment) ([]Fragment, error)

	// Flatten copies the instructions of every fragment in the chain starting at head into one
	// stream, in replay order.
	//
	// Parameters:
	//   - head: the first fragment of the chain
	//
	// Returns:
	//   - []Instruction: the flattened stream
	//   - error: the error returned by Chain
	Flatten(head Fragment) ([]Instruction, error)
}

// Ensure arena implements Arena interface.
var _ Arena = &arena{}

// NewArena creates an empty Arena.
//
// Parameters:
//   - options: functional options to configure the arena
//
// Returns:
//   - Arena: the newly created arena
func NewArena(options ...ArenaBuilderOption) Arena {
	a := &arena{}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *arena) Create() Fragment {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		frag := a.slots[idx]
		frag.live = true
		a.live++
		return Fragment{index: idx + 1, generation: frag.generation}
	}
	a.slots = append(a.slots, &fragment{generation: 1, live: true})
	a.live++
	return Fragment{index: uint32(len(a.slots)), generation: 1}
}

func (a *arena) Delete(f Fragment) {
	frag := a.mustGet(f)
	frag.live = false
	frag.blocks = nil
	frag.next = NilFragment
	frag.generation++
	a.free = append(a.free, f.index-1)
	a.live--
}

func (a *arena) Valid(f Fragment) bool {
	return a.get(f) != nil
}

func (a *arena) Len() int {
	return a.live
}

func (a *arena) HasNext(f Fragment) bool {
	return !a.mustGet(f).next.IsNil()
}

func (a *arena) Next(f Fragment) Fragment {
	return a.mustGet(f).next
}

func (a *arena) Link(left, right Fragment) {
	frag := a.mustGet(left)
	a.mustGet(right)
	frag.next = right
}

func (a *arena) Unlink(left Fragment) {
	a.mustGet(left).next = NilFragment
}

func (a *arena) NewBlock(f Fragment) int {
	frag := a.mustGet(f)
	frag.blocks = append(frag.blocks, nil)
	return len(frag.blocks) - 1
}

func (a *arena) ClearBlock(f Fragment, block int) {
	frag := a.mustGet(f)
	a.checkBlock(f, frag, block)
	frag.blocks[block] = frag.blocks[block][:0]
}

func (a *arena) Append(f Fragment, block int, code Code, args ...Word) {
	a.AppendInstruction(f, block, NewInstruction(code, args...))
}

func (a *arena) AppendInstruction(f Fragment, block int, in Instruction) {
	if !in.Code.Valid() {
		panic(fmt.Sprintf("vm: invalid opcode %d", uint32(in.Code)))
	}
	clear(in.Args[in.Code.Arity():])
	frag := a.mustGet(f)
	a.checkBlock(f, frag, block)
	frag.blocks[block] = append(frag.blocks[block], in)
}

func (a *arena) Clear(f Fragment) {
	a.mustGet(f).blocks = nil
}

func (a *arena) BlockCount(f Fragment) int {
	return len(a.mustGet(f).blocks)
}

func (a *arena) Instructions(f Fragment, block int) []Instruction {
	frag := a.mustGet(f)
	a.checkBlock(f, frag, block)
	out := make([]Instruction, len(frag.blocks[block]))
	copy(out, frag.blocks[block])
	return out
}

func (a *arena) Visit(f Fragment, fn func(Instruction)) {
	for _, blk := range a.mustGet(f).blocks {
		for _, in := range blk {
			fn(in)
		}
	}
}

func (a *arena) Chain(head Fragment) ([]Fragment, error) {
	if a.get(head) == nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFragment, head)
	}
	seen := make(map[uint32]struct{})
	var chain []Fragment
	for cur := head; !cur.IsNil(); {
		frag := a.get(cur)
		if frag == nil {
			return nil, fmt.Errorf("%w: %v -> %v", ErrDanglingLink, chain[len(chain)-1], cur)
		}
		if _, ok := seen[cur.index]; ok {
			return nil, fmt.Errorf("%w: %v revisited", ErrCycle, cur)
		}
		seen[cur.index] = struct{}{}
		chain = append(chain, cur)
		cur = frag.next
	}
	return chain, nil
}

func (a *arena) Flatten(head Fragment) ([]Instruction, error) {
	chain, err := a.Chain(head)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, f := range chain {
		for _, blk := range a.slots[f.index-1].blocks {
			n += len(blk)
		}
	}
	stream := make([]Instruction, 0, n)
	for _, f := range chain {
		for _, blk := range a.slots[f.index-1].blocks {
			stream = append(stream, blk...)
		}
	}
	return stream, nil
}

// get resolves a handle, returning nil for nil, stale or foreign handles.
func (a *arena) get(f Fragment) *fragment {
	if f.index == 0 || int(f.index) > len(a.slots) {
		return nil
	}
	frag := a.slots[f.index-1]
	if !frag.live || frag.generation != f.generation {
		return nil
	}
	return frag
}

func (a *arena) mustGet(f Fragment) *fragment {
	frag := a.get(f)
	if frag == nil {
		panic(fmt.Sprintf("vm: %v is not a live fragment", f))
	}
	return frag
}

func (a *arena) checkBlock(f Fragment, frag *fragment, block int) {
	if block < 0 || block >= len(frag.blocks) {
		panic(fmt.Sprintf("vm: block %d out of range for %v with %d blocks", block, f, len(frag.blocks)))
	}
}
