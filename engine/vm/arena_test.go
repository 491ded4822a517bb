package vm

import (
	"errors"
	"testing"
)

func TestArena_NewBlockIndicesAreSequential(t *testing.T) {
	a := NewArena()
	f := a.Create()
	for want := 0; want < 8; want++ {
		if got := a.NewBlock(f); got != want {
			t.Fatalf("NewBlock = %d, want %d", got, want)
		}
	}
	a.ClearBlock(f, 3)
	if got := a.NewBlock(f); got != 8 {
		t.Errorf("NewBlock after ClearBlock = %d, want 8", got)
	}
}

func TestArena_ClearBlockLeavesOtherBlocks(t *testing.T) {
	a := NewArena()
	f := a.Create()
	b0, b1, b2 := a.NewBlock(f), a.NewBlock(f), a.NewBlock(f)
	a.Append(f, b0, BindProgram, 1)
	a.Append(f, b1, BindProgram, 2)
	a.Append(f, b1, DrawArrays, UintWord(EnumTriangles), 0, 3)
	a.Append(f, b2, Enable, UintWord(EnumBlend))

	before0 := a.Instructions(f, b0)
	before2 := a.Instructions(f, b2)

	a.ClearBlock(f, b1)
	if n := len(a.Instructions(f, b1)); n != 0 {
		t.Fatalf("cleared block has %d instructions", n)
	}
	a.Append(f, b1, BindVertexArray, 9)

	got := a.Instructions(f, b1)
	if len(got) != 1 || got[0] != NewInstruction(BindVertexArray, 9) {
		t.Errorf("rebuilt block = %v", got)
	}
	if after := a.Instructions(f, b0); len(after) != len(before0) || after[0] != before0[0] {
		t.Errorf("block 0 changed: %v -> %v", before0, after)
	}
	if after := a.Instructions(f, b2); len(after) != len(before2) || after[0] != before2[0] {
		t.Errorf("block 2 changed: %v -> %v", before2, after)
	}
	if a.BlockCount(f) != 3 {
		t.Errorf("BlockCount = %d, want 3", a.BlockCount(f))
	}
}

func TestArena_AppendInstructionZeroesUnusedSlots(t *testing.T) {
	a := NewArena()
	f := a.Create()
	b := a.NewBlock(f)
	in := NewInstruction(BindProgram, 3)
	in.Args[1], in.Args[4] = 9, 11
	a.AppendInstruction(f, b, in)
	got := a.Instructions(f, b)
	if len(got) != 1 || got[0] != NewInstruction(BindProgram, 3) {
		t.Errorf("recorded = %v, want unused slots cleared", got)
	}
}

func TestArena_InstructionsReturnsCopy(t *testing.T) {
	a := NewArena()
	f := a.Create()
	b := a.NewBlock(f)
	a.Append(f, b, BindProgram, 1)
	got := a.Instructions(f, b)
	got[0].Args[0] = 42
	if a.Instructions(f, b)[0].Args[0] != 1 {
		t.Error("mutating the returned slice changed the block")
	}
}

func TestArena_ClearKeepsLink(t *testing.T) {
	a := NewArena()
	left, right := a.Create(), a.Create()
	a.NewBlock(left)
	a.NewBlock(left)
	a.Append(left, 1, Clear, UintWord(EnumColorBufferBit))
	a.Link(left, right)

	a.Clear(left)

	if a.BlockCount(left) != 0 {
		t.Errorf("BlockCount after Clear = %d", a.BlockCount(left))
	}
	if got := a.NewBlock(left); got != 0 {
		t.Errorf("first block after Clear = %d, want 0", got)
	}
	if !a.HasNext(left) || a.Next(left) != right {
		t.Error("Clear dropped the outgoing link")
	}
}

func TestArena_LinkUnlinkRoundTrip(t *testing.T) {
	a := NewArena()
	left, right, other := a.Create(), a.Create(), a.Create()
	if a.HasNext(left) || !a.Next(left).IsNil() {
		t.Fatal("fresh fragment has a link")
	}
	a.Link(left, right)
	if !a.HasNext(left) || a.Next(left) != right {
		t.Fatal("Link did not set next")
	}
	a.Link(left, other)
	if a.Next(left) != other {
		t.Error("Link did not replace next")
	}
	a.Unlink(left)
	if a.HasNext(left) || !a.Next(left).IsNil() {
		t.Error("Unlink left a link behind")
	}
	if a.HasNext(right) || a.HasNext(other) {
		t.Error("linking touched the right-hand fragment")
	}
}

func TestArena_DeleteDoesNotCascade(t *testing.T) {
	a := NewArena()
	left, right := a.Create(), a.Create()
	a.Link(left, right)
	a.Delete(left)
	if a.Valid(left) {
		t.Error("deleted fragment still valid")
	}
	if !a.Valid(right) {
		t.Error("deleting left deleted right")
	}
	if a.Len() != 1 {
		t.Errorf("Len = %d, want 1", a.Len())
	}
}

func TestArena_StaleHandlesAreDetected(t *testing.T) {
	a := NewArena()
	f := a.Create()
	a.Delete(f)
	reused := a.Create()
	if reused == f {
		t.Fatal("reused slot returned the stale handle")
	}
	if a.Valid(f) || !a.Valid(reused) {
		t.Error("generation check failed")
	}
	mustPanic(t, "NewBlock on stale", func() { a.NewBlock(f) })
	mustPanic(t, "double delete", func() { a.Delete(f) })
	mustPanic(t, "nil handle", func() { a.HasNext(NilFragment) })
	mustPanic(t, "block out of range", func() { a.Append(reused, 0, BindProgram, 1) })
	mustPanic(t, "arity mismatch", func() {
		b := a.NewBlock(reused)
		a.Append(reused, b, Viewport, 0, 0)
	})
}

func TestArena_ChainErrors(t *testing.T) {
	a := NewArena()
	x, y, z := a.Create(), a.Create(), a.Create()
	a.Link(x, y)
	a.Link(y, z)

	chain, err := a.Chain(x)
	if err != nil || len(chain) != 3 || chain[2] != z {
		t.Fatalf("Chain = %v, %v", chain, err)
	}

	a.Link(z, x)
	if _, err := a.Chain(x); !errors.Is(err, ErrCycle) {
		t.Errorf("cycle: err = %v", err)
	}
	a.Unlink(z)

	a.Delete(z)
	if _, err := a.Chain(x); !errors.Is(err, ErrDanglingLink) {
		t.Errorf("dangling: err = %v", err)
	}
	if _, err := a.Flatten(z); !errors.Is(err, ErrInvalidFragment) {
		t.Errorf("deleted head: err = %v", err)
	}
}

func TestArena_FlattenKeepsReplayOrder(t *testing.T) {
	a := NewArena()
	x, y := a.Create(), a.Create()
	bx0, bx1 := a.NewBlock(x), a.NewBlock(x)
	a.Append(x, bx1, BindProgram, 2)
	a.Append(x, bx0, BindProgram, 1)
	by := a.NewBlock(y)
	a.Append(y, by, BindProgram, 3)
	a.Link(x, y)

	stream, err := a.Flatten(x)
	if err != nil {
		t.Fatal(err)
	}
	for n, want := range []Word{1, 2, 3} {
		if stream[n].Args[0] != want {
			t.Errorf("stream[%d] = %v, want program %d", n, stream[n], want)
		}
	}
}
