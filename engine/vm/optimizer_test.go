package vm

import "testing"

func ins(code Code, args ...Word) Instruction {
	return NewInstruction(code, args...)
}

var (
	draw      = ins(DrawArrays, UintWord(EnumTriangles), 0, 3)
	texture0  = UintWord(EnumTexture0)
	texture1  = UintWord(EnumTexture0 + 1)
	tex2D     = UintWord(EnumTexture2D)
	blendCap  = UintWord(EnumBlend)
	depthCap  = UintWord(EnumDepthTest)
	uniformBT = UintWord(EnumUniformBuffer)
)

func equalStream(t *testing.T, got, want []Instruction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d instructions %v, want %d %v", len(got), got, len(want), want)
	}
	for n := range got {
		if got[n] != want[n] {
			t.Errorf("instruction %d = %v, want %v", n, got[n], want[n])
		}
	}
}

func run(stream []Instruction, mode Mode) ([]Instruction, int) {
	return optimize(append([]Instruction(nil), stream...), mode)
}

func TestSortState_GroupsByCategoryWithinSegments(t *testing.T) {
	stream := []Instruction{
		ins(Enable, blendCap),
		ins(BindProgram, 1),
		ins(Enable, depthCap),
		ins(BindVertexArray, 2),
		draw,
		ins(Enable, blendCap),
		ins(BindProgram, 2),
		draw,
	}
	got, removed := run(stream, ModeStateSorting)
	if removed != 0 {
		t.Errorf("sorting alone removed %d instructions", removed)
	}
	equalStream(t, got, []Instruction{
		ins(BindProgram, 1),
		ins(BindVertexArray, 2),
		ins(Enable, blendCap),
		ins(Enable, depthCap),
		draw,
		ins(BindProgram, 2),
		ins(Enable, blendCap),
		draw,
	})
}

func TestSortState_KeepsDependentOrder(t *testing.T) {
	stream := []Instruction{
		ins(ActiveTexture, texture0),
		ins(BindTexture, tex2D, 1),
		ins(ActiveTexture, texture1),
		ins(BindTexture, tex2D, 2),
		ins(BindProgram, 5),
		draw,
	}
	got, _ := run(stream, ModeStateSorting)
	equalStream(t, got, []Instruction{
		ins(BindProgram, 5),
		ins(ActiveTexture, texture0),
		ins(BindTexture, tex2D, 1),
		ins(ActiveTexture, texture1),
		ins(BindTexture, tex2D, 2),
		draw,
	})
}

func TestSortState_NeverMovesBarriers(t *testing.T) {
	stream := []Instruction{
		ins(Clear, UintWord(EnumColorBufferBit)),
		ins(Enable, blendCap),
		ins(Uniform4fv, 0, 1, 0),
		ins(BindProgram, 1),
		ins(GetError, 0),
		draw,
	}
	got, _ := run(stream, ModeStateSorting)
	equalStream(t, got, stream)
}

func TestRedundancy_ScopesTextureBindingsByUnit(t *testing.T) {
	distinct := []Instruction{
		ins(ActiveTexture, texture0),
		ins(BindTexture, tex2D, 5),
		ins(ActiveTexture, texture1),
		ins(BindTexture, tex2D, 5),
		draw,
	}
	if _, removed := run(distinct, ModeRedundancyChecks); removed != 0 {
		t.Errorf("bindings on different units elided: %d", removed)
	}

	repeated := []Instruction{
		ins(ActiveTexture, texture0),
		ins(BindTexture, tex2D, 5),
		draw,
		ins(ActiveTexture, texture0),
		ins(BindTexture, tex2D, 5),
		draw,
	}
	got, removed := run(repeated, ModeRedundancyChecks)
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	equalStream(t, got, []Instruction{repeated[0], repeated[1], draw, draw})
}

func TestRedundancy_EnableDisableShareSlot(t *testing.T) {
	stream := []Instruction{
		ins(Enable, blendCap),
		draw,
		ins(Disable, blendCap),
		draw,
		ins(Disable, blendCap),
		ins(Enable, blendCap),
		draw,
	}
	got, removed := run(stream, ModeRedundancyChecks)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	equalStream(t, got, []Instruction{
		ins(Enable, blendCap), draw, ins(Disable, blendCap), draw, ins(Enable, blendCap), draw,
	})
}

func TestRedundancy_FrontAndBackCoversBothFaces(t *testing.T) {
	front, back, both := UintWord(EnumFront), UintWord(EnumBack), UintWord(EnumFrontAndBack)
	keep, incr := UintWord(0x1E00), UintWord(0x1E02)

	stream := []Instruction{
		ins(StencilOpSeparate, both, keep, keep, incr),
		draw,
		ins(StencilOpSeparate, front, keep, keep, incr),
		ins(StencilOpSeparate, back, keep, keep, incr),
	}
	if _, removed := run(stream, ModeRedundancyChecks); removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	partial := []Instruction{
		ins(StencilOpSeparate, front, keep, keep, incr),
		draw,
		ins(StencilOpSeparate, both, keep, keep, incr),
	}
	if _, removed := run(partial, ModeRedundancyChecks); removed != 0 {
		t.Errorf("FRONT_AND_BACK elided with unknown back face: %d", removed)
	}
}

func TestRedundancy_VertexArrayScopedState(t *testing.T) {
	stream := []Instruction{
		ins(BindVertexArray, 1),
		ins(EnableVertexAttribArray, 0),
		draw,
		ins(BindVertexArray, 2),
		ins(EnableVertexAttribArray, 0),
		draw,
		ins(BindVertexArray, 1),
		ins(EnableVertexAttribArray, 0),
		draw,
	}
	got, removed := run(stream, ModeRedundancyChecks)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if got[len(got)-2] != ins(BindVertexArray, 1) {
		t.Errorf("rebinding vertex array 1 was elided: %v", got)
	}
}

func TestRedundancy_IndexedBindingInvalidatesGenericBinding(t *testing.T) {
	stream := []Instruction{
		ins(BindBuffer, uniformBT, 3),
		ins(BindBufferBase, uniformBT, 0, 5),
		ins(BindBuffer, uniformBT, 3),
	}
	if _, removed := run(stream, ModeRedundancyChecks); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	plain := []Instruction{
		ins(BindBuffer, uniformBT, 3),
		draw,
		ins(BindBuffer, uniformBT, 3),
	}
	if _, removed := run(plain, ModeRedundancyChecks); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	ranged := []Instruction{
		ins(BindBufferBase, uniformBT, 0, 5),
		draw,
		ins(BindBufferRange, uniformBT, 0, 5, 0, 64),
	}
	if _, removed := run(ranged, ModeRedundancyChecks); removed != 0 {
		t.Errorf("range binding treated as equal to base binding")
	}
}

func TestRedundancy_IndexedBindingTracksGenericBinding(t *testing.T) {
	one, zero := UintWord(1), UintWord(0)
	stream := []Instruction{
		ins(BindBufferBase, uniformBT, one, 1),
		ins(BindBufferBase, uniformBT, zero, 2),
		ins(BindBufferBase, uniformBT, one, 1),
	}
	got, removed := run(stream, ModeRedundancyChecks)
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	equalStream(t, got, stream)

	got, removed = run(stream, ModeAll)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	equalStream(t, got, stream[1:])

	generic := []Instruction{
		ins(BindBufferBase, uniformBT, zero, 5),
		ins(BindBuffer, uniformBT, 5),
	}
	if _, removed := run(generic, ModeRedundancyChecks); removed != 1 {
		t.Errorf("generic bind after indexed bind of the same buffer: removed = %d, want 1", removed)
	}
}

func TestRedundancy_IgnoresSlotsBeyondArity(t *testing.T) {
	first := ins(BindProgram, 3)
	second := first
	second.Args[2] = 7
	got, removed := run([]Instruction{first, draw, second}, ModeRedundancyChecks)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	equalStream(t, got, []Instruction{first, draw})
}

func TestRedundancy_FramebufferTargets(t *testing.T) {
	fb, drawFB, readFB := UintWord(EnumFramebuffer), UintWord(EnumDrawFramebuffer), UintWord(EnumReadFramebuffer)
	stream := []Instruction{
		ins(BindFramebuffer, fb, 4),
		draw,
		ins(BindFramebuffer, drawFB, 4),
		ins(BindFramebuffer, readFB, 4),
	}
	if _, removed := run(stream, ModeRedundancyChecks); removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	partial := []Instruction{
		ins(BindFramebuffer, drawFB, 4),
		draw,
		ins(BindFramebuffer, fb, 4),
	}
	if _, removed := run(partial, ModeRedundancyChecks); removed != 0 {
		t.Errorf("FRAMEBUFFER elided with unknown read binding")
	}
}

func TestRedundancy_NeverElidesSideEffects(t *testing.T) {
	stream := []Instruction{
		ins(Uniform4fv, 0, 1, 0x1000),
		ins(Uniform4fv, 0, 1, 0x1000),
		ins(VertexAttribPointer, 0, 3, UintWord(EnumFloat), 12, 0),
		ins(VertexAttribPointer, 0, 3, UintWord(EnumFloat), 12, 0),
		ins(Clear, UintWord(EnumColorBufferBit)),
		ins(Clear, UintWord(EnumColorBufferBit)),
		ins(GetError, 0),
		ins(GetError, 0),
		draw,
		draw,
	}
	got, removed := run(stream, ModeAll)
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	equalStream(t, got, stream)
}

func TestBothModes_DropSupersededSetters(t *testing.T) {
	stream := []Instruction{
		ins(BlendColor, FloatWord(1), 0, 0, FloatWord(1)),
		ins(Viewport, 0, 0, 640, 480),
		ins(BlendColor, 0, FloatWord(1), 0, FloatWord(1)),
		draw,
	}
	got, removed := run(stream, ModeAll)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	equalStream(t, got, []Instruction{stream[1], stream[2], draw})

	if _, removed := run(stream, ModeRedundancyChecks); removed != 0 {
		t.Errorf("redundancy alone dropped a changed value: %d", removed)
	}
}

func TestBothModes_KeepSettersThatAreRead(t *testing.T) {
	stream := []Instruction{
		ins(ActiveTexture, texture0),
		ins(BindTexture, tex2D, 1),
		ins(ActiveTexture, texture1),
		draw,
	}
	got, removed := run(stream, ModeAll)
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	equalStream(t, got, stream)
}

func TestOptimize_NoneReturnsInput(t *testing.T) {
	stream := []Instruction{ins(BindProgram, 1), ins(BindProgram, 1)}
	got, removed := run(stream, ModeNone)
	if removed != 0 {
		t.Errorf("removed = %d", removed)
	}
	equalStream(t, got, stream)
}
