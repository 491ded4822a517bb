package vm

import (
	"errors"
	"testing"
	"unsafe"
)

func TestExecutor_RequiresInit(t *testing.T) {
	a := NewArena()
	f := a.Create()
	x := NewExecutor(TraceLoader(func(string, []any) {}))
	if err := x.RunSingle(a, f); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("RunSingle before Init: %v", err)
	}
	if _, err := x.Run(a, f, ModeNone); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Run before Init: %v", err)
	}
	if x.Initialized() {
		t.Error("Initialized before Init")
	}
}

func TestExecutor_InitFailureIsSticky(t *testing.T) {
	calls := 0
	loadErr := errors.New("no context")
	x := NewExecutor(func() (*EntryPoints, error) {
		calls++
		return nil, loadErr
	})
	if err := x.Init(); !errors.Is(err, loadErr) {
		t.Fatalf("Init = %v", err)
	}
	if err := x.Init(); !errors.Is(err, loadErr) {
		t.Fatalf("second Init = %v", err)
	}
	if calls != 1 {
		t.Errorf("loader ran %d times, want 1", calls)
	}
	a := NewArena()
	if _, err := x.Run(a, a.Create(), ModeAll); !errors.Is(err, loadErr) {
		t.Errorf("Run after failed Init = %v", err)
	}
}

func TestExecutor_InitRejectsIncompleteTable(t *testing.T) {
	x := NewExecutor(func() (*EntryPoints, error) {
		ep := NewTraceEntryPoints(func(string, []any) {})
		ep.ClearDepth = nil
		return ep, nil
	})
	err := x.Init()
	if err == nil {
		t.Fatal("Init accepted a table with a nil entry point")
	}
	if x.Initialized() {
		t.Error("Initialized after failed Init")
	}
}

func TestExecutor_RunSingleIgnoresNext(t *testing.T) {
	x, tr := newTracedExecutor(t)
	a := NewArena()
	wa := newWriter(a)
	wa.BindProgram(1).DrawArrays(EnumTriangles, 0, 3)
	wb := newWriter(a)
	wb.BindProgram(2).DrawArrays(EnumTriangles, 0, 6)
	a.Link(wa.Fragment(), wb.Fragment())

	if err := x.RunSingle(a, wa.Fragment()); err != nil {
		t.Fatal(err)
	}
	equalCalls(t, tr.calls, []string{"UseProgram 1", "DrawArrays 4 0 3"})
}

func TestExecutor_RunFollowsChain(t *testing.T) {
	x, tr := newTracedExecutor(t)
	a := NewArena()
	wa := newWriter(a)
	wa.BindProgram(1).DrawArrays(EnumTriangles, 0, 3)
	wb := newWriter(a)
	wb.BindProgram(1).DrawArrays(EnumTriangles, 0, 6)
	a.Link(wa.Fragment(), wb.Fragment())

	stats, err := x.Run(a, wa.Fragment(), ModeNone)
	if err != nil {
		t.Fatal(err)
	}
	equalCalls(t, tr.calls, []string{"UseProgram 1", "DrawArrays 4 0 3", "UseProgram 1", "DrawArrays 4 0 6"})
	if stats != (Statistics{TotalInstructions: 4}) {
		t.Errorf("stats = %+v", stats)
	}
}

// A sets X=1 then X=2, B draws then sets X=2 again.
func buildRedundantChain(a Arena) Fragment {
	wa := newWriter(a)
	wa.BindProgram(1).BindProgram(2)
	wb := newWriter(a)
	wb.DrawArrays(EnumTriangles, 0, 3).BindProgram(2)
	a.Link(wa.Fragment(), wb.Fragment())
	return wa.Fragment()
}

func TestExecutor_RunRedundancyElidesCurrentValue(t *testing.T) {
	x, tr := newTracedExecutor(t)
	a := NewArena()
	head := buildRedundantChain(a)

	stats, err := x.Run(a, head, ModeRedundancyChecks)
	if err != nil {
		t.Fatal(err)
	}
	equalCalls(t, tr.calls, []string{"UseProgram 1", "UseProgram 2", "DrawArrays 4 0 3"})
	if stats.TotalInstructions != 4 || stats.RemovedInstructions != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestExecutor_RunBothModes(t *testing.T) {
	x, tr := newTracedExecutor(t)
	a := NewArena()
	head := buildRedundantChain(a)

	stats, err := x.Run(a, head, ModeAll)
	if err != nil {
		t.Fatal(err)
	}
	// X=1 is overwritten before the draw reads it; the trailing X=2 is already current.
	equalCalls(t, tr.calls, []string{"UseProgram 2", "DrawArrays 4 0 3"})
	if stats.TotalInstructions != 4 || stats.RemovedInstructions != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Dispatched() != len(tr.calls) {
		t.Errorf("Dispatched = %d, calls = %d", stats.Dispatched(), len(tr.calls))
	}
}

func TestExecutor_RunIsIdempotent(t *testing.T) {
	for _, mode := range []Mode{ModeNone, ModeRedundancyChecks, ModeStateSorting, ModeAll} {
		x, tr := newTracedExecutor(t)
		a := NewArena()
		head := buildRedundantChain(a)

		first, err := x.Run(a, head, mode)
		if err != nil {
			t.Fatal(err)
		}
		firstCalls := append([]string(nil), tr.calls...)
		tr.calls = nil
		second, err := x.Run(a, head, mode)
		if err != nil {
			t.Fatal(err)
		}
		if first != second {
			t.Errorf("mode %v: stats differ %+v vs %+v", mode, first, second)
		}
		equalCalls(t, tr.calls, firstCalls)
	}
}

func TestExecutor_RunEmptyFragment(t *testing.T) {
	x, tr := newTracedExecutor(t)
	a := NewArena()
	f := a.Create()
	for _, mode := range []Mode{ModeNone, ModeRedundancyChecks, ModeStateSorting, ModeAll} {
		stats, err := x.Run(a, f, mode)
		if err != nil {
			t.Fatal(err)
		}
		if stats != (Statistics{}) {
			t.Errorf("mode %v: stats = %+v", mode, stats)
		}
	}
	a.NewBlock(f)
	a.NewBlock(f)
	if stats, _ := x.Run(a, f, ModeAll); stats.TotalInstructions != 0 {
		t.Errorf("empty blocks: stats = %+v", stats)
	}
	if len(tr.calls) != 0 {
		t.Errorf("empty fragment dispatched %q", tr.calls)
	}
}

func TestExecutor_RunDoesNotMutateFragments(t *testing.T) {
	x, _ := newTracedExecutor(t)
	a := NewArena()
	head := buildRedundantChain(a)
	before, _ := a.Flatten(head)
	if _, err := x.Run(a, head, ModeAll); err != nil {
		t.Fatal(err)
	}
	after, _ := a.Flatten(head)
	if len(before) != len(after) {
		t.Fatalf("chain length changed %d -> %d", len(before), len(after))
	}
	for n := range before {
		if before[n] != after[n] {
			t.Errorf("instruction %d changed: %v -> %v", n, before[n], after[n])
		}
	}
}

func TestExecutor_RunReportsCycles(t *testing.T) {
	x, tr := newTracedExecutor(t)
	a := NewArena()
	p, q := a.Create(), a.Create()
	NewBlockWriter(a, p, a.NewBlock(p)).DrawArrays(EnumTriangles, 0, 3)
	a.Link(p, q)
	a.Link(q, p)
	if _, err := x.Run(a, p, ModeNone); !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v", err)
	}
	if len(tr.calls) != 0 {
		t.Error("a cyclic chain dispatched instructions")
	}
}

func TestExecutor_DispatchDecodesArguments(t *testing.T) {
	x, tr := newTracedExecutor(t)
	a := NewArena()
	w := newWriter(a)
	w.BlendColor(1, 0.5, 0, 1).
		Viewport(-1, 2, 640, 480).
		StencilFuncSeparate(EnumFront, 0x0207, -3, 0xFF).
		ClearDepth(0.25).
		BindBufferRange(EnumUniformBuffer, 1, 6, 256, 64)

	if err := x.RunSingle(a, w.Fragment()); err != nil {
		t.Fatal(err)
	}
	equalCalls(t, tr.calls, []string{
		"BlendColor 1 0.5 0 1",
		"Viewport -1 2 640 480",
		"StencilFuncSeparate 1028 519 -3 255",
		"ClearDepth 0.25",
		"BindBufferRange 35345 1 6 256 64",
	})
}

func TestExecutor_VertexAttribPointerNormalizedFlag(t *testing.T) {
	var normalized []bool
	var types []uint32
	x := NewExecutor(func() (*EntryPoints, error) {
		ep := NewTraceEntryPoints(func(string, []any) {})
		ep.VertexAttribPointer = func(index uint32, size int32, xtype uint32, norm bool, stride int32, _ unsafe.Pointer) {
			normalized = append(normalized, norm)
			types = append(types, xtype)
		}
		return ep, nil
	})
	if err := x.Init(); err != nil {
		t.Fatal(err)
	}
	a := NewArena()
	w := newWriter(a)
	w.VertexAttribPointer(0, 4, 0x1401, true, 4, 0).VertexAttribPointer(1, 3, EnumFloat, false, 12, 16)
	if err := x.RunSingle(a, w.Fragment()); err != nil {
		t.Fatal(err)
	}
	if len(normalized) != 2 || !normalized[0] || normalized[1] {
		t.Errorf("normalized = %v", normalized)
	}
	if types[0] != 0x1401 || types[1] != EnumFloat {
		t.Errorf("types = %#x", types)
	}
}

func TestExecutor_GetErrorIsAnOrdinaryInstruction(t *testing.T) {
	var reported []uint32
	x := NewExecutor(func() (*EntryPoints, error) {
		ep := NewTraceEntryPoints(func(string, []any) {})
		ep.GetError = func() uint32 { return EnumInvalidOperation }
		return ep, nil
	}, WithErrorHandler(func(code uint32) { reported = append(reported, code) }))
	if err := x.Init(); err != nil {
		t.Fatal(err)
	}

	var out uint32
	a := NewArena()
	w := newWriter(a)
	w.GetError(&out).GetError(nil).GetError(&out)

	stats, err := x.Run(a, w.Fragment(), ModeAll)
	if err != nil {
		t.Fatalf("a native error surfaced as a replay error: %v", err)
	}
	if stats.RemovedInstructions != 0 {
		t.Errorf("error queries were elided: %+v", stats)
	}
	if out != EnumInvalidOperation {
		t.Errorf("out = %#x", out)
	}
	if len(reported) != 3 {
		t.Errorf("handler saw %d errors, want 3", len(reported))
	}
}

type recordingSink struct{ got []Statistics }

func (s *recordingSink) Record(stats Statistics) { s.got = append(s.got, stats) }

func TestExecutor_StatisticsSink(t *testing.T) {
	sink := &recordingSink{}
	x, _ := newTracedExecutor(t, WithStatisticsSink(sink))
	a := NewArena()
	head := buildRedundantChain(a)
	stats, _ := x.Run(a, head, ModeRedundancyChecks)
	if len(sink.got) != 1 || sink.got[0] != stats {
		t.Errorf("sink got %+v, want [%+v]", sink.got, stats)
	}
}

func TestExecutor_CompileNeedsNoContext(t *testing.T) {
	x := NewExecutor(nil)
	a := NewArena()
	head := buildRedundantChain(a)
	stream, stats, err := x.Compile(a, head, ModeAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(stream) != stats.Dispatched() || stats.RemovedInstructions != 2 {
		t.Errorf("stream %v, stats %+v", stream, stats)
	}
	if err := x.Init(); err == nil {
		t.Error("Init without loader succeeded")
	}
}
