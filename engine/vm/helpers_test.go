package vm

import (
	"fmt"
	"strings"
	"testing"
	"unsafe"
)

// tracer collects dispatched calls as "Name arg arg ..." strings.
type tracer struct {
	calls []string
}

func (tr *tracer) record(name string, args []any) {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	tr.calls = append(tr.calls, strings.Join(parts, " "))
}

func newTracedExecutor(t *testing.T, options ...ExecutorBuilderOption) (Executor, *tracer) {
	t.Helper()
	tr := &tracer{}
	x := NewExecutor(TraceLoader(tr.record), options...)
	if err := x.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return x, tr
}

func newWriter(a Arena) *BlockWriter {
	f := a.Create()
	return NewBlockWriter(a, f, a.NewBlock(f))
}

func equalCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d calls %q, want %d calls %q", len(got), got, len(want), want)
	}
	for n := range got {
		if got[n] != want[n] {
			t.Errorf("call %d = %q, want %q", n, got[n], want[n])
		}
	}
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func unsafePointer(data []float32) unsafe.Pointer {
	return unsafe.Pointer(&data[0])
}
