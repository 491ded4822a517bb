package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-glvm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"github.com/mattn/go-isatty"
)

// report is the outcome of a dry run.
type report struct {
	mode     vm.Mode
	frames   uint64
	snapshot profiler.Snapshot
	calls    map[string]int
}

// runDry replays the chain frames times against a tracing entry point table that counts calls
// instead of touching a context, then prints statistics.
func runDry(out io.Writer, src *source, frames uint64, dump bool) error {
	calls := make(map[string]int)
	p := profiler.NewProfiler()
	x := vm.NewExecutor(
		vm.TraceLoader(func(name string, _ []any) { calls[name]++ }),
		vm.WithStatisticsSink(p),
	)
	if err := x.Init(); err != nil {
		return err
	}

	if dump {
		stream, _, err := x.Compile(src.arena, src.head, src.mode)
		if err != nil {
			return err
		}
		for n, in := range stream {
			fmt.Fprintf(out, "%6d  %v\n", n, in)
		}
	}

	for range frames {
		if _, err := x.Run(src.arena, src.head, src.mode); err != nil {
			return err
		}
		p.Tick()
	}

	r := report{mode: src.mode, frames: frames, snapshot: p.Snapshot(), calls: calls}
	if f, ok := out.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return r.writeTable(out)
	}
	return r.writeKeyValues(out)
}

func (r report) fields() [][2]string {
	s := r.snapshot
	return [][2]string{
		{"mode", r.mode.String()},
		{"frames", fmt.Sprint(r.frames)},
		{"replays", fmt.Sprint(s.Replays)},
		{"instructions", fmt.Sprint(s.Instructions)},
		{"removed", fmt.Sprint(s.Removed)},
		{"dispatched", fmt.Sprint(s.Dispatched())},
		{"elided", fmt.Sprintf("%.4f", s.ElidedRatio())},
	}
}

// writeTable prints aligned columns for a terminal.
func (r report) writeTable(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, f := range r.fields() {
		fmt.Fprintf(tw, "%s\t%s\n", f[0], f[1])
	}
	if len(r.calls) > 0 {
		fmt.Fprintf(tw, "\nentry point\tcalls\n")
		for _, name := range slices.Sorted(maps.Keys(r.calls)) {
			fmt.Fprintf(tw, "%s\t%d\n", name, r.calls[name])
		}
	}
	return tw.Flush()
}

// writeKeyValues prints one key=value pair per line for pipes and files.
func (r report) writeKeyValues(out io.Writer) error {
	for _, f := range r.fields() {
		if _, err := fmt.Fprintf(out, "%s=%s\n", f[0], f[1]); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(r.calls)) {
		if _, err := fmt.Fprintf(out, "calls.%s=%d\n", name, r.calls[name]); err != nil {
			return err
		}
	}
	return nil
}
