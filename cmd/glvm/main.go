// glvm CLI - records, optimizes and replays GL instruction chains
package main

import (
	"cmp"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-glvm/common"
	"github.com/Carmen-Shannon/oxy-glvm/engine"
	"github.com/Carmen-Shannon/oxy-glvm/engine/capture"
	"github.com/Carmen-Shannon/oxy-glvm/engine/script"
	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"github.com/Carmen-Shannon/oxy-glvm/engine/window"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("glvm")

// GLFW and the GL context must stay on the main thread.
func init() {
	runtime.LockOSThread()
}

// source is a loaded chain and the settings it came with.
type source struct {
	arena    vm.Arena
	head     vm.Fragment
	mode     vm.Mode
	settings script.Settings
	close    func()
}

// loadSource is replaced in tests to observe source release.
var loadSource = load

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, loads the chain and replays it, returning the process exit code. The
// loaded source is released on every path.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("glvm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scriptPath := fs.String("script", "", "Load the chain from a TOML or YAML script")
	captureIn := fs.String("capture-in", "", "Load the chain from a capture file")
	captureOut := fs.String("capture-out", "", "Write the loaded chain to a capture file")
	bench := fs.Int("bench", 0, "Record a synthetic chain of N leaves in parallel")
	modeName := fs.String("mode", "", "Optimization mode: none, redundancy, sorting or both (default from script, else both)")
	windowed := fs.Bool("window", false, "Replay into a GLFW window instead of a dry run")
	frames := fs.Uint64("frames", 0, "Number of frames to replay (default from script; dry runs default to 1)")
	dump := fs.Bool("dump", false, "Print the instruction stream a replay would dispatch")
	verbosity := fs.Int("v", 0, "Log verbosity")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: glvm [options]\n\n")
		fmt.Fprintf(stderr, "Loads a fragment chain from a script, a capture file or a synthetic benchmark,\n")
		fmt.Fprintf(stderr, "then replays it through the instruction VM.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  glvm -script examples/triangle.toml -window       # Draw the scene\n")
		fmt.Fprintf(stderr, "  glvm -script scene.yaml -mode none -dump          # Show the unoptimized stream\n")
		fmt.Fprintf(stderr, "  glvm -bench 10000 -mode both -frames 100          # Measure the optimizer\n")
		fmt.Fprintf(stderr, "  glvm -bench 64 -capture-out bench.glvm            # Save a chain\n")
		fmt.Fprintf(stderr, "  glvm -capture-in bench.glvm -window               # Replay a saved chain\n")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	commonlog.Configure(*verbosity, nil)

	sources := 0
	for _, set := range []bool{*scriptPath != "", *captureIn != "", *bench > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		fs.Usage()
		return 2
	}

	src, err := loadSource(*scriptPath, *captureIn, *bench, *captureOut == "")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer src.close()

	if *modeName != "" {
		if src.mode, err = vm.ParseMode(*modeName); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}
	n := cmp.Or(*frames, src.settings.Frames)

	if *captureOut != "" {
		if err := capture.WriteFile(*captureOut, src.arena, src.head); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if *windowed {
		err = runWindow(src, n)
	} else {
		err = runDry(stdout, src, max(n, 1), *dump)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// load builds the chain from whichever source flag was given.
func load(scriptPath, captureIn string, bench int, matrices bool) (*source, error) {
	src := &source{arena: vm.NewArena(), mode: vm.ModeAll, close: func() {}}
	switch {
	case scriptPath != "":
		doc, err := script.Load(scriptPath)
		if err != nil {
			return nil, err
		}
		prog, err := doc.Build(src.arena)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", scriptPath, err)
		}
		src.head, src.mode, src.settings, src.close = prog.Head, prog.Mode, prog.Settings, prog.Close
	case captureIn != "":
		head, err := capture.ReadFile(captureIn, src.arena)
		if err != nil {
			return nil, err
		}
		src.head = head
	default:
		head, release, err := recordSynthetic(src.arena, bench, matrices)
		if err != nil {
			return nil, err
		}
		src.head = head
		src.close = func() {
			chain, _ := src.arena.Chain(head)
			for _, f := range chain {
				src.arena.Delete(f)
			}
			release()
		}
	}
	log.Infof("loaded chain with %d fragments", src.arena.Len())
	return src, nil
}

// runWindow replays the chain every frame into a GLFW window until it is closed or the frame
// count is reached. Keys 0-3 select an optimization mode, M cycles through them and P toggles
// profiler output. It must run on the main goroutine.
func runWindow(src *source, frames uint64) error {
	w := window.NewWindow(
		window.WithTitle(cmp.Or(src.settings.Title, "glvm")),
		window.WithWidth(cmp.Or(src.settings.Width, 1280)),
		window.WithHeight(cmp.Or(src.settings.Height, 720)),
	)
	defer w.Close()

	profiling := true
	e := engine.NewEngine(
		engine.WithWindow(w),
		engine.WithArena(src.arena),
		engine.WithMode(src.mode),
		engine.WithChain(0, src.head),
		engine.WithRenderFrameLimit(src.settings.FrameLimit),
		engine.WithFrameCount(frames),
		engine.WithProfiling(true),
	)
	w.SetKeyDownCallback(func(key uint32) {
		switch key {
		case common.Key0, common.Key1, common.Key2, common.Key3:
			e.SetMode(vm.Mode(key - common.Key0))
		case common.KeyM:
			e.SetMode((e.Mode() + 1) % (vm.ModeAll + 1))
		case common.KeyP:
			profiling = !profiling
			if profiling {
				e.EnableProfiler()
			} else {
				e.DisableProfiler()
			}
			return
		default:
			return
		}
		log.Infof("optimization mode: %s", e.Mode())
	})
	if err := e.Run(); err != nil {
		return err
	}

	s := e.Profiler().Snapshot()
	log.Infof("rendered %d frames, %d replays, %d instructions, %.1f%% elided",
		e.Frames(), s.Replays, s.Instructions, s.ElidedRatio()*100)
	return nil
}
