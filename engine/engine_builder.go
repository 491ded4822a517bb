package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-glvm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"github.com/Carmen-Shannon/oxy-glvm/engine/window"
	"github.com/tliron/commonlog"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler fed with every replay
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window whose GL context chains are replayed into.
//
// Parameters:
//   - w: a created Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithArena sets the arena holding the replayed chains. A new arena is created otherwise.
//
// Parameters:
//   - a: the arena
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithArena(a vm.Arena) EngineBuilderOption {
	return func(e *engine) {
		e.arena = a
	}
}

// WithExecutor sets the executor used for replay. Without it the engine creates one over the
// native OpenGL bindings that logs recorded GL errors.
//
// Parameters:
//   - x: the executor; Run calls its Init
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithExecutor(x vm.Executor) EngineBuilderOption {
	return func(e *engine) {
		e.executor = x
	}
}

// WithMode sets the optimization passes applied to every replay (default vm.ModeAll).
//
// Parameters:
//   - mode: the optimization mode
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMode(mode vm.Mode) EngineBuilderOption {
	return func(e *engine) {
		e.mode = mode
	}
}

// WithChain registers a chain at the given z-index key during engine construction.
//
// Parameters:
//   - key: the z-index determining replay order (lower replays first)
//   - head: the first fragment of the chain
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithChain(key int, head vm.Fragment) EngineBuilderOption {
	return func(e *engine) {
		e.chains[key] = head
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithFrameCount stops the engine after n frames. Zero runs until the window closes.
//
// Parameters:
//   - n: number of frames to render
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameCount(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}

// WithLogger sets the engine logger.
//
// Parameters:
//   - logger: destination logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger commonlog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.log = logger
	}
}
