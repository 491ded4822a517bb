package engine

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-glvm/engine/gl_device"
	"github.com/Carmen-Shannon/oxy-glvm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"github.com/Carmen-Shannon/oxy-glvm/engine/window"
	"github.com/tliron/commonlog"
)

// engine implements the Engine interface.
// Coordinates the tick goroutine with the render loop running on the window's thread.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	// mu serializes arena access between the tick goroutine, the render loop and Record.
	mu sync.Mutex

	window   window.Window
	arena    vm.Arena
	executor vm.Executor
	mode     vm.Mode

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	resizeCallback func(width, height int)

	chains map[int]vm.Fragment

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        uint64        // quit after this many frames; 0 = unlimited
	frames           uint64
	frameStart       time.Time

	err error
	log commonlog.Logger
}

// Engine is the main entry point for the engine.
// It replays registered fragment chains once per frame into the window's GL context and
// drives a fixed-rate tick callback for re-recording.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Arena returns the arena holding every chain the engine replays.
	//
	// Returns:
	//   - vm.Arena: the arena
	Arena() vm.Arena

	// Executor returns the executor used for replay.
	//
	// Returns:
	//   - vm.Executor: the executor
	Executor() vm.Executor

	// Profiler returns the profiler fed with every replay.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetMode selects the optimization passes applied to every replay.
	//
	// Parameters:
	//   - mode: the optimization mode
	SetMode(mode vm.Mode)

	// Mode returns the optimization passes applied to every replay.
	//
	// Returns:
	//   - vm.Mode: the optimization mode
	Mode() vm.Mode

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick on the tick goroutine.
	// The callback does not hold the arena lock; use Record or RecordChain to re-record chains.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame before chains are replayed.
	// It runs on the thread owning the GL context while holding the arena lock, so it may use
	// Arena directly but must not call Record, RecordChain or the chain registry methods.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetResizeCallback registers the function called when the framebuffer is resized.
	// It runs with exclusive access to the arena, typically to re-record viewports.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Record runs fn with exclusive access to the arena.
	// Use it to record from goroutines other than the engine callbacks.
	//
	// Parameters:
	//   - fn: function receiving the arena
	Record(fn func(a vm.Arena))

	// RecordChain re-records the chain under key with exclusive access to the arena. fn receives
	// the current head (NilFragment if none) and returns the replacement, so no frame ever
	// replays a half-swapped chain. On error the registered chain is left unchanged.
	//
	// Parameters:
	//   - key: the chain key
	//   - fn: function receiving the arena and the previous head
	//
	// Returns:
	//   - error: the error returned by fn
	RecordChain(key int, fn func(a vm.Arena, previous vm.Fragment) (vm.Fragment, error)) error

	// AddChain registers the chain starting at head at the given z-index key.
	// Chains are replayed in ascending key order each frame.
	//
	// Parameters:
	//   - key: the z-index determining replay order (lower replays first)
	//   - head: the first fragment of the chain
	AddChain(key int, head vm.Fragment)

	// RemoveChain removes the chain at the given z-index key.
	// The fragments stay in the arena.
	//
	// Parameters:
	//   - key: the z-index of the chain to remove
	RemoveChain(key int)

	// Chain retrieves the head of the chain registered at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the chain to retrieve
	//
	// Returns:
	//   - vm.Fragment: the chain head, or vm.NilFragment if not found
	Chain(key int) vm.Fragment

	// Chains returns a copy of all registered chain heads keyed by z-index.
	//
	// Returns:
	//   - map[int]vm.Fragment: a copy of the chains map
	Chains() map[int]vm.Fragment

	// Frames returns the number of frames rendered so far.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Run initializes the executor on the calling thread, which must own the window's context,
	// and runs the render loop until the window closes, Quit is called, the frame count is
	// reached or a replay fails.
	//
	// Returns:
	//   - error: the init error or the first replay error, nil on a normal shutdown
	Run() error

	// Quit signals all engine goroutines to stop and asks the window to close.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Without WithExecutor the engine replays through the native OpenGL bindings.
//
// Parameters:
//   - options: functional options for engine configuration (window, executor, mode, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		chains:          make(map[int]vm.Fragment),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		mode:            vm.ModeAll,
		log:             commonlog.GetLogger("glvm.engine"),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.arena == nil {
		e.arena = vm.NewArena()
	}
	if e.executor == nil {
		e.executor = vm.NewExecutor(gl_device.Loader(), vm.WithErrorHandler(func(code uint32) {
			e.log.Warningf("GL error 0x%04X", code)
		}))
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.resizeCallback != nil {
				e.resizeCallback(width, height)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Arena() vm.Arena {
	return e.arena
}

func (e *engine) Executor() vm.Executor {
	return e.executor
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run() error {
	if e.window == nil {
		return errors.New("engine: no window configured")
	}
	if err := e.executor.Init(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine: already running")
	}
	e.handle()
	e.window.SetUpdateCallback(e.renderFrame)
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	return e.err
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit and asks the
// window loop to stop. Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// handle launches the tick and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	select {
	case newRate := <-e.tickRateChannel:
		e.engineTickRate = newRate
	default:
	}
	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.mu.Lock()
			tick := e.tickCallback
			e.mu.Unlock()
			if tick != nil {
				tick(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// renderFrame replays every registered chain in ascending z-index order. It is the window's
// update callback and runs on the thread owning the GL context; the window presents afterwards.
// A replay error or a panic stops the engine.
func (e *engine) renderFrame() {
	start := time.Now()

	select {
	case <-e.quitChannel:
		return
	default:
	}

	frames, err := e.replay(start)
	if err != nil {
		e.fail(err)
		return
	}

	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	if e.maxFrames > 0 && frames >= e.maxFrames {
		e.signalQuit()
		return
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// replay runs the render callback and every chain under the arena lock.
// Panics from recording or replay are returned as errors.
func (e *engine) replay(start time.Time) (frames uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine: render recovered from panic: %v", r)
		}
	}()

	dt := float32(0)
	if !e.frameStart.IsZero() {
		dt = float32(start.Sub(e.frameStart).Seconds())
	}
	e.frameStart = start

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	for _, key := range slices.Sorted(maps.Keys(e.chains)) {
		stats, err := e.executor.Run(e.arena, e.chains[key], e.mode)
		if err != nil {
			return e.frames, fmt.Errorf("engine: chain %d: %w", key, err)
		}
		e.profiler.Record(stats)
	}
	e.frames++
	return e.frames, nil
}

// fail records the first error and stops the engine.
func (e *engine) fail(err error) {
	e.log.Errorf("%v", err)
	e.mu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.mu.Unlock()
	e.signalQuit()
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetMode(mode vm.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = mode
}

func (e *engine) Mode() vm.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetTickRate sets the engine tick rate in frames per second.
// The rate is queued for the tick goroutine, which applies it on its next iteration or when
// Run starts. Only the latest pending rate is kept.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	for {
		select {
		case e.tickRateChannel <- newRate:
			return
		default:
		}
		// Replace the pending value.
		select {
		case <-e.tickRateChannel:
		default:
		}
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resizeCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Record(fn func(a vm.Arena)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.arena)
}

func (e *engine) RecordChain(key int, fn func(a vm.Arena, previous vm.Fragment) (vm.Fragment, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	head, err := fn(e.arena, e.chains[key])
	if err != nil {
		return err
	}
	e.chains[key] = head
	return nil
}

func (e *engine) AddChain(key int, head vm.Fragment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chains[key] = head
}

func (e *engine) RemoveChain(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.chains, key)
}

func (e *engine) Chain(key int) vm.Fragment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chains[key]
}

func (e *engine) Chains() map[int]vm.Fragment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.chains)
}

func (e *engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}
