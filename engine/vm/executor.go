package vm

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
)

// executor is the implementation of the Executor interface.
type executor struct {
	loader  Loader
	once    sync.Once
	ep      *EntryPoints
	initErr error

	onError func(code uint32)
	sink    StatisticsSink
	log     commonlog.Logger
}

// Executor replays fragments against the native entry points.
//
// Replay is synchronous and must happen on the thread that owns the graphics context; the
// Executor holds no locks. Native errors are not intercepted: a recorded GetError instruction is
// the only way they are observed.
type Executor interface {
	// Init resolves the entry points through the Loader. The loader runs at most once; its error,
	// or an incomplete entry point table, is returned here and by every later replay.
	//
	// Returns:
	//   - error: an error if the entry points could not be resolved
	Init() error

	// Initialized reports whether Init completed successfully.
	//
	// Returns:
	//   - bool: true if replays can be dispatched
	Initialized() bool

	// RunSingle replays exactly one fragment, blocks in order, without following its next link
	// and without optimization.
	//
	// Parameters:
	//   - a: the arena owning the fragment
	//   - f: the fragment to replay
	//
	// Returns:
	//   - error: ErrNotInitialized, the init error, or ErrInvalidFragment
	RunSingle(a Arena, f Fragment) error

	// Run replays the chain starting at head through the passes selected by mode.
	// The returned Statistics describe this call only.
	//
	// Parameters:
	//   - a: the arena owning the chain
	//   - head: the first fragment of the chain
	//   - mode: the optimization passes to apply
	//
	// Returns:
	//   - Statistics: total and removed instruction counts for this replay
	//   - error: ErrNotInitialized, the init error, ErrInvalidFragment, ErrDanglingLink or ErrCycle
	Run(a Arena, head Fragment, mode Mode) (Statistics, error)

	// Compile runs the passes selected by mode without dispatching anything. It does not require
	// Init and is used to inspect what Run would send to the context.
	//
	// Parameters:
	//   - a: the arena owning the chain
	//   - head: the first fragment of the chain
	//   - mode: the optimization passes to apply
	//
	// Returns:
	//   - []Instruction: the instructions Run would dispatch, in order
	//   - Statistics: the statistics Run would report
	//   - error: ErrInvalidFragment, ErrDanglingLink or ErrCycle
	Compile(a Arena, head Fragment, mode Mode) ([]Instruction, Statistics, error)
}

// Ensure executor implements Executor interface.
var _ Executor = &executor{}

// NewExecutor creates an Executor that resolves its entry points with loader on Init.
//
// Parameters:
//   - loader: the function that resolves the native entry points
//   - options: functional options to configure the executor
//
// Returns:
//   - Executor: the newly created executor
func NewExecutor(loader Loader, options ...ExecutorBuilderOption) Executor {
	x := &executor{
		loader: loader,
		log:    commonlog.GetLogger("glvm.vm"),
	}
	for _, opt := range options {
		opt(x)
	}
	return x
}

func (x *executor) Init() error {
	x.once.Do(func() {
		if x.loader == nil {
			x.initErr = errors.New("vm: no entry point loader configured")
			return
		}
		ep, err := x.loader()
		if err != nil {
			x.initErr = fmt.Errorf("vm: resolving entry points: %w", err)
			return
		}
		if ep == nil {
			x.initErr = errors.New("vm: loader returned no entry points")
			return
		}
		if missing := ep.Missing(); len(missing) > 0 {
			x.initErr = fmt.Errorf("vm: unresolved entry points: %s", strings.Join(missing, ", "))
			return
		}
		x.ep = ep
		x.log.Debug("entry points resolved")
	})
	if x.initErr != nil {
		x.log.Errorf("%v", x.initErr)
	}
	return x.initErr
}

func (x *executor) Initialized() bool {
	return x.ep != nil
}

func (x *executor) RunSingle(a Arena, f Fragment) error {
	if err := x.ready(); err != nil {
		return err
	}
	if !a.Valid(f) {
		return fmt.Errorf("%w: %v", ErrInvalidFragment, f)
	}
	a.Visit(f, x.dispatch)
	return nil
}

func (x *executor) Run(a Arena, head Fragment, mode Mode) (Statistics, error) {
	if err := x.ready(); err != nil {
		return Statistics{}, err
	}
	stream, stats, err := x.Compile(a, head, mode)
	if err != nil {
		return Statistics{}, err
	}
	for _, in := range stream {
		x.dispatch(in)
	}
	if x.sink != nil {
		x.sink.Record(stats)
	}
	x.log.Debugf("replayed %v mode=%v total=%d removed=%d", head, mode, stats.TotalInstructions, stats.RemovedInstructions)
	return stats, nil
}

func (x *executor) Compile(a Arena, head Fragment, mode Mode) ([]Instruction, Statistics, error) {
	stream, err := a.Flatten(head)
	if err != nil {
		return nil, Statistics{}, err
	}
	stats := Statistics{TotalInstructions: len(stream)}
	stream, stats.RemovedInstructions = optimize(stream, mode)
	return stream, stats, nil
}

func (x *executor) ready() error {
	if x.initErr != nil {
		return x.initErr
	}
	if x.ep == nil {
		return ErrNotInitialized
	}
	return nil
}
