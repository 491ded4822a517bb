package recorder

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"github.com/tliron/commonlog"
)

// Job records the instructions of one leaf fragment. It must only write through w.
type Job func(w *vm.BlockWriter) error

// recorder is the implementation of the Recorder interface.
type recorder struct {
	// pool manages a bounded set of reusable goroutines shared by every recording call.
	pool    worker.DynamicWorkerPool
	workers int
	queue   int
	idle    time.Duration

	log commonlog.Logger
}

// Recorder records many leaf fragments in parallel and links them into one chain.
//
// Fragments are created and cleared on the calling goroutine; only the instruction recording runs
// on the worker pool, one fragment per job, which the Arena allows for distinct existing fragments.
// The caller must not use the arena until a call returns.
type Recorder interface {
	// RecordChain creates one fragment per job, runs the jobs in parallel, and links the
	// fragments in job order.
	//
	// Parameters:
	//   - a: the arena to record into
	//   - jobs: the jobs, one per leaf fragment
	//
	// Returns:
	//   - vm.Fragment: the head of the chain, vm.NilFragment when jobs is empty
	//   - error: the joined job errors; on error every created fragment is deleted
	RecordChain(a vm.Arena, jobs []Job) (vm.Fragment, error)

	// Refill clears each leaf and records it again with the job at the same index.
	// Links between the leaves are preserved.
	//
	// Parameters:
	//   - a: the arena owning the leaves
	//   - leaves: fragments to re-record
	//   - jobs: one job per leaf
	//
	// Returns:
	//   - error: a length mismatch, an invalid leaf, or the joined job errors
	Refill(a vm.Arena, leaves []vm.Fragment, jobs []Job) error

	// Workers returns the maximum number of concurrent jobs.
	//
	// Returns:
	//   - int: the worker count
	Workers() int
}

var _ Recorder = &recorder{}

// NewRecorder creates a Recorder backed by a dynamic worker pool.
// The worker count defaults to one less than the number of CPUs (at least one).
//
// Parameters:
//   - options: functional options to configure the recorder
//
// Returns:
//   - Recorder: the newly created recorder
func NewRecorder(options ...RecorderBuilderOption) Recorder {
	r := &recorder{
		workers: max(runtime.NumCPU()-1, 1),
		queue:   256,
		idle:    1 * time.Second,
		log:     commonlog.GetLogger("glvm.recorder"),
	}
	for _, opt := range options {
		opt(r)
	}
	r.pool = worker.NewDynamicWorkerPool(r.workers, r.queue, r.idle)
	return r
}

func (r *recorder) Workers() int {
	return r.workers
}

func (r *recorder) RecordChain(a vm.Arena, jobs []Job) (vm.Fragment, error) {
	if len(jobs) == 0 {
		return vm.NilFragment, nil
	}

	writers := make([]*vm.BlockWriter, len(jobs))
	for n := range jobs {
		f := a.Create()
		writers[n] = vm.NewBlockWriter(a, f, a.NewBlock(f))
	}

	if err := r.run(writers, jobs); err != nil {
		for _, w := range writers {
			a.Delete(w.Fragment())
		}
		return vm.NilFragment, err
	}

	for n := 1; n < len(writers); n++ {
		a.Link(writers[n-1].Fragment(), writers[n].Fragment())
	}
	r.log.Debugf("recorded chain of %d leaves", len(writers))
	return writers[0].Fragment(), nil
}

func (r *recorder) Refill(a vm.Arena, leaves []vm.Fragment, jobs []Job) error {
	if len(leaves) != len(jobs) {
		return fmt.Errorf("recorder: %d leaves for %d jobs", len(leaves), len(jobs))
	}
	writers := make([]*vm.BlockWriter, len(jobs))
	for n, f := range leaves {
		if !a.Valid(f) {
			return fmt.Errorf("recorder: leaf %d: %w: %v", n, vm.ErrInvalidFragment, f)
		}
	}
	for n, f := range leaves {
		a.Clear(f)
		writers[n] = vm.NewBlockWriter(a, f, a.NewBlock(f))
	}
	return r.run(writers, jobs)
}

// run submits one task per job and waits for all of them. Jobs are submitted in batches no
// larger than the pool's queue. Job panics are returned as errors.
func (r *recorder) run(writers []*vm.BlockWriter, jobs []Job) error {
	errs := make([]error, len(jobs))

	for lo := 0; lo < len(jobs); lo += r.queue {
		hi := min(lo+r.queue, len(jobs))

		// pool.Wait() blocks until workers idle-exit, so a WaitGroup provides the barrier.
		var wg sync.WaitGroup
		for id := lo; id < hi; id++ {
			wg.Add(1)
			job := jobs[id]
			r.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					defer func() {
						if p := recover(); p != nil {
							errs[id] = fmt.Errorf("recorder: job %d panicked: %v", id, p)
						}
					}()
					if err := job(writers[id]); err != nil {
						errs[id] = fmt.Errorf("recorder: job %d: %w", id, err)
					}
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	return errors.Join(errs...)
}
