package recorder

import (
	"time"

	"github.com/tliron/commonlog"
)

// RecorderBuilderOption is a functional option for configuring a Recorder.
type RecorderBuilderOption func(*recorder)

// WithWorkers sets the maximum number of jobs recorded concurrently.
// Values < 1 are treated as 1.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - RecorderBuilderOption: option function to apply
func WithWorkers(n int) RecorderBuilderOption {
	return func(r *recorder) {
		r.workers = max(n, 1)
	}
}

// WithQueueSize sets the capacity of the pool's task queue.
//
// Parameters:
//   - n: queued task capacity
//
// Returns:
//   - RecorderBuilderOption: option function to apply
func WithQueueSize(n int) RecorderBuilderOption {
	return func(r *recorder) {
		r.queue = max(n, 1)
	}
}

// WithIdleTimeout sets how long an idle worker waits for a task before exiting.
//
// Parameters:
//   - d: idle timeout
//
// Returns:
//   - RecorderBuilderOption: option function to apply
func WithIdleTimeout(d time.Duration) RecorderBuilderOption {
	return func(r *recorder) {
		r.idle = d
	}
}

// WithLogger sets the recorder logger.
//
// Parameters:
//   - logger: destination logger
//
// Returns:
//   - RecorderBuilderOption: option function to apply
func WithLogger(logger commonlog.Logger) RecorderBuilderOption {
	return func(r *recorder) {
		r.log = logger
	}
}
