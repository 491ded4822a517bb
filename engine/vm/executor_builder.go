package vm

import "github.com/tliron/commonlog"

// ExecutorBuilderOption is a functional option applied to an executor during construction via
// NewExecutor.
type ExecutorBuilderOption func(*executor)

// WithErrorHandler registers a function called with every non-zero code returned by a recorded
// GetError instruction.
//
// Parameters:
//   - fn: the handler receiving the native error code
//
// Returns:
//   - ExecutorBuilderOption: a function that applies the handler option to an executor
func WithErrorHandler(fn func(code uint32)) ExecutorBuilderOption {
	return func(x *executor) {
		x.onError = fn
	}
}

// WithStatisticsSink forwards the Statistics of every Run to sink.
//
// Parameters:
//   - sink: the receiver, typically a profiler
//
// Returns:
//   - ExecutorBuilderOption: a function that applies the sink option to an executor
func WithStatisticsSink(sink StatisticsSink) ExecutorBuilderOption {
	return func(x *executor) {
		x.sink = sink
	}
}

// WithLogger replaces the executor's logger.
//
// Parameters:
//   - log: the logger to use
//
// Returns:
//   - ExecutorBuilderOption: a function that applies the logger option to an executor
func WithLogger(log commonlog.Logger) ExecutorBuilderOption {
	return func(x *executor) {
		x.log = log
	}
}
