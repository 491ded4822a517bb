package profiler

import (
	"time"

	"github.com/tliron/commonlog"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often Tick logs a report.
//
// Parameters:
//   - interval: minimum time between reports
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}

// WithLogger sets the logger reports are written to.
//
// Parameters:
//   - logger: destination logger
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(logger commonlog.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.log = logger
	}
}
