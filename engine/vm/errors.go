package vm

import "errors"

var (
	// ErrNotInitialized is returned by replay calls made before Executor.Init succeeded.
	ErrNotInitialized = errors.New("vm: entry points not initialized")

	// ErrCycle is returned when following next links revisits a fragment.
	ErrCycle = errors.New("vm: fragment chain contains a cycle")

	// ErrDanglingLink is returned when a fragment in a chain links to a deleted fragment.
	ErrDanglingLink = errors.New("vm: fragment links to a deleted fragment")

	// ErrInvalidFragment is returned when a replay is started from a handle that is not live.
	ErrInvalidFragment = errors.New("vm: invalid fragment handle")
)
