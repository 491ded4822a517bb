package vm

// ArenaBuilderOption is a functional option applied to an arena during construction via NewArena.
type ArenaBuilderOption func(*arena)

// WithCapacity preallocates room for n fragments.
//
// Parameters:
//   - n: the expected number of live fragments
//
// Returns:
//   - ArenaBuilderOption: a function that applies the capacity option to an arena
func WithCapacity(n int) ArenaBuilderOption {
	return func(a *arena) {
		if n > 0 {
			a.slots = make([]*fragment, 0, n)
		}
	}
}
