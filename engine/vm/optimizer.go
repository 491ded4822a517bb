package vm

// optimize applies the passes selected by mode to a working copy of a flattened chain and
// returns the instructions to dispatch together with the number of instructions removed.
// The input slice is owned by the caller's replay and may be reused as scratch space.
//
// Passes run in a fixed order: state sorting first, then the redundancy passes against the
// sorted order. With both flags set, setters whose value is overwritten before anything reads
// it are dropped as well, so that only the final value per state slot reaches each draw.
func optimize(stream []Instruction, mode Mode) ([]Instruction, int) {
	if len(stream) == 0 || mode&ModeAll == ModeNone {
		return stream, 0
	}

	work := stream
	if mode.Has(ModeStateSorting) {
		work = sortState(stream)
	}
	if !mode.Has(ModeRedundancyChecks) {
		return work, 0
	}

	effects := make([]effect, len(work))
	tracker := newScopeTracker()
	for n, in := range work {
		if in.Code.Kind() == KindState {
			effects[n] = tracker.effectOf(in)
		}
	}

	keep := make([]bool, len(work))
	for n := range keep {
		keep[n] = true
	}

	removed := 0
	if mode.Has(ModeStateSorting) {
		removed += dropSuperseded(work, effects, keep)
	}
	removed += dropRedundant(work, effects, keep)

	out := work[:0]
	for n, in := range work {
		if keep[n] {
			out = append(out, in)
		}
	}
	return out, removed
}

// dropRedundant marks state instructions whose value is already current for every slot they
// set. The cache lives for one replay; state never seen in this replay is unknown and always
// dispatched.
func dropRedundant(work []Instruction, effects []effect, keep []bool) int {
	cache := make(map[stateKey]Instruction)
	removed := 0
	for n, in := range work {
		if !keep[n] || in.Code.Kind() != KindState {
			continue
		}
		eff := &effects[n]
		if eff.current(cache) {
			keep[n] = false
			removed++
			continue
		}
		eff.apply(cache)
	}
	return removed
}

// dropSuperseded marks state instructions whose every slot is set again later in the same run
// of state instructions with no reader in between. Any non-state instruction ends the run,
// since draws, clears, data uploads and queries observe the whole context.
func dropSuperseded(work []Instruction, effects []effect, keep []bool) int {
	overwritten := make(map[stateKey]struct{})
	removed := 0
	for n := len(work) - 1; n >= 0; n-- {
		in := work[n]
		if in.Code.Kind() != KindState {
			clear(overwritten)
			continue
		}
		eff := &effects[n]
		covered := true
		for _, k := range eff.keys[:eff.n] {
			if _, ok := overwritten[k]; !ok {
				covered = false
				break
			}
		}
		if covered {
			keep[n] = false
			removed++
			continue
		}
		for _, k := range eff.keys[:eff.n] {
			overwritten[k] = struct{}{}
		}
		if reads := accessOf(in).reads; reads != 0 {
			for k := range overwritten {
				if reads&k.cat.bit() != 0 {
					delete(overwritten, k)
				}
			}
		}
	}
	return removed
}
