package vm

// sortState reorders every run of consecutive state instructions. Draws, clears, data uploads
// and queries stay where they are, so each still observes exactly the state recorded before it.
func sortState(stream []Instruction) []Instruction {
	out := make([]Instruction, 0, len(stream))
	start := 0
	for n := 0; n <= len(stream); n++ {
		if n < len(stream) && stream[n].Code.Kind() == KindState {
			continue
		}
		out = appendScheduled(out, stream[start:n])
		if n < len(stream) {
			out = append(out, stream[n])
		}
		start = n + 1
	}
	return out
}

// appendScheduled list-schedules one run of state instructions. Conflicting instructions keep
// their recorded order; among the instructions whose predecessors are all placed, the one with
// the lowest category rank goes next, ties broken by recorded position.
func appendScheduled(out, seg []Instruction) []Instruction {
	n := len(seg)
	if n < 2 {
		return append(out, seg...)
	}

	acc := make([]access, n)
	for k, in := range seg {
		acc[k] = accessOf(in)
	}

	indeg := make([]int, n)
	succ := make([][]int, n)
	for j := 1; j < n; j++ {
		for k := 0; k < j; k++ {
			if acc[k].conflicts(acc[j]) {
				succ[k] = append(succ[k], j)
				indeg[j]++
			}
		}
	}

	placed := make([]bool, n)
	for range n {
		best := -1
		for k := 0; k < n; k++ {
			if placed[k] || indeg[k] > 0 {
				continue
			}
			if best < 0 || acc[k].cat < acc[best].cat {
				best = k
			}
		}
		placed[best] = true
		out = append(out, seg[best])
		for _, s := range succ[best] {
			indeg[s]--
		}
	}
	return out
}
