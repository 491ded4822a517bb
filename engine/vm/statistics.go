package vm

// Statistics describes one chain replay.
type Statistics struct {
	// TotalInstructions is the number of instructions in the flattened chain.
	TotalInstructions int
	// RemovedInstructions is the number of instructions the optimizer kept from being dispatched.
	RemovedInstructions int
}

// Dispatched returns the number of instructions that reached the entry points.
func (s Statistics) Dispatched() int {
	return s.TotalInstructions - s.RemovedInstructions
}

// Ratio returns the fraction of instructions removed, or 0 for an empty replay.
func (s Statistics) Ratio() float64 {
	if s.TotalInstructions == 0 {
		return 0
	}
	return float64(s.RemovedInstructions) / float64(s.TotalInstructions)
}

// StatisticsSink receives the Statistics of every chain replay.
type StatisticsSink interface {
	Record(stats Statistics)
}
