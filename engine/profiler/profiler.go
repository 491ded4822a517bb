package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
	"github.com/tliron/commonlog"
)

// Snapshot is a point-in-time copy of the profiler's cumulative counters.
type Snapshot struct {
	// Frames is the number of Tick calls.
	Frames uint64
	// Replays is the number of recorded replays.
	Replays uint64
	// Instructions is the total number of instructions in replayed chains.
	Instructions uint64
	// Removed is the total number of instructions elided by the optimizer.
	Removed uint64
}

// Dispatched returns the number of instructions that reached the entry point table.
func (s Snapshot) Dispatched() uint64 {
	return s.Instructions - s.Removed
}

// ElidedRatio returns the fraction of instructions removed by the optimizer, 0 when nothing ran.
func (s Snapshot) ElidedRatio() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Removed) / float64(s.Instructions)
}

// Profiler tracks frame rate, replay throughput and memory statistics.
// Outputs stats to the log at a configurable interval. It implements vm.StatisticsSink and
// may be fed from any goroutine.
type Profiler struct {
	mu sync.Mutex

	total Snapshot
	last  Snapshot

	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	log commonlog.Logger
}

var _ vm.StatisticsSink = &Profiler{}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options for profiler configuration
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		log:            commonlog.GetLogger("glvm.profiler"),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Record adds the statistics of one replay to the running totals.
//
// Parameters:
//   - stats: statistics returned by a chain replay
func (p *Profiler) Record(stats vm.Statistics) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total.Replays++
	p.total.Instructions += uint64(stats.TotalInstructions)
	p.total.Removed += uint64(stats.RemovedInstructions)
}

// Snapshot returns the cumulative counters since the profiler was created.
//
// Returns:
//   - Snapshot: copy of the counters
func (p *Profiler) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, replays and instructions per second, elided ratio over the interval,
// heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total.Frames++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	secs := elapsed.Seconds()
	if secs <= 0 {
		secs = 1e-9
	}
	interval := Snapshot{
		Frames:       p.total.Frames - p.last.Frames,
		Replays:      p.total.Replays - p.last.Replays,
		Instructions: p.total.Instructions - p.last.Instructions,
		Removed:      p.total.Removed - p.last.Removed,
	}

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / secs

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.log.Infof("FPS: %.2f | Replays: %.0f/s | Instructions: %.0f/s | Elided: %.1f%% | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		float64(interval.Frames)/secs,
		float64(interval.Replays)/secs,
		float64(interval.Instructions)/secs,
		interval.ElidedRatio()*100,
		allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.last = p.total
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
