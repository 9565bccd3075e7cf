// Package bench implements the coordinated-start, wall-clock-bounded
// measurement engine lockbench uses to compare lock algorithms: Worker
// is the per-goroutine busy loop, Harness builds and drives a fleet of
// them and reports aggregate throughput.
package bench

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/ahrav/lockbench/lock"
	"github.com/ahrav/lockbench/workload"
)

// Result is what Harness.Run reports: total completed iterations across
// every worker, and the derived throughput for the measurement window.
type Result struct {
	TotalOps     uint64
	OpsPerSecond float64
}

var affinityWarnOnce sync.Once

// Harness builds N workers around one shared Lock and Workload,
// coordinates their start, holds the timing window open for Duration,
// then aggregates their counts.
type Harness struct {
	Threads  int
	Duration float64 // seconds
}

// New validates construction-time inputs and returns a Harness ready to
// run repeated experiments with different locks and workloads.
func New(threads int, durationSeconds float64) (*Harness, error) {
	if threads <= 0 {
		return nil, fmt.Errorf("lockbench: invalid worker count %d: must be > 0", threads)
	}
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("lockbench: invalid duration %f: must be > 0", durationSeconds)
	}
	return &Harness{Threads: threads, Duration: durationSeconds}, nil
}

// Run executes one experiment: l and wl are shared by reference across
// every worker; l may optionally implement lock.PerWorker, in which
// case each worker gets its own handle over l's shared state instead of
// l directly. Threads and Duration are validated once at construction
// (New), so Run itself cannot fail.
func (h *Harness) Run(l lock.Lock, wl workload.Workload) Result {
	wl.Reset()

	timing := newTimingRecord()
	results := make([]ResultSlot, h.Threads)
	workers := make([]*Worker, h.Threads)

	ncpu := runtime.NumCPU()
	perWorker, isPerWorker := l.(lock.PerWorker)

	for i := 0; i < h.Threads; i++ {
		workerLock := l
		if isPerWorker {
			workerLock = perWorker.For(i)
		}
		workers[i] = &Worker{
			ID:     i,
			Lock:   workerLock,
			WL:     wl,
			Timing: timing,
			Result: &results[i],
		}
	}

	var wg sync.WaitGroup
	wg.Add(h.Threads)
	for i := 0; i < h.Threads; i++ {
		w := workers[i]
		targetCPU := i % ncpu
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			if affinitySupported {
				if err := pinToCPU(targetCPU); err != nil {
					affinityWarnOnce.Do(func() {
						log.Printf("lockbench: cpu affinity pinning failed, continuing without it: %v", err)
					})
				}
			} else {
				affinityWarnOnce.Do(func() {
					log.Printf("lockbench: cpu affinity pinning not supported on this platform")
				})
			}
			w.run()
		}()
	}

	for timing.ready.Load() < int64(h.Threads) {
	}

	timing.publish(h.Duration)
	sleepSeconds(h.Duration)
	timing.stop.Store(true)

	wg.Wait()

	var total uint64
	for i := range results {
		total += results[i].Count()
	}

	return Result{
		TotalOps:     total,
		OpsPerSecond: float64(total) / h.Duration,
	}
}
