package bench

import (
	"github.com/ahrav/lockbench/lock"
	"github.com/ahrav/lockbench/workload"
)

// checkStride bounds how often a worker checks the stop flag: once
// every checkStride iterations, so the reported overshoot past the
// measurement window is bounded by checkStride times the per-iteration
// time. It is a power of two so the check collapses to a single
// mask-and-compare.
const checkStride = 64

// Worker runs the benchmark's main loop: after the coordinated start,
// it alternates an unlocked parallel section with a locked critical
// section until told to stop, counting completed iterations in its own
// ResultSlot.
type Worker struct {
	ID     int
	Lock   lock.Lock
	WL     workload.Workload
	Timing *timingRecord
	Result *ResultSlot
}

// run executes the worker's main loop. It must only be called after the
// harness has built every worker for the experiment; it blocks on the
// start barrier itself.
func (w *Worker) run() {
	w.Timing.ready.Add(1)
	w.Timing.awaitStart()

	var localCount uint64
	for {
		if localCount&(checkStride-1) == 0 && w.Timing.stopped() {
			break
		}
		w.WL.RunParallel()
		w.Lock.Acquire()
		w.WL.RunLocked()
		w.Lock.Release()
		localCount++
	}
	w.Result.count = localCount
}
