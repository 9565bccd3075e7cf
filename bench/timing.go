package bench

import "sync/atomic"

// timingRecord is the shared, single-instance-per-experiment state spec
// section 3 describes: ready counts in workers as they reach the start
// barrier, start and stop gate the measurement window, and
// durationSeconds is published once before start is raised. ready is a
// contended RMW but only during bring-up; start and stop are
// single-writer (the harness), multi-reader (every worker) after
// publish, so a plain atomic store/load pair gives workers the
// happens-before edge they need to see durationSeconds once start is
// visible.
type timingRecord struct {
	ready           atomic.Int64
	start           atomic.Bool
	stop            atomic.Bool
	durationSeconds atomic.Value // float64
}

func newTimingRecord() *timingRecord {
	r := &timingRecord{}
	r.durationSeconds.Store(float64(0))
	return r
}

// publish records the measurement window length and then releases every
// worker spinning on the start barrier.
func (r *timingRecord) publish(durationSeconds float64) {
	r.durationSeconds.Store(durationSeconds)
	r.start.Store(true)
}

// awaitStart spins until the harness has published the start signal.
func (r *timingRecord) awaitStart() {
	for !r.start.Load() {
	}
}

// stopped reports whether the harness has ended the measurement window.
func (r *timingRecord) stopped() bool {
	return r.stop.Load()
}
