package lock

import (
	"sync/atomic"

	"github.com/ahrav/lockbench/spin"
)

// ArrayLock is a fair, array-based lock: each worker spins on its own
// slot in a fixed-size flag array, and releasing a slot hands it to the
// next slot around the ring. Its "flag array, not a queue or counter
// pair" discipline is a fairness technique distinct from both the
// ticket and MCS families.
//
// The in-flight slot is private per worker: ArrayLock hands each worker
// its own view via For rather than storing the acquirer's current slot
// on the shared struct, which would race if two goroutines drove the
// same ArrayLock concurrently.
type ArrayLock struct {
	flags []atomic.Bool
	tail  atomic.Uint32
	size  uint32
	def   arrayView
}

// NewArrayLock creates an array lock sized for numWorkers contenders.
func NewArrayLock(numWorkers int) *ArrayLock {
	l := &ArrayLock{
		size:  uint32(numWorkers),
		flags: make([]atomic.Bool, numWorkers),
	}
	l.flags[0].Store(true)
	l.def = arrayView{l: l}
	return l
}

// For returns the Lock view a worker with the given id should hold for
// the lifetime of one experiment.
func (l *ArrayLock) For(workerID int) Lock { return &arrayView{l: l} }

// Name identifies this lock for reporting.
func (l *ArrayLock) Name() string { return "array" }

// Acquire and Release let *ArrayLock itself satisfy Lock (equivalent
// to For(0)); see MCS.Acquire for why this is needed.
func (l *ArrayLock) Acquire() { l.def.Acquire() }
func (l *ArrayLock) Release() { l.def.Release() }

// arrayView is the per-worker Lock handle ArrayLock.For hands out. Its
// mySlot field is private to the one goroutine driving it: that
// goroutine's own Acquire always runs before its own Release, so no
// synchronization is needed to read back the slot it was assigned.
type arrayView struct {
	l      *ArrayLock
	mySlot uint32
}

// Acquire claims the next slot in the ring and spins until it is
// signaled.
func (v *arrayView) Acquire() {
	slot := (v.l.tail.Add(1) - 1) % v.l.size
	v.mySlot = slot
	for !v.l.flags[slot].Load() {
		spin.Yield()
	}
}

// Release clears this worker's slot and signals the next one in the
// ring.
func (v *arrayView) Release() {
	slot := v.mySlot
	v.l.flags[slot].Store(false)
	next := (slot + 1) % v.l.size
	v.l.flags[next].Store(true)
}

// Name identifies this lock for reporting.
func (v *arrayView) Name() string { return v.l.Name() }
