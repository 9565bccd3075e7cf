package lock

import "sync/atomic"

// TAS is the baseline test-and-set spinlock: a single atomic flag,
// flipped with an acquire-ordered compare-and-swap and cleared with a
// release-ordered store. It is the simplest correct lock in this
// package and the one every other variant is measured against.
type TAS struct {
	locked atomic.Bool
}

// NewTAS creates an unlocked TAS spinlock.
func NewTAS() *TAS { return &TAS{} }

// Acquire spins until the flag transitions from unlocked to locked.
func (l *TAS) Acquire() {
	for !l.locked.CompareAndSwap(false, true) {
	}
}

// Release clears the flag.
func (l *TAS) Release() {
	l.locked.Store(false)
}

// Name identifies this lock for reporting.
func (l *TAS) Name() string { return "tas" }

// TASPreLoad is TAS, but every spin attempt first does a plain relaxed
// load of the flag and only issues the compare-and-swap once that load
// observes "unlocked". The RMW forces a read-for-ownership on the
// cache line that evicts every other waiter's cached copy; a plain load
// keeps the line in shared state across waiters, so under contention
// this variant generates far less coherence traffic than TAS while
// remaining exactly as unfair.
type TASPreLoad struct {
	locked atomic.Bool
}

// NewTASPreLoad creates an unlocked pre-load TAS spinlock.
func NewTASPreLoad() *TASPreLoad { return &TASPreLoad{} }

// Acquire spins on a relaxed load, only attempting the RMW once the
// flag looks free.
func (l *TASPreLoad) Acquire() {
	for {
		if !l.locked.Load() && l.locked.CompareAndSwap(false, true) {
			return
		}
	}
}

// Release clears the flag.
func (l *TASPreLoad) Release() {
	l.locked.Store(false)
}

// Name identifies this lock for reporting.
func (l *TASPreLoad) Name() string { return "tas_preload" }
