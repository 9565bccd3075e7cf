// Package spin holds the primitives every lock variant in lockbench
// shares: the cache-line size assumption, a cache-line padding helper,
// and the cpu-relax helper used while spinning.
package spin

import "runtime"

// CacheLine is the single point where lockbench fixes the assumed cache
// line size. Every padded structure in this module derives from this
// constant.
const CacheLine = 64

// Pad occupies exactly one cache line. Embed it after the fields that
// need isolating to stop them from sharing a line with a neighbor.
type Pad = [CacheLine]byte

// Relax busy-spins for n units without involving the OS scheduler. Go
// has no portable PAUSE intrinsic; an empty counted loop is the
// compiler barrier every back-off variant in this module uses to wait
// proportionally to queue distance.
func Relax(n int) {
	for i := 0; i < n; i++ {
	}
}

// Yield hands the current goroutine's time slice to the Go scheduler.
// Used where a lock variant explicitly defers to the OS/runtime
// scheduler rather than busy-spinning: the back-off ticket variants once
// they fall far behind, and the array lock's per-slot wait.
func Yield() {
	runtime.Gosched()
}
