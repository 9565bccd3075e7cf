//go:build linux

package bench

import "golang.org/x/sys/unix"

// affinitySupported reports whether this platform can pin a goroutine's
// underlying OS thread to a specific CPU.
const affinitySupported = true

// AffinitySupported reports whether this platform supports CPU affinity
// pinning, for callers (cmd/lockbench's report row) that want to record
// the fact rather than just act on it.
func AffinitySupported() bool { return affinitySupported }

// pinToCPU binds the calling OS thread to the given CPU id. The caller
// must have already called runtime.LockOSThread. Best-effort: spec
// section 7 treats a failure here as non-fatal.
func pinToCPU(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(0, &set)
}
