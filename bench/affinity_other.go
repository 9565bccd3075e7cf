//go:build !linux

package bench

import "errors"

// affinitySupported reports whether this platform can pin a goroutine's
// underlying OS thread to a specific CPU. golang.org/x/sys/unix only
// exposes SchedSetaffinity on Linux; elsewhere pinning is unsupported
// and the harness records that fact once rather than failing the run.
const affinitySupported = false

// AffinitySupported reports whether this platform supports CPU affinity
// pinning, for callers (cmd/lockbench's report row) that want to record
// the fact rather than just act on it.
func AffinitySupported() bool { return affinitySupported }

func pinToCPU(cpuID int) error {
	return errors.New("cpu affinity not supported on this platform")
}
