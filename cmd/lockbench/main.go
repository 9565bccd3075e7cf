// Command lockbench drives bench.Harness across a chosen lock algorithm
// and workload, averaging the requested repeats into a single
// report.Record row. It is a thin
// shell: argument parsing and CSV emission only, no benchmark logic of
// its own.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ahrav/lockbench/bench"
	"github.com/ahrav/lockbench/lock"
	"github.com/ahrav/lockbench/report"
	"github.com/ahrav/lockbench/workload"
)

func makeLock(name string, threads int) (lock.Lock, error) {
	switch name {
	case "tas":
		return lock.NewTAS(), nil
	case "tas_preload":
		return lock.NewTASPreLoad(), nil
	case "ticket":
		return lock.NewTicket(), nil
	case "ticket_preload":
		return lock.NewTicketPreLoad(), nil
	case "ticket_backoff":
		return lock.NewTicketBackOff(), nil
	case "ticket_backoff_prefetch":
		return lock.NewTicketBackOffPrefetch(), nil
	case "ticket_adaptive":
		return lock.NewTicketAdaptive(), nil
	case "mcs":
		return lock.NewMCS(threads), nil
	case "mcs_preload":
		return lock.NewMCSPreLoad(threads), nil
	case "array":
		return lock.NewArrayLock(threads), nil
	default:
		return nil, fmt.Errorf("unsupported lock algorithm %q", name)
	}
}

func makeWorkload(name string, p, l int) (workload.Workload, error) {
	switch name {
	case "noop":
		return workload.NewNoOp(), nil
	case "cpu_burn":
		return workload.NewCPUBurn(p, l), nil
	default:
		return nil, fmt.Errorf("unsupported workload %q", name)
	}
}

func run() error {
	lockName := flag.String("lock", "ticket", "lock algorithm: tas, tas_preload, ticket, ticket_preload, ticket_backoff, ticket_backoff_prefetch, ticket_adaptive, mcs, mcs_preload, array")
	taskName := flag.String("task", "noop", "workload: noop, cpu_burn")
	threads := flag.Int("threads", 4, "number of contending workers")
	duration := flag.Float64("duration", 1.0, "measurement window, in seconds")
	repeats := flag.Int("repeats", 1, "number of repeats to average over")
	p := flag.Int("p", workload.DefaultParallelIters, "cpu_burn parallel-section iterations")
	l := flag.Int("l", workload.DefaultLockedIters, "cpu_burn locked-section iterations")
	csvPath := flag.String("csv", "", "write the CSV report to this path instead of stdout")
	flag.Parse()

	wl, err := makeWorkload(*taskName, *p, *l)
	if err != nil {
		return err
	}

	h, err := bench.New(*threads, *duration)
	if err != nil {
		return err
	}

	var totalOps uint64
	for i := 0; i < *repeats; i++ {
		lk, err := makeLock(*lockName, *threads)
		if err != nil {
			return err
		}
		result := h.Run(lk, wl)
		totalOps += result.TotalOps
	}
	avgOps := float64(totalOps) / float64(*repeats)

	record := report.Record{
		Task:              *taskName,
		Lock:              *lockName,
		Threads:           *threads,
		DurationSeconds:   *duration,
		Repeats:           *repeats,
		ParallelIters:     *p,
		LockedIters:       *l,
		AvgOps:            avgOps,
		OpsPerSecond:      avgOps / *duration,
		CheckStride:       64,
		AffinitySupported: bench.AffinitySupported(),
	}

	out := os.Stdout
	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return report.WriteCSV(f, []report.Record{record})
	}
	return report.WriteCSV(out, []report.Record{record})
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lockbench:", err)
		os.Exit(1)
	}
}
