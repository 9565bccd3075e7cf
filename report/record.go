// Package report defines the one stable contract lockbench exposes
// outside its core API: a row per experiment, and its CSV
// serialization. The surrounding CLI (cmd/lockbench) is the only
// caller; the core measurement engine in package bench never imports
// this package.
package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Record is one experiment's result row: the run's configuration
// alongside its measured throughput and a couple of provenance fields
// worth carrying with every row (the check stride in effect, whether
// CPU affinity pinning was available).
type Record struct {
	Task              string
	Lock              string
	Threads           int
	DurationSeconds   float64
	Repeats           int
	ParallelIters     int
	LockedIters       int
	AvgOps            float64
	OpsPerSecond      float64
	CheckStride       int
	AffinitySupported bool
}

// Header is the column order WriteCSV uses; callers writing multiple
// records should emit it once.
var Header = []string{
	"task", "lock", "threads", "duration_s", "repeats",
	"p", "l", "avg_ops", "ops_per_s",
	"check_stride", "affinity_supported",
}

// Row renders one record as a CSV row in Header's column order.
func (r Record) Row() []string {
	return []string{
		r.Task,
		r.Lock,
		strconv.Itoa(r.Threads),
		strconv.FormatFloat(r.DurationSeconds, 'f', -1, 64),
		strconv.Itoa(r.Repeats),
		strconv.Itoa(r.ParallelIters),
		strconv.Itoa(r.LockedIters),
		strconv.FormatFloat(r.AvgOps, 'f', 2, 64),
		strconv.FormatFloat(r.OpsPerSecond, 'f', 2, 64),
		strconv.Itoa(r.CheckStride),
		strconv.FormatBool(r.AffinitySupported),
	}
}

// WriteCSV writes the header followed by one row per record.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
