// Package report renders profiler snapshots for people and tools.
package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/D13ya/evalprof/pkg/profiler"
	"github.com/dustin/go-humanize"
)

const noData = "no data"

// WriteText writes an aligned table with one row per category followed by
// the wall-clock line.
func WriteText(w io.Writer, snap profiler.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "category\tcalls\ttotal (us)\tavg (us/call)\t")
	for _, st := range snap.Stats {
		avg := noData
		if v, ok := st.Average(); ok {
			avg = humanize.CommafWithDigits(round2(v), 2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			st.Category,
			humanize.Comma(int64(st.Count)),
			humanize.Comma(int64(st.TotalMicros)),
			avg,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !snap.RunStarted {
		_, err := fmt.Fprintln(w, "wall clock: run not started")
		return err
	}
	_, err := fmt.Fprintf(w, "wall clock: %s ms\n", humanize.Comma(snap.WallMillis))
	return err
}

// round2 rounds half away from zero; CommafWithDigits truncates.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
