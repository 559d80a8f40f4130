package report

import (
	"fmt"
	"io"

	"github.com/D13ya/evalprof/pkg/profiler"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteChart renders an HTML page with the final per-category totals and, if
// the timeline is non-empty, cumulative totals over the run.
func WriteChart(w io.Writer, final profiler.Snapshot, timeline []profiler.Snapshot) error {
	page := components.NewPage()
	page.PageTitle = "evalprof"
	page.AddCharts(totalsChart(final))
	if len(timeline) > 0 {
		page.AddCharts(timelineChart(timeline))
	}
	return page.Render(w)
}

func totalsChart(snap profiler.Snapshot) *charts.Bar {
	names := make([]string, 0, len(snap.Stats))
	totals := make([]opts.BarData, 0, len(snap.Stats))
	avgs := make([]opts.BarData, 0, len(snap.Stats))
	for _, st := range snap.Stats {
		names = append(names, st.Category.String())
		totals = append(totals, opts.BarData{Value: float64(st.TotalMicros) / 1000})
		// "-" is the echarts placeholder for a missing value
		avg := any("-")
		if v, ok := st.Average(); ok {
			avg = v
		}
		avgs = append(avgs, opts.BarData{Value: avg})
	}

	subtitle := "run not started"
	if snap.RunStarted {
		subtitle = fmt.Sprintf("wall clock %d ms", snap.WallMillis)
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Evaluation time by category", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("total (ms)", totals).
		AddSeries("avg (us/call)", avgs).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return bar
}

func timelineChart(timeline []profiler.Snapshot) *charts.Line {
	xs := make([]string, len(timeline))
	for i, snap := range timeline {
		xs[i] = fmt.Sprintf("%d", snap.WallMillis)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Cumulative evaluation time", Subtitle: "x: wall clock (ms), y: total (ms)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(xs)
	for _, c := range profiler.Categories() {
		points := make([]opts.LineData, len(timeline))
		for i, snap := range timeline {
			points[i] = opts.LineData{Value: float64(snap.Get(c).TotalMicros) / 1000}
		}
		line.AddSeries(c.String(), points)
	}
	return line
}
