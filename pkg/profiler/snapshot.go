package profiler

import (
	"fmt"
	"strings"
	"time"
)

// CategoryStats is the state of one accumulator at snapshot time.
type CategoryStats struct {
	Category    Category
	TotalMicros uint64
	Count       uint64
}

func (s CategoryStats) Total() time.Duration {
	return time.Duration(s.TotalMicros) * time.Microsecond
}

func (s CategoryStats) HasData() bool {
	return s.Count > 0
}

// Average returns microseconds per invocation. ok is false when nothing has
// been counted, in which case no division is performed.
func (s CategoryStats) Average() (avg float64, ok bool) {
	if s.Count == 0 {
		return 0, false
	}
	return float64(s.TotalMicros) / float64(s.Count), true
}

// Snapshot is an immutable copy of all profiler totals.
type Snapshot struct {
	Stats []CategoryStats

	// WallMillis is the time since BeginRun in milliseconds. It is zero when
	// RunStarted is false.
	WallMillis int64
	RunStarted bool
	TakenAt    time.Time
}

// Get returns the stats of category c, or zero stats if the snapshot does not
// carry c.
func (s Snapshot) Get(c Category) CategoryStats {
	for _, st := range s.Stats {
		if st.Category == c {
			return st
		}
	}
	return CategoryStats{Category: c}
}

func (s Snapshot) LikelihoodLike() CategoryStats { return s.Get(LikelihoodLike) }

func (s Snapshot) GradientLike() CategoryStats { return s.Get(GradientLike) }

// Sub returns the activity between prev and s. Both must come from the same
// profiler and run, with prev taken first; counters that went backwards
// clamp to zero.
func (s Snapshot) Sub(prev Snapshot) Snapshot {
	out := Snapshot{
		Stats:      make([]CategoryStats, len(s.Stats)),
		WallMillis: s.WallMillis - prev.WallMillis,
		RunStarted: s.RunStarted,
		TakenAt:    s.TakenAt,
	}
	if out.WallMillis < 0 {
		out.WallMillis = 0
	}
	for i, st := range s.Stats {
		old := prev.Get(st.Category)
		out.Stats[i] = CategoryStats{
			Category:    st.Category,
			TotalMicros: monus(st.TotalMicros, old.TotalMicros),
			Count:       monus(st.Count, old.Count),
		}
	}
	return out
}

func monus(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

// String renders a single log line, e.g.
// "wall=120ms likelihood=3400us/200 (17.0us avg) gradient=no data".
func (s Snapshot) String() string {
	var b strings.Builder
	if s.RunStarted {
		fmt.Fprintf(&b, "wall=%dms", s.WallMillis)
	} else {
		b.WriteString("wall=n/a")
	}
	for _, st := range s.Stats {
		avg, ok := st.Average()
		if !ok {
			fmt.Fprintf(&b, " %s=no data", st.Category)
			continue
		}
		fmt.Fprintf(&b, " %s=%dus/%d (%.1fus avg)", st.Category, st.TotalMicros, st.Count, avg)
	}
	return b.String()
}
