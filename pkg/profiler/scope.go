package profiler

import (
	"sync/atomic"
	"time"
)

// Scope is one in-flight measurement bound to an accumulator. The start time
// is captured when the scope is created; there is no separate start step.
//
//	defer p.MeasureGradientLike().End()
type Scope struct {
	slot  *Accumulator
	start time.Time
	done  atomic.Bool
}

func newScope(slot *Accumulator) *Scope {
	return &Scope{slot: slot, start: time.Now()}
}

// Elapsed reports the time since the scope started without ending it.
func (s *Scope) Elapsed() time.Duration {
	return time.Since(s.start)
}

// End folds the elapsed time into the bound accumulator and returns the
// folded amount, truncated to whole microseconds. Only the first call folds;
// later calls return 0.
func (s *Scope) End() time.Duration {
	if s == nil || !s.done.CompareAndSwap(false, true) {
		return 0
	}
	ticks := toTicks(time.Since(s.start))
	s.slot.Fold(ticks)
	return time.Duration(ticks) * time.Microsecond
}

func toTicks(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Microsecond)
}
