package profiler

import "sync/atomic"

// Accumulator holds the running tick total and invocation count of one
// category. Ticks are microseconds.
//
// The two counters are updated by independent atomic adds. A concurrent
// reader may see a fold's ticks without its count, or the reverse.
type Accumulator struct {
	ticks atomic.Uint64
	count atomic.Uint64
}

// Fold adds ticks to the total and counts one invocation.
func (a *Accumulator) Fold(ticks uint64) {
	a.ticks.Add(ticks)
	a.count.Add(1)
}

// Load reads both counters. The pair is not read atomically.
func (a *Accumulator) Load() (ticks, count uint64) {
	return a.ticks.Load(), a.count.Load()
}
