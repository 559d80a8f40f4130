// Package profiler accumulates elapsed time and call counts for the hot
// evaluations of an iterative run without taking locks on the measured path.
package profiler

import (
	"sync/atomic"
	"time"
)

// Profiler owns one accumulator per category and the wall-clock baseline of
// the current run. Create one per run and share the pointer.
type Profiler struct {
	origin time.Time

	// runStart is the BeginRun instant as an offset from origin, so reads
	// keep the monotonic clock reading of origin.
	runStart atomic.Int64
	begun    atomic.Bool

	slots [numCategories]Accumulator
}

func New() *Profiler {
	return &Profiler{origin: time.Now()}
}

// BeginRun resets the wall-clock baseline to now. Category totals are not
// touched. It is meant to be called once, before measurement fans out.
func (p *Profiler) BeginRun() {
	p.runStart.Store(int64(time.Since(p.origin)))
	p.begun.Store(true)
}

// Measure starts a scope bound to category c. c must be one of Categories().
func (p *Profiler) Measure(c Category) *Scope {
	return newScope(&p.slots[c])
}

func (p *Profiler) MeasureLikelihoodLike() *Scope {
	return p.Measure(LikelihoodLike)
}

func (p *Profiler) MeasureGradientLike() *Scope {
	return p.Measure(GradientLike)
}

// Time runs fn inside a scope for c. The scope is folded on every exit path,
// including a panic, and fn's error is returned as is.
func (p *Profiler) Time(c Category, fn func() error) error {
	defer p.Measure(c).End()
	return fn()
}

// Snapshot reads every accumulator and the elapsed wall-clock time. It does
// not reset anything.
func (p *Profiler) Snapshot() Snapshot {
	now := time.Since(p.origin)
	snap := Snapshot{
		Stats:   make([]CategoryStats, numCategories),
		TakenAt: p.origin.Add(now),
	}
	for i := range p.slots {
		ticks, count := p.slots[i].Load()
		snap.Stats[i] = CategoryStats{
			Category:    Category(i),
			TotalMicros: ticks,
			Count:       count,
		}
	}
	if p.begun.Load() {
		snap.RunStarted = true
		wall := now - time.Duration(p.runStart.Load())
		if wall > 0 {
			snap.WallMillis = wall.Milliseconds()
		}
	}
	return snap
}
