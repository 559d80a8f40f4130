package inference

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/D13ya/evalprof/pkg/profiler"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// Runner drives several chains against one density at once. The caller owns
// the profiler and is expected to have called BeginRun.
type Runner struct {
	Profiler *profiler.Profiler
	Density  Density
	Sampler  HMC
	Chains   int
	Iters    int

	// MAPIters, when positive, starts every chain from a mode search of at
	// most that many iterations.
	MAPIters int

	// Seed fixes the random streams. Chain i draws its start point and its
	// transitions from PCG(Seed, i), so equal seeds give equal chains.
	Seed uint64

	// Progress is the interval between timeline snapshots. Zero disables them.
	Progress time.Duration

	Log logr.Logger
}

// Result is the output of a run. Timeline holds the progress snapshots in
// the order they were taken.
type Result struct {
	Chains   []Chain
	Final    profiler.Snapshot
	Timeline []profiler.Snapshot
}

func (r *Runner) validate() error {
	if r.Profiler == nil || r.Density == nil {
		return fmt.Errorf("%w: runner needs a profiler and a density", ErrBadConfig)
	}
	if r.Chains <= 0 || r.Iters <= 0 {
		return fmt.Errorf("%w: chains=%d iters=%d", ErrBadConfig, r.Chains, r.Iters)
	}
	if r.Progress < 0 {
		return fmt.Errorf("%w: progress interval %v", ErrBadConfig, r.Progress)
	}
	return r.Sampler.validate()
}

// Run samples all chains. The first failing chain cancels the others; its
// error is returned along with whatever was collected.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	res := &Result{Chains: make([]Chain, r.Chains)}
	g, gctx := errgroup.WithContext(ctx)
	for i := range res.Chains {
		g.Go(func() error {
			chain, err := r.runChain(gctx, i)
			res.Chains[i] = chain
			if err != nil {
				return fmt.Errorf("chain %d: %w", i, err)
			}
			r.Log.V(1).Info("chain finished", "chain", i, "draws", len(chain.Draws),
				"acceptRate", chain.AcceptRate(), "divergent", chain.Divergent)
			return nil
		})
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	if r.Progress > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res.Timeline = r.watch(stop)
		}()
	}

	err := g.Wait()
	close(stop)
	wg.Wait()

	res.Final = r.Profiler.Snapshot()
	if err != nil {
		r.Log.Error(err, "run failed", "profile", res.Final.String())
		return res, err
	}
	r.Log.Info("run finished", "profile", res.Final.String())
	return res, nil
}

func (r *Runner) runChain(ctx context.Context, id int) (Chain, error) {
	src := rand.NewPCG(r.Seed, uint64(id))
	x0 := make([]float64, r.Density.Dim())
	inits := distuv.Uniform{Min: -2, Max: 2, Src: src}
	for j := range x0 {
		x0[j] = inits.Rand()
	}

	if r.MAPIters > 0 {
		m, err := MAP(ctx, r.Density, x0, r.MAPIters)
		switch {
		case m == nil:
			return Chain{}, err
		case err != nil:
			r.Log.Info("mode search stopped early", "chain", id, "status", m.Status, "reason", err.Error())
		default:
			r.Log.V(1).Info("mode found", "chain", id, "logDensity", m.LogDensity, "iterations", m.Iterations)
		}
		x0 = m.X
	}
	return r.Sampler.Sample(ctx, r.Density, x0, r.Iters, src)
}

func (r *Runner) watch(stop <-chan struct{}) []profiler.Snapshot {
	ticker := time.NewTicker(r.Progress)
	defer ticker.Stop()

	var timeline []profiler.Snapshot
	prev := r.Profiler.Snapshot()
	for {
		select {
		case <-stop:
			return timeline
		case <-ticker.C:
			snap := r.Profiler.Snapshot()
			timeline = append(timeline, snap)
			r.Log.Info("progress", "interval", snap.Sub(prev).String(), "total", snap.String())
			prev = snap
		}
	}
}
