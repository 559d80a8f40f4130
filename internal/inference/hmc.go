package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrBadConfig = errors.New("inference: invalid configuration")

// Density is the evaluation surface the workloads drive. *model.Evaluator
// implements it.
type Density interface {
	Dim() int
	LogDensity(x []float64) (float64, error)
	Gradient(x []float64) (float64, []float64, error)
}

// HMC is a static-trajectory Hamiltonian Monte Carlo kernel with identity
// mass matrix.
type HMC struct {
	StepSize float64
	Leapfrog int
}

func DefaultHMC() HMC {
	return HMC{StepSize: 0.1, Leapfrog: 10}
}

func (h HMC) validate() error {
	if !(h.StepSize > 0) || math.IsInf(h.StepSize, 0) {
		return fmt.Errorf("%w: step size %v", ErrBadConfig, h.StepSize)
	}
	if h.Leapfrog <= 0 {
		return fmt.Errorf("%w: leapfrog steps %d", ErrBadConfig, h.Leapfrog)
	}
	return nil
}

// Chain holds the draws of one sampler run.
type Chain struct {
	Draws     [][]float64
	Accepted  int
	Divergent int
}

func (c Chain) AcceptRate() float64 {
	if len(c.Draws) == 0 {
		return 0
	}
	return float64(c.Accepted) / float64(len(c.Draws))
}

// Sample runs iters transitions from x0. Every transition makes Leapfrog
// gradient evaluations and, unless the trajectory diverged, one log density
// evaluation of the proposal. Momenta and acceptance draws come from src, or
// from the global source when src is nil; src must not be shared with another
// running chain. The chain built so far is returned with any error.
func (h HMC) Sample(ctx context.Context, d Density, x0 []float64, iters int, src rand.Source) (Chain, error) {
	if err := h.validate(); err != nil {
		return Chain{}, err
	}
	if len(x0) != d.Dim() {
		return Chain{}, fmt.Errorf("%w: start has %d entries, density has %d", ErrBadConfig, len(x0), d.Dim())
	}

	chain := Chain{Draws: make([][]float64, 0, iters)}
	x := clone(x0)
	lp, grad, err := d.Gradient(x)
	if err != nil {
		return chain, fmt.Errorf("initial gradient: %w", err)
	}
	if !isFinite(lp) {
		return chain, fmt.Errorf("%w: log density at start is %v", ErrBadConfig, lp)
	}

	momentum := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	accept := distuv.Uniform{Min: 0, Max: 1, Src: src}

	eps := h.StepSize
	mom := make([]float64, len(x))
	for it := 0; it < iters; it++ {
		if err := ctx.Err(); err != nil {
			return chain, err
		}

		for i := range mom {
			mom[i] = momentum.Rand()
		}
		h0 := lp - 0.5*floats.Dot(mom, mom)

		xn, pn, gn := clone(x), clone(mom), grad
		divergent := false
		for l := 0; l < h.Leapfrog; l++ {
			floats.AddScaled(pn, 0.5*eps, gn)
			floats.AddScaled(xn, eps, pn)
			var lpn float64
			lpn, gn, err = d.Gradient(xn)
			if err != nil {
				return chain, fmt.Errorf("iteration %d: %w", it, err)
			}
			if !isFinite(lpn) {
				divergent = true
				break
			}
			floats.AddScaled(pn, 0.5*eps, gn)
		}

		if divergent {
			chain.Divergent++
		} else {
			lpProp, err := d.LogDensity(xn)
			if err != nil {
				return chain, fmt.Errorf("iteration %d: %w", it, err)
			}
			h1 := lpProp - 0.5*floats.Dot(pn, pn)
			if isFinite(h1) && math.Log(accept.Rand()) < h1-h0 {
				x, lp, grad = xn, lpProp, gn
				chain.Accepted++
			}
		}
		chain.Draws = append(chain.Draws, clone(x))
	}
	return chain, nil
}

func clone(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
