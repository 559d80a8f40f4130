package inference

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// MAPResult is the outcome of a posterior mode search.
type MAPResult struct {
	X          []float64
	LogDensity float64
	Iterations int
	Status     string
}

// MAP maximizes the log density from x0 with L-BFGS. Objective calls are
// likelihood-like and gradient calls gradient-like. A partial result is
// returned together with the optimizer error when one is available.
func MAP(ctx context.Context, d Density, x0 []float64, maxIter int) (*MAPResult, error) {
	if len(x0) != d.Dim() {
		return nil, fmt.Errorf("%w: start has %d entries, density has %d", ErrBadConfig, len(x0), d.Dim())
	}

	// gonum calls Func and Grad sequentially unless Settings.Concurrent is
	// set, so evalErr needs no lock.
	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if evalErr == nil {
				evalErr = ctx.Err()
			}
			if evalErr != nil {
				return math.NaN()
			}
			lp, err := d.LogDensity(x)
			if err != nil {
				evalErr = err
				return math.NaN()
			}
			return -lp
		},
		Grad: func(grad, x []float64) {
			if evalErr != nil {
				floats.Scale(math.NaN(), grad)
				return
			}
			_, g, err := d.Gradient(x)
			if err != nil {
				evalErr = err
				floats.Scale(math.NaN(), grad)
				return
			}
			floats.ScaleTo(grad, -1, g)
		},
	}

	settings := &optimize.Settings{MajorIterations: maxIter}
	res, err := optimize.Minimize(problem, clone(x0), settings, &optimize.LBFGS{})
	if evalErr != nil {
		return nil, fmt.Errorf("map: %w", evalErr)
	}
	if res == nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	out := &MAPResult{
		X:          res.X,
		LogDensity: -res.F,
		Iterations: res.MajorIterations,
		Status:     res.Status.String(),
	}
	if err != nil {
		return out, fmt.Errorf("map: %w", err)
	}
	return out, nil
}
