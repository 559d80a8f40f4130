package model

import (
	"bytes"
	"fmt"
	"math"

	"github.com/D13ya/evalprof/pkg/profiler"
	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
)

// Evaluator runs model evaluations inside profiler scopes. Log density calls
// count as likelihood-like, gradient calls as gradient-like. Errors returned
// by the model pass through unchanged.
type Evaluator struct {
	Model    Model
	Profiler *profiler.Profiler
	Log      logr.Logger

	// Step is the finite difference step for models without an analytic
	// gradient. Zero selects the fd default.
	Step float64
}

func NewEvaluator(m Model, p *profiler.Profiler, log logr.Logger) *Evaluator {
	return &Evaluator{Model: m, Profiler: p, Log: log}
}

func (e *Evaluator) Dim() int { return e.Model.Dim() }

// LogDensity evaluates the model once.
func (e *Evaluator) LogDensity(x []float64) (float64, error) {
	defer e.Profiler.MeasureLikelihoodLike().End()

	var msgs bytes.Buffer
	lp, err := e.Model.LogDensity(x, &msgs)
	e.flush(profiler.LikelihoodLike, &msgs, err)
	return lp, err
}

// Gradient returns the log density at x and its gradient.
func (e *Evaluator) Gradient(x []float64) (float64, []float64, error) {
	defer e.Profiler.MeasureGradientLike().End()

	var msgs bytes.Buffer
	f, grad, err := e.gradient(x, &msgs)
	e.flush(profiler.GradientLike, &msgs, err)
	return f, grad, err
}

// GradientDotVector returns the log density at x and the directional
// derivative along v.
func (e *Evaluator) GradientDotVector(x, v []float64) (float64, float64, error) {
	defer e.Profiler.MeasureGradientLike().End()

	if len(v) != len(x) {
		return 0, 0, fmt.Errorf("%w: direction has %d entries, point has %d", ErrDimension, len(v), len(x))
	}
	var msgs bytes.Buffer
	f, grad, err := e.gradient(x, &msgs)
	e.flush(profiler.GradientLike, &msgs, err)
	if err != nil {
		return 0, 0, err
	}
	return f, floats.Dot(grad, v), nil
}

func (e *Evaluator) gradient(x []float64, msgs *bytes.Buffer) (float64, []float64, error) {
	if g, ok := e.Model.(Gradienter); ok {
		if err := checkDim(e.Model, x); err != nil {
			return 0, nil, err
		}
		grad := make([]float64, len(x))
		f, err := g.Gradient(x, grad, msgs)
		if err != nil {
			return 0, nil, err
		}
		return f, grad, nil
	}

	f, err := e.Model.LogDensity(x, msgs)
	if err != nil {
		return 0, nil, err
	}
	var evalErr error
	grad := fd.Gradient(nil, func(y []float64) float64 {
		if evalErr != nil {
			return math.NaN()
		}
		v, err := e.Model.LogDensity(y, msgs)
		if err != nil {
			evalErr = err
			return math.NaN()
		}
		return v
	}, x, &fd.Settings{Formula: fd.Central, Step: e.Step})
	if evalErr != nil {
		return 0, nil, evalErr
	}
	return f, grad, nil
}

func (e *Evaluator) flush(c profiler.Category, msgs *bytes.Buffer, err error) {
	if msgs.Len() == 0 {
		return
	}
	if err != nil {
		e.Log.Error(err, "model evaluation failed", "category", c.String(), "messages", msgs.String())
		return
	}
	e.Log.Info("model messages", "category", c.String(), "messages", msgs.String())
}
