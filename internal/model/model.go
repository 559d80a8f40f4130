package model

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrDimension     = errors.New("model: dimension mismatch")
	ErrUnknownTarget = errors.New("model: unknown target")
)

// Model is a log density over R^Dim. Diagnostic text written to msgs is
// surfaced by the Evaluator after each call.
type Model interface {
	Dim() int
	LogDensity(x []float64, msgs io.Writer) (float64, error)
}

// Gradienter is implemented by models with an analytic gradient. grad has
// length Dim and is overwritten.
type Gradienter interface {
	Gradient(x, grad []float64, msgs io.Writer) (float64, error)
}

// ByName returns one of the reference targets.
func ByName(name string, dim int) (Model, error) {
	switch name {
	case "normal":
		if dim <= 0 {
			return nil, fmt.Errorf("%w: normal needs dim > 0, got %d", ErrDimension, dim)
		}
		return StdNormal{N: dim}, nil
	case "banana":
		return Banana{B: 0.03}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
}

func checkDim(m Model, x []float64) error {
	if len(x) != m.Dim() {
		return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(x), m.Dim())
	}
	return nil
}
