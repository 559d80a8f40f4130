package model

import (
	"io"

	"gonum.org/v1/gonum/floats"
)

// StdNormal is an isotropic standard normal in N dimensions.
type StdNormal struct {
	N int
}

func (m StdNormal) Dim() int { return m.N }

func (m StdNormal) LogDensity(x []float64, _ io.Writer) (float64, error) {
	if err := checkDim(m, x); err != nil {
		return 0, err
	}
	return -0.5 * floats.Dot(x, x), nil
}

func (m StdNormal) Gradient(x, grad []float64, _ io.Writer) (float64, error) {
	if err := checkDim(m, x); err != nil {
		return 0, err
	}
	floats.ScaleTo(grad, -1, x)
	return -0.5 * floats.Dot(x, x), nil
}

// Banana is the two-dimensional twisted Gaussian: x0 ~ N(0, 10^2) and
// x1 | x0 ~ N(100B - B*x0^2, 1).
type Banana struct {
	B float64
}

func (Banana) Dim() int { return 2 }

func (m Banana) residual(x []float64) float64 {
	return x[1] + m.B*x[0]*x[0] - 100*m.B
}

func (m Banana) LogDensity(x []float64, _ io.Writer) (float64, error) {
	if err := checkDim(m, x); err != nil {
		return 0, err
	}
	r := m.residual(x)
	return -x[0]*x[0]/200 - 0.5*r*r, nil
}

func (m Banana) Gradient(x, grad []float64, _ io.Writer) (float64, error) {
	if err := checkDim(m, x); err != nil {
		return 0, err
	}
	r := m.residual(x)
	grad[0] = -x[0]/100 - r*2*m.B*x[0]
	grad[1] = -r
	return -x[0]*x[0]/200 - 0.5*r*r, nil
}
