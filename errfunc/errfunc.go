// Package errfunc holds the error functions minimized during training.
//
// Each function returns the scalar error contribution of one pattern and
// writes the gradient with respect to the output activations into grad.
package errfunc

import (
	"math"

	"github.com/pkg/errors"
)

// Func is an error function. grad must have the same length as acs.
type Func interface {
	// Class computes the error when the target is a class index.
	Class(acs []float64, class int, grad []float64) float64
	// Target computes the error against a full target vector.
	Target(acs, target, grad []float64) float64
	String() string
}

// Parse maps a specfile switch value to a Func. alpha is only read by type_1.
func Parse(name string, alpha float64) (Func, error) {
	switch name {
	case "mse":
		return MSE{}, nil
	case "type_1":
		if alpha <= 0 {
			return nil, errors.Errorf("type_1 needs a positive alpha, got %g", alpha)
		}
		return Type1{Alpha: alpha}, nil
	case "pos_sum":
		return PosSum{}, nil
	}
	return nil, errors.Errorf("unknown error function %q", name)
}

// MSE is half the sum of squared differences.
type MSE struct{}

func (MSE) String() string { return "mse" }

func (MSE) Class(acs []float64, class int, grad []float64) float64 {
	var e float64
	for i, a := range acs {
		d := a
		if i == class {
			d = a - 1
		}
		grad[i] = d
		e += d * d
	}
	return 0.5 * e
}

func (MSE) Target(acs, target, grad []float64) float64 {
	var e float64
	for i, a := range acs {
		d := a - target[i]
		grad[i] = d
		e += d * d
	}
	return 0.5 * e
}

// Type1 penalizes every non-target output by exp(Alpha*(a_i - a_class)), so
// the error grows quickly once a competitor approaches the target output.
type Type1 struct {
	Alpha float64
}

func (Type1) String() string { return "type_1" }

func (t Type1) Class(acs []float64, class int, grad []float64) float64 {
	var e, sum float64
	ac := acs[class]
	for i, a := range acs {
		if i == class {
			continue
		}
		ex := math.Exp(t.Alpha * (a - ac))
		e += ex
		grad[i] = t.Alpha * ex
		sum += grad[i]
	}
	grad[class] = -sum
	return e
}

func (t Type1) Target(acs, target, grad []float64) float64 {
	return t.Class(acs, argmax(target), grad)
}

// PosSum weights the target output's shortfall from 1 by 20 and charges every
// other output 10*a^2 + a.
type PosSum struct{}

const (
	posSumWeight = 20.
	posSumBias   = 1.
	posSumQuad   = 10.
)

func (PosSum) String() string { return "pos_sum" }

func (PosSum) Class(acs []float64, class int, grad []float64) float64 {
	var e float64
	for i, a := range acs {
		if i == class {
			d := posSumBias - a
			e += posSumWeight * d * d
			grad[i] = -2 * posSumWeight * d
			continue
		}
		e += posSumQuad*a*a + a
		grad[i] = 2*posSumQuad*a + 1
	}
	return e
}

func (p PosSum) Target(acs, target, grad []float64) float64 {
	return p.Class(acs, argmax(target), grad)
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
