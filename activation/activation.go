// Package activation holds the closed set of node activation functions.
//
// Every function is scaled so its derivative at 0 is exactly 1/4, which keeps
// networks built with different activation choices comparable.
package activation

import (
	"math"

	"github.com/pkg/errors"
)

// Func selects an activation function.
type Func uint8

const (
	Sinusoid Func = iota
	Sigmoid
	Linear
)

var names = map[Func]string{
	Sinusoid: "sinusoid",
	Sigmoid:  "sigmoid",
	Linear:   "linear",
}

// Parse maps a specfile switch value to a Func.
func Parse(name string) (Func, error) {
	for f, n := range names {
		if n == name {
			return f, nil
		}
	}
	return 0, errors.Errorf("unknown activation function %q", name)
}

func (f Func) String() string {
	if n, ok := names[f]; ok {
		return n
	}
	return "unknown"
}

// Eval returns the value of f at x. Used in forward passes where no gradient
// is needed.
func (f Func) Eval(x float64) float64 {
	switch f {
	case Sinusoid:
		return 0.5 * (1 + math.Sin(0.5*x))
	case Sigmoid:
		return sigmoid(x)
	case Linear:
		return 0.25 * x
	}
	panic("activation: unknown function")
}

// EvalDeriv returns the value of f at x and its derivative.
func (f Func) EvalDeriv(x float64) (float64, float64) {
	switch f {
	case Sinusoid:
		return 0.5 * (1 + math.Sin(0.5*x)), 0.25 * math.Cos(0.5*x)
	case Sigmoid:
		v := sigmoid(x)
		return v, v * (1 - v)
	case Linear:
		return 0.25 * x, 0.25
	}
	panic("activation: unknown function")
}

// ToApply makes f usable with mat.Dense.Apply.
func (f Func) ToApply() func(i, j int, v float64) float64 {
	return func(i, j int, v float64) float64 {
		return f.Eval(v)
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
