package optimize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Objective is a differentiable error function of the weights. ErrGrad
// returns the error at w and, when grad is non-nil, writes the gradient.
type Objective interface {
	ErrGrad(w, grad []float64) float64
}

// visitFunc is called after every iteration with the current point. A code
// other than Continue ends the phase; restart reports that w was changed
// behind the optimizer's back.
type visitFunc func(w []float64, e float64, g []float64) (code StopCode, restart bool)

const (
	scgSigma   = 1e-4
	scgLambda0 = 1e-6
)

// scg runs at most iters iterations of Møller's scaled conjugate gradient
// from w, updating w in place. It returns Continue when the budget is used
// up.
func scg(obj Objective, w []float64, iters int, visit visitFunc) StopCode {
	n := len(w)
	g := make([]float64, n)
	gnew := make([]float64, n)
	wnew := make([]float64, n)
	s := make([]float64, n)
	r := make([]float64, n)
	rold := make([]float64, n)
	p := make([]float64, n)

	var e float64
	var lambda, lambdabar, delta float64
	var success bool
	reset := func() {
		e = obj.ErrGrad(w, g)
		floats.ScaleTo(r, -1, g)
		copy(p, r)
		lambda, lambdabar = scgLambda0, 0
		success = true
	}
	reset()

	for it := 0; it < iters; it++ {
		if success && floats.Dot(p, r) <= 0 {
			copy(p, r)
		}
		pp := floats.Dot(p, p)
		if pp == 0 {
			return GradientGoal
		}

		// second order information along p
		if success {
			sigma := scgSigma / math.Sqrt(pp)
			floats.AddScaledTo(wnew, w, sigma, p)
			obj.ErrGrad(wnew, gnew)
			floats.SubTo(s, gnew, g)
			delta = floats.Dot(p, s) / sigma
		}

		// scale
		delta += (lambda - lambdabar) * pp
		if delta <= 0 {
			lambdabar = 2 * (lambda - delta/pp)
			delta = -delta + lambda*pp
			lambda = lambdabar
		}

		// step size and comparison parameter
		mu := floats.Dot(p, r)
		alpha := mu / delta
		floats.AddScaledTo(wnew, w, alpha, p)
		enew := obj.ErrGrad(wnew, gnew)
		comp := 2 * delta * (e - enew) / (mu * mu)
		if math.IsNaN(comp) || math.IsInf(enew, 0) {
			comp = -1
		}

		if comp >= 0 {
			copy(w, wnew)
			copy(g, gnew)
			e = enew
			copy(rold, r)
			floats.ScaleTo(r, -1, g)
			lambdabar = 0
			success = true
			if (it+1)%n == 0 {
				copy(p, r)
			} else {
				beta := (floats.Dot(r, r) - floats.Dot(r, rold)) / mu
				floats.AddScaledTo(p, r, beta, p)
			}
			if comp >= 0.75 {
				lambda /= 4
			}
		} else {
			lambdabar = lambda
			success = false
		}
		if comp < 0.25 {
			lambda += delta * (1 - comp) / pp
		}

		code, restart := visit(w, e, g)
		if code != Continue {
			return code
		}
		if restart {
			reset()
		}
	}
	return Continue
}
