package optimize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	armijo       = 1e-4
	maxBacktrack = 40
)

// lbfgs runs at most iters iterations of limited-memory BFGS with mem
// correction pairs and a backtracking line search. It stops with
// GradientGoal once ||g|| <= gtol·max(1, ||w||).
func lbfgs(obj Objective, w []float64, iters, mem int, gtol float64, visit visitFunc) StopCode {
	n := len(w)
	g := make([]float64, n)
	gnew := make([]float64, n)
	wnew := make([]float64, n)
	d := make([]float64, n)
	e := obj.ErrGrad(w, g)

	var S, Y [][]float64
	var rho []float64
	alphas := make([]float64, mem)

	for it := 0; it < iters; it++ {
		gnorm := floats.Norm(g, 2)
		if gnorm <= gtol*math.Max(1, floats.Norm(w, 2)) {
			return GradientGoal
		}

		// two-loop recursion
		copy(d, g)
		for i := len(S) - 1; i >= 0; i-- {
			alphas[i] = rho[i] * floats.Dot(S[i], d)
			floats.AddScaled(d, -alphas[i], Y[i])
		}
		step := 1.
		if k := len(S) - 1; k >= 0 {
			floats.Scale(floats.Dot(S[k], Y[k])/floats.Dot(Y[k], Y[k]), d)
		} else {
			step = 1 / gnorm
		}
		for i := range S {
			b := rho[i] * floats.Dot(Y[i], d)
			floats.AddScaled(d, alphas[i]-b, S[i])
		}
		floats.Scale(-1, d)

		dg := floats.Dot(d, g)
		if dg >= 0 {
			S, Y, rho = nil, nil, nil
			floats.ScaleTo(d, -1, g)
			dg = -gnorm * gnorm
			step = 1 / gnorm
		}

		var enew float64
		ok := false
		for ls := 0; ls < maxBacktrack; ls++ {
			floats.AddScaledTo(wnew, w, step, d)
			enew = obj.ErrGrad(wnew, gnew)
			if enew <= e+armijo*step*dg {
				ok = true
				break
			}
			step /= 2
		}
		if !ok {
			return LineSearchFailed
		}

		sk := make([]float64, n)
		yk := make([]float64, n)
		floats.SubTo(sk, wnew, w)
		floats.SubTo(yk, gnew, g)
		if sy := floats.Dot(sk, yk); sy > 1e-12*floats.Dot(yk, yk) && sy > 0 {
			S, Y, rho = append(S, sk), append(Y, yk), append(rho, 1/sy)
			if len(S) > mem {
				S, Y, rho = S[1:], Y[1:], rho[1:]
			}
		}
		copy(w, wnew)
		copy(g, gnew)
		e = enew

		if code, _ := visit(w, e, g); code != Continue {
			return code
		}
	}
	return Continue
}
