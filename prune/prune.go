// Package prune zeroes small weights stochastically with a Boltzmann-like
// acceptance rule.
package prune

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/fpclass/mlp/specfile"
)

// Uniform is a source of uniform draws in [0,1).
type Uniform interface {
	Next() float64
}

// Mode selects the energy of a weight.
type Mode uint8

const (
	None Mode = iota
	Abs
	Square
)

// ParseMode maps a boltzmann switch value to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case specfile.NoPrune:
		return None, nil
	case specfile.AbsPrune:
		return Abs, nil
	case specfile.SquarePrune:
		return Square, nil
	}
	return None, errors.Errorf("unknown pruning mode %q", name)
}

func (m Mode) energy(w float64) float64 {
	if m == Abs {
		return math.Abs(w)
	}
	return w * w
}

// Report describes the weights that survived a pruning pass.
type Report struct {
	Pruned, Kept int
	Mean         float64
	StdDev       float64
	// Theta is the mean squared deviation of the kept weights from xmean,
	// which is held at zero.
	Theta float64
	// Entropy is the differential entropy of a gaussian with variance Theta.
	Entropy float64
}

// Boltzmann visits w in the given order, drawing one value u per weight,
// and zeroes the weight when u <= exp(-f(w)/temperature). A zero
// temperature or mode None leaves w untouched and draws nothing.
func Boltzmann(w []float64, order []int, mode Mode, temperature float64, rng Uniform) Report {
	var r Report
	if mode == None || temperature <= 0 {
		r.Kept = len(w)
		r.fill(w)
		return r
	}
	kept := make(stats.Float64Data, 0, len(order))
	for _, i := range order {
		if rng.Next() <= math.Exp(-mode.energy(w[i])/temperature) {
			w[i] = 0
			r.Pruned++
			continue
		}
		kept = append(kept, w[i])
	}
	r.Kept = len(kept)
	r.fill(kept)
	return r
}

func (r *Report) fill(kept []float64) {
	if len(kept) == 0 {
		return
	}
	const xmean = 0.
	data := stats.Float64Data(kept)
	r.Mean, _ = data.Mean()
	r.StdDev, _ = data.StandardDeviationPopulation()
	for _, x := range kept {
		r.Theta += (x - xmean) * (x - xmean)
	}
	r.Theta /= float64(len(kept))
	if r.Theta > 0 {
		r.Entropy = 0.5 * math.Log(2*math.Pi*math.E*r.Theta)
	}
}
