package prune

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fpclass/mlp/uni"
)

// fixed returns the same draw forever.
type fixed float64

func (f fixed) Next() float64 { return float64(f) }

// counting records how many draws were taken.
type counting struct{ n int }

func (c *counting) Next() float64 { c.n++; return 0.5 }

func TestZeroTemperatureIsNoOp(t *testing.T) {
	w := []float64{0.1, -0.2, 0.3}
	rng := &counting{}
	r := Boltzmann(w, []int{0, 1, 2}, Abs, 0, rng)
	require.Equal(t, []float64{0.1, -0.2, 0.3}, w)
	require.Equal(t, 0, rng.n)
	require.Equal(t, 3, r.Kept)
	require.Equal(t, 0, r.Pruned)

	Boltzmann(w, []int{0, 1, 2}, None, 1, rng)
	require.Equal(t, 0, rng.n)
}

func TestAcceptanceRule(t *testing.T) {
	// T=1, u=0.5: abs prunes |w| <= ln 2, square prunes w² <= ln 2.
	w := []float64{0.5, -1, 0.6, 2}
	r := Boltzmann(w, []int{0, 1, 2, 3}, Abs, 1, fixed(0.5))
	require.Equal(t, []float64{0, -1, 0, 2}, w)
	require.Equal(t, 2, r.Pruned)
	require.Equal(t, 2, r.Kept)
	require.InDelta(t, 0.5, r.Mean, 1e-12)
	require.InDelta(t, 2.5, r.Theta, 1e-12)
	require.InDelta(t, 0.5*math.Log(2*math.Pi*math.E*2.5), r.Entropy, 1e-12)

	w = []float64{0.5, -1, 0.6, 2}
	r = Boltzmann(w, []int{0, 1, 2, 3}, Square, 1, fixed(0.5))
	require.Equal(t, []float64{0, -1, 0, 2}, w)
	require.Equal(t, 2, r.Pruned)
}

func TestTraversalOrderDrivesDraws(t *testing.T) {
	w1 := []float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.3}
	w2 := append([]float64(nil), w1...)
	order := []int{5, 4, 3, 2, 1, 0}
	Boltzmann(w1, order, Abs, 0.5, uni.New(7))

	// the same draws applied in reverse memory order
	rng := uni.New(7)
	for _, i := range order {
		if rng.Next() <= math.Exp(-math.Abs(w2[i])/0.5) {
			w2[i] = 0
		}
	}
	require.Equal(t, w2, w1)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("square_prune")
	require.NoError(t, err)
	require.Equal(t, Square, m)
	_, err = ParseMode("prune")
	require.Error(t, err)
}
