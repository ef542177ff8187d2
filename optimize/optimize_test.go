package optimize

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/fpclass/mlp/activation"
	"github.com/fpclass/mlp/errfunc"
	"github.com/fpclass/mlp/network"
	"github.com/fpclass/mlp/prune"
	"github.com/fpclass/mlp/report"
	"github.com/fpclass/mlp/uni"
)

func fixedTally() *report.Tally {
	t := report.NewTally(2)
	t.Add(0, 0, 0.9, 0.5, 0)
	t.Add(1, 0, 0.9, 0.5, 0)
	return t
}

func TestMonitorKmin(t *testing.T) {
	require.Equal(t, 50, NewMonitor(10, 1, 1, false).Kmin())
	require.Equal(t, 80, NewMonitor(40, 1, 1, false).Kmin())
	require.Equal(t, 100, NewMonitor(10, 1, 1, true).Kmin())
	require.Equal(t, 120, NewMonitor(60, 1, 1, true).Kmin())
}

func TestMonitorNoImprovementAtKmin(t *testing.T) {
	m := NewMonitor(10, 1.0, 1e9, false)
	rms := 1.0
	for k := 0; k <= 100; k++ {
		if !m.Due(k) {
			continue
		}
		code, minClass := m.Record(k, rms, fixedTally())
		require.Equal(t, 0., minClass)
		if k < m.Kmin() {
			require.Equal(t, Continue, code, "k=%d", k)
		} else {
			require.Equal(t, NoImprovement, code, "k=%d", k)
			require.Equal(t, 50, k)
			return
		}
		rms *= 0.9
	}
	t.Fatal("monitor never stopped")
}

func TestMonitorErrorSlow(t *testing.T) {
	m := NewMonitor(10, 0.99, 0, false)
	for k := 0; k < 50; k += 10 {
		code, _ := m.Record(k, 1, nil)
		require.Equal(t, Continue, code)
	}
	code, _ := m.Record(50, 0.995, nil)
	require.Equal(t, ErrorSlow, code)

	m = NewMonitor(10, 0.99, 0, false)
	for k := 0; k < 50; k += 10 {
		m.Record(k, 1, nil)
	}
	code, _ = m.Record(50, 0.5, nil)
	require.Equal(t, Continue, code)
}

func TestMonitorImprovementContinues(t *testing.T) {
	m := NewMonitor(10, 1, 5, false)
	for k := 0; k <= 80; k += 10 {
		tl := report.NewTally(1)
		tl.Add(0, 0, 1, float64(k+10), 0)
		tl.Add(0, 1, 1, 100, 0)
		code, _ := m.Record(k, 1, tl)
		require.Equal(t, Continue, code, "k=%d", k)
	}
}

func TestStopCodeString(t *testing.T) {
	require.Equal(t, "continue", Continue.String())
	require.Contains(t, NoImprovement.String(), "nokdel")
	require.Equal(t, "unknown", StopCode(42).String())
}

// quadratic is ½Σc_i(w_i-m_i)².
type quadratic struct{ c, m []float64 }

func (q quadratic) ErrGrad(w, grad []float64) float64 {
	e := 0.
	for i := range w {
		d := w[i] - q.m[i]
		e += 0.5 * q.c[i] * d * d
		if grad != nil {
			grad[i] = q.c[i] * d
		}
	}
	return e
}

var quad = quadratic{c: []float64{1, 10, 100, 3}, m: []float64{1, -2, 0.5, 3}}

func untilSmall(w []float64, e float64, g []float64) (StopCode, bool) {
	if floats.Norm(g, 2) < 1e-7 {
		return GradientGoal, false
	}
	return Continue, false
}

func TestSCGQuadratic(t *testing.T) {
	w := make([]float64, 4)
	code := scg(quad, w, 500, untilSmall)
	require.Equal(t, GradientGoal, code)
	require.InDeltaSlice(t, quad.m, w, 1e-6)
}

func TestLBFGSQuadratic(t *testing.T) {
	w := make([]float64, 4)
	code := lbfgs(quad, w, 500, 5, 1e-12, untilSmall)
	require.Equal(t, GradientGoal, code)
	require.InDeltaSlice(t, quad.m, w, 1e-6)
}

func TestSCGBudget(t *testing.T) {
	w := make([]float64, 4)
	n := 0
	code := scg(quad, w, 3, func([]float64, float64, []float64) (StopCode, bool) {
		n++
		return Continue, false
	})
	require.Equal(t, Continue, code)
	require.Equal(t, 3, n)
}

// two well separated clusters in the plane.
func separable() (*mat.Dense, []int, []float64) {
	rng := uni.New(3)
	x := mat.NewDense(20, 2, nil)
	class := make([]int, 20)
	wts := make([]float64, 20)
	for p := 0; p < 20; p++ {
		c := p % 2
		off := -1.
		if c == 1 {
			off = 1
		}
		x.Set(p, 0, off+rng.Range(-0.5, 0.5))
		x.Set(p, 1, off+rng.Range(-0.5, 0.5))
		class[p] = c
		wts[p] = 1. / 20
	}
	return x, class, wts
}

func newTrainer(t *testing.T, s Settings, regfac float64) *Trainer {
	x, class, wts := separable()
	net := network.New(network.Topology{Ninps: 2, Nhids: 3, Nouts: 2}, activation.Sigmoid, activation.Sigmoid)
	net.Init(uni.New(17))
	ev, err := network.NewEvaluator(net, errfunc.MSE{}, regfac, x, class, nil, wts)
	require.NoError(t, err)
	return &Trainer{
		Settings: s,
		Eval:     ev,
		Monitor:  NewMonitor(10, 10, -1e9, s.Pruning()),
		Rng:      uni.New(99),
		Out:      &bytes.Buffer{},
	}
}

func TestTrainerReducesError(t *testing.T) {
	tr := newTrainer(t, Settings{NiterMax: 300, Egoal: 0.05, LbfgsMem: 5, LbfgsGtol: 1e-8, ScgEarlystopPct: 50, Oklvl: 0}, 0)
	w0 := append([]float64(nil), tr.Eval.Net.W...)
	e0 := tr.Eval.RMSErr(w0, tr.Eval.ErrGrad(w0, nil))

	res := tr.Run()
	require.NotEqual(t, Continue, res.Stop)
	require.LessOrEqual(t, res.Iterations, 300)
	require.Less(t, res.RMSErr, e0)

	acs := tr.Eval.Outputs()
	tl := report.TallyOutputs(acs, 2, tr.Eval.Class(), tr.Eval.Weights(), 0)
	require.Greater(t, tl.RightPct(), 90.)
	require.Contains(t, tr.Out.(*bytes.Buffer).String(), "iter      0")
}

func TestTrainerIterationLimit(t *testing.T) {
	tr := newTrainer(t, Settings{NiterMax: 0, LbfgsMem: 5, ScgEarlystopPct: 60}, 0)
	w0 := append([]float64(nil), tr.Eval.Net.W...)
	res := tr.Run()
	require.Equal(t, IterationLimit, res.Stop)
	require.Equal(t, 0, res.Iterations)
	require.Equal(t, w0, tr.Eval.Net.W)
}

func TestTrainerPruning(t *testing.T) {
	s := Settings{NiterMax: 120, LbfgsMem: 5, ScgEarlystopPct: 10, Prune: prune.Square, Temperature: 0.01}
	tr := newTrainer(t, s, 0.01)
	res := tr.Run()
	require.Equal(t, 100, tr.Monitor.Kmin())
	require.Equal(t, IterationLimit, res.Stop)
	require.Equal(t, 120, res.Iterations)
	require.Contains(t, tr.Out.(*bytes.Buffer).String(), "pruned")
	require.Equal(t, -1, res.LbfgsFrom)
	require.NotContains(t, tr.Out.(*bytes.Buffer).String(), "L-BFGS")
}

func TestTrainerHandsOffToLBFGS(t *testing.T) {
	s := Settings{NiterMax: 40, LbfgsMem: 5, ScgEarlystopPct: 25}
	tr := newTrainer(t, s, 0.001)
	res := tr.Run()
	require.Equal(t, 10, res.LbfgsFrom)
	require.Greater(t, res.Iterations, 10)
	require.Contains(t, tr.Out.(*bytes.Buffer).String(), "switching to L-BFGS at iteration 10\n")

	// a fractional share rounds up
	s.ScgEarlystopPct = 21
	tr = newTrainer(t, s, 0.001)
	require.Equal(t, 9, tr.Run().LbfgsFrom)
}

func TestTrainerGradientGoal(t *testing.T) {
	tr := newTrainer(t, Settings{NiterMax: 100, Gwgoal: 1e9, LbfgsMem: 5, ScgEarlystopPct: 50}, 0)
	w0 := append([]float64(nil), tr.Eval.Net.W...)
	res := tr.Run()
	require.Equal(t, GradientGoal, res.Stop)
	require.Equal(t, 0, res.Iterations)
	require.Equal(t, -1, res.LbfgsFrom)
	require.Equal(t, w0, tr.Eval.Net.W)
}

func TestTrainerErrorSlow(t *testing.T) {
	tr := newTrainer(t, Settings{NiterMax: 300, LbfgsMem: 5, ScgEarlystopPct: 50}, 0)
	tr.Monitor = NewMonitor(10, 1e-9, -1e9, false)
	res := tr.Run()
	require.Equal(t, ErrorSlow, res.Stop)
	require.Equal(t, tr.Monitor.Kmin(), res.Iterations)
	require.Equal(t, 50, res.Iterations)
	require.Equal(t, -1, res.LbfgsFrom)
}
