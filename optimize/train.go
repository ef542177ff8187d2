package optimize

import (
	"fmt"
	"io"
	"math"

	"go.dedis.ch/onet/v3/log"

	"github.com/fpclass/mlp/network"
	"github.com/fpclass/mlp/prune"
	"github.com/fpclass/mlp/report"
)

// Settings are the optimizer limits of one run.
type Settings struct {
	NiterMax        int
	Egoal           float64
	Gwgoal          float64
	LbfgsMem        int
	LbfgsGtol       float64
	ScgEarlystopPct float64
	Oklvl           float64

	Prune       prune.Mode
	Temperature float64
}

// Pruning reports whether Boltzmann pruning is active.
func (s Settings) Pruning() bool {
	return s.Prune != prune.None && s.Temperature > 0
}

// Result is the outcome of a training run.
type Result struct {
	Iterations    int
	Stop          StopCode
	Err           float64
	RMSErr        float64
	MinClassRight float64
	Pruned        int
	LastPrune     prune.Report
	// LbfgsFrom is the iteration at which L-BFGS took over from SCG, or -1
	// when it never ran.
	LbfgsFrom int
}

// Trainer minimizes the evaluator's error over the network weights.
type Trainer struct {
	Settings
	Eval    *network.Evaluator
	Monitor *Monitor
	// Rng feeds the pruning draws.
	Rng prune.Uniform
	// Out receives the checkpoint snapshots.
	Out io.Writer

	k      int
	order  []int
	result Result
}

// Run trains from the network's current weights and leaves the final
// weights in the network.
func (t *Trainer) Run() Result {
	net := t.Eval.Net
	w := append([]float64(nil), net.W...)
	t.k = 0
	t.result = Result{LbfgsFrom: -1}
	t.order = net.Order()

	g := make([]float64, len(w))
	e := t.Eval.ErrGrad(w, g)
	code, _ := t.check(w, e, g)

	visit := func(w []float64, e float64, g []float64) (StopCode, bool) {
		t.k++
		return t.check(w, e, g)
	}
	if code == Continue {
		scgIters := t.NiterMax
		if !t.Pruning() {
			scgIters = int(math.Ceil(t.ScgEarlystopPct / 100 * float64(t.NiterMax)))
		}
		log.Lvlf2("scaled conjugate gradient for up to %d iterations", scgIters)
		code = scg(t.Eval, w, scgIters, visit)
	}
	if code == Continue && !t.Pruning() && t.k < t.NiterMax {
		log.Lvlf2("switching to L-BFGS at iteration %d", t.k)
		t.result.LbfgsFrom = t.k
		if t.Out != nil {
			fmt.Fprintf(t.Out, "switching to L-BFGS at iteration %d\n", t.k)
		}
		code = lbfgs(t.Eval, w, t.NiterMax-t.k, t.LbfgsMem, t.LbfgsGtol, visit)
	}
	if code == Continue {
		code = IterationLimit
	}

	net.SetWeights(w)
	t.result.Stop = code
	t.result.Iterations = t.k
	log.Lvlf1("training stopped after %d iterations: %s", t.k, code)
	return t.result
}

// check applies the stop tests at the current iteration and prunes at
// checkpoints.
func (t *Trainer) check(w []float64, e float64, g []float64) (StopCode, bool) {
	rms := t.Eval.RMSErr(w, e)
	t.result.Err, t.result.RMSErr = e, rms
	log.Lvlf4("iter %d rms %g", t.k, rms)

	if rms <= t.Egoal {
		return ErrorGoal, false
	}
	if network.RMS(g) <= t.Gwgoal*network.RMS(w) {
		return GradientGoal, false
	}
	due := t.Monitor.Due(t.k)
	if due {
		tally := t.tally(w)
		code, minClass := t.Monitor.Record(t.k, rms, tally)
		t.result.MinClassRight = minClass
		t.snapshot(rms, tally)
		if code != Continue {
			return code, false
		}
	}
	if t.k >= t.NiterMax {
		return IterationLimit, false
	}
	if due && t.k > 0 && t.Pruning() {
		rep := prune.Boltzmann(w, t.order, t.Prune, t.Temperature, t.Rng)
		t.result.Pruned += rep.Pruned
		t.result.LastPrune = rep
		if t.Out != nil {
			fmt.Fprintf(t.Out, "  pruned %d kept %d mean %.6f theta %.6f entropy %.6f\n",
				rep.Pruned, rep.Kept, rep.Mean, rep.Theta, rep.Entropy)
		}
		return Continue, true
	}
	return Continue, false
}

func (t *Trainer) tally(w []float64) *report.Tally {
	class := t.Eval.Class()
	if class == nil {
		return nil
	}
	net := t.Eval.Net
	net.SetWeights(w)
	return report.TallyOutputs(t.Eval.Outputs(), net.Nouts, class, t.Eval.Weights(), t.Oklvl)
}

func (t *Trainer) snapshot(rms float64, tally *report.Tally) {
	if t.Out == nil {
		return
	}
	if tally == nil {
		fmt.Fprintf(t.Out, "iter %6d  rms %.6f\n", t.k, rms)
		return
	}
	fmt.Fprintf(t.Out, "iter %6d  rms %.6f  right %6.2f  wrong %6.2f  unknown %6.2f  minclass %6.2f\n",
		t.k, rms, tally.RightPct(), tally.WrongPct(), tally.UnknownPct(), tally.MinClassRightPct())
}
