// Package optimize trains the network weights: a scaled conjugate gradient
// phase, an optional L-BFGS refinement phase, pruning between checkpoints,
// and the convergence monitor that decides when to stop.
package optimize

import (
	"github.com/fpclass/mlp/report"
)

// StopCode says why training ended. Continue means it has not.
type StopCode int

const (
	Continue StopCode = iota
	ErrorGoal
	GradientGoal
	ErrorSlow
	NoImprovement
	IterationLimit
	LineSearchFailed
)

var stopReasons = [...]string{
	Continue:         "continue",
	ErrorGoal:        "RMS error reached egoal",
	GradientGoal:     "RMS gradient reached gwgoal times RMS weight",
	ErrorSlow:        "RMS error not decreasing fast enough (errdel)",
	NoImprovement:    "right and right-minus-wrong not improving (nokdel)",
	IterationLimit:   "niter_max iterations used",
	LineSearchFailed: "line search could not decrease the error",
}

func (c StopCode) String() string {
	if c < 0 || int(c) >= len(stopReasons) {
		return "unknown"
	}
	return stopReasons[c]
}

const (
	// NNOT is the number of checkpoints over which some improvement of at
	// least nokdel is required.
	NNOT = 3
	// KminFloor is the earliest iteration at which the monitor may stop.
	KminFloor = 50
	// KminPruning is the floor used instead when pruning is active.
	KminPruning = 100
)

type checkpoint struct {
	k          int
	rms        float64
	right, rmw float64
	hasTally   bool
}

// Monitor watches the RMS error and the weighted tally every nfreq
// iterations.
type Monitor struct {
	nfreq  int
	kmin   int
	errdel float64
	nokdel float64
	hist   []checkpoint
}

// NewMonitor returns a monitor; kmin is the largest of 2·nfreq, KminFloor
// and, when pruning, KminPruning.
func NewMonitor(nfreq int, errdel, nokdel float64, pruning bool) *Monitor {
	kmin := 2 * nfreq
	if kmin < KminFloor {
		kmin = KminFloor
	}
	if pruning && kmin < KminPruning {
		kmin = KminPruning
	}
	return &Monitor{nfreq: nfreq, kmin: kmin, errdel: errdel, nokdel: nokdel}
}

// Kmin is the first iteration at which the monitor may stop training.
func (m *Monitor) Kmin() int { return m.kmin }

// Due reports whether iteration k is a checkpoint.
func (m *Monitor) Due(k int) bool { return k%m.nfreq == 0 }

// Record stores the checkpoint at iteration k and returns the resulting stop
// code and the minimum per-class right percentage. tally is nil for fitters,
// which disables the nokdel test.
func (m *Monitor) Record(k int, rms float64, tally *report.Tally) (StopCode, float64) {
	cp := checkpoint{k: k, rms: rms}
	minClass := 0.
	if tally != nil {
		cp.hasTally = true
		cp.right = tally.RightPct()
		cp.rmw = cp.right - tally.WrongPct()
		minClass = tally.MinClassRightPct()
	}
	m.hist = append(m.hist, cp)
	n := len(m.hist)
	if n == 1 || k < m.kmin {
		return Continue, minClass
	}

	if rms > m.errdel*m.hist[n-2].rms {
		return ErrorSlow, minClass
	}
	if cp.hasTally && n > NNOT {
		old := m.hist[n-1-NNOT]
		if cp.right-old.right < m.nokdel && cp.rmw-old.rmw < m.nokdel {
			return NoImprovement, minClass
		}
	}
	return Continue, minClass
}
