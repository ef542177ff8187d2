package report

import (
	"fmt"
	"io"

	"github.com/fpclass/mlp/utils"
)

// Tally accumulates pattern-weighted right, wrong and unknown (rejected)
// totals, overall and per actual class.
type Tally struct {
	Right, Wrong, Unknown float64

	ClassRight, ClassWrong, ClassUnknown []float64
	ClassCount                           []int
}

// NewTally returns an empty tally for nouts classes.
func NewTally(nouts int) *Tally {
	return &Tally{
		ClassRight:   make([]float64, nouts),
		ClassWrong:   make([]float64, nouts),
		ClassUnknown: make([]float64, nouts),
		ClassCount:   make([]int, nouts),
	}
}

// Add records one pattern. A hypothesis whose confidence is below oklvl is
// counted as unknown.
func (t *Tally) Add(actual, hyp int, conf, weight, oklvl float64) {
	t.ClassCount[actual]++
	switch {
	case conf < oklvl:
		t.Unknown += weight
		t.ClassUnknown[actual] += weight
	case hyp == actual:
		t.Right += weight
		t.ClassRight[actual] += weight
	default:
		t.Wrong += weight
		t.ClassWrong[actual] += weight
	}
}

// TallyOutputs builds a tally from row-major output activations.
func TallyOutputs(acs []float64, nouts int, class []int, weights []float64, oklvl float64) *Tally {
	t := NewTally(nouts)
	for i, actual := range class {
		hyp, conf := utils.ArgMax(acs[i*nouts : (i+1)*nouts])
		t.Add(actual, hyp, conf, weights[i], oklvl)
	}
	return t
}

func (t *Tally) total() float64 {
	return t.Right + t.Wrong + t.Unknown
}

func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * part / whole
}

// RightPct is the weighted percentage of patterns classified right.
func (t *Tally) RightPct() float64 { return pct(t.Right, t.total()) }

// WrongPct is the weighted percentage of patterns classified wrong.
func (t *Tally) WrongPct() float64 { return pct(t.Wrong, t.total()) }

// UnknownPct is the weighted percentage of patterns rejected.
func (t *Tally) UnknownPct() float64 { return pct(t.Unknown, t.total()) }

// ClassRightPct returns the weighted right percentage within each class.
func (t *Tally) ClassRightPct() []float64 {
	out := make([]float64, len(t.ClassRight))
	for c := range out {
		out[c] = pct(t.ClassRight[c], t.ClassRight[c]+t.ClassWrong[c]+t.ClassUnknown[c])
	}
	return out
}

// MinClassRightPct is the smallest per-class right percentage over classes
// that have patterns.
func (t *Tally) MinClassRightPct() float64 {
	lo := 100.
	for c, p := range t.ClassRightPct() {
		if t.ClassCount[c] > 0 && p < lo {
			lo = p
		}
	}
	return lo
}

// Write prints the overall and per-class tally.
func (t *Tally) Write(w io.Writer, short []string) {
	fmt.Fprintf(w, "Tally: right %6.2f%%  wrong %6.2f%%  unknown %6.2f%%\n",
		t.RightPct(), t.WrongPct(), t.UnknownPct())
	fmt.Fprintf(w, " class  count   right%%   wrong%%  unknown%%\n")
	rp := t.ClassRightPct()
	for c := range t.ClassRight {
		tot := t.ClassRight[c] + t.ClassWrong[c] + t.ClassUnknown[c]
		fmt.Fprintf(w, " %5s %6d %8.2f %8.2f %9.2f\n", shortName(short, c), t.ClassCount[c],
			rp[c], pct(t.ClassWrong[c], tot), pct(t.ClassUnknown[c], tot))
	}
}

func shortName(short []string, c int) string {
	if c < len(short) {
		return short[c]
	}
	return fmt.Sprint(c)
}
