package report

import (
	"fmt"
	"io"

	"github.com/fpclass/mlp/utils"
)

// thresholdSegments lists [start, stop, step) for each density segment of
// the threshold table; the last segment includes its stop value.
var thresholdSegments = [][3]float64{
	{0, .5, .05},
	{.5, .9, .02},
	{.9, .99, .005},
	{.99, .999, .0005},
}

// Thresholds returns the confidence thresholds used by the correct-vs-rejected
// table, increasing and finer near 1.
func Thresholds() []float64 {
	var out []float64
	for s, seg := range thresholdSegments {
		n := int((seg[1]-seg[0])/seg[2] + .5)
		if s == len(thresholdSegments)-1 {
			n++
		}
		for i := 0; i < n; i++ {
			out = append(out, seg[0]+float64(i)*seg[2])
		}
	}
	return out
}

// CVR accumulates weighted right, wrong and unknown totals at every
// threshold of the table.
type CVR struct {
	Thresholds            []float64
	Right, Wrong, Unknown []float64
}

// NewCVR returns a zeroed table.
func NewCVR() *CVR {
	th := Thresholds()
	return &CVR{
		Thresholds: th,
		Right:      make([]float64, len(th)),
		Wrong:      make([]float64, len(th)),
		Unknown:    make([]float64, len(th)),
	}
}

// Add records one pattern at every threshold: accepted when conf reaches
// the threshold, unknown otherwise.
func (c *CVR) Add(actual, hyp int, conf, weight float64) {
	for i, th := range c.Thresholds {
		switch {
		case conf < th:
			c.Unknown[i] += weight
		case hyp == actual:
			c.Right[i] += weight
		default:
			c.Wrong[i] += weight
		}
	}
}

// AddOutputs records every pattern of a row-major activation matrix.
func (c *CVR) AddOutputs(acs []float64, nouts int, class []int, weights []float64) {
	for i, actual := range class {
		hyp, conf := utils.ArgMax(acs[i*nouts : (i+1)*nouts])
		c.Add(actual, hyp, conf, weights[i])
	}
}

// Write prints the table as percentages of the total weight.
func (c *CVR) Write(w io.Writer) {
	fmt.Fprintf(w, "Correct vs. rejected table\n")
	fmt.Fprintf(w, " thresh   right%%  unknown%%   wrong%%  right/accepted%%\n")
	for i, th := range c.Thresholds {
		tot := c.Right[i] + c.Wrong[i] + c.Unknown[i]
		fmt.Fprintf(w, " %6.4f %8.2f %9.2f %8.2f %16.2f\n", th,
			pct(c.Right[i], tot), pct(c.Unknown[i], tot), pct(c.Wrong[i], tot),
			pct(c.Right[i], c.Right[i]+c.Wrong[i]))
	}
}
