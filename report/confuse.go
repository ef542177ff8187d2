package report

import (
	"fmt"
	"io"

	"github.com/fpclass/mlp/utils"
)

// Confusion is a square matrix indexed by [actual][hypothesis]. Raw holds
// pattern counts and Weighted the pattern-weight sums.
type Confusion struct {
	Raw      [][]int
	Weighted [][]float64
}

// NewConfusion returns an empty nouts×nouts matrix.
func NewConfusion(nouts int) *Confusion {
	c := &Confusion{Raw: make([][]int, nouts), Weighted: make([][]float64, nouts)}
	for i := range c.Raw {
		c.Raw[i] = make([]int, nouts)
		c.Weighted[i] = make([]float64, nouts)
	}
	return c
}

// Confuse builds the matrix from row-major activations. Every pattern is
// counted regardless of its confidence.
func Confuse(acs []float64, nouts int, class []int, weights []float64) *Confusion {
	c := NewConfusion(nouts)
	hyps := utils.ClassifyRows(acs, nouts)
	for i, actual := range class {
		hyp := hyps[i]
		c.Raw[actual][hyp]++
		c.Weighted[actual][hyp] += weights[i]
	}
	return c
}

// Write prints both matrices with short class names as row and column
// labels.
func (c *Confusion) Write(w io.Writer, short []string) {
	n := len(c.Raw)
	header := func(title string) {
		fmt.Fprintf(w, "%s (rows actual, columns hypothesis)\n   ", title)
		for j := 0; j < n; j++ {
			fmt.Fprintf(w, " %6s", shortName(short, j))
		}
		fmt.Fprintln(w)
	}
	header("Confusion matrix, counts")
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%3s", shortName(short, i))
		for j := 0; j < n; j++ {
			fmt.Fprintf(w, " %6d", c.Raw[i][j])
		}
		fmt.Fprintln(w)
	}
	header("Confusion matrix, weighted %")
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%3s", shortName(short, i))
		for j := 0; j < n; j++ {
			fmt.Fprintf(w, " %6.2f", 100*c.Weighted[i][j])
		}
		fmt.Fprintln(w)
	}
}
