package report

import (
	"fmt"
	"io"

	"github.com/montanaflynn/stats"
)

// ClassSummary condenses the per-class right percentages of a tally.
type ClassSummary struct {
	Min, Mean, Median float64
}

// Summarize computes the spread of per-class right percentages over the
// classes that have patterns.
func (t *Tally) Summarize() ClassSummary {
	var data stats.Float64Data
	for c, p := range t.ClassRightPct() {
		if t.ClassCount[c] > 0 {
			data = append(data, p)
		}
	}
	if len(data) == 0 {
		return ClassSummary{}
	}
	var s ClassSummary
	s.Min, _ = data.Min()
	s.Mean, _ = data.Mean()
	s.Median, _ = data.Median()
	return s
}

// WriteSummary prints the tally followed by the per-class spread.
func (t *Tally) WriteSummary(w io.Writer, short []string) {
	t.Write(w, short)
	s := t.Summarize()
	fmt.Fprintf(w, "Per-class right%%: min %6.2f  mean %6.2f  median %6.2f\n", s.Min, s.Mean, s.Median)
}
