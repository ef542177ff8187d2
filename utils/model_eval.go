package utils

import "gonum.org/v1/gonum/floats"

// ArgMax returns the index of the largest value of v and that value.
// Ties go to the lowest index.
func ArgMax(v []float64) (int, float64) {
	i := floats.MaxIdx(v)
	return i, v[i]
}

// ClassifyRows returns the argmax of every row of a row-major matrix with
// ncols columns.
func ClassifyRows(scores []float64, ncols int) []int {
	class := make([]int, len(scores)/ncols)
	for r := range class {
		class[r], _ = ArgMax(scores[r*ncols : (r+1)*ncols])
	}
	return class
}

// ComputeAccuracy returns the percentage of c equal to y.
func ComputeAccuracy(c []int, y []int) float64 {
	if len(y) == 0 {
		return 0
	}
	accuracy := 0.
	for i := range y {
		if c[i] == y[i] {
			accuracy++
		}
	}
	return 100 * accuracy / float64(len(y))
}
