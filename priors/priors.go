// Package priors computes the per-pattern weights that make the training
// error reflect the desired class priors.
package priors

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"go.dedis.ch/onet/v3/log"

	"github.com/fpclass/mlp/patterns"
	"github.com/fpclass/mlp/specfile"
	"github.com/fpclass/mlp/utils"
)

// Source gathers what the priors modes need. Class and Short are nil for
// fitter runs.
type Source struct {
	Mode           string
	Npats          int
	Class          []int
	Short          []string
	ClassWtsFile   string
	PatternWtsFile string
}

// ReadClassWeights reads a "short weight" line per class and returns the
// weights in class order. A line naming no class, or a class with no line,
// is an error.
func ReadClassWeights(path string, short []string) ([]float64, error) {
	lines, err := utils.LoadLines(path)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(short))
	for c, s := range short {
		idx[patterns.PadShort(s)] = c
	}
	out := make([]float64, len(short))
	seen := make([]bool, len(short))
	for _, l := range lines {
		if len(l.Fields) != 2 {
			return nil, errors.Errorf("%s:%d: want \"short weight\", got %d fields", path, l.Num, len(l.Fields))
		}
		c, ok := idx[patterns.PadShort(l.Fields[0])]
		if !ok {
			return nil, errors.Wrapf(patterns.ErrClassMismatch, "%s:%d: class %q", path, l.Num, l.Fields[0])
		}
		v, err := strconv.ParseFloat(l.Fields[1], 64)
		if err != nil || v < 0 {
			return nil, errors.Errorf("%s:%d: bad class weight %q", path, l.Num, l.Fields[1])
		}
		if seen[c] {
			return nil, errors.Errorf("%s:%d: class %q given twice", path, l.Num, l.Fields[0])
		}
		out[c], seen[c] = v, true
	}
	for c, ok := range seen {
		if !ok {
			return nil, errors.Wrapf(patterns.ErrClassMismatch, "%s: no weight for class %q", path, short[c])
		}
	}
	return out, nil
}

// ReadPatternWeights reads one non-negative weight per pattern.
func ReadPatternWeights(path string, npats int) ([]float64, error) {
	w, err := utils.LoadFloats(path)
	if err != nil {
		return nil, err
	}
	if len(w) != npats {
		return nil, errors.Wrapf(patterns.ErrShortFile, "%s: %d pattern weights, want %d", path, len(w), npats)
	}
	for i, v := range w {
		if v < 0 {
			return nil, errors.Errorf("%s: pattern %d has negative weight %g", path, i+1, v)
		}
	}
	return w, nil
}

// ComputeNewPriors rescales the given class priors by the empirical class
// frequencies and renormalizes them, so that weighting every pattern by its
// class's result gives each class its given share of the total. The given,
// empirical and adjusted priors are written to w.
func ComputeNewPriors(w io.Writer, given []float64, counts []int, short []string) ([]float64, error) {
	npats := 0
	for _, n := range counts {
		npats += n
	}
	gsum := 0.
	for _, g := range given {
		gsum += g
	}
	if gsum <= 0 || npats == 0 {
		return nil, errors.New("class priors sum to zero")
	}

	adj := make([]float64, len(given))
	sum := 0.
	for c, g := range given {
		if counts[c] == 0 {
			log.Warnf("class %q has no patterns; its prior is dropped", short[c])
			continue
		}
		adj[c] = (g / gsum) / (float64(counts[c]) / float64(npats))
		sum += adj[c]
	}
	if sum == 0 {
		return nil, errors.New("no class with both a prior and patterns")
	}

	fmt.Fprintf(w, "Class priors:\n   class      given  empirical   adjusted\n")
	for c := range adj {
		adj[c] /= sum
		fmt.Fprintf(w, "  %6s %10.6f %10.6f %10.6f\n", short[c], given[c]/gsum,
			float64(counts[c])/float64(npats), adj[c])
	}
	return adj, nil
}

// FinalPatternWeights returns one weight per pattern for the chosen priors
// mode. The weights sum to 1.
func FinalPatternWeights(w io.Writer, src Source) ([]float64, error) {
	n := float64(src.Npats)
	out := make([]float64, src.Npats)

	var classPrior, patWts []float64
	if src.Mode == specfile.PriorsClass || src.Mode == specfile.PriorsBoth {
		if src.Class == nil {
			return nil, errors.Errorf("priors %s needs class labels", src.Mode)
		}
		given, err := ReadClassWeights(src.ClassWtsFile, src.Short)
		if err != nil {
			return nil, err
		}
		counts := make([]int, len(src.Short))
		for _, c := range src.Class {
			counts[c]++
		}
		if classPrior, err = ComputeNewPriors(w, given, counts, src.Short); err != nil {
			return nil, err
		}
	}
	if src.Mode == specfile.PriorsPattern || src.Mode == specfile.PriorsBoth {
		var err error
		if patWts, err = ReadPatternWeights(src.PatternWtsFile, src.Npats); err != nil {
			return nil, err
		}
	}

	for i := range out {
		v := 1 / n
		if classPrior != nil {
			v *= classPrior[src.Class[i]]
		}
		if patWts != nil {
			v *= patWts[i]
		}
		out[i] = v
	}
	if err := normalize(out); err != nil {
		return nil, err
	}
	log.Lvlf3("priors %s: %d pattern weights", src.Mode, len(out))
	return out, nil
}

func normalize(v []float64) error {
	sum := 0.
	for _, x := range v {
		sum += x
	}
	if sum <= 0 {
		return errors.New("pattern weights sum to zero")
	}
	for i := range v {
		v[i] /= sum
	}
	return nil
}
