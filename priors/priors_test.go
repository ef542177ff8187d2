package priors

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/fpclass/mlp/patterns"
	"github.com/fpclass/mlp/specfile"
)

// class 0 has three patterns, class 1 one.
var (
	class = []int{0, 0, 0, 1}
	short = []string{"A", "BB"}
)

func writeFile(t *testing.T, name, text string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func sum(v []float64) float64 {
	s := 0.
	for _, x := range v {
		s += x
	}
	return s
}

func TestAllModesSumToOne(t *testing.T) {
	cw := writeFile(t, "cw", " A 0.5\nBB 0.5\n")
	pw := writeFile(t, "pw", "1\n2\n1\n4\n")
	for _, mode := range []string{specfile.PriorsAllSame, specfile.PriorsClass, specfile.PriorsPattern, specfile.PriorsBoth} {
		w, err := FinalPatternWeights(&bytes.Buffer{}, Source{
			Mode: mode, Npats: 4, Class: class, Short: short,
			ClassWtsFile: cw, PatternWtsFile: pw,
		})
		require.NoError(t, err, mode)
		require.Len(t, w, 4)
		require.InDelta(t, 1, sum(w), 1e-5, mode)
	}
}

func TestClassModeEqualizesClasses(t *testing.T) {
	cw := writeFile(t, "cw", "A 1\nBB 1\n")
	var rep bytes.Buffer
	w, err := FinalPatternWeights(&rep, Source{Mode: specfile.PriorsClass, Npats: 4, Class: class, Short: short, ClassWtsFile: cw})
	require.NoError(t, err)
	// equal given priors: each class carries half the total weight
	require.InDelta(t, 0.5, w[0]+w[1]+w[2], 1e-12)
	require.InDelta(t, 0.5, w[3], 1e-12)
	require.Contains(t, rep.String(), "Class priors")
}

func TestComputeNewPriors(t *testing.T) {
	var rep bytes.Buffer
	adj, err := ComputeNewPriors(&rep, []float64{3, 1}, []int{3, 1}, short)
	require.NoError(t, err)
	// given equals empirical, so the adjustment is uniform
	require.InDelta(t, 0.5, adj[0], 1e-12)
	require.InDelta(t, 0.5, adj[1], 1e-12)

	adj, err = ComputeNewPriors(&rep, []float64{1, 1}, []int{4, 0}, short)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0}, adj)
}

func TestPatternMode(t *testing.T) {
	pw := writeFile(t, "pw", "1\n1\n1\n5\n")
	w, err := FinalPatternWeights(&bytes.Buffer{}, Source{Mode: specfile.PriorsPattern, Npats: 4, PatternWtsFile: pw})
	require.NoError(t, err)
	require.InDelta(t, 0.625, w[3], 1e-12)
}

func TestClassWeightMismatch(t *testing.T) {
	_, err := ReadClassWeights(writeFile(t, "cw", "A 1\nZZ 1\nBB 1\n"), short)
	require.True(t, errors.Is(err, patterns.ErrClassMismatch))

	_, err = ReadClassWeights(writeFile(t, "cw", "A 1\n"), short)
	require.True(t, errors.Is(err, patterns.ErrClassMismatch))

	_, err = ReadClassWeights(writeFile(t, "cw", "A 1\nA 2\nBB 1\n"), short)
	require.Error(t, err)
}

func TestPatternWeightCount(t *testing.T) {
	_, err := ReadPatternWeights(writeFile(t, "pw", "1\n2\n"), 4)
	require.True(t, errors.Is(err, patterns.ErrShortFile))
}
