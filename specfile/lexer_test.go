package specfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, text string) []Phrase {
	lx := NewLexer(strings.NewReader(text), nil)
	var out []Phrase
	for {
		p, err := lx.Next()
		require.NoError(t, err)
		out = append(out, p)
		if p.Kind == Finished {
			return out
		}
	}
}

func TestPairsAndNewRun(t *testing.T) {
	ps := collect(t, "a 1; newrun; b 2")
	require.Len(t, ps, 4)
	require.Equal(t, WordPair, ps[0].Kind)
	require.Equal(t, "a", ps[0].Name)
	require.Equal(t, "1", ps[0].Value)
	require.Equal(t, NewRun, ps[1].Kind)
	require.Equal(t, WordPair, ps[2].Kind)
	require.Equal(t, "b", ps[2].Name)
	require.Equal(t, "2", ps[2].Value)
	require.Equal(t, Finished, ps[3].Kind)
}

func TestIllegalPhrase(t *testing.T) {
	ps := collect(t, "badname 1 2 3")
	require.Equal(t, IllegalPhrase, ps[0].Kind)
	require.Equal(t, "badname 1 2 3", ps[0].Text)
	require.Equal(t, 1, ps[0].Line)

	ps = collect(t, "ninps 2\n\n  bogus\n")
	require.Equal(t, WordPair, ps[0].Kind)
	require.Equal(t, IllegalPhrase, ps[1].Kind)
	require.Equal(t, "bogus", ps[1].Text)
	require.Equal(t, 3, ps[1].Line)
}

func TestLoneLegalNameIsSkipped(t *testing.T) {
	ps := collect(t, "purpose\nnhids 4")
	require.Len(t, ps, 2)
	require.Equal(t, "nhids", ps[0].Name)
	require.Equal(t, 2, ps[0].Line)
}

func TestCommentsAndLineCounting(t *testing.T) {
	text := "/* header\n   spanning\n   lines */ ninps 3\n" +
		"nhids /* inline */ 5 ; nouts\t2\t\n" +
		"NEWRUN\n" +
		"seed 7 /* trailing\n*/\n" +
		"x y z"
	ps := collect(t, text)
	require.Len(t, ps, 7)

	require.Equal(t, Phrase{Kind: WordPair, Name: "ninps", Value: "3", Text: "ninps 3", Line: 3}, ps[0])
	require.Equal(t, "nhids", ps[1].Name)
	require.Equal(t, "5", ps[1].Value)
	require.Equal(t, 4, ps[1].Line)
	require.Equal(t, "nouts", ps[2].Name)
	require.Equal(t, 4, ps[2].Line)
	require.Equal(t, NewRun, ps[3].Kind)
	require.Equal(t, 5, ps[3].Line)
	require.Equal(t, "seed", ps[4].Name)
	require.Equal(t, 6, ps[4].Line)
	require.Equal(t, IllegalPhrase, ps[5].Kind)
	require.Equal(t, 8, ps[5].Line)
	require.Equal(t, Finished, ps[6].Kind)
}

func TestNewRunIsCaseSensitive(t *testing.T) {
	ps := collect(t, "NewRun")
	require.Equal(t, IllegalPhrase, ps[0].Kind)
}

func TestUnterminatedComment(t *testing.T) {
	ps := collect(t, "ninps 2\n/* never closed")
	require.Equal(t, WordPair, ps[0].Kind)
	require.Equal(t, IllegalPhrase, ps[1].Kind)
	require.Equal(t, Finished, ps[2].Kind)
}

func TestUnterminatedCommentKeepsPhrase(t *testing.T) {
	ps := collect(t, "purpose classifier\nninps 2 /* oops")
	require.Len(t, ps, 4)
	require.Equal(t, WordPair, ps[1].Kind)
	require.Equal(t, "ninps", ps[1].Name)
	require.Equal(t, "2", ps[1].Value)
	require.Equal(t, IllegalPhrase, ps[2].Kind)
	require.Equal(t, "unterminated comment", ps[2].Text)
	require.Equal(t, Finished, ps[3].Kind)
}

func TestFinishedIsSticky(t *testing.T) {
	lx := NewLexer(strings.NewReader(""), nil)
	for i := 0; i < 3; i++ {
		p, err := lx.Next()
		require.NoError(t, err)
		require.Equal(t, Finished, p.Kind)
	}
}
