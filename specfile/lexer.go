package specfile

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// PhraseKind classifies what Lexer.Next found.
type PhraseKind int

const (
	WordPair PhraseKind = iota
	NewRun
	IllegalPhrase
	Finished
)

func (k PhraseKind) String() string {
	switch k {
	case WordPair:
		return "word pair"
	case NewRun:
		return "newrun"
	case IllegalPhrase:
		return "illegal phrase"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Phrase is one delimited unit of a specfile. Line is the 1-based line on
// which the phrase text starts.
type Phrase struct {
	Kind  PhraseKind
	Name  string
	Value string
	Text  string
	Line  int
}

type lexState int

const (
	atDelimiter lexState = iota
	inPhrase
	inComment
)

// Lexer splits a specfile into phrases. Phrases are delimited by start of
// input, ';', newline and end of input. /* */ comments are removed; newlines
// inside them count toward line numbers but do not end the phrase.
type Lexer struct {
	r     *bufio.Reader
	known func(string) bool
	line  int
	done  bool
	// unclosed is set when input ended inside a comment and the phrase
	// before it has been returned but the comment error has not.
	unclosed bool
}

// NewLexer returns a Lexer over r. known reports whether a single-word phrase
// is a legal parameter name (such phrases are skipped). A nil known uses the
// package parameter table.
func NewLexer(r io.Reader, known func(string) bool) *Lexer {
	if known == nil {
		known = func(name string) bool {
			_, ok := Lookup(name)
			return ok
		}
	}
	return &Lexer{r: bufio.NewReader(r), known: known, line: 1}
}

// Line returns the current line of the cursor.
func (lx *Lexer) Line() int {
	return lx.line
}

// Next returns the next phrase. After Finished every call returns Finished.
// The returned error is non-nil only for read failures.
func (lx *Lexer) Next() (Phrase, error) {
	if lx.unclosed {
		lx.unclosed = false
		return Phrase{Kind: IllegalPhrase, Text: "unterminated comment", Line: lx.line}, nil
	}
	if lx.done {
		return Phrase{Kind: Finished, Line: lx.line}, nil
	}

	var buf strings.Builder
	state := atDelimiter
	resume := atDelimiter
	start := lx.line

	for {
		r, _, err := lx.r.ReadRune()
		if err == io.EOF {
			lx.done = true
			p, ok := lx.classify(buf.String(), start)
			if state == inComment {
				if ok {
					lx.unclosed = true
					return p, nil
				}
				return Phrase{Kind: IllegalPhrase, Text: "unterminated comment", Line: lx.line}, nil
			}
			if ok {
				return p, nil
			}
			return Phrase{Kind: Finished, Line: lx.line}, nil
		}
		if err != nil {
			return Phrase{}, errors.Wrap(err, "reading specfile")
		}

		switch state {
		case inComment:
			if r == '\n' {
				lx.line++
				continue
			}
			if r == '*' {
				if lx.peek('/') {
					state = resume
				}
			}

		default:
			if r == '/' && lx.peek('*') {
				resume = state
				state = inComment
				buf.WriteByte(' ')
				continue
			}
			if r == ';' || r == '\n' {
				p, ok := lx.classify(buf.String(), start)
				if r == '\n' {
					lx.line++
				}
				if ok {
					return p, nil
				}
				buf.Reset()
				state = atDelimiter
				continue
			}
			if state == atDelimiter {
				if isBlank(r) {
					continue
				}
				state = inPhrase
				start = lx.line
			}
			buf.WriteRune(r)
		}
	}
}

// peek consumes the next rune if it equals want.
func (lx *Lexer) peek(want rune) bool {
	r, _, err := lx.r.ReadRune()
	if err != nil {
		return false
	}
	if r == want {
		return true
	}
	_ = lx.r.UnreadRune()
	return false
}

// classify turns raw phrase text into a Phrase; ok is false for phrases that
// are skipped (empty, or a lone legal parameter name).
func (lx *Lexer) classify(raw string, line int) (Phrase, bool) {
	text := strings.TrimFunc(raw, isBlank)
	if text == "" {
		return Phrase{}, false
	}
	words := strings.FieldsFunc(text, isBlank)
	switch len(words) {
	case 1:
		if words[0] == "newrun" || words[0] == "NEWRUN" {
			return Phrase{Kind: NewRun, Text: text, Line: line}, true
		}
		if lx.known(words[0]) {
			return Phrase{}, false
		}
	case 2:
		return Phrase{Kind: WordPair, Name: words[0], Value: words[1], Text: text, Line: line}, true
	}
	return Phrase{Kind: IllegalPhrase, Text: text, Line: line}, true
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}
