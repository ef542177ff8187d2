package specfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.dedis.ch/onet/v3/log"
)

// ConfigError is one configuration problem within a run-block.
type ConfigError struct {
	File  string
	Block int
	Line  int
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s:%d: run %d: %v", e.File, e.Line, e.Block, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors see the underlying sentinel.
func (e *ConfigError) Cause() error { return e.Err }

// BlockErrors is every problem found in one run-block.
type BlockErrors []*ConfigError

func (be BlockErrors) Error() string {
	lines := make([]string, len(be))
	for i, e := range be {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Block is one run-block of a specfile.
type Block struct {
	Index     int
	StartLine int
	Store     *Store
	Config    *Config
	Errors    BlockErrors
}

// OK reports whether the block resolved without errors.
func (b *Block) OK() bool {
	return len(b.Errors) == 0 && b.Config != nil
}

// Err returns the block's errors as a single error, or nil.
func (b *Block) Err() error {
	if len(b.Errors) == 0 {
		return nil
	}
	return b.Errors
}

// Reader yields the run-blocks of a specfile one at a time.
type Reader struct {
	lx    *Lexer
	file  string
	index int
	done  bool
}

// NewReader returns a block reader over r; file names the source in
// diagnostics.
func NewReader(r io.Reader, file string) *Reader {
	return &Reader{lx: NewLexer(r, nil), file: file}
}

// Next returns the next non-empty run-block, or nil at end of input.
// Configuration problems are recorded in the block, never returned; the
// error is reserved for read failures.
func (rd *Reader) Next() (*Block, error) {
	for !rd.done {
		b := &Block{Index: rd.index + 1, StartLine: rd.lx.Line(), Store: NewStore()}
		addErr := func(line int, err error) {
			b.Errors = append(b.Errors, &ConfigError{File: rd.file, Block: b.Index, Line: line, Err: err})
		}

	phrases:
		for {
			p, err := rd.lx.Next()
			if err != nil {
				return nil, err
			}
			switch p.Kind {
			case Finished:
				rd.done = true
				break phrases
			case NewRun:
				break phrases
			case IllegalPhrase:
				addErr(p.Line, errors.Errorf("illegal phrase %q", p.Text))
			case WordPair:
				if err := b.Store.Match(p.Name, p.Value, p.Line); err != nil {
					addErr(p.Line, err)
				}
			}
		}

		if b.Store.Len() == 0 && len(b.Errors) == 0 {
			continue
		}
		rd.index++

		cfg, errs := Resolve(b.Store)
		for _, err := range errs {
			addErr(b.StartLine, err)
		}
		b.Config = cfg
		log.Lvlf3("%s: run %d has %d settings, %d errors", rd.file, b.Index, b.Store.Len(), len(b.Errors))
		return b, nil
	}
	return nil, nil
}

// ReadFile reads every run-block of the specfile at path.
func ReadFile(path string) ([]*Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening specfile %s", path)
	}
	defer f.Close()

	var blocks []*Block
	rd := NewReader(f, path)
	for {
		b, err := rd.Next()
		if err != nil {
			return nil, errors.Wrapf(err, "reading specfile %s", path)
		}
		if b == nil {
			return blocks, nil
		}
		blocks = append(blocks, b)
	}
}
