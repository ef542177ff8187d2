package driver

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/fpclass/mlp/report"
	"github.com/fpclass/mlp/specfile"
)

// ErrBadBlocks is returned by the scan command when one or more run-blocks
// have configuration errors.
var ErrBadBlocks = errors.New("run-blocks with errors")

// Scan checks every run-block of the specfile at path without running any,
// writes each block's diagnostics to w and returns the number of blocks
// with errors.
func Scan(path string, w io.Writer) (int, error) {
	blocks, err := specfile.ReadFile(path)
	if err != nil {
		return 0, err
	}
	bad := 0
	for _, b := range blocks {
		if b.OK() {
			fmt.Fprintf(w, "%s: run %d (line %d): ok\n", path, b.Index, b.StartLine)
			continue
		}
		bad++
		fmt.Fprintf(w, "%s: run %d (line %d): %d errors\n", path, b.Index, b.StartLine, len(b.Errors))
		for _, e := range b.Errors {
			fmt.Fprintf(w, "  %v\n", e)
		}
	}
	fmt.Fprintf(w, "%d runs, %d with errors\n", len(blocks), bad)
	return bad, nil
}

// RunFile executes the run-blocks of the specfile at path in order and stops
// at the first block that fails. The outcomes of the blocks completed before
// it are returned with the error.
func RunFile(path string, opts Options) ([]*report.Outcome, error) {
	blocks, err := specfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []*report.Outcome
	for _, b := range blocks {
		o, err := Run(b, opts)
		if err != nil {
			return out, errors.Wrapf(err, "%s: run %d", path, b.Index)
		}
		out = append(out, o)
	}
	return out, nil
}
