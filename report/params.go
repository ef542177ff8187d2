package report

import (
	"fmt"
	"io"

	"github.com/fpclass/mlp/specfile"
)

// WriteParams prints the parameters of a run-block in table order. Unset
// parameters with a default are shown with their default; unset parameters
// without one are omitted.
func WriteParams(w io.Writer, runID string, block *specfile.Block) {
	fmt.Fprintf(w, "Run %d (%s)\n", block.Index, runID)
	fmt.Fprintf(w, "Parameters:\n")
	for _, p := range specfile.Table {
		e := block.Store.Entry(p.Name)
		switch {
		case e.Set:
			fmt.Fprintf(w, "  %-26s %s\n", p.Name, e.Raw)
		case p.Default != "":
			fmt.Fprintf(w, "  %-26s %s (default)\n", p.Name, p.Default)
		}
	}
}
