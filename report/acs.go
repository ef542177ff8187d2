package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fpclass/mlp/utils"
)

// WriteActivations prints one line per pattern: index, actual and
// hypothesised short class names, and the output activations times 1000
// rounded to integers. class may be nil for fitter runs.
func WriteActivations(w io.Writer, acs []float64, nouts int, class []int, short []string) {
	npats := len(acs) / nouts
	for i := 0; i < npats; i++ {
		row := acs[i*nouts : (i+1)*nouts]
		var b strings.Builder
		fmt.Fprintf(&b, "%6d", i+1)
		if class != nil {
			hyp, _ := utils.ArgMax(row)
			fmt.Fprintf(&b, " %3s %3s", shortName(short, class[i]), shortName(short, hyp))
		}
		for _, a := range row {
			fmt.Fprintf(&b, " %5d", int(math.Round(1000*a)))
		}
		fmt.Fprintln(w, b.String())
	}
}
