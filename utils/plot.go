package utils

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WeightsHistogram saves a histogram of v as a PNG at filename.
func WeightsHistogram(v []float64, title, filename string) error {
	if len(v) == 0 {
		return errors.New("no values to plot")
	}
	bins := int(math.Ceil(math.Sqrt(float64(len(v)))))
	if bins < 4 {
		bins = 4
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "weight"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(v), bins)
	if err != nil {
		return errors.Wrap(err, "building histogram")
	}
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "saving histogram %s", filename)
	}
	return nil
}
