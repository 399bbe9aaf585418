package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pdwriter/internal/prediction"
)

// WriteScoreHistogramPNG saves a score histogram over [0, 1] to path. The
// image format follows the path extension, so .svg and .pdf work too.
func WriteScoreHistogramPNG(path string, objs *prediction.Objects, bins int) error {
	dividers, counts := prediction.ScoreHistogram(objs, bins)

	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(counts)),
		Width:     dividers[1] - dividers[0],
		FillColor: plotutil.Color(2),
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, n := range counts {
		h.Bins[i] = plotter.HistogramBin{Min: dividers[i], Max: dividers[i+1], Weight: n}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Score distribution (%d objects)", objs.Len())
	p.X.Label.Text = "Score"
	p.Y.Label.Text = "Objects"
	p.Add(h)
	p.X.Min = 0
	p.X.Max = 1

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
