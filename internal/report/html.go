// Package report renders score and type charts for prediction collections.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pdwriter/internal/prediction"
)

// DefaultBins is the number of score histogram bins.
const DefaultBins = 10

// AssetsHost serves the echarts JavaScript referenced by rendered pages.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// WriteHTML renders a page with a score histogram and a per-type count
// chart for objs. limit is the per-frame soft limit used in the summary.
func WriteHTML(w io.Writer, title string, objs *prediction.Objects, limit int) error {
	s := prediction.Summarize(objs, limit)
	dividers, counts := prediction.ScoreHistogram(objs, DefaultBins)

	page := components.NewPage()
	page.SetAssetsHost(AssetsHost)
	page.PageTitle = title
	page.AddCharts(scoreChart(s, dividers, counts), typeChart(s))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func scoreChart(s prediction.Summary, dividers, counts []float64) *charts.Bar {
	x := make([]string, len(counts))
	y := make([]opts.BarData, len(counts))
	for i := range counts {
		x[i] = fmt.Sprintf("%.2f-%.2f", dividers[i], dividers[i+1])
		y[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Score distribution",
			Subtitle: fmt.Sprintf("objects=%d mean=%.3f p50=%.3f p90=%.3f out_of_range=%d", s.Total, s.Score.Mean, s.Score.P50, s.Score.P90, s.Score.OutOfRange),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "score", NameLocation: "middle", NameGap: 25}),
	)
	bar.SetXAxis(x).
		AddSeries("objects", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func typeChart(s prediction.Summary) *charts.Bar {
	types := make([]prediction.ObjectType, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	x := make([]string, len(types))
	y := make([]opts.BarData, len(types))
	for i, t := range types {
		x[i] = t.String()
		y[i] = opts.BarData{Value: s.ByType[t]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Objects by type",
			Subtitle: fmt.Sprintf("contexts=%d frames=%d max_per_frame=%d", s.Contexts, s.Frames, s.MaxPerFrame),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("objects", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
