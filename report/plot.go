package report

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/gpsearch/pkg/errors"
	"github.com/YuminosukeSato/gpsearch/search"
)

var plotFormats = map[string]bool{".png": true, ".svg": true, ".pdf": true}

// PlotTrials draws one bar per trial, height = error, and saves it to path.
// The image format follows the extension: .png, .svg or .pdf. Failed trials
// have no bar and are labelled "failed"; the best trial is highlighted.
func PlotTrials(res *search.Result, path string) error {
	const op = "report.PlotTrials"

	ext := strings.ToLower(filepath.Ext(path))
	if !plotFormats[ext] {
		return errors.NewValidationError("plot", "file extension must be .png, .svg or .pdf", path)
	}
	if res == nil || len(res.Trials) == 0 {
		return errors.NewValueError(op, "no trials to plot")
	}

	p, err := trialsPlot(res)
	if err != nil {
		return errors.Wrap(err, op)
	}

	width := vg.Length(len(res.Trials))*0.6*vg.Inch + 2*vg.Inch
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "%s: save %s", op, path)
	}
	return nil
}

func trialsPlot(res *search.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Grid search: %d trials", len(res.Trials))
	p.X.Label.Text = "lscale / sigma / noise"
	p.Y.Label.Text = strings.ToUpper(res.Metric)

	values := make(plotter.Values, len(res.Trials))
	best := make(plotter.Values, len(res.Trials))
	names := make([]string, len(res.Trials))
	var failed plotter.XYLabels

	for i, t := range res.Trials {
		c := t.Config
		names[i] = fmt.Sprintf("%g/%g/%g", c.LengthScale, c.Sigma, c.Noise)
		if t.Failed() {
			failed.XYs = append(failed.XYs, plotter.XY{X: float64(i), Y: 0})
			failed.Labels = append(failed.Labels, "failed")
			continue
		}
		values[i] = t.Error
		if res.Best != nil && t.Index == res.Best.Index {
			best[i] = t.Error
		}
	}

	barWidth := vg.Points(14)
	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	if res.Best != nil {
		highlight, err := plotter.NewBarChart(best, barWidth)
		if err != nil {
			return nil, err
		}
		highlight.Color = color.RGBA{R: 220, G: 50, B: 32, A: 255}
		highlight.LineStyle.Width = vg.Length(0)
		p.Add(highlight)
		p.Legend.Add("best", highlight)
		p.Legend.Top = true
	}

	if len(failed.XYs) > 0 {
		labels, err := plotter.NewLabels(failed)
		if err != nil {
			return nil, err
		}
		p.Add(labels)
	}

	p.NominalX(names...)
	p.Add(plotter.NewGrid())
	return p, nil
}
