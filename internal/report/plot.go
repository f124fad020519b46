package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cogmotion/rotation.report/internal/analysis"
	"github.com/cogmotion/rotation.report/internal/trial"
)

var (
	correctColor   = color.RGBA{R: 47, G: 158, B: 68, A: 255}
	incorrectColor = color.RGBA{R: 224, G: 49, B: 49, A: 255}
)

// SaveADEPlot writes a PNG scatter of initial angle against response time,
// split by correctness with fitted regression lines, to path.
func SaveADEPlot(path, title string, results []trial.Result) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Initial angle (deg)"
	p.Y.Label.Text = "Response time (s)"

	fits := analysis.ByCorrectness(results)

	if err := addPartition(p, results, true, "correct", correctColor, fits[true]); err != nil {
		return err
	}
	if err := addPartition(p, results, false, "incorrect", incorrectColor, fits[false]); err != nil {
		return err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save ADE plot: %w", err)
	}
	return nil
}

func addPartition(p *plot.Plot, results []trial.Result, correct bool, label string, c color.RGBA, fit analysis.Fit) error {
	pts := make(plotter.XYs, 0, len(results))
	for _, r := range results {
		if r.IsCorrect == correct {
			pts = append(pts, plotter.XY{X: r.InitialAngle, Y: r.ResponseTime})
		}
	}
	if len(pts) == 0 {
		return nil
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(3)
	p.Add(sc)
	p.Legend.Add(fmt.Sprintf("%s (r=%.3f, p=%.4f)", label, fit.Correlation, fit.PValue), sc)

	if fit.N >= 2 {
		xr := angleRangePoints(pts)
		if xr[0] != xr[1] {
			linePts := plotter.XYs{
				{X: xr[0], Y: fit.Slope*xr[0] + fit.Intercept},
				{X: xr[1], Y: fit.Slope*xr[1] + fit.Intercept},
			}
			fitLine, err := plotter.NewLine(linePts)
			if err != nil {
				return err
			}
			fitLine.Color = c
			fitLine.Width = vg.Points(1.5)
			p.Add(fitLine)
		}
	}
	return nil
}

func angleRangePoints(pts plotter.XYs) [2]float64 {
	lo, hi := pts[0].X, pts[0].X
	for _, pt := range pts[1:] {
		if pt.X < lo {
			lo = pt.X
		}
		if pt.X > hi {
			hi = pt.X
		}
	}
	return [2]float64{lo, hi}
}
