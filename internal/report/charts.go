// Package report renders session output: ADE correlation charts (HTML via
// go-echarts and PNG via gonum/plot), and a spreadsheet export of the raw
// trial results.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cogmotion/rotation.report/internal/analysis"
	"github.com/cogmotion/rotation.report/internal/trial"
)

// ADEChart renders an interactive scatter of initial angle against response
// time, split by correctness, with the fitted regression line for each
// partition, and writes the HTML document to w.
func ADEChart(w io.Writer, title string, results []trial.Result) error {
	fits := analysis.ByCorrectness(results)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("correct: r=%.3f p=%.4f | incorrect: r=%.3f p=%.4f", fits[true].Correlation, fits[true].PValue, fits[false].Correlation, fits[false].PValue),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Initial angle (deg)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Response time (s)", NameLocation: "middle", NameGap: 40}),
	)

	scatter.AddSeries("correct", scatterData(results, true),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2f9e44"}),
	)
	scatter.AddSeries("incorrect", scatterData(results, false),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#e03131"}),
	)

	line := charts.NewLine()
	addFitSeries(line, "fit correct", fits[true], angleRange(results, true), "#2f9e44")
	addFitSeries(line, "fit incorrect", fits[false], angleRange(results, false), "#e03131")
	scatter.Overlap(line)

	return scatter.Render(w)
}

func scatterData(results []trial.Result, correct bool) []opts.ScatterData {
	var data []opts.ScatterData
	for _, r := range results {
		if r.IsCorrect == correct {
			data = append(data, opts.ScatterData{Value: []interface{}{r.InitialAngle, r.ResponseTime}})
		}
	}
	return data
}

// angleRange returns the min and max initial angle within one correctness
// partition, and whether the partition has at least two samples.
func angleRange(results []trial.Result, correct bool) [2]float64 {
	var lo, hi float64
	n := 0
	for _, r := range results {
		if r.IsCorrect != correct {
			continue
		}
		if n == 0 || r.InitialAngle < lo {
			lo = r.InitialAngle
		}
		if n == 0 || r.InitialAngle > hi {
			hi = r.InitialAngle
		}
		n++
	}
	return [2]float64{lo, hi}
}

// addFitSeries draws the regression line across the partition's angle range.
// Degenerate fits (fewer than two samples) are skipped.
func addFitSeries(line *charts.Line, name string, fit analysis.Fit, xr [2]float64, color string) {
	if fit.N < 2 || xr[0] == xr[1] {
		return
	}
	data := []opts.LineData{
		{Value: []interface{}{xr[0], fit.Slope*xr[0] + fit.Intercept}},
		{Value: []interface{}{xr[1], fit.Slope*xr[1] + fit.Intercept}},
	}
	line.AddSeries(name, data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2.5}),
	)
}
