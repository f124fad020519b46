// ade-analyze runs the Angular Disparity Effect analysis over a recorded
// session results file and emits console statistics plus chart files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cogmotion/rotation.report/internal/analysis"
	"github.com/cogmotion/rotation.report/internal/report"
	"github.com/cogmotion/rotation.report/internal/trial"
)

var (
	resultsFile = flag.String("results", "experiment_results.json", "Session results file")
	chartFile   = flag.String("chart", "ade_chart.html", "ADE chart output (HTML; empty to skip)")
	plotFile    = flag.String("plot", "ade_plot.png", "ADE plot output (PNG; empty to skip)")
	xlsxFile    = flag.String("xlsx", "", "Spreadsheet export (empty to skip)")
	byCondition = flag.Bool("by-condition", false, "Also emit separate charts per rotation condition")
)

func main() {
	flag.Parse()

	results, err := loadResults(*resultsFile)
	if err != nil {
		log.Fatal(err)
	}
	if len(results) == 0 {
		log.Fatal("no results to analyze")
	}

	printStats(results)

	if *chartFile != "" {
		if err := writeChart(*chartFile, "ADE: angle vs response time", results); err != nil {
			log.Fatalf("failed to write chart: %v", err)
		}
		log.Printf("chart saved to %s", *chartFile)
	}
	if *plotFile != "" {
		if err := report.SaveADEPlot(*plotFile, "ADE: angle vs response time", results); err != nil {
			log.Fatalf("failed to save plot: %v", err)
		}
		log.Printf("plot saved to %s", *plotFile)
	}
	if *xlsxFile != "" {
		if err := report.ExportXLSX(*xlsxFile, results); err != nil {
			log.Fatalf("failed to export spreadsheet: %v", err)
		}
		log.Printf("spreadsheet saved to %s", *xlsxFile)
	}

	if *byCondition {
		if err := writeConditionCharts(results); err != nil {
			log.Fatalf("failed to write condition charts: %v", err)
		}
	}
}

func loadResults(path string) ([]trial.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("results file %s not found: run a session first to generate it", path)
		}
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}
	var results []trial.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %w", path, err)
	}
	return results, nil
}

func writeChart(path, title string, results []trial.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.ADEChart(f, title, results)
}

// writeConditionCharts emits one chart per rotation condition, matching the
// paired with/without charts the session report produces.
func writeConditionCharts(results []trial.Result) error {
	for _, cond := range []bool{true, false} {
		var subset []trial.Result
		for _, r := range results {
			if r.RotationEnabled == cond {
				subset = append(subset, r)
			}
		}
		if len(subset) == 0 {
			continue
		}
		name, title := "ade_chart_no_rotation.html", "ADE without rotation"
		if cond {
			name, title = "ade_chart_rotation.html", "ADE with rotation"
		}
		if err := writeChart(name, title, subset); err != nil {
			return err
		}
		log.Printf("chart saved to %s", name)
	}
	return nil
}

func printStats(results []trial.Result) {
	s := analysis.Summarize(results)
	fits := analysis.ByCorrectness(results)

	fmt.Println("============================================================")
	fmt.Println("ADE STATISTICS - LINEAR REGRESSION")
	fmt.Println("============================================================")
	fmt.Printf("Correct responses: %d\n", fits[true].N)
	fmt.Printf("Incorrect responses: %d\n", fits[false].N)

	for _, correct := range []bool{true, false} {
		fit := fits[correct]
		label := "CORRECT"
		if !correct {
			label = "INCORRECT"
		}
		if fit.N < 2 {
			continue
		}
		fmt.Printf("\n%s REGRESSION:\n", label)
		fmt.Printf("  correlation r = %.3f\n", fit.Correlation)
		fmt.Printf("  p-value = %.4f\n", fit.PValue)
		fmt.Printf("  slope = %.4f s/deg\n", fit.Slope)
		fmt.Printf("  intercept = %.3f s\n", fit.Intercept)
	}

	fmt.Printf("\nOverall accuracy: %.1f%% | mean RT %.2fs | mean disparity %.2f deg\n",
		s.Accuracy*100, s.MeanResponseTime, s.MeanDisparity)
	fmt.Println("============================================================")
}
