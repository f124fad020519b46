package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cogmotion/rotation.report/internal/analysis"
	"github.com/cogmotion/rotation.report/internal/trial"
)

// resultHeaders is the column order of the trial sheet.
var resultHeaders = []string{
	"trial_number", "stimulus_id", "is_mirror", "user_response",
	"response_time", "is_correct", "rotation_enabled", "disparity", "initial_angle",
}

// ExportXLSX writes the session's trial results and summary to an .xlsx
// workbook at path. The labs hand these straight to their analysis
// spreadsheets.
func ExportXLSX(path string, results []trial.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const trialSheet = "Trials"
	if err := f.SetSheetName("Sheet1", trialSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, h := range resultHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(trialSheet, cell, h); err != nil {
			return err
		}
	}

	for row, r := range results {
		values := []interface{}{
			r.TrialNumber, r.StimulusID, r.IsMirror, r.UserResponse,
			r.ResponseTime, r.IsCorrect, r.RotationEnabled, r.Disparity, r.InitialAngle,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(trialSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := writeSummarySheet(f, results); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, results []trial.Result) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	s := analysis.Summarize(results)
	rows := [][]interface{}{
		{"total trials", s.Total},
		{"correct", s.Correct},
		{"accuracy", s.Accuracy},
		{"with rotation accuracy", s.WithRotation.Accuracy},
		{"without rotation accuracy", s.WithoutRotation.Accuracy},
		{"mean response time (s)", s.MeanResponseTime},
		{"mean disparity (deg)", s.MeanDisparity},
	}
	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
