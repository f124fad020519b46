package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cogmotion/rotation.report/internal/trial"
)

func sampleResults() []trial.Result {
	return []trial.Result{
		{TrialNumber: 1, StimulusID: "a", InitialAngle: 20, ResponseTime: 1.2, IsCorrect: true, RotationEnabled: true, Disparity: 15},
		{TrialNumber: 2, StimulusID: "b", InitialAngle: 60, ResponseTime: 1.9, IsCorrect: true, RotationEnabled: true, Disparity: 40},
		{TrialNumber: 3, StimulusID: "c", InitialAngle: 120, ResponseTime: 2.8, IsCorrect: true, RotationEnabled: false},
		{TrialNumber: 4, StimulusID: "d", InitialAngle: 90, ResponseTime: 3.5, IsCorrect: false, RotationEnabled: false, IsMirror: true},
		{TrialNumber: 5, StimulusID: "e", InitialAngle: 160, ResponseTime: 4.1, IsCorrect: false, RotationEnabled: true, Disparity: 80},
	}
}

func TestADEChartRendersSeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ADEChart(&buf, "Angular Disparity Effect", sampleResults()))

	html := buf.String()
	assert.Contains(t, html, "Angular Disparity Effect")
	assert.Contains(t, html, "correct")
	assert.Contains(t, html, "incorrect")
	assert.Contains(t, html, "fit correct")
	assert.Contains(t, html, "fit incorrect")
	assert.Contains(t, html, "echarts")
}

func TestADEChartEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ADEChart(&buf, "empty session", nil))
	assert.Contains(t, buf.String(), "empty session")
}

func TestSaveADEPlotWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ade.png")
	require.NoError(t, SaveADEPlot(path, "Angular Disparity Effect", sampleResults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data[:8])
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	results := sampleResults()
	require.NoError(t, ExportXLSX(path, results))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Trials")
	require.NoError(t, err)
	require.Len(t, rows, len(results)+1)
	assert.Equal(t, resultHeaders, rows[0])

	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "a", rows[1][1])
	assert.Equal(t, "TRUE", rows[4][2], "is_mirror of trial 4")

	got, err := f.GetCellValue("Trials", "E2")
	require.NoError(t, err)
	rt, err := strconv.ParseFloat(got, 64)
	require.NoError(t, err)
	assert.InDelta(t, 1.2, rt, 1e-9)

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.NotEmpty(t, summary)
	assert.Equal(t, "total trials", summary[0][0])
	assert.Equal(t, "5", summary[0][1])
}
