package exporter

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"retailcli/internal/config"
	"retailcli/internal/dataprocessing"
	"retailcli/internal/shared/testutil"
	"retailcli/pkg/contracts/domain"
)

func cleanRecord(description, country string, qty int64, ts time.Time) domain.CleanRecord {
	return domain.CleanRecord{
		Record: domain.Record{
			InvoiceNo:   "536365",
			Description: description,
			Quantity:    qty,
			UnitPrice:   2.5,
			CustomerID:  "17850",
			Country:     country,
		},
		InvoicedAt: ts,
		Period:     domain.PeriodOf(ts),
	}
}

func sampleResult() *dataprocessing.Result {
	dec := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	jan := time.Date(2011, 1, 4, 10, 0, 0, 0, time.UTC)
	clean := []domain.CleanRecord{
		cleanRecord("WHITE HANGING HEART", "United Kingdom", 6, dec),
		cleanRecord("JUMBO BAG RED", "France", 10, dec),
		cleanRecord("PARTY BUNTING", "Germany", 4, jan),
	}

	return &dataprocessing.Result{
		RunID:       "run-1",
		Source:      "Online Retail.xlsx",
		GeneratedAt: jan,
		RawRows:     5,
		Clean:       clean,
		CleanReport: domain.CleanReport{InputRows: 5, OutputRows: 3, MissingCustomer: 1, NonPositiveAmounts: 1},
		Monthly:     dataprocessing.MonthlyTotals(clean),
		TopProducts: dataprocessing.TopProducts(clean, 10),
		Countries:   dataprocessing.CountryTotals(clean),
		Statistics:  dataprocessing.Describe(clean),
		Profile:     dataprocessing.Profile(nil, clean),
	}
}

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	cfg := config.Default()
	cfg.Report.OutputDir = filepath.Join(t.TempDir(), "reports")
	paths, err := config.NewPaths(cfg)
	require.NoError(t, err)
	return paths
}

func readCSV(t *testing.T, path string) (bool, [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	hasBOM := bytes.HasPrefix(data, utf8BOM)
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return hasBOM, rows
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths, nil)

	tests := []struct {
		name    string
		file    string
		opts    WriteOptions
		wantBOM bool
	}{
		{
			name: "relative path with BOM",
			file: "monthly.csv",
			opts: WriteOptions{
				Headers:   []string{"Period", "Quantity"},
				Records:   [][]string{{"2010-12", "16"}},
				BOMPrefix: true,
			},
			wantBOM: true,
		},
		{
			name: "absolute path without BOM",
			file: filepath.Join(t.TempDir(), "nested", "plain.csv"),
			opts: WriteOptions{
				Headers: []string{"Period", "Quantity"},
				Records: [][]string{{"2010-12", "16"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, w.WriteCSV(tt.file, tt.opts))

			path := tt.file
			if !filepath.IsAbs(path) {
				path = filepath.Join(paths.ReportsDir, path)
			}
			hasBOM, rows := readCSV(t, path)
			assert.Equal(t, tt.wantBOM, hasBOM)
			assert.Equal(t, [][]string{{"Period", "Quantity"}, {"2010-12", "16"}}, rows)
		})
	}

	t.Run("rewrite truncates", func(t *testing.T) {
		require.NoError(t, w.WriteCSV("again.csv", WriteOptions{Records: [][]string{{"a"}, {"b"}}}))
		require.NoError(t, w.WriteCSV("again.csv", WriteOptions{Records: [][]string{{"c"}}}))
		_, rows := readCSV(t, filepath.Join(paths.ReportsDir, "again.csv"))
		assert.Equal(t, [][]string{{"c"}}, rows)
	})
}

func TestStatisticRows(t *testing.T) {
	rows := statisticRows(sampleResult().Statistics)

	require.Len(t, rows, len(statisticLines))
	assert.Equal(t, []string{"count", "3.0000", "3.0000"}, rows[0])
	assert.Equal(t, []string{"mean", "6.6667", "2.5000"}, rows[1])
	assert.Equal(t, "outliers", rows[len(rows)-1][0])
}

func TestBuildWorkbook(t *testing.T) {
	result := sampleResult()

	f, err := BuildWorkbook(result, WorkbookOptions{ChartCountries: 2, Charts: true})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetMonthly, SheetProducts, SheetCountries, SheetStatistics, SheetCharts}, f.GetSheetList())
	assert.Equal(t, SheetCharts, f.GetSheetName(f.GetActiveSheetIndex()))

	rows, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Period", "Quantity"}, {"2010-12", "16"}, {"2011-01", "4"}}, rows)

	rows, err = f.GetRows(SheetCountries)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "France", "10"}, rows[1])
}

func TestSaveWorkbook_Charts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, SaveWorkbook(path, sampleResult(), WorkbookOptions{ChartCountries: 10, Charts: true}))

	charts := chartXML(t, path)
	require.Len(t, charts, 3)

	all := strings.Join(charts, "\n")
	assert.Contains(t, all, ChartMonthlyTitle)
	assert.Contains(t, all, "Top 3 Best-Selling Products")
	assert.Contains(t, all, "Top 3 Countries by Sales Quantity")
	assert.Contains(t, all, "lineChart")
	assert.Contains(t, all, "barChart")
}

func TestSaveWorkbook_NoChartsForEmptyTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, SaveWorkbook(path, &dataprocessing.Result{}, WorkbookOptions{Charts: true}))

	assert.Empty(t, chartXML(t, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

// chartXML returns the chart parts stored in the workbook archive.
func chartXML(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var charts []string
	for _, file := range zr.File {
		if !strings.HasPrefix(file.Name, "xl/charts/chart") {
			continue
		}
		rc, err := file.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		charts = append(charts, string(data))
	}
	return charts
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Online Retail Summary")
	assert.Contains(t, out, "2010-12 to 2011-01")
	assert.Contains(t, out, "Total quantity:")
	assert.Contains(t, out, "1.  JUMBO BAG RED")
	assert.Contains(t, out, "Country totals")
}

func TestNewSummary_EmptyTablesEncodeAsArrays(t *testing.T) {
	data, err := json.Marshal(NewSummary(&dataprocessing.Result{RunID: "r"}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rows":[]`)
	assert.NotContains(t, string(data), `"rows":null`)
}

func TestReporter_Write(t *testing.T) {
	paths := testPaths(t)
	cfg := config.Default().Report
	logger, logs := testutil.NewTestLogger(t)
	var stdout bytes.Buffer

	reporter := NewReporter(cfg, paths, logger, nil, &stdout)
	artifacts, err := reporter.Write(context.Background(), sampleResult())
	require.NoError(t, err)

	var written []string
	for _, a := range artifacts {
		written = append(written, filepath.Base(a.Path))
		assert.FileExists(t, a.Path)
	}
	assert.ElementsMatch(t, []string{
		config.MonthlyTotalsCSV, config.TopProductsCSV, config.CountryTotalsCSV,
		config.StatisticsCSV, config.SummaryJSON, config.ReportWorkbook,
	}, written)

	hasBOM, rows := readCSV(t, paths.TopProductsCSV)
	assert.True(t, hasBOM)
	assert.Equal(t, []string{"Rank", "Description", "Quantity"}, rows[0])
	assert.Equal(t, []string{"1", "JUMBO BAG RED", "10"}, rows[1])

	data, err := os.ReadFile(paths.SummaryJSON)
	require.NoError(t, err)
	var summary Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, int64(20), summary.Monthly.Sum())
	assert.Equal(t, 2, summary.Cleaning.Dropped())

	assert.Contains(t, stdout.String(), "Online Retail Summary")
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Report written")
	testutil.AssertNoErrors(t, logs)
}

func TestReporter_WriteEmptyResult(t *testing.T) {
	paths := testPaths(t)
	var stdout bytes.Buffer
	logger, logs := testutil.NewTestLogger(t)

	result := &dataprocessing.Result{
		RunID:       "run-empty",
		RawRows:     2,
		CleanReport: domain.CleanReport{InputRows: 2, MissingCustomer: 2},
	}

	artifacts, err := NewReporter(config.Default().Report, paths, logger, nil, &stdout).
		Write(context.Background(), result)
	require.NoError(t, err)

	require.Len(t, artifacts, 1)
	assert.Equal(t, FormatJSON, artifacts[0].Format)
	assert.NoFileExists(t, paths.ReportWorkbook)
	assert.NoFileExists(t, paths.MonthlyTotalsCSV)
	assert.Contains(t, stdout.String(), "dropped, missing customer:")
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "tables and charts skipped")
}

func TestReporter_FormatsSelection(t *testing.T) {
	paths := testPaths(t)
	cfg := config.Default().Report
	cfg.Formats = []string{FormatJSON}
	var stdout bytes.Buffer

	artifacts, err := NewReporter(cfg, paths, nil, nil, &stdout).Write(context.Background(), sampleResult())
	require.NoError(t, err)

	require.Len(t, artifacts, 1)
	assert.Equal(t, paths.SummaryJSON, artifacts[0].Path)
	assert.Empty(t, stdout.String())
}
