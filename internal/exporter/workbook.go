package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"retailcli/internal/dataprocessing"
	"retailcli/pkg/contracts/domain"
)

// Workbook sheet names.
const (
	SheetMonthly    = "Monthly Totals"
	SheetProducts   = "Top Products"
	SheetCountries  = "Countries"
	SheetStatistics = "Statistics"
	SheetCharts     = "Charts"
)

// Chart titles.
const (
	ChartMonthlyTitle = "Monthly Sales Trends"
	chartProductsFmt  = "Top %d Best-Selling Products"
	chartCountriesFmt = "Top %d Countries by Sales Quantity"
)

// chartRows is the vertical distance between two charts on the Charts sheet.
const chartRows = 22

// WorkbookOptions configures BuildWorkbook.
type WorkbookOptions struct {
	// ChartCountries is how many leading countries the country chart shows.
	ChartCountries int
	// Charts adds the Charts sheet.
	Charts bool
}

// BuildWorkbook renders the summaries into a workbook with one sheet per
// table and, when requested, a Charts sheet. Empty tables get no chart.
func BuildWorkbook(result *dataprocessing.Result, opts WorkbookOptions) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetMonthly); err != nil {
		f.Close()
		return nil, err
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{SheetMonthly, monthlyHeaders, summaryCells(result.Monthly, false)},
		{SheetProducts, productHeaders, summaryCells(result.TopProducts, true)},
		{SheetCountries, countryHeaders, summaryCells(result.Countries, true)},
		{SheetStatistics, statisticHeaders, statisticCells(result.Statistics)},
	}

	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, sheet.headers, sheet.rows, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %q: %w", sheet.name, err)
		}
	}

	if opts.Charts {
		if err := addCharts(f, result, opts.ChartCountries); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add charts: %w", err)
		}
	}

	return f, nil
}

// SaveWorkbook builds the workbook and saves it to path.
func SaveWorkbook(path string, result *dataprocessing.Result, opts WorkbookOptions) error {
	f, err := BuildWorkbook(result, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}, headerStyle int) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(name, "A", lastCol, 18)
}

// summaryCells keeps totals numeric so that charts can plot them.
func summaryCells(table domain.SummaryTable, ranked bool) [][]interface{} {
	rows := make([][]interface{}, 0, table.Len())
	for i, row := range table.Rows {
		if ranked {
			rows = append(rows, []interface{}{i + 1, row.Key, row.Total})
		} else {
			rows = append(rows, []interface{}{row.Key, row.Total})
		}
	}
	return rows
}

func statisticCells(stats domain.Statistics) [][]interface{} {
	rows := make([][]interface{}, 0, len(statisticLines))
	for _, line := range statisticLines {
		rows = append(rows, []interface{}{line.name, line.value(stats.Quantity), line.value(stats.UnitPrice)})
	}
	return rows
}

// seriesRange returns an absolute column range such as 'Top Products'!$B$2:$B$11.
func seriesRange(sheet, col string, rows int) string {
	return fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, rows+1)
}

func addCharts(f *excelize.File, result *dataprocessing.Result, chartCountries int) error {
	idx, err := f.NewSheet(SheetCharts)
	if err != nil {
		return err
	}

	anchor := 1
	place := func(chart *excelize.Chart) error {
		cell, err := excelize.CoordinatesToCellName(1, anchor)
		if err != nil {
			return err
		}
		anchor += chartRows
		return f.AddChart(SheetCharts, cell, chart)
	}

	if n := result.Monthly.Len(); n > 0 {
		if err := place(&excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("'%s'!$B$1", SheetMonthly),
				Categories: seriesRange(SheetMonthly, "A", n),
				Values:     seriesRange(SheetMonthly, "B", n),
				Marker:     excelize.ChartMarker{Symbol: "circle"},
			}},
			Title:     []excelize.RichTextRun{{Text: ChartMonthlyTitle}},
			Legend:    excelize.ChartLegend{Position: "none"},
			XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Month"}}},
			YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Total Quantity Sold"}}, MajorGridLines: true},
			Dimension: excelize.ChartDimension{Width: 960, Height: 400},
		}); err != nil {
			return err
		}
	}

	if n := result.TopProducts.Len(); n > 0 {
		if err := place(rankedChart(SheetProducts, fmt.Sprintf(chartProductsFmt, n), "Product", n)); err != nil {
			return err
		}
	}

	n := result.Countries.Len()
	if chartCountries > 0 && n > chartCountries {
		n = chartCountries
	}
	if n > 0 {
		if err := place(rankedChart(SheetCountries, fmt.Sprintf(chartCountriesFmt, n), "Country", n)); err != nil {
			return err
		}
	}

	f.SetActiveSheet(idx)
	return nil
}

func rankedChart(sheet, title, axis string, n int) *excelize.Chart {
	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$C$1", sheet),
			Categories: seriesRange(sheet, "B", n),
			Values:     seriesRange(sheet, "C", n),
		}},
		Title:     []excelize.RichTextRun{{Text: title}},
		Legend:    excelize.ChartLegend{Position: "none"},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: axis}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Total Quantity Sold"}}, MajorGridLines: true},
		Dimension: excelize.ChartDimension{Width: 960, Height: 400},
	}
}
