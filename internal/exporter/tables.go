package exporter

import (
	"strconv"

	"retailcli/pkg/contracts/domain"
)

// Column headers of the summary CSV files and workbook sheets.
var (
	monthlyHeaders   = []string{"Period", "Quantity"}
	productHeaders   = []string{"Rank", "Description", "Quantity"}
	countryHeaders   = []string{"Rank", "Country", "Quantity"}
	statisticHeaders = []string{"Statistic", "Quantity", "UnitPrice"}
)

// monthlyRows renders the monthly table as Period,Quantity rows.
func monthlyRows(table domain.SummaryTable) [][]string {
	rows := make([][]string, 0, table.Len())
	for _, row := range table.Rows {
		rows = append(rows, []string{row.Key, formatInt(row.Total)})
	}
	return rows
}

// rankedRows renders a descending table with a 1-based rank column.
func rankedRows(table domain.SummaryTable) [][]string {
	rows := make([][]string, 0, table.Len())
	for i, row := range table.Rows {
		rows = append(rows, []string{strconv.Itoa(i + 1), row.Key, formatInt(row.Total)})
	}
	return rows
}

// statisticLine is one row of the statistics table.
type statisticLine struct {
	name  string
	value func(domain.ColumnStats) float64
}

var statisticLines = []statisticLine{
	{"count", func(s domain.ColumnStats) float64 { return float64(s.Count) }},
	{"mean", func(s domain.ColumnStats) float64 { return s.Mean }},
	{"std", func(s domain.ColumnStats) float64 { return s.Std }},
	{"min", func(s domain.ColumnStats) float64 { return s.Min }},
	{"25%", func(s domain.ColumnStats) float64 { return s.Q1 }},
	{"50%", func(s domain.ColumnStats) float64 { return s.Median }},
	{"75%", func(s domain.ColumnStats) float64 { return s.Q3 }},
	{"max", func(s domain.ColumnStats) float64 { return s.Max }},
	{"iqr", func(s domain.ColumnStats) float64 { return s.IQR() }},
	{"lower_fence", func(s domain.ColumnStats) float64 { return s.LowerFence }},
	{"upper_fence", func(s domain.ColumnStats) float64 { return s.UpperFence }},
	{"outliers", func(s domain.ColumnStats) float64 { return float64(s.Outliers) }},
}

// statisticRows renders describe-style statistics, one statistic per row.
func statisticRows(stats domain.Statistics) [][]string {
	rows := make([][]string, 0, len(statisticLines))
	for _, line := range statisticLines {
		rows = append(rows, []string{
			line.name,
			formatStat(line.value(stats.Quantity)),
			formatStat(line.value(stats.UnitPrice)),
		})
	}
	return rows
}
