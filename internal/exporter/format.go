package exporter

import (
	"strconv"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatStat formats a descriptive statistic with 4 decimal places
func formatStat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
