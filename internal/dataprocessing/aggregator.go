package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	apperrors "retailcli/internal/errors"
	"retailcli/pkg/contracts/domain"
)

// Dimension names of the summary tables.
const (
	DimensionPeriod  = "period"
	DimensionProduct = "description"
	DimensionCountry = "country"
)

// groupSum sums Quantity per key, returning the groups in first-appearance
// order. Sums are exact as long as CheckQuantityBounds accepts the records.
func groupSum(records []domain.CleanRecord, key func(domain.CleanRecord) string) []domain.SummaryRow {
	index := make(map[string]int)
	var rows []domain.SummaryRow

	for _, rec := range records {
		k := key(rec)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, domain.SummaryRow{Key: k})
		}
		rows[i].Total += rec.Quantity
	}

	return rows
}

// rankDescending sorts rows by descending total. The sort is stable, so equal
// totals keep first-appearance order.
func rankDescending(rows []domain.SummaryRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
}

// MonthlyTotals sums quantity per invoice month in chronological order.
func MonthlyTotals(records []domain.CleanRecord) domain.SummaryTable {
	periods := make(map[string]domain.Period)
	rows := groupSum(records, func(rec domain.CleanRecord) string {
		key := rec.Period.String()
		periods[key] = rec.Period
		return key
	})

	sort.Slice(rows, func(i, j int) bool {
		return periods[rows[i].Key].Before(periods[rows[j].Key])
	})

	return domain.SummaryTable{Dimension: DimensionPeriod, Rows: rows}
}

// TopProducts sums quantity per product description and returns the n
// largest groups, ties broken by first appearance. n <= 0 returns all groups.
func TopProducts(records []domain.CleanRecord, n int) domain.SummaryTable {
	rows := groupSum(records, func(rec domain.CleanRecord) string {
		return rec.Description
	})
	rankDescending(rows)

	table := domain.SummaryTable{Dimension: DimensionProduct, Rows: rows}
	if n > 0 {
		return table.Head(n)
	}
	return table
}

// CountryTotals sums quantity per country by descending total, ties broken
// by first appearance.
func CountryTotals(records []domain.CleanRecord) domain.SummaryTable {
	rows := groupSum(records, func(rec domain.CleanRecord) string {
		return rec.Country
	})
	rankDescending(rows)

	return domain.SummaryTable{Dimension: DimensionCountry, Rows: rows}
}

// CheckQuantityBounds fails with a VALIDATION error when the running total of
// quantity leaves the int64 range. Clean quantities are positive, so once the
// grand total fits every group total fits too.
func CheckQuantityBounds(records []domain.CleanRecord) error {
	var total int64
	for _, rec := range records {
		q := rec.Quantity
		if (q > 0 && total > math.MaxInt64-q) || (q < 0 && total < math.MinInt64-q) {
			return apperrors.NewAppValidationError(
				fmt.Sprintf("quantity total overflows int64 at row %d", rec.SourceRow)).
				WithContext("row", rec.SourceRow)
		}
		total += q
	}
	return nil
}

// TotalQuantity sums quantity over all records.
func TotalQuantity(records []domain.CleanRecord) int64 {
	var total int64
	for _, rec := range records {
		total += rec.Quantity
	}
	return total
}
