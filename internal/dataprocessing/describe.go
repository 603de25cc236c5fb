package dataprocessing

import (
	"math"
	"sort"

	"retailcli/pkg/contracts/domain"
)

// whiskerFactor is the box plot whisker length in interquartile ranges.
const whiskerFactor = 1.5

// Describe computes count, mean, sample standard deviation, quartiles and
// box plot outliers for Quantity and UnitPrice.
func Describe(records []domain.CleanRecord) domain.Statistics {
	quantities := make([]float64, len(records))
	prices := make([]float64, len(records))
	for i, rec := range records {
		quantities[i] = float64(rec.Quantity)
		prices[i] = rec.UnitPrice
	}

	return domain.Statistics{
		Quantity:  DescribeColumn(ColQuantity, quantities),
		UnitPrice: DescribeColumn(ColUnitPrice, prices),
	}
}

// DescribeColumn computes describe-style statistics for values. Quantiles
// use linear interpolation between closest ranks. values is not modified.
func DescribeColumn(column string, values []float64) domain.ColumnStats {
	stats := domain.ColumnStats{Column: column, Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	stats.Mean = sum / float64(len(sorted))

	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			d := v - stats.Mean
			sq += d * d
		}
		stats.Std = math.Sqrt(sq / float64(len(sorted)-1))
	}

	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.Q1 = quantile(sorted, 0.25)
	stats.Median = quantile(sorted, 0.50)
	stats.Q3 = quantile(sorted, 0.75)

	iqr := stats.Q3 - stats.Q1
	stats.LowerFence = stats.Q1 - whiskerFactor*iqr
	stats.UpperFence = stats.Q3 + whiskerFactor*iqr
	for _, v := range sorted {
		if v < stats.LowerFence || v > stats.UpperFence {
			stats.Outliers++
		}
	}

	return stats
}

// quantile returns the q-th quantile of sorted values.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Profile summarises the raw table and the clean set: row counts, missing
// cells per column, the distinct countries in first-appearance order and
// the covered period range.
func Profile(table *Table, clean []domain.CleanRecord) domain.DatasetProfile {
	profile := domain.DatasetProfile{
		CleanRows:     len(clean),
		MissingValues: make(map[string]int, len(RequiredColumns)),
		Countries:     []string{},
		TotalQuantity: TotalQuantity(clean),
	}

	if table != nil {
		profile.RawRows = table.Len()
		for col, n := range table.MissingValues {
			profile.MissingValues[col] = n
		}
	}

	seen := make(map[string]bool)
	var first, last domain.Period
	for i, rec := range clean {
		if !seen[rec.Country] {
			seen[rec.Country] = true
			profile.Countries = append(profile.Countries, rec.Country)
		}
		if i == 0 || rec.Period.Before(first) {
			first = rec.Period
		}
		if i == 0 || last.Before(rec.Period) {
			last = rec.Period
		}
	}

	if len(clean) > 0 {
		profile.FirstPeriod = first.String()
		profile.LastPeriod = last.String()
	}

	return profile
}
