package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "retailcli/internal/errors"
	"retailcli/pkg/contracts/domain"
)

func keys(table domain.SummaryTable) []string {
	out := make([]string, 0, table.Len())
	for _, row := range table.Rows {
		out = append(out, row.Key)
	}
	return out
}

func fixtureRecords(t *testing.T) []domain.CleanRecord {
	return []domain.CleanRecord{
		clean(t, "WHITE HANGING HEART", 6, "2011-02-03 10:00", "United Kingdom"),
		clean(t, "JUMBO BAG RED", 10, "2010-12-01 08:26", "France"),
		clean(t, "WHITE HANGING HEART", 4, "2010-12-05 09:00", "United Kingdom"),
		clean(t, "PARTY BUNTING", 3, "2011-01-10 11:30", "Germany"),
		clean(t, "JUMBO BAG RED", 2, "2011-02-20 14:00", "Germany"),
	}
}

func TestTopProducts_TieBrokenByFirstAppearance(t *testing.T) {
	records := []domain.CleanRecord{
		clean(t, "X", 10, "2011-01-01 10:00", "UK"),
		clean(t, "Y", 10, "2011-01-01 10:00", "UK"),
		clean(t, "Z", 5, "2011-01-01 10:00", "UK"),
	}

	top := TopProducts(records, 2)

	assert.Equal(t, DimensionProduct, top.Dimension)
	assert.Equal(t, []string{"X", "Y"}, keys(top))
}

func TestTopProducts(t *testing.T) {
	records := fixtureRecords(t)

	tests := []struct {
		name string
		n    int
		want []domain.SummaryRow
	}{
		{
			name: "truncated",
			n:    2,
			want: []domain.SummaryRow{
				{Key: "JUMBO BAG RED", Total: 12},
				{Key: "WHITE HANGING HEART", Total: 10},
			},
		},
		{
			name: "n larger than groups",
			n:    10,
			want: []domain.SummaryRow{
				{Key: "JUMBO BAG RED", Total: 12},
				{Key: "WHITE HANGING HEART", Total: 10},
				{Key: "PARTY BUNTING", Total: 3},
			},
		},
		{
			name: "non-positive n returns all groups",
			n:    0,
			want: []domain.SummaryRow{
				{Key: "JUMBO BAG RED", Total: 12},
				{Key: "WHITE HANGING HEART", Total: 10},
				{Key: "PARTY BUNTING", Total: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopProducts(records, tt.n)
			assert.Equal(t, tt.want, got.Rows)
		})
	}
}

func TestMonthlyTotals_Chronological(t *testing.T) {
	monthly := MonthlyTotals(fixtureRecords(t))

	assert.Equal(t, DimensionPeriod, monthly.Dimension)
	assert.Equal(t, []domain.SummaryRow{
		{Key: "2010-12", Total: 14},
		{Key: "2011-01", Total: 3},
		{Key: "2011-02", Total: 8},
	}, monthly.Rows)
}

func TestCountryTotals(t *testing.T) {
	countries := CountryTotals(fixtureRecords(t))

	assert.Equal(t, DimensionCountry, countries.Dimension)
	// United Kingdom appears first, so it wins the tie with France.
	assert.Equal(t, []domain.SummaryRow{
		{Key: "United Kingdom", Total: 10},
		{Key: "France", Total: 10},
		{Key: "Germany", Total: 5},
	}, countries.Rows)
}

func TestAggregates_ConserveQuantity(t *testing.T) {
	records := fixtureRecords(t)
	total := TotalQuantity(records)
	require.Equal(t, int64(25), total)

	assert.Equal(t, total, MonthlyTotals(records).Sum())
	assert.Equal(t, total, CountryTotals(records).Sum())
	assert.Equal(t, total, TopProducts(records, 0).Sum())
}

func TestAggregates_Deterministic(t *testing.T) {
	records := fixtureRecords(t)

	for i := 0; i < 20; i++ {
		assert.Equal(t, MonthlyTotals(records), MonthlyTotals(records))
		assert.Equal(t, TopProducts(records, 2), TopProducts(records, 2))
		assert.Equal(t, CountryTotals(records), CountryTotals(records))
	}
}

func TestAggregates_Empty(t *testing.T) {
	assert.Zero(t, MonthlyTotals(nil).Len())
	assert.Zero(t, TopProducts(nil, 10).Len())
	assert.Zero(t, CountryTotals(nil).Len())
	assert.Zero(t, TotalQuantity(nil))
}

func TestCheckQuantityBounds(t *testing.T) {
	tests := []struct {
		name    string
		qty     []int64
		wantErr bool
	}{
		{name: "empty"},
		{name: "fits exactly", qty: []int64{math.MaxInt64 - 1, 1}},
		{name: "overflows", qty: []int64{math.MaxInt64, 1}, wantErr: true},
		{name: "underflows", qty: []int64{math.MinInt64, -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]domain.CleanRecord, len(tt.qty))
			for i, q := range tt.qty {
				records[i] = clean(t, "X", q, "2010-12-01 08:26", "UK")
			}

			err := CheckQuantityBounds(records)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation), "got %v", err)
		})
	}
}
