package dataprocessing

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/config"
	"retailcli/internal/infrastructure"
	"retailcli/pkg/contracts/domain"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "iso with seconds",
			value: "2010-12-01 08:26:00",
			want:  time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC),
		},
		{
			name:  "us month first",
			value: "12/1/2010 8:26",
			want:  time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			value: "2011-01-15",
			want:  time.Date(2011, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "excel serial",
			value: "40513.35138888889",
			want:  time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			value:   "  ",
			wantErr: true,
		},
		{
			name:    "garbage",
			value:   "not a date",
			wantErr: true,
		},
		{
			name:    "negative serial",
			value:   "-5",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.WithinDuration(t, tt.want, got, time.Second)
		})
	}
}

func TestCleaner_Clean(t *testing.T) {
	ctx := context.Background()
	cleaner := NewCleaner(discardLogger(), CleanOptions{MaxParseErrors: 10})

	t.Run("missing customer and non-positive rows are dropped", func(t *testing.T) {
		records := []domain.Record{
			raw(2, "A", 5, "2010-12-01 08:26:00", 2.0, "17850", "UK"),
			raw(3, "B", 3, "2010-12-01 08:28:00", 1.0, "", "UK"),
			raw(4, "C", -2, "2010-12-01 09:00:00", 1.0, "13047", "France"),
		}

		out, report := cleaner.Clean(ctx, records)

		require.Len(t, out, 1)
		assert.Equal(t, "A", out[0].Description)
		assert.Equal(t, domain.Period{Year: 2010, Month: time.December}, out[0].Period)
		assert.Equal(t, 3, report.InputRows)
		assert.Equal(t, 1, report.OutputRows)
		assert.Equal(t, 1, report.MissingCustomer)
		assert.Equal(t, 1, report.NonPositiveAmounts)
		assert.Equal(t, 0, report.UnparsableDates)
		assert.Equal(t, 2, report.Dropped())

		assert.Equal(t, int64(5), MonthlyTotals(out).Sum())
		assert.Equal(t, int64(5), TopProducts(out, 10).Sum())
		assert.Equal(t, int64(5), CountryTotals(out).Sum())
	})

	t.Run("zero price is dropped", func(t *testing.T) {
		out, report := cleaner.Clean(ctx, []domain.Record{
			raw(2, "A", 5, "2010-12-01 08:26:00", 0, "17850", "UK"),
		})
		assert.Empty(t, out)
		assert.Equal(t, 1, report.NonPositiveAmounts)
	})

	t.Run("unparsable dates are counted and capped", func(t *testing.T) {
		capped := NewCleaner(discardLogger(), CleanOptions{MaxParseErrors: 1})
		out, report := capped.Clean(ctx, []domain.Record{
			raw(2, "A", 5, "yesterday", 1.0, "17850", "UK"),
			raw(3, "B", 5, "13/45/2010", 1.0, "17850", "UK"),
			raw(4, "C", 5, "2010-12-01 08:26:00", 1.0, "17850", "UK"),
		})

		require.Len(t, out, 1)
		assert.Equal(t, "C", out[0].Description)
		assert.Equal(t, 2, report.UnparsableDates)
		require.Len(t, report.ParseErrors, 1)
		assert.Contains(t, report.ParseErrors[0], "row 2")
		assert.Contains(t, report.ParseErrors[0], "yesterday")
	})

	t.Run("input is not modified", func(t *testing.T) {
		records := []domain.Record{
			raw(2, "A", 5, "2010-12-01 08:26:00", 1.0, "", "UK"),
		}
		before := records[0]
		cleaner.Clean(ctx, records)
		assert.Equal(t, before, records[0])
	})
}

func TestCleaner_CleanIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cleaner := NewCleaner(discardLogger(), CleanOptions{})

	records := []domain.Record{
		raw(2, "A", 5, "2010-12-01 08:26:00", 2.0, "17850", "UK"),
		raw(3, "B", 3, "2011-01-04 10:00:00", 1.0, "", "UK"),
		raw(4, "C", 0, "2011-01-05 10:00:00", 1.0, "13047", "France"),
		raw(5, "D", 7, "2011-02-10 12:00:00", 0.5, "13047", "France"),
		raw(6, "E", 1, "bad", 0.5, "13047", "France"),
	}

	first, _ := cleaner.Clean(ctx, records)
	second, report := cleaner.Clean(ctx, Records(first))

	assert.Equal(t, first, second)
	assert.Equal(t, 0, report.Dropped())

	for _, rec := range second {
		assert.True(t, rec.HasCustomerID())
		assert.Positive(t, rec.Quantity)
		assert.Positive(t, rec.UnitPrice)
	}
}

func TestNewCleaner_UsesGlobalLogger(t *testing.T) {
	previous := slog.Default()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(func() {
		infrastructure.ResetLoggerForTesting()
		slog.SetDefault(previous)
	})

	var buf bytes.Buffer
	_, err := infrastructure.InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"}, &buf)
	require.NoError(t, err)

	ctx := infrastructure.WithRunID(context.Background(), "run-42")
	NewCleaner(nil, CleanOptions{}).Clean(ctx, []domain.Record{
		raw(2, "A", 5, "2010-12-01 08:26:00", 2.0, "17850", "UK"),
	})

	assert.Contains(t, buf.String(), `"msg":"Cleaning complete"`)
	assert.Contains(t, buf.String(), `"component":"cleaner"`)
	assert.Contains(t, buf.String(), `"run_id":"run-42"`)
}
