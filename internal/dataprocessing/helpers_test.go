package dataprocessing

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"retailcli/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func raw(row int, description string, qty int64, date string, price float64, customer, country string) domain.Record {
	return domain.Record{
		InvoiceNo:   "536365",
		StockCode:   "85123A",
		Description: description,
		Quantity:    qty,
		InvoiceDate: date,
		UnitPrice:   price,
		CustomerID:  customer,
		Country:     country,
		SourceRow:   row,
	}
}

func clean(t *testing.T, description string, qty int64, date, country string) domain.CleanRecord {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", date)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", date, err)
	}
	return domain.CleanRecord{
		Record:     raw(0, description, qty, date, 1.0, "17850", country),
		InvoicedAt: ts,
		Period:     domain.PeriodOf(ts),
	}
}
