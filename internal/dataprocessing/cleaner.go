package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "retailcli/internal/errors"
	"retailcli/internal/infrastructure"
	"retailcli/pkg/contracts/domain"
)

// timestampLayouts are tried in order when parsing InvoiceDate.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/2006",
	"02.01.2006 15:04",
}

// maxExcelSerial is the serial number of 9999-12-31.
const maxExcelSerial = 2958465

// ParseTimestamp parses an invoice timestamp written in one of the common
// layouts or as an Excel serial date number.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial <= 0 || serial > maxExcelSerial {
			return time.Time{}, fmt.Errorf("serial date %v out of range", serial)
		}
		return excelize.ExcelDateToTime(serial, false)
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp layout")
}

// CleanOptions configures the Cleaner.
type CleanOptions struct {
	// MaxParseErrors caps how many ParseError messages the CleanReport keeps.
	// Every failure is still counted.
	MaxParseErrors int
}

// Cleaner filters raw Records into CleanRecords.
type Cleaner struct {
	logger *slog.Logger
	opts   CleanOptions
}

// NewCleaner creates a new cleaner.
func NewCleaner(logger *slog.Logger, opts CleanOptions) *Cleaner {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Cleaner{
		logger: infrastructure.WithComponent(logger, "cleaner"),
		opts:   opts,
	}
}

// Clean drops rows without a customer, then rows with a non-positive
// quantity or unit price, and derives InvoicedAt and Period for the rest.
// Rows whose timestamp does not parse are dropped and counted. The input
// slice is not modified.
func (c *Cleaner) Clean(ctx context.Context, records []domain.Record) ([]domain.CleanRecord, domain.CleanReport) {
	report := domain.CleanReport{InputRows: len(records)}
	clean := make([]domain.CleanRecord, 0, len(records))

	for _, rec := range records {
		if !rec.HasCustomerID() {
			report.MissingCustomer++
			continue
		}
		if rec.Quantity <= 0 || rec.UnitPrice <= 0 {
			report.NonPositiveAmounts++
			continue
		}

		invoicedAt, err := ParseTimestamp(rec.InvoiceDate)
		if err != nil {
			perr := apperrors.NewParseError(rec.SourceRow, rec.InvoiceDate, err)
			report.UnparsableDates++
			if len(report.ParseErrors) < c.opts.MaxParseErrors {
				report.ParseErrors = append(report.ParseErrors, perr.Error())
			}
			c.logger.DebugContext(ctx, "Row dropped, unparsable invoice date",
				slog.Int("row", rec.SourceRow),
				slog.String("value", rec.InvoiceDate))
			continue
		}

		clean = append(clean, domain.CleanRecord{
			Record:     rec,
			InvoicedAt: invoicedAt,
			Period:     domain.PeriodOf(invoicedAt),
		})
	}

	report.OutputRows = len(clean)

	c.logger.InfoContext(ctx, "Cleaning complete",
		slog.Int("input_rows", report.InputRows),
		slog.Int("output_rows", report.OutputRows),
		slog.Int("dropped_missing_customer", report.MissingCustomer),
		slog.Int("dropped_non_positive", report.NonPositiveAmounts),
		slog.Int("dropped_unparsable_date", report.UnparsableDates))

	if report.UnparsableDates > 0 {
		c.logger.WarnContext(ctx, "Rows with unparsable invoice dates were dropped",
			slog.Int("count", report.UnparsableDates))
	}

	return clean, report
}

// Records projects CleanRecords back to their raw Records, so that the
// cleaner can be applied to its own output.
func Records(clean []domain.CleanRecord) []domain.Record {
	out := make([]domain.Record, len(clean))
	for i, rec := range clean {
		out[i] = rec.Record
	}
	return out
}
