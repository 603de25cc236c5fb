package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "retailcli/internal/errors"
	"retailcli/internal/infrastructure"
	"retailcli/pkg/contracts/domain"
)

// Column names of the source table.
const (
	ColInvoiceNo   = "InvoiceNo"
	ColStockCode   = "StockCode"
	ColDescription = "Description"
	ColQuantity    = "Quantity"
	ColInvoiceDate = "InvoiceDate"
	ColUnitPrice   = "UnitPrice"
	ColCustomerID  = "CustomerID"
	ColCountry     = "Country"
)

// RequiredColumns lists the eight columns every source must expose.
var RequiredColumns = []string{
	ColInvoiceNo, ColStockCode, ColDescription, ColQuantity,
	ColInvoiceDate, ColUnitPrice, ColCustomerID, ColCountry,
}

// headerAliases maps normalized header spellings to column names.
var headerAliases = map[string]string{
	"invoiceno":     ColInvoiceNo,
	"invoice":       ColInvoiceNo,
	"invoicenumber": ColInvoiceNo,
	"stockcode":     ColStockCode,
	"description":   ColDescription,
	"quantity":      ColQuantity,
	"invoicedate":   ColInvoiceDate,
	"unitprice":     ColUnitPrice,
	"price":         ColUnitPrice,
	"customerid":    ColCustomerID,
	"customer":      ColCustomerID,
	"country":       ColCountry,
}

// missingTokens are the cell values treated as absent, following the
// defaults of common dataframe readers.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"<na>": true,
}

// SupportedExtensions lists the source file extensions LoadFile accepts.
var SupportedExtensions = []string{".xlsx", ".xlsm", ".csv", ".txt"}

// headerScanRows bounds how many leading rows are searched for the header.
const headerScanRows = 10

// IsMissing reports whether a cell value denotes a missing value.
func IsMissing(value string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(value))]
}

// LoadOptions configures the Loader.
type LoadOptions struct {
	// SheetName selects the workbook sheet. Empty means the first sheet
	// carrying all required columns.
	SheetName string
}

// Table is the loaded source: its Records in source order plus the number
// of missing cells per required column.
type Table struct {
	Source        string
	Sheet         string
	Records       []domain.Record
	MissingValues map[string]int

	// Date1904 is set when the workbook counts serial dates from 1904.
	Date1904 bool
}

// Len returns the number of Records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Loader reads the raw transaction table into Records.
type Loader struct {
	logger *slog.Logger
	opts   LoadOptions
}

// NewLoader creates a new loader.
func NewLoader(logger *slog.Logger, opts LoadOptions) *Loader {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Loader{
		logger: infrastructure.WithComponent(logger, "loader"),
		opts:   opts,
	}
}

// LoadFile reads an .xlsx or .csv file. Any failure is a LOAD error.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open source file", err).
			WithContext("path", path)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	l.logger.InfoContext(ctx, "Loading source table",
		slog.String("path", path),
		slog.String("format", ext))

	var table *Table
	switch ext {
	case ".xlsx", ".xlsm":
		table, err = l.LoadWorkbook(ctx, f)
	case ".csv", ".txt":
		table, err = l.LoadCSV(ctx, f)
	default:
		return nil, apperrors.NewLoadError(fmt.Sprintf("unsupported file type %q", ext), nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, err
	}

	table.Source = path
	return table, nil
}

// LoadWorkbook reads Records from an Excel workbook.
func (l *Loader) LoadWorkbook(ctx context.Context, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open workbook", err)
	}
	defer f.Close()

	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, apperrors.NewLoadError("failed to read workbook properties", err)
	}
	date1904 := props.Date1904 != nil && *props.Date1904

	sheets := f.GetSheetList()
	if l.opts.SheetName != "" {
		sheets = []string{l.opts.SheetName}
	}

	var lastErr error
	for _, name := range sheets {
		// Raw values keep dates as serial numbers and numbers unformatted.
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			lastErr = apperrors.NewLoadError(fmt.Sprintf("failed to read sheet %q", name), err)
			continue
		}

		table, err := l.parseRows(ctx, rows, workbookDates(date1904))
		if err != nil {
			lastErr = err
			if apperrors.IsLoadError(err) && l.opts.SheetName == "" {
				l.logger.DebugContext(ctx, "Sheet skipped",
					slog.String("sheet_name", name),
					slog.String("reason", err.Error()))
				continue
			}
			return nil, err
		}

		l.logger.InfoContext(ctx, "Found transaction data in sheet",
			slog.String("sheet_name", name),
			slog.Int("records", table.Len()),
			slog.Bool("date1904", date1904))
		table.Sheet = name
		table.Date1904 = date1904
		return table, nil
	}

	if lastErr == nil {
		lastErr = apperrors.NewLoadError("workbook has no sheets", nil)
	}
	return nil, lastErr
}

// LoadCSV reads Records from comma separated text. A UTF-8 BOM is ignored.
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader) (*Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to read csv content", err)
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewLoadError("malformed csv", err)
	}

	return l.parseRows(ctx, rows, nil)
}

// workbookDates converts serial InvoiceDate cells to timestamp text using
// the workbook's date system, so the Cleaner never has to guess it. Values
// that are not in-range serials are returned unchanged.
func workbookDates(date1904 bool) func(string) string {
	return func(value string) string {
		serial, err := strconv.ParseFloat(value, 64)
		if err != nil || serial <= 0 || serial > maxExcelSerial {
			return value
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return value
		}
		return t.Format(time.DateTime)
	}
}

// parseRows locates the header row and converts every following non-blank
// row into a Record, preserving source order. A non-nil decodeDate rewrites
// the InvoiceDate cell.
func (l *Loader) parseRows(ctx context.Context, rows [][]string, decodeDate func(string) string) (*Table, error) {
	headerRow, columnMap, absent := findHeader(rows)
	if headerRow < 0 {
		return nil, apperrors.NewLoadError(
			fmt.Sprintf("missing required columns: %s", strings.Join(absent, ", ")), nil).
			WithContext("missing_columns", absent)
	}

	l.logger.DebugContext(ctx, "Header row found",
		slog.Int("row_number", headerRow+1),
		slog.Any("column_map", columnMap))

	records := make([]domain.Record, 0, len(rows)-headerRow-1)
	missing := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		missing[col] = 0
	}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		cell := func(col string) string {
			idx := columnMap[col]
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		sourceRow := i + 1

		for _, col := range RequiredColumns {
			if IsMissing(cell(col)) {
				missing[col]++
			}
		}

		quantity, err := parseQuantity(cell(ColQuantity))
		if err != nil {
			return nil, apperrors.NewLoadError(fmt.Sprintf("row %d: invalid %s", sourceRow, ColQuantity), err).
				WithContext("row", sourceRow)
		}
		unitPrice, err := parsePrice(cell(ColUnitPrice))
		if err != nil {
			return nil, apperrors.NewLoadError(fmt.Sprintf("row %d: invalid %s", sourceRow, ColUnitPrice), err).
				WithContext("row", sourceRow)
		}

		customerID := cell(ColCustomerID)
		if IsMissing(customerID) {
			customerID = ""
		}

		invoiceDate := cell(ColInvoiceDate)
		if decodeDate != nil {
			invoiceDate = decodeDate(invoiceDate)
		}

		records = append(records, domain.Record{
			InvoiceNo:   cell(ColInvoiceNo),
			StockCode:   cell(ColStockCode),
			Description: cell(ColDescription),
			Quantity:    quantity,
			InvoiceDate: invoiceDate,
			UnitPrice:   unitPrice,
			CustomerID:  customerID,
			Country:     cell(ColCountry),
			SourceRow:   sourceRow,
		})
	}

	l.logger.InfoContext(ctx, "Source table loaded", slog.Int("total_records", len(records)))

	return &Table{Records: records, MissingValues: missing}, nil
}

// findHeader returns the index and column map of the first row among the
// leading rows that names every required column. When none does, the
// columns missing from the best candidate are returned.
func findHeader(rows [][]string) (int, map[string]int, []string) {
	var bestMissing []string

	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		columnMap := make(map[string]int)
		for j, header := range rows[i] {
			if col, ok := headerAliases[normalizeHeader(header)]; ok {
				if _, dup := columnMap[col]; !dup {
					columnMap[col] = j
				}
			}
		}

		var missing []string
		for _, col := range RequiredColumns {
			if _, ok := columnMap[col]; !ok {
				missing = append(missing, col)
			}
		}
		if len(missing) == 0 {
			return i, columnMap, nil
		}
		if bestMissing == nil || len(missing) < len(bestMissing) {
			bestMissing = missing
		}
	}

	if bestMissing == nil {
		bestMissing = append([]string(nil), RequiredColumns...)
	}
	return -1, nil, bestMissing
}

func normalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(header)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// thousandsGrouped matches numbers written with comma thousands separators.
var thousandsGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// cleanNumber strips comma thousands separators. Any other comma, such as a
// decimal comma in "2,55", is rejected.
func cleanNumber(value string) (string, error) {
	value = strings.TrimSpace(value)
	if !strings.Contains(value, ",") {
		return value, nil
	}
	if !thousandsGrouped.MatchString(value) {
		return "", fmt.Errorf("ambiguous comma in number %q", value)
	}
	return strings.ReplaceAll(value, ",", ""), nil
}

// parseQuantity parses an integral quantity. Integral floats such as "6.0"
// are accepted. A missing value parses as zero.
func parseQuantity(value string) (int64, error) {
	if IsMissing(value) {
		return 0, nil
	}
	value, err := cleanNumber(value)
	if err != nil {
		return 0, err
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("quantity %q is not an integer", value)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("quantity %q overflows int64", value)
	}
	return int64(f), nil
}

// parsePrice parses a unit price. A missing value parses as zero.
func parsePrice(value string) (float64, error) {
	if IsMissing(value) {
		return 0, nil
	}
	value, err := cleanNumber(value)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("price %q is not finite", value)
	}
	return f, nil
}
