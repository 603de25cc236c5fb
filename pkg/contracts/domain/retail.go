package domain

import (
	"fmt"
	"time"
)

// Record represents one raw transaction line as read from the source table.
// It is never modified after loading.
type Record struct {
	InvoiceNo   string  `json:"invoice_no"`
	StockCode   string  `json:"stock_code"`
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity"`
	InvoiceDate string  `json:"invoice_date"` // raw timestamp text, parsed during cleaning
	UnitPrice   float64 `json:"unit_price"`
	CustomerID  string  `json:"customer_id,omitempty"` // empty when absent
	Country     string  `json:"country"`

	// SourceRow is the 1-based row number in the source file.
	SourceRow int `json:"source_row"`
}

// HasCustomerID reports whether the customer identifier is present.
func (r Record) HasCustomerID() bool {
	return r.CustomerID != ""
}

// CleanRecord is a Record that passed the identity and positivity filters.
// CustomerID is present, Quantity > 0 and UnitPrice > 0.
type CleanRecord struct {
	Record

	InvoicedAt time.Time `json:"invoiced_at"`
	Period     Period    `json:"period"`
}

// Period is a calendar month used as a grouping key.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// PeriodOf truncates t to its year and month.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Before reports whether p is chronologically earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// SummaryRow is one group of a SummaryTable.
type SummaryRow struct {
	Key   string `json:"key"`
	Total int64  `json:"total"`
}

// SummaryTable maps a grouping key to the summed quantity of the group.
// Rows are ordered: chronologically for periods, by descending total otherwise.
// A SummaryTable is a read-only snapshot.
type SummaryTable struct {
	Dimension string       `json:"dimension"`
	Rows      []SummaryRow `json:"rows"`
}

// Len returns the number of groups in the table.
func (t SummaryTable) Len() int {
	return len(t.Rows)
}

// Sum returns the sum of all group totals.
func (t SummaryTable) Sum() int64 {
	var sum int64
	for _, row := range t.Rows {
		sum += row.Total
	}
	return sum
}

// Head returns a table with at most n leading rows.
func (t SummaryTable) Head(n int) SummaryTable {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return SummaryTable{Dimension: t.Dimension, Rows: t.Rows[:n]}
}

// CleanReport describes what the cleaning pass dropped and why.
type CleanReport struct {
	InputRows          int      `json:"input_rows"`
	OutputRows         int      `json:"output_rows"`
	MissingCustomer    int      `json:"dropped_missing_customer"`
	NonPositiveAmounts int      `json:"dropped_non_positive"`
	UnparsableDates    int      `json:"dropped_unparsable_date"`
	ParseErrors        []string `json:"parse_errors,omitempty"`
}

// Dropped returns the total number of rows removed.
func (r CleanReport) Dropped() int {
	return r.MissingCustomer + r.NonPositiveAmounts + r.UnparsableDates
}

// ColumnStats holds describe-style statistics for one numeric column.
type ColumnStats struct {
	Column     string  `json:"column"`
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	Min        float64 `json:"min"`
	Q1         float64 `json:"q1"`
	Median     float64 `json:"median"`
	Q3         float64 `json:"q3"`
	Max        float64 `json:"max"`
	LowerFence float64 `json:"lower_fence"`
	UpperFence float64 `json:"upper_fence"`
	Outliers   int     `json:"outliers"`
}

// IQR returns the interquartile range.
func (s ColumnStats) IQR() float64 {
	return s.Q3 - s.Q1
}

// Statistics groups the numeric column statistics of the clean data set.
type Statistics struct {
	Quantity  ColumnStats `json:"quantity"`
	UnitPrice ColumnStats `json:"unit_price"`
}

// DatasetProfile summarises the raw table and the clean set.
type DatasetProfile struct {
	RawRows       int            `json:"raw_rows"`
	CleanRows     int            `json:"clean_rows"`
	MissingValues map[string]int `json:"missing_values"`
	Countries     []string       `json:"countries"`
	TotalQuantity int64          `json:"total_quantity"`
	FirstPeriod   string         `json:"first_period,omitempty"`
	LastPeriod    string         `json:"last_period,omitempty"`
}
