package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"retailcli/internal/dataprocessing"
	"retailcli/pkg/contracts/domain"
)

// Summary is the JSON document written to summary.json.
type Summary struct {
	RunID       string                `json:"run_id"`
	Source      string                `json:"source"`
	Sheet       string                `json:"sheet,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
	Profile     domain.DatasetProfile `json:"profile"`
	Cleaning    domain.CleanReport    `json:"cleaning"`
	Monthly     domain.SummaryTable   `json:"monthly_totals"`
	TopProducts domain.SummaryTable   `json:"top_products"`
	Countries   domain.SummaryTable   `json:"country_totals"`
	Statistics  domain.Statistics     `json:"statistics"`
}

// NewSummary builds the JSON summary of a pipeline result.
func NewSummary(result *dataprocessing.Result) Summary {
	return Summary{
		RunID:       result.RunID,
		Source:      result.Source,
		Sheet:       result.Sheet,
		GeneratedAt: result.GeneratedAt,
		Profile:     result.Profile,
		Cleaning:    result.CleanReport,
		Monthly:     nonNilRows(result.Monthly),
		TopProducts: nonNilRows(result.TopProducts),
		Countries:   nonNilRows(result.Countries),
		Statistics:  result.Statistics,
	}
}

// nonNilRows makes an empty table encode its rows as [] rather than null.
func nonNilRows(table domain.SummaryTable) domain.SummaryTable {
	if table.Rows == nil {
		table.Rows = []domain.SummaryRow{}
	}
	return table
}

// WriteSummaryJSON writes the indented summary document to path.
func WriteSummaryJSON(path string, summary Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
