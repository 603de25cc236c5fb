package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved output locations of one run.
// This is the single source of truth for report file paths.
type Paths struct {
	ReportsDir string
	LogsDir    string

	// Well-known report files
	MonthlyTotalsCSV string
	TopProductsCSV   string
	CountryTotalsCSV string
	StatisticsCSV    string
	SummaryJSON      string
	ReportWorkbook   string
	MetricsFile      string
	TraceFile        string
}

// NewPaths resolves report paths under outputDir. Relative telemetry file
// names are placed inside the reports directory.
func NewPaths(cfg *Config) (*Paths, error) {
	reportsDir, err := filepath.Abs(cfg.Report.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", cfg.Report.OutputDir, err)
	}

	resolve := func(name string) string {
		if name == "" || filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(reportsDir, name)
	}

	paths := &Paths{
		ReportsDir:       reportsDir,
		LogsDir:          filepath.Dir(cfg.Logging.FilePath),
		MonthlyTotalsCSV: filepath.Join(reportsDir, MonthlyTotalsCSV),
		TopProductsCSV:   filepath.Join(reportsDir, TopProductsCSV),
		CountryTotalsCSV: filepath.Join(reportsDir, CountryTotalsCSV),
		StatisticsCSV:    filepath.Join(reportsDir, StatisticsCSV),
		SummaryJSON:      filepath.Join(reportsDir, SummaryJSON),
		ReportWorkbook:   filepath.Join(reportsDir, ReportWorkbook),
		MetricsFile:      resolve(cfg.Telemetry.MetricsFile),
		TraceFile:        resolve(cfg.Telemetry.TraceFile),
	}

	return paths, nil
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.ReportsDir, filename)
}

// EnsureDirectories creates the reports directory if it doesn't exist
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.ReportsDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.ReportsDir, err)
	}
	return nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved report paths",
		slog.String("reports_dir", p.ReportsDir),
		slog.String("workbook", p.ReportWorkbook),
		slog.String("summary_json", p.SummaryJSON),
		slog.String("metrics_file", p.MetricsFile))
}
