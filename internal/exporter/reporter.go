package exporter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"retailcli/internal/config"
	"retailcli/internal/dataprocessing"
	apperrors "retailcli/internal/errors"
	"retailcli/internal/infrastructure"
)

// Output formats accepted in ReportConfig.Formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatText = "text"
)

// Artifact is one file written by the Reporter.
type Artifact struct {
	Format string
	Path   string
}

// Reporter renders a pipeline Result into the report artifacts.
type Reporter struct {
	cfg       config.ReportConfig
	paths     *config.Paths
	csv       *CSVWriter
	logger    *slog.Logger
	telemetry *infrastructure.OTelProviders
	stdout    io.Writer
}

// NewReporter creates a reporter. The text summary goes to stdout; a nil
// stdout means os.Stdout.
func NewReporter(cfg config.ReportConfig, paths *config.Paths, logger *slog.Logger,
	telemetry *infrastructure.OTelProviders, stdout io.Writer) *Reporter {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopProviders(logger)
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	logger = infrastructure.WithComponent(logger, "reporter")

	return &Reporter{
		cfg:       cfg,
		paths:     paths,
		csv:       NewCSVWriter(paths, logger),
		logger:    logger,
		telemetry: telemetry,
		stdout:    stdout,
	}
}

// Write renders every enabled artifact. Files are written concurrently; the
// text summary is printed afterwards. A result without clean rows only gets
// the JSON and text summaries.
func (r *Reporter) Write(ctx context.Context, result *dataprocessing.Result) ([]Artifact, error) {
	ctx, end := r.telemetry.StartStage(ctx, "report")
	artifacts, err := r.write(ctx, result)
	end(err)
	return artifacts, err
}

func (r *Reporter) write(ctx context.Context, result *dataprocessing.Result) ([]Artifact, error) {
	if err := r.paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("failed to create reports directory", err)
	}

	empty := len(result.Clean) == 0

	var (
		mu        sync.Mutex
		artifacts []Artifact
	)
	g, gctx := errgroup.WithContext(ctx)

	add := func(format, path string, write func() error) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := write(); err != nil {
				return apperrors.NewStorageError("failed to write "+format+" report", err).
					WithContext("path", path)
			}
			r.logger.InfoContext(ctx, "Report written",
				slog.String("format", format),
				slog.String("path", path))
			mu.Lock()
			artifacts = append(artifacts, Artifact{Format: format, Path: path})
			mu.Unlock()
			return nil
		})
	}

	if r.cfg.HasFormat(FormatCSV) && !empty {
		bom := r.cfg.BOMPrefix
		csvFiles := []struct {
			path    string
			headers []string
			rows    [][]string
		}{
			{r.paths.MonthlyTotalsCSV, monthlyHeaders, monthlyRows(result.Monthly)},
			{r.paths.TopProductsCSV, productHeaders, rankedRows(result.TopProducts)},
			{r.paths.CountryTotalsCSV, countryHeaders, rankedRows(result.Countries)},
			{r.paths.StatisticsCSV, statisticHeaders, statisticRows(result.Statistics)},
		}
		for _, file := range csvFiles {
			add(FormatCSV, file.path, func() error {
				return r.csv.WriteCSV(file.path, WriteOptions{
					Headers:   file.headers,
					Records:   file.rows,
					BOMPrefix: bom,
				})
			})
		}
	}

	if r.cfg.HasFormat(FormatJSON) {
		add(FormatJSON, r.paths.SummaryJSON, func() error {
			return WriteSummaryJSON(r.paths.SummaryJSON, NewSummary(result))
		})
	}

	if r.cfg.HasFormat(FormatXLSX) && !empty {
		add(FormatXLSX, r.paths.ReportWorkbook, func() error {
			return SaveWorkbook(r.paths.ReportWorkbook, result, WorkbookOptions{
				ChartCountries: r.cfg.ChartCountries,
				Charts:         true,
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if r.cfg.HasFormat(FormatText) {
		if err := WriteText(r.stdout, result); err != nil {
			return nil, apperrors.NewStorageError("failed to print text summary", err)
		}
	}

	// Goroutines finish in any order.
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Path < artifacts[j].Path })

	if empty {
		r.logger.WarnContext(ctx, "No clean rows, tables and charts skipped",
			slog.Int("raw_rows", result.RawRows))
	}

	return artifacts, nil
}
