package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "retailcli/internal/errors"
	"retailcli/internal/infrastructure"
	"retailcli/pkg/contracts/domain"
)

// PipelineOptions configures a Pipeline
type PipelineOptions struct {
	SheetName      string
	TopN           int
	MaxParseErrors int
}

// DefaultPipelineOptions returns the default options: top 10 products and
// up to 20 retained parse error messages.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		TopN:           10,
		MaxParseErrors: 20,
	}
}

// Result is the read-only snapshot handed to the reporter.
type Result struct {
	RunID       string
	Source      string
	Sheet       string
	GeneratedAt time.Time

	RawRows     int
	Clean       []domain.CleanRecord
	CleanReport domain.CleanReport

	Monthly     domain.SummaryTable
	TopProducts domain.SummaryTable
	Countries   domain.SummaryTable
	Statistics  domain.Statistics
	Profile     domain.DatasetProfile
}

// Pipeline runs Loader, Cleaner and Aggregator in sequence.
type Pipeline struct {
	logger    *slog.Logger
	telemetry *infrastructure.OTelProviders
	loader    *Loader
	cleaner   *Cleaner
	opts      PipelineOptions
}

// NewPipeline creates a new pipeline. A nil telemetry disables tracing and
// metrics.
func NewPipeline(logger *slog.Logger, telemetry *infrastructure.OTelProviders, opts PipelineOptions) *Pipeline {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopProviders(logger)
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultPipelineOptions().TopN
	}

	return &Pipeline{
		logger:    infrastructure.WithComponent(logger, "pipeline"),
		telemetry: telemetry,
		loader:    NewLoader(logger, LoadOptions{SheetName: opts.SheetName}),
		cleaner:   NewCleaner(logger, CleanOptions{MaxParseErrors: opts.MaxParseErrors}),
		opts:      opts,
	}
}

// Run loads the file at path and produces the Result.
//
// A LOAD error is returned alone. When cleaning leaves no rows, the partial
// Result (raw counts and CleanReport) is returned together with an
// EMPTY_RESULT error and no summaries are computed.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	p.logger.InfoContext(ctx, "Starting pipeline run",
		slog.String("input", path),
		slog.Int("top_n", p.opts.TopN))

	table, err := p.load(ctx, path)
	if err != nil {
		p.recordRun(ctx, "load_error")
		p.logger.ErrorContext(ctx, "Failed to load source table", slog.String("error", err.Error()))
		return nil, err
	}

	result, err := p.Process(ctx, table)
	if result != nil {
		result.RunID = runID
	}
	return result, err
}

// Process cleans and aggregates an already loaded table.
func (p *Pipeline) Process(ctx context.Context, table *Table) (*Result, error) {
	result := &Result{
		RunID:       infrastructure.GetRunID(ctx),
		Source:      table.Source,
		Sheet:       table.Sheet,
		GeneratedAt: time.Now().UTC(),
		RawRows:     table.Len(),
	}

	result.Clean, result.CleanReport = p.clean(ctx, table.Records)

	if len(result.Clean) == 0 {
		err := apperrors.NewEmptyResultError(table.Len())
		p.recordRun(ctx, "empty")
		p.logger.WarnContext(ctx, "No rows left after cleaning",
			slog.Int("input_rows", table.Len()))
		result.Profile = Profile(table, result.Clean)
		return result, err
	}

	if err := CheckQuantityBounds(result.Clean); err != nil {
		p.recordRun(ctx, "invalid")
		p.logger.ErrorContext(ctx, "Quantities cannot be summed exactly", slog.String("error", err.Error()))
		return nil, err
	}

	p.aggregate(ctx, table, result)
	p.recordRun(ctx, "success")

	p.logger.InfoContext(ctx, "Pipeline run complete",
		slog.Int("raw_rows", result.RawRows),
		slog.Int("clean_rows", len(result.Clean)),
		slog.Int("months", result.Monthly.Len()),
		slog.Int("countries", result.Countries.Len()),
		slog.Int64("total_quantity", result.Profile.TotalQuantity))

	return result, nil
}

func (p *Pipeline) load(ctx context.Context, path string) (*Table, error) {
	ctx, end := p.telemetry.StartStage(ctx, "load")
	table, err := p.loader.LoadFile(ctx, path)
	end(err)
	if err != nil {
		return nil, err
	}

	p.telemetry.Metrics.RowsLoaded.Add(ctx, int64(table.Len()))
	return table, nil
}

func (p *Pipeline) clean(ctx context.Context, records []domain.Record) ([]domain.CleanRecord, domain.CleanReport) {
	ctx, end := p.telemetry.StartStage(ctx, "clean")
	clean, report := p.cleaner.Clean(ctx, records)
	end(nil)

	m := p.telemetry.Metrics
	m.RowsClean.Add(ctx, int64(report.OutputRows))
	for reason, n := range map[string]int{
		"missing_customer": report.MissingCustomer,
		"non_positive":     report.NonPositiveAmounts,
		"unparsable_date":  report.UnparsableDates,
	} {
		m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
	}

	return clean, report
}

func (p *Pipeline) aggregate(ctx context.Context, table *Table, result *Result) {
	ctx, end := p.telemetry.StartStage(ctx, "aggregate")
	defer end(nil)

	result.Monthly = MonthlyTotals(result.Clean)
	result.TopProducts = TopProducts(result.Clean, p.opts.TopN)
	result.Countries = CountryTotals(result.Clean)
	result.Statistics = Describe(result.Clean)
	result.Profile = Profile(table, result.Clean)

	p.telemetry.Metrics.QuantityTotal.Add(ctx, result.Profile.TotalQuantity)
}

func (p *Pipeline) recordRun(ctx context.Context, status string) {
	p.telemetry.Metrics.Runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
