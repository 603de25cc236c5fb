package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retailcli/internal/config"
	"retailcli/internal/dataprocessing"
	apperrors "retailcli/internal/errors"
	"retailcli/internal/exporter"
	"retailcli/internal/infrastructure"
	"retailcli/internal/validation"
	"retailcli/pkg/contracts"
)

// Process exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitEmptyResult = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags holds the command line overrides. Zero values mean "not given".
type cliFlags struct {
	configPath string
	input      string
	outputDir  string
	sheet      string
	topN       int
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("retail-report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", "", "YAML config file (defaults to retail.yaml or configs/retail.yaml when present)")
	fs.StringVar(&f.input, "in", "", "input transaction table, .xlsx or .csv (default \""+config.DefaultInputPath+"\")")
	fs.StringVar(&f.outputDir, "out", "", "output directory for reports (default \""+config.DefaultOutputDir+"\")")
	fs.StringVar(&f.sheet, "sheet", "", "worksheet to read from an .xlsx input (default: first sheet with a valid header)")
	fs.IntVar(&f.topN, "top", 0, "number of best-selling products to report (default 10)")
	fs.BoolVar(&f.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// apply overlays flags that were given onto cfg and re-validates it.
func (f *cliFlags) apply(cfg *config.Config) error {
	if f.input != "" {
		cfg.Pipeline.InputPath = f.input
	}
	if f.outputDir != "" {
		cfg.Report.OutputDir = f.outputDir
	}
	if f.sheet != "" {
		cfg.Pipeline.SheetName = f.sheet
	}
	if f.topN != 0 {
		cfg.Pipeline.TopN = f.topN
	}
	if err := cfg.Validate(); err != nil {
		return apperrors.NewConfigError("invalid command line override", err)
	}
	return nil
}

// run executes one pipeline run and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	startTime := time.Now()
	bootstrap := slog.New(slog.NewJSONHandler(stderr, nil))

	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		bootstrap.Error("Failed to load configuration", slog.String("error", err.Error()))
		return exitFailure
	}
	if err := flags.apply(cfg); err != nil {
		bootstrap.Error("Failed to apply flags", slog.String("error", err.Error()))
		return exitFailure
	}

	// Console logs go to stderr so stdout only carries the text summary.
	logger, err := infrastructure.InitializeLogger(cfg.Logging, stderr)
	if err != nil {
		bootstrap.Warn("Failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = bootstrap
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.EnsureRunID(ctx)

	paths, err := config.NewPaths(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to resolve paths", slog.String("error", err.Error()))
		return exitFailure
	}
	paths.LogPathResolution(logger)

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateSourceFile(cfg.Pipeline.InputPath); err != nil {
		logger.ErrorContext(ctx, "Invalid input file", slog.String("error", err.Error()))
		return exitFailure
	}
	if err := validator.ValidateOutputDirectory(paths.ReportsDir); err != nil {
		logger.ErrorContext(ctx, "Invalid output directory", slog.String("error", err.Error()))
		return exitFailure
	}

	otelCfg := infrastructure.OTelConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: contracts.Version,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		EnableMetrics:  cfg.Telemetry.MetricsEnabled,
	}
	if cfg.Telemetry.TraceExporter == "stdout" && paths.TraceFile != "" {
		traceFile, err := os.Create(paths.TraceFile)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to create trace file",
				slog.String("path", paths.TraceFile),
				slog.String("error", err.Error()))
			return exitFailure
		}
		defer traceFile.Close()
		otelCfg.TraceWriter = traceFile
	}

	telemetry, err := infrastructure.InitializeOTel(ctx, otelCfg, logger)
	if err != nil {
		logger.WarnContext(ctx, "Failed to initialize telemetry, continuing without it",
			slog.String("error", err.Error()))
		telemetry = infrastructure.NoopProviders(logger)
	}
	defer func() {
		// Flush spans even when ctx was cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.InfoContext(ctx, "Starting retail report",
		slog.String("version", contracts.Version),
		slog.String("input", cfg.Pipeline.InputPath),
		slog.String("output_dir", paths.ReportsDir),
		slog.Int("top_n", cfg.Pipeline.TopN),
		slog.Any("formats", cfg.Report.Formats))

	pipeline := dataprocessing.NewPipeline(logger, telemetry, dataprocessing.PipelineOptions{
		SheetName:      cfg.Pipeline.SheetName,
		TopN:           cfg.Pipeline.TopN,
		MaxParseErrors: cfg.Pipeline.MaxParseErrors,
	})

	code := exitOK
	result, err := pipeline.Run(ctx, cfg.Pipeline.InputPath)
	switch {
	case err == nil:
	case apperrors.IsEmptyResult(err):
		logger.WarnContext(ctx, "No rows survived cleaning, writing summary only",
			slog.String("error", err.Error()))
		code = exitEmptyResult
	default:
		logger.ErrorContext(ctx, "Pipeline failed", slog.String("error", err.Error()))
		return exitFailure
	}

	reporter := exporter.NewReporter(cfg.Report, paths, logger, telemetry, stdout)
	artifacts, err := reporter.Write(ctx, result)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to write reports", slog.String("error", err.Error()))
		return exitFailure
	}

	stats := telemetry.Runtime.Collect(ctx, startTime)
	logger.InfoContext(ctx, "Retail report completed",
		slog.Int("artifacts", len(artifacts)),
		slog.Int("clean_rows", len(result.Clean)),
		slog.Any("runtime", stats))

	if cfg.Telemetry.MetricsEnabled && paths.MetricsFile != "" {
		if err := telemetry.WriteMetricsTextfile(paths.MetricsFile); err != nil {
			logger.WarnContext(ctx, "Failed to write metrics textfile",
				slog.String("path", paths.MetricsFile),
				slog.String("error", err.Error()))
		}
	}

	return code
}
