package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	MeterName = "retailcli"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	TraceExporter  string    // "stdout", "none"
	TraceWriter    io.Writer // destination of the stdout exporter, os.Stdout when nil
	EnableMetrics  bool
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *promclient.Registry
	Metrics        *PipelineMetrics
	Runtime        *RuntimeMetrics
	Logger         *slog.Logger
}

// InitializeOTel initializes tracing and metrics for one pipeline run.
// Disabled signals fall back to no-op implementations so callers never
// need nil checks.
func InitializeOTel(ctx context.Context, cfg OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = GetLogger()
	}

	logger.DebugContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	metrics, err := CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	providers.Metrics = metrics

	runtimeMetrics, err := NewRuntimeMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}
	providers.Runtime = runtimeMetrics

	return providers, nil
}

// NoopProviders returns providers whose tracer and meter discard everything.
func NoopProviders(logger *slog.Logger) *OTelProviders {
	if logger == nil {
		logger = GetLogger()
	}
	meter := metricnoop.NewMeterProvider().Meter(MeterName)
	// The no-op meter never fails to create instruments.
	metrics, _ := CreatePipelineMetrics(meter)
	runtimeMetrics, _ := NewRuntimeMetrics(meter)
	return &OTelProviders{
		Tracer:  tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:   meter,
		Metrics: metrics,
		Runtime: runtimeMetrics,
		Logger:  logger,
	}
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(cfg OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stdout
		}
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
		)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetTracerProvider(tp)

	return nil
}

// initializeMetrics registers an OpenTelemetry Prometheus exporter on a
// private registry so that each run can be dumped as a textfile.
func initializeMetrics(cfg OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetMeterProvider(mp)

	return nil
}

// PipelineMetrics holds the counters and histograms of the pipeline
type PipelineMetrics struct {
	RowsLoaded    metric.Int64Counter
	RowsDropped   metric.Int64Counter
	RowsClean     metric.Int64Counter
	QuantityTotal metric.Int64Counter
	Runs          metric.Int64Counter
	StageDuration metric.Float64Histogram
}

// CreatePipelineMetrics creates application-specific metrics
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"retail_rows_loaded",
		metric.WithDescription("Number of raw rows read from the source table"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"retail_rows_dropped",
		metric.WithDescription("Number of rows removed by the cleaner, by reason"),
	)
	if err != nil {
		return nil, err
	}

	rowsClean, err := meter.Int64Counter(
		"retail_rows_clean",
		metric.WithDescription("Number of rows retained by the cleaner"),
	)
	if err != nil {
		return nil, err
	}

	quantityTotal, err := meter.Int64Counter(
		"retail_quantity",
		metric.WithDescription("Total quantity over the clean rows"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter(
		"retail_pipeline_runs",
		metric.WithDescription("Number of pipeline runs, by status"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"retail_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:    rowsLoaded,
		RowsDropped:   rowsDropped,
		RowsClean:     rowsClean,
		QuantityTotal: quantityTotal,
		Runs:          runs,
		StageDuration: stageDuration,
	}, nil
}

// StartStage opens a span for a pipeline stage. The returned function ends
// the span, records the stage duration and marks the span failed when err
// is non-nil.
func (p *OTelProviders) StartStage(ctx context.Context, stage string) (context.Context, func(err error)) {
	start := time.Now()
	ctx, span := p.Tracer.Start(ctx, "pipeline."+stage,
		trace.WithAttributes(attribute.String("stage", stage)))

	return ctx, func(err error) {
		status := "success"
		if err != nil {
			status = "failure"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if p.Metrics != nil {
			p.Metrics.StageDuration.Record(ctx, time.Since(start).Seconds(),
				metric.WithAttributes(
					attribute.String("stage", stage),
					attribute.String("status", status),
				))
		}
		span.End()
	}
}

// WriteMetricsTextfile writes the current metric values in the Prometheus
// text format, suitable for the node exporter textfile collector.
func (p *OTelProviders) WriteMetricsTextfile(path string) error {
	if p.Registry == nil {
		return nil
	}
	if err := promclient.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Shutdown flushes and shuts down the OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
