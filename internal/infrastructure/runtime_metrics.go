package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records a process resource snapshot at the end of a run
type RuntimeMetrics struct {
	goRoutines   metric.Int64Gauge
	heapAlloc    metric.Int64Gauge
	totalAlloc   metric.Int64Gauge
	memorySystem metric.Int64Gauge
	gcCount      metric.Int64Gauge
	runDuration  metric.Float64Gauge
}

// NewRuntimeMetrics creates the runtime gauges on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"retail_runtime_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"retail_runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAlloc, err := meter.Int64Gauge(
		"retail_runtime_total_alloc_bytes",
		metric.WithDescription("Cumulative bytes allocated for heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memorySystem, err := meter.Int64Gauge(
		"retail_runtime_sys_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"retail_runtime_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Gauge(
		"retail_run_duration_seconds",
		metric.WithDescription("Wall time of the run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goRoutines:   goRoutines,
		heapAlloc:    heapAlloc,
		totalAlloc:   totalAlloc,
		memorySystem: memorySystem,
		gcCount:      gcCount,
		runDuration:  runDuration,
	}, nil
}

// RuntimeStats holds one runtime snapshot
type RuntimeStats struct {
	GoRoutines   int64
	HeapAlloc    int64
	TotalAlloc   int64
	MemorySystem int64
	GCCount      uint32
	RunDuration  time.Duration
}

// Collect reads the runtime statistics and records them
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) *RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &RuntimeStats{
		GoRoutines:   int64(runtime.NumGoroutine()),
		HeapAlloc:    int64(memStats.HeapAlloc),
		TotalAlloc:   int64(memStats.TotalAlloc),
		MemorySystem: int64(memStats.Sys),
		GCCount:      memStats.NumGC,
		RunDuration:  time.Since(startTime),
	}

	rm.goRoutines.Record(ctx, stats.GoRoutines)
	rm.heapAlloc.Record(ctx, stats.HeapAlloc)
	rm.totalAlloc.Record(ctx, stats.TotalAlloc)
	rm.memorySystem.Record(ctx, stats.MemorySystem)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.runDuration.Record(ctx, stats.RunDuration.Seconds())

	return stats
}

// LogValue renders the snapshot as a log group
func (stats *RuntimeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("goroutines", stats.GoRoutines),
		slog.Int64("heap_alloc_mb", stats.HeapAlloc/1024/1024),
		slog.Int64("total_alloc_mb", stats.TotalAlloc/1024/1024),
		slog.Int64("sys_mb", stats.MemorySystem/1024/1024),
		slog.Uint64("gc_cycles", uint64(stats.GCCount)),
		slog.Float64("run_seconds", stats.RunDuration.Seconds()),
	)
}
