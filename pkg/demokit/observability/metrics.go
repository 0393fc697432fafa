package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records demokit metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one dispatch with its duration and error status.
	RecordDispatch(ctx context.Context, site, key string, duration time.Duration, err error)

	// RecordUnknownResponse records a response that matched no option.
	RecordUnknownResponse(ctx context.Context, site string)

	// RecordSession records a demo session completion.
	RecordSession(ctx context.Context, success bool, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	dispatchErrors  metric.Int64Counter
	unknownCount    metric.Int64Counter
	sessionRuns     metric.Int64Counter
	sessionLatency  metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("demokit")

	dispatches, err := meter.Int64Counter("demokit.dispatch.count",
		metric.WithDescription("Number of option dispatches"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("demokit.dispatch.latency_ms",
		metric.WithDescription("Option dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	dispatchErrors, err := meter.Int64Counter("demokit.dispatch.errors",
		metric.WithDescription("Number of callback errors"),
	)
	if err != nil {
		return nil, err
	}

	unknownCount, err := meter.Int64Counter("demokit.dispatch.unknown",
		metric.WithDescription("Number of responses matching no option"),
	)
	if err != nil {
		return nil, err
	}

	sessionRuns, err := meter.Int64Counter("demokit.session.runs",
		metric.WithDescription("Number of demo sessions"),
	)
	if err != nil {
		return nil, err
	}

	sessionLatency, err := meter.Float64Histogram("demokit.session.latency_ms",
		metric.WithDescription("Demo session latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:      dispatches,
		dispatchLatency: dispatchLatency,
		dispatchErrors:  dispatchErrors,
		unknownCount:    unknownCount,
		sessionRuns:     sessionRuns,
		sessionLatency:  sessionLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records one dispatch.
func (m *otelMetrics) RecordDispatch(ctx context.Context, site, key string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("site", site),
		attribute.String("key", key),
	}

	m.dispatches.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.dispatchLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.dispatchErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordUnknownResponse records a response that matched no option.
func (m *otelMetrics) RecordUnknownResponse(ctx context.Context, site string) {
	m.unknownCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("site", site),
	))
}

// RecordSession records a demo session.
func (m *otelMetrics) RecordSession(ctx context.Context, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.sessionRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.sessionLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
