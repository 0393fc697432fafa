package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a function to collect metrics.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
}

func TestRecordDispatch(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records dispatch count", func(t *testing.T) {
		m.RecordDispatch(ctx, "setup", "h", 5*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "demokit.dispatch.count")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "site" && attr.Value.AsString() == "setup" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected to find datapoint for site=setup")
	})

	t.Run("records latency", func(t *testing.T) {
		m.RecordDispatch(ctx, "commands", "0", 10*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "demokit.dispatch.latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records errors when present", func(t *testing.T) {
		m.RecordDispatch(ctx, "setup", "x", time.Millisecond, errors.New("callback failed"))

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "demokit.dispatch.errors")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)
	})
}

func TestRecordUnknownResponse(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordUnknownResponse(context.Background(), "setup")

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "demokit.dispatch.unknown")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)
}

func TestRecordSession(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records successful sessions", func(t *testing.T) {
		m.RecordSession(ctx, true, 500*time.Millisecond)

		rm := collectMetrics(t, reader)
		require.NotNil(t, findMetric(rm, "demokit.session.runs"))
	})

	t.Run("records session latency", func(t *testing.T) {
		m.RecordSession(ctx, false, 100*time.Millisecond)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "demokit.session.latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})
}

func TestOtelMetrics_AllMethods(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()

	m.RecordDispatch(ctx, "setup", "h", 25*time.Millisecond, nil)
	m.RecordDispatch(ctx, "setup", "x", 10*time.Millisecond, errors.New("test"))
	m.RecordUnknownResponse(ctx, "setup")
	m.RecordSession(ctx, true, 100*time.Millisecond)
	m.RecordSession(ctx, false, 50*time.Millisecond)

	rm := collectMetrics(t, reader)

	assert.NotNil(t, findMetric(rm, "demokit.dispatch.count"))
	assert.NotNil(t, findMetric(rm, "demokit.dispatch.latency_ms"))
	assert.NotNil(t, findMetric(rm, "demokit.dispatch.errors"))
	assert.NotNil(t, findMetric(rm, "demokit.dispatch.unknown"))
	assert.NotNil(t, findMetric(rm, "demokit.session.runs"))
	assert.NotNil(t, findMetric(rm, "demokit.session.latency_ms"))
}

func TestNewOtelMetrics_Creation(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotNil(t, m.dispatches)
	assert.NotNil(t, m.dispatchLatency)
	assert.NotNil(t, m.dispatchErrors)
	assert.NotNil(t, m.unknownCount)
	assert.NotNil(t, m.sessionRuns)
	assert.NotNil(t, m.sessionLatency)
}
