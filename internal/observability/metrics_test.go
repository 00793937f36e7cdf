package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*ParseMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewParseMetrics(provider.Meter(InstrumentationName))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestParseMetrics_RecordParse(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordParse(ctx, "graphql", ParseOutcome{Layout: "title_given", Duration: time.Millisecond})
	m.RecordParse(ctx, "cli", ParseOutcome{
		Layout:   "unknown",
		Error:    true,
		Issues:   []string{"parse_mismatch", "illegal_character"},
		Duration: 2 * time.Millisecond,
	})
	m.RecordBatch(ctx, "graphql", 12)

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, data["nameparse.parses.total"]))
	assert.Equal(t, int64(2), sumOf(t, data["nameparse.issues.total"]))

	hist, ok := data["nameparse.parse.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)

	batch, ok := data["nameparse.batch.size"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, batch.DataPoints, 1)
	assert.Equal(t, int64(12), batch.DataPoints[0].Sum)
}

func TestParseMetrics_Requests(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.IncrementActiveRequests(ctx)
	m.IncrementActiveRequests(ctx)
	m.DecrementActiveRequests(ctx)
	m.RecordRequest(ctx, 5*time.Millisecond, false, "query")

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, data["nameparse.requests.active"]))
	assert.Equal(t, int64(1), sumOf(t, data["nameparse.requests.total"]))
}

func TestParseMetrics_Overrides(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordOverrideLoad(ctx, "file", 42, nil)
	m.RecordOverrideLoad(ctx, "file", 0, errors.New("boom"))
	m.RecordAdminDenied(ctx, "invalid_token")
	m.RecordAuthDenied(ctx, "/graphql", "missing_token")
	m.RecordAuthDenied(ctx, "/admin/reload-overrides", "invalid_token")

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, data["nameparse.overrides.reloads.total"]))
	assert.Equal(t, int64(1), sumOf(t, data["nameparse.admin.denied.total"]))
	assert.Equal(t, int64(2), sumOf(t, data["nameparse.auth.denied.total"]))

	gauge, ok := data["nameparse.overrides.size"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(42), gauge.DataPoints[0].Value)
}

func TestParseMetrics_NilReceiver(t *testing.T) {
	var m *ParseMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordParse(ctx, "cli", ParseOutcome{})
		m.RecordBatch(ctx, "cli", 1)
		m.RecordRequest(ctx, time.Second, true, "query")
		m.IncrementActiveRequests(ctx)
		m.DecrementActiveRequests(ctx)
		m.RecordOverrideLoad(ctx, "none", 0, nil)
		m.RecordAdminDenied(ctx, "missing_token")
		m.RecordAuthDenied(ctx, "/graphql", "missing_token")
	})
}
