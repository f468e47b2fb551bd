package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"salespulse/pkg/contracts/domain"
)

func newTestMetrics(t *testing.T) (*SalesMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := CreateSalesMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if hasAttrs(dp.Attributes, attrs) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func hasAttrs(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}

func TestRecordLoad(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	stats := domain.CleanStats{RowsRead: 8, DuplicatesRemoved: 1, InvalidSales: 2, RowsKept: 5}
	m.RecordLoad(ctx, "sample.csv", stats, 10*time.Millisecond, nil)

	assert.Equal(t, int64(8), counterValue(t, reader, "sales_rows_read"))
	assert.Equal(t, int64(3), counterValue(t, reader, "sales_rows_dropped"))
	assert.Equal(t, int64(1), counterValue(t, reader, "sales_rows_dropped", attribute.String("reason", DropReasonDuplicate)))
	assert.Equal(t, int64(2), counterValue(t, reader, "sales_rows_dropped", attribute.String("reason", DropReasonInvalidSales)))
	assert.Equal(t, int64(0), counterValue(t, reader, "sales_rows_dropped", attribute.String("reason", DropReasonInvalidDate)))
	assert.Equal(t, int64(0), counterValue(t, reader, "sales_load_errors"))
}

func TestRecordLoad_Failure(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordLoad(context.Background(), "broken.csv", domain.CleanStats{}, time.Millisecond, errors.New("schema"))

	assert.Equal(t, int64(1), counterValue(t, reader, "sales_load_errors", attribute.String("source", "broken.csv")))
	assert.Equal(t, int64(0), counterValue(t, reader, "sales_rows_read"))
}

func TestRecordCacheAndExports(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCacheLookup(ctx, false)
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, true)
	m.RecordReport(ctx)
	m.RecordExport(ctx, "xlsx", time.Millisecond, nil)
	m.RecordExport(ctx, "csv", time.Millisecond, errors.New("disk full"))

	assert.Equal(t, int64(2), counterValue(t, reader, "sales_cache_hits"))
	assert.Equal(t, int64(1), counterValue(t, reader, "sales_cache_misses"))
	assert.Equal(t, int64(1), counterValue(t, reader, "sales_reports_generated"))
	assert.Equal(t, int64(1), counterValue(t, reader, "sales_exports",
		attribute.String("format", "xlsx"), attribute.String("status", "success")))
	assert.Equal(t, int64(1), counterValue(t, reader, "sales_exports",
		attribute.String("format", "csv"), attribute.String("status", "failure")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *SalesMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordLoad(ctx, "x", domain.CleanStats{RowsRead: 1}, 0, nil)
		m.RecordCacheLookup(ctx, true)
		m.RecordReport(ctx)
		m.RecordExport(ctx, "csv", 0, nil)
	})
}
