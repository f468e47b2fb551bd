package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"salespulse/pkg/contracts/domain"
)

// Drop reasons reported on the rows dropped counter
const (
	DropReasonDuplicate    = "duplicate"
	DropReasonInvalidSales = "invalid_sales"
	DropReasonInvalidDate  = "invalid_date"
)

// SalesMetrics holds the application instruments
type SalesMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Pipeline metrics
	RowsRead         metric.Int64Counter
	RowsDropped      metric.Int64Counter
	LoadDuration     metric.Float64Histogram
	LoadErrors       metric.Int64Counter
	CacheHits        metric.Int64Counter
	CacheMisses      metric.Int64Counter
	ReportsGenerated metric.Int64Counter

	// Export metrics
	ExportsTotal   metric.Int64Counter
	ExportDuration metric.Float64Histogram
}

// CreateSalesMetrics registers the application instruments on meter
func CreateSalesMetrics(meter metric.Meter) (*SalesMetrics, error) {
	m := &SalesMetrics{}
	var err error

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.HTTPRequestsTotal, "http_requests", "Total number of HTTP requests"},
		{&m.RowsRead, "sales_rows_read", "Data rows read from sales sources"},
		{&m.RowsDropped, "sales_rows_dropped", "Rows removed during cleaning, by reason"},
		{&m.LoadErrors, "sales_load_errors", "Sales source loads that failed"},
		{&m.CacheHits, "sales_cache_hits", "Dataset cache hits"},
		{&m.CacheMisses, "sales_cache_misses", "Dataset cache misses"},
		{&m.ReportsGenerated, "sales_reports_generated", "Sales reports generated"},
		{&m.ExportsTotal, "sales_exports", "Report exports, by format and status"},
	}
	for _, c := range counters {
		if *c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
		}
	}

	histograms := []struct {
		target *metric.Float64Histogram
		name   string
		desc   string
	}{
		{&m.HTTPRequestDuration, "http_request_duration", "HTTP request duration in seconds"},
		{&m.LoadDuration, "sales_load_duration", "Sales source load and clean duration in seconds"},
		{&m.ExportDuration, "sales_export_duration", "Report export duration in seconds"},
	}
	for _, h := range histograms {
		if *h.target, err = meter.Float64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("s")); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", h.name, err)
		}
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_active_requests: %w", err)
	}

	return m, nil
}

// RecordLoad records a completed or failed source load
func (m *SalesMetrics) RecordLoad(ctx context.Context, source string, stats domain.CleanStats, duration time.Duration, err error) {
	if m == nil {
		return
	}
	src := attribute.String("source", source)

	status := "success"
	if err != nil {
		status = "failure"
		m.LoadErrors.Add(ctx, 1, metric.WithAttributes(src))
	}
	m.LoadDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(src, attribute.String("status", status)))
	if err != nil {
		return
	}

	m.RowsRead.Add(ctx, int64(stats.RowsRead), metric.WithAttributes(src))
	drops := []struct {
		reason string
		n      int
	}{
		{DropReasonDuplicate, stats.DuplicatesRemoved},
		{DropReasonInvalidSales, stats.InvalidSales},
		{DropReasonInvalidDate, stats.InvalidDates},
	}
	for _, d := range drops {
		if d.n > 0 {
			m.RowsDropped.Add(ctx, int64(d.n), metric.WithAttributes(src, attribute.String("reason", d.reason)))
		}
	}
}

// RecordCacheLookup counts a dataset cache hit or miss
func (m *SalesMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Add(ctx, 1)
	} else {
		m.CacheMisses.Add(ctx, 1)
	}
}

// RecordReport counts a generated report
func (m *SalesMetrics) RecordReport(ctx context.Context) {
	if m == nil {
		return
	}
	m.ReportsGenerated.Add(ctx, 1)
}

// RecordExport records one export attempt
func (m *SalesMetrics) RecordExport(ctx context.Context, format string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("format", format), attribute.String("status", status))
	m.ExportsTotal.Add(ctx, 1, attrs)
	m.ExportDuration.Record(ctx, duration.Seconds(), attrs)
}
