package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"

	"salespulse/pkg/contracts/domain"
)

// Summarizer assembles the complete report for a dataset
type Summarizer struct {
	logger *slog.Logger
	config SummarizerConfig
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	TopN        int    // Number of products in the report
	PreviewRows int    // Default number of rows returned by Preview
	DateFormat  string // Format for dates in previews
}

// DefaultSummarizerConfig returns the default summarizer configuration
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		TopN:        DefaultTopN,
		PreviewRows: 5,
		DateFormat:  "2006-01-02",
	}
}

// NewSummarizer creates a summarizer. Zero config fields take their defaults.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	defaults := DefaultSummarizerConfig()
	if config.TopN <= 0 {
		config.TopN = defaults.TopN
	}
	if config.PreviewRows <= 0 {
		config.PreviewRows = defaults.PreviewRows
	}
	if config.DateFormat == "" {
		config.DateFormat = defaults.DateFormat
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		logger: logger,
		config: config,
	}
}

// Config returns the effective configuration
func (s *Summarizer) Config() SummarizerConfig {
	return s.config
}

// Summarize computes every aggregate of ds into one report. topN overrides the
// configured product count when positive.
func (s *Summarizer) Summarize(ctx context.Context, ds *Dataset, topN int) (*domain.SalesReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topN == 0 {
		topN = s.config.TopN
	}

	kpis, err := CalculateKPIs(ds)
	if err != nil {
		return nil, err
	}
	products, err := TopProducts(ds, topN)
	if err != nil {
		return nil, err
	}
	stats, err := Describe(ds)
	if err != nil {
		return nil, err
	}

	report := &domain.SalesReport{
		ID:           uuid.New().String(),
		Source:       ds.Source(),
		GeneratedAt:  time.Now().UTC(),
		KPIs:         kpis,
		Regions:      SalesByRegion(ds),
		TopProducts:  products,
		MonthlyTrend: MonthlySalesTrend(ds),
		Statistics:   stats,
		CleanStats:   ds.Stats(),
	}

	s.logger.DebugContext(ctx, "sales report generated",
		slog.String("report_id", report.ID),
		slog.String("source", report.Source),
		slog.Int("regions", len(report.Regions)),
		slog.Int("months", len(report.MonthlyTrend)))

	return report, nil
}

// Describe computes descriptive statistics of the sales amounts
func Describe(ds *Dataset) (domain.SalesStatistics, error) {
	if ds == nil || ds.Len() == 0 {
		return domain.SalesStatistics{}, &EmptyDatasetError{Op: "describe"}
	}

	amounts := series.New(ds.amounts(), series.Float, FieldSalesAmount)
	sorted := amounts.Float()
	sort.Float64s(sorted)

	return domain.SalesStatistics{
		Count:  amounts.Len(),
		Mean:   round2(amounts.Mean()),
		StdDev: round2(finite(amounts.StdDev())),
		Min:    round2(amounts.Min()),
		Q25:    round2(quantile(sorted, 0.25)),
		Median: round2(quantile(sorted, 0.5)),
		Q75:    round2(quantile(sorted, 0.75)),
		Max:    round2(amounts.Max()),
	}, nil
}

// quantile interpolates linearly between the closest ranks at (n-1)p.
// sorted must be ascending and non-empty.
func quantile(sorted []float64, p float64) float64 {
	pos := float64(len(sorted)-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Preview returns a header row followed by up to n records rendered as text
func (s *Summarizer) Preview(ds *Dataset, n int) [][]string {
	if n <= 0 {
		n = s.config.PreviewRows
	}
	if ds == nil {
		return [][]string{previewHeader()}
	}
	if n > ds.Len() {
		n = ds.Len()
	}
	if n == 0 {
		return [][]string{previewHeader()}
	}

	rows := ds.records[:n]
	orderIDs := make([]string, n)
	dates := make([]string, n)
	regions := make([]string, n)
	products := make([]string, n)
	amounts := make([]string, n)
	for i, r := range rows {
		orderIDs[i] = r.OrderID
		dates[i] = r.OrderDate.Format(s.config.DateFormat)
		regions[i] = r.Region
		products[i] = r.Product
		amounts[i] = strconv.FormatFloat(r.SalesAmount, 'f', 2, 64)
	}

	df := dataframe.New(
		series.New(orderIDs, series.String, FieldOrderID),
		series.New(dates, series.String, FieldOrderDate),
		series.New(regions, series.String, FieldRegion),
		series.New(products, series.String, FieldProduct),
		series.New(amounts, series.String, FieldSalesAmount),
	)
	return df.Records()
}

func previewHeader() []string {
	return []string{FieldOrderID, FieldOrderDate, FieldRegion, FieldProduct, FieldSalesAmount}
}

// finite maps NaN and infinities to zero; a single value has no sample deviation
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
