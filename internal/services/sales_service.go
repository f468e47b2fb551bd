package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salespulse/internal/cache"
	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// SalesService answers every sales question for the configured source.
// Cleaned datasets are cached per source identity, so repeated calls reuse
// one load until the file changes or the cache is invalidated.
type SalesService struct {
	source     string
	paths      *config.Paths
	cache      *cache.DatasetCache
	summarizer *dataprocessing.Summarizer
	exporter   *exporter.Exporter
	discovery  *files.Discovery
	metrics    *infrastructure.SalesMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// PreviewResult is the first rows of the cleaned dataset as text
type PreviewResult struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

// ExportFile describes an export found in the reports directory
type ExportFile struct {
	Name     string              `json:"name"`
	Format   domain.ReportFormat `json:"format"`
	Size     int64               `json:"size"`
	Modified time.Time           `json:"modified"`
}

// NewSalesService wires the pipeline, cache, summarizer and exporter for the
// configured source. metrics may be nil.
func NewSalesService(cfg config.PipelineConfig, paths *config.Paths, metrics *infrastructure.SalesMetrics, logger *slog.Logger) (*SalesService, error) {
	if paths == nil {
		return nil, apierrors.NewConfigError("paths are required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := PipelineOptions(cfg)
	if err != nil {
		return nil, err
	}

	source := paths.SourcePath(cfg.SourceFile)
	if source == "" {
		return nil, ErrSourceNotConfigured
	}

	pipeline := dataprocessing.NewPipeline(opts, logger)
	loader := &meteredLoader{pipeline: pipeline, metrics: metrics}

	s := &SalesService{
		source: source,
		paths:  paths,
		cache: cache.New(loader, cache.Options{
			Strategy:   cache.KeyStrategy(cfg.CacheKey),
			MaxEntries: cfg.CacheEntries,
		}, logger),
		summarizer: dataprocessing.NewSummarizer(logger.With(slog.String("component", "summarizer")), dataprocessing.SummarizerConfig{
			TopN:        cfg.TopN,
			PreviewRows: cfg.PreviewRows,
		}),
		exporter:  exporter.New(paths, logger),
		discovery: files.NewDiscovery(paths.BaseDir),
		metrics:   metrics,
		tracer:    otel.Tracer(infrastructure.MeterName),
		logger:    infrastructure.WithComponent(logger, "sales_service"),
	}

	s.logger.Info("SalesService initialized",
		slog.String("source", source),
		slog.String("encoding", opts.Encoding),
		slog.String("cache_key", cfg.CacheKey),
		slog.String("reports_dir", paths.ReportsDir))

	return s, nil
}

// Source returns the resolved path of the sales source
func (s *SalesService) Source() string {
	return s.source
}

// Dataset returns the cleaned dataset, loading the source when needed
func (s *SalesService) Dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "sales.load",
		trace.WithAttributes(attribute.String("sales.source", s.source)))
	defer span.End()

	ds, hit, err := s.cache.Get(ctx, s.source)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(s.logger, err).WarnContext(ctx, "sales source load failed",
			slog.String("source", filepath.Base(s.source)))
		return nil, s.wrapLoadError(err)
	}
	s.metrics.RecordCacheLookup(ctx, hit)
	span.SetAttributes(
		attribute.Bool("sales.cache_hit", hit),
		attribute.Int("sales.records", ds.Len()),
	)
	return ds, nil
}

// Report computes the full sales summary. top <= 0 uses the configured product count.
func (s *SalesService) Report(ctx context.Context, top int) (*domain.SalesReport, error) {
	if top < 0 {
		return nil, apierrors.NewInvalidArgumentError("top", fmt.Errorf("must not be negative, got %d", top))
	}

	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "sales.report")
	defer span.End()

	report, err := s.summarizer.Summarize(ctx, ds, top)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, wrapAggregateError("report", err)
	}
	s.metrics.RecordReport(ctx)
	infrastructure.AddSpanEvent(ctx, "sales.report.generated",
		attribute.String("report.id", report.ID),
		attribute.Int("report.regions", len(report.Regions)))

	return report, nil
}

// KPIs returns total sales, average sale and order count
func (s *SalesService) KPIs(ctx context.Context) (domain.KPISet, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.KPISet{}, err
	}
	kpis, err := dataprocessing.CalculateKPIs(ds)
	if err != nil {
		return domain.KPISet{}, wrapAggregateError("kpis", err)
	}
	return kpis, nil
}

// Regions returns total sales per region, largest first
func (s *SalesService) Regions(ctx context.Context) (domain.Series, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.SalesByRegion(ds), nil
}

// Products returns the n best selling products
func (s *SalesService) Products(ctx context.Context, n int) (domain.Series, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	products, err := dataprocessing.TopProducts(ds, n)
	if err != nil {
		return nil, wrapAggregateError("top products", err)
	}
	return products, nil
}

// Trend returns total sales per month in chronological order
func (s *SalesService) Trend(ctx context.Context) (domain.Series, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.MonthlySalesTrend(ds), nil
}

// Describe returns descriptive statistics of the sales amounts
func (s *SalesService) Describe(ctx context.Context) (domain.SalesStatistics, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.SalesStatistics{}, err
	}
	stats, err := dataprocessing.Describe(ds)
	if err != nil {
		return domain.SalesStatistics{}, wrapAggregateError("describe", err)
	}
	return stats, nil
}

// Stats returns what cleaning did to the raw source
func (s *SalesService) Stats(ctx context.Context) (domain.CleanStats, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return domain.CleanStats{}, err
	}
	return ds.Stats(), nil
}

// Preview returns the first rows of the cleaned dataset. rows <= 0 uses the configured count.
func (s *SalesService) Preview(ctx context.Context, rows int) (*PreviewResult, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	table := s.summarizer.Preview(ds, rows)
	return &PreviewResult{
		Columns: table[0],
		Rows:    table[1:],
		Total:   ds.Len(),
	}, nil
}

// Export writes the report in format into the reports directory. A non-empty
// name replaces the default file name; the format's extension is appended
// when missing.
func (s *SalesService) Export(ctx context.Context, format domain.ReportFormat, top int, name string) (*domain.ExportResult, error) {
	path, err := s.exportPath(format, name)
	if err != nil {
		return nil, err
	}

	report, err := s.Report(ctx, top)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "sales.export",
		trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	start := time.Now()
	result, err := s.exporter.ExportTo(ctx, report, format, path)
	s.metrics.RecordExport(ctx, string(format), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, apierrors.NewStorageError(fmt.Sprintf("failed to write %s export", format), err).
			WithContext("format", string(format))
	}

	span.SetAttributes(attribute.Int64("export.size", result.Size))
	return result, nil
}

func (s *SalesService) exportPath(format domain.ReportFormat, name string) (string, error) {
	if !s.supports(format) {
		return "", apierrors.NewInvalidArgumentError("format", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format))
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return s.paths.GetReportPath(exporter.FileName(format)), nil
	}
	if name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", apierrors.NewInvalidArgumentError("name", fmt.Errorf("%w: %q", ErrInvalidExportName, name))
	}
	if !strings.EqualFold(filepath.Ext(name), format.Extension()) {
		name += format.Extension()
	}
	return s.paths.GetReportPath(name), nil
}

func (s *SalesService) supports(format domain.ReportFormat) bool {
	for _, f := range s.exporter.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// Formats lists the export formats the service can write
func (s *SalesService) Formats() []domain.ReportFormat {
	return s.exporter.Formats()
}

// ListExports returns the export files in the reports directory, newest first
func (s *SalesService) ListExports(ctx context.Context) ([]ExportFile, error) {
	entries, err := os.ReadDir(s.paths.ReportsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoExportsFound
	}
	if err != nil {
		return nil, apierrors.NewStorageError("failed to read reports directory", err)
	}

	byExt := make(map[string]domain.ReportFormat, len(s.exporter.Formats()))
	for _, f := range s.exporter.Formats() {
		byExt[f.Extension()] = f
	}

	var exports []ExportFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, ok := byExt[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.DebugContext(ctx, "skipping unreadable export",
				slog.String("name", entry.Name()),
				slog.String("error", err.Error()))
			continue
		}
		exports = append(exports, ExportFile{
			Name:     entry.Name(),
			Format:   format,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	if len(exports) == 0 {
		return nil, ErrNoExportsFound
	}

	sort.Slice(exports, func(i, j int) bool {
		return exports[i].Modified.After(exports[j].Modified)
	})
	return exports, nil
}

// Sources lists the delimited files next to the configured source, newest
// first, with the loaded one marked active
func (s *SalesService) Sources(ctx context.Context) ([]files.SourceFile, error) {
	dir := filepath.Dir(s.source)
	found, err := s.discovery.FindSources(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []files.SourceFile{}, nil
	}
	if err != nil {
		return nil, apierrors.NewStorageError("failed to read data directory", err)
	}

	files.MarkActive(found, s.source)
	s.logger.DebugContext(ctx, "sources discovered",
		slog.String("directory", dir),
		slog.Int("count", len(found)))
	return found, nil
}

// InvalidateCache drops the cached dataset for the source
func (s *SalesService) InvalidateCache() bool {
	return s.cache.Invalidate(s.source)
}

// CacheStats returns a snapshot of dataset cache activity
func (s *SalesService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// wrapLoadError classifies a load failure. Missing files and cancellations
// keep their identity so callers can test for them with errors.Is.
func (s *SalesService) wrapLoadError(err error) error {
	var csvErr *csv.ParseError
	switch {
	case errors.Is(err, dataprocessing.ErrSchema):
		return apierrors.NewSchemaError(filepath.Base(s.source), err)
	case errors.As(err, &csvErr):
		return apierrors.NewParsingError("sales source is not valid delimited text", err).
			WithContext("line", csvErr.Line)
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("failed to load %s: %w", filepath.Base(s.source), err)
	default:
		return apierrors.NewStorageError("failed to load sales source", err).
			WithContext("source", filepath.Base(s.source))
	}
}

func wrapAggregateError(op string, err error) error {
	switch {
	case errors.Is(err, dataprocessing.ErrEmptyDataset):
		return apierrors.NewEmptyDatasetError(op, err)
	case errors.Is(err, dataprocessing.ErrInvalidArgument):
		var argErr *dataprocessing.InvalidArgumentError
		name := op
		if errors.As(err, &argErr) {
			name = argErr.Name
		}
		return apierrors.NewInvalidArgumentError(name, err)
	default:
		return err
	}
}

// meteredLoader records every source load the cache performs
type meteredLoader struct {
	pipeline *dataprocessing.Pipeline
	metrics  *infrastructure.SalesMetrics
}

func (l *meteredLoader) LoadFile(path string) (*dataprocessing.Dataset, error) {
	start := time.Now()
	ds, err := l.pipeline.LoadFile(path)

	var stats domain.CleanStats
	if ds != nil {
		stats = ds.Stats()
	}
	l.metrics.RecordLoad(context.Background(), filepath.Base(path), stats, time.Since(start), err)
	return ds, err
}
