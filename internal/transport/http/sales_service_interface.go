package http

import (
	"context"

	"salespulse/internal/cache"
	"salespulse/internal/files"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

// SalesServiceInterface defines the sales operations the handlers need
type SalesServiceInterface interface {
	Report(ctx context.Context, top int) (*domain.SalesReport, error)
	KPIs(ctx context.Context) (domain.KPISet, error)
	Regions(ctx context.Context) (domain.Series, error)
	Products(ctx context.Context, n int) (domain.Series, error)
	Trend(ctx context.Context) (domain.Series, error)
	Describe(ctx context.Context) (domain.SalesStatistics, error)
	Stats(ctx context.Context) (domain.CleanStats, error)
	Preview(ctx context.Context, rows int) (*services.PreviewResult, error)

	Export(ctx context.Context, format domain.ReportFormat, top int, name string) (*domain.ExportResult, error)
	ListExports(ctx context.Context) ([]services.ExportFile, error)
	Formats() []domain.ReportFormat
	Sources(ctx context.Context) ([]files.SourceFile, error)

	InvalidateCache() bool
	CacheStats() cache.Stats
}
