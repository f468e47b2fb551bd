package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"salespulse/internal/config"
	"salespulse/pkg/contracts/domain"
)

// Writer renders a sales report into a file of one format
type Writer interface {
	Format() domain.ReportFormat
	Write(ctx context.Context, path string, report *domain.SalesReport) error
}

// Exporter writes reports into the reports directory using the writer
// registered for the requested format
type Exporter struct {
	paths   *config.Paths
	writers map[domain.ReportFormat]Writer
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an exporter with every built-in writer registered
func New(paths *config.Paths, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Exporter{
		paths:   paths,
		writers: make(map[domain.ReportFormat]Writer),
		logger:  logger.With(slog.String("component", "exporter")),
		now:     time.Now,
	}
	e.Register(NewCSVWriter(paths))
	e.Register(NewExcelWriter())
	e.Register(NewJSONWriter())
	e.Register(NewSQLiteWriter())
	return e
}

// Register adds or replaces the writer for its format
func (e *Exporter) Register(w Writer) {
	e.writers[w.Format()] = w
}

// Formats lists the registered formats in canonical order
func (e *Exporter) Formats() []domain.ReportFormat {
	var formats []domain.ReportFormat
	for _, f := range domain.ReportFormats {
		if _, ok := e.writers[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}

// FileName returns the export file name for format, e.g. sales_summary.xlsx
func FileName(format domain.ReportFormat) string {
	return config.ExportBaseName + format.Extension()
}

// Export writes report in format into the reports directory
func (e *Exporter) Export(ctx context.Context, report *domain.SalesReport, format domain.ReportFormat) (*domain.ExportResult, error) {
	return e.ExportTo(ctx, report, format, e.paths.GetReportPath(FileName(format)))
}

// ExportTo writes report in format to path
func (e *Exporter) ExportTo(ctx context.Context, report *domain.SalesReport, format domain.ReportFormat, path string) (*domain.ExportResult, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to export")
	}
	w, ok := e.writers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported report format: %q", format)
	}

	start := e.now()
	if err := w.Write(ctx, path, report); err != nil {
		e.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(format)),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to export %s report: %w", format, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat export: %w", err)
	}

	result := &domain.ExportResult{
		ID:        uuid.New().String(),
		Format:    format,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: e.now().UTC(),
	}

	e.logger.InfoContext(ctx, "report exported",
		slog.String("export_id", result.ID),
		slog.String("report_id", report.ID),
		slog.String("format", string(format)),
		slog.String("path", path),
		slog.Int64("size", result.Size),
		slog.Duration("duration", e.now().Sub(start)))

	return result, nil
}
