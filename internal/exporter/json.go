package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"salespulse/pkg/contracts/domain"
)

// JSONWriter writes the report as indented JSON
type JSONWriter struct{}

// NewJSONWriter creates a new JSON writer
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

// Format implements Writer
func (w *JSONWriter) Format() domain.ReportFormat {
	return domain.ReportFormatJSON
}

// Write implements Writer
func (w *JSONWriter) Write(ctx context.Context, path string, report *domain.SalesReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}
