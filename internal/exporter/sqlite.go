package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"salespulse/pkg/contracts/domain"
)

// SQLite table names
const (
	TableReports  = "reports"
	TableKPIs     = "kpis"
	TableSeries   = "series"
	TableCleaning = "cleaning"
)

var sqliteSchema = []string{
	`CREATE TABLE "` + TableReports + `" (
		"id" TEXT PRIMARY KEY,
		"source" TEXT NOT NULL,
		"generated_at" TEXT NOT NULL
	)`,
	`CREATE TABLE "` + TableKPIs + `" (
		"report_id" TEXT NOT NULL REFERENCES ` + TableReports + `(id),
		"position" INTEGER NOT NULL,
		"label" TEXT NOT NULL,
		"value" REAL NOT NULL
	)`,
	`CREATE TABLE "` + TableSeries + `" (
		"report_id" TEXT NOT NULL REFERENCES ` + TableReports + `(id),
		"section" TEXT NOT NULL,
		"position" INTEGER NOT NULL,
		"key" TEXT NOT NULL,
		"total" REAL NOT NULL
	)`,
	`CREATE TABLE "` + TableCleaning + `" (
		"report_id" TEXT NOT NULL REFERENCES ` + TableReports + `(id),
		"label" TEXT NOT NULL,
		"value" REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_series_section ON ` + TableSeries + `(report_id, section, position)`,
}

// SQLiteWriter writes the report into a fresh SQLite database file
type SQLiteWriter struct{}

// NewSQLiteWriter creates a new SQLite writer
func NewSQLiteWriter() *SQLiteWriter {
	return &SQLiteWriter{}
}

// Format implements Writer
func (w *SQLiteWriter) Format() domain.ReportFormat {
	return domain.ReportFormatSQLite
}

// Write implements Writer. An existing file at path is replaced.
func (w *SQLiteWriter) Write(ctx context.Context, path string, report *domain.SalesReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range sqliteSchema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO "`+TableReports+`" ("id", "source", "generated_at") VALUES (?, ?, ?)`,
		report.ID, report.Source, report.GeneratedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	kpiStmt, err := tx.PrepareContext(ctx, `INSERT INTO "`+TableKPIs+`" ("report_id", "position", "label", "value") VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer kpiStmt.Close()
	for i, kv := range report.KPIs.Labeled() {
		if _, err := kpiStmt.ExecContext(ctx, report.ID, i, kv.Label, kv.Value); err != nil {
			return fmt.Errorf("failed to insert kpi %s: %w", kv.Label, err)
		}
	}

	seriesStmt, err := tx.PrepareContext(ctx, `INSERT INTO "`+TableSeries+`" ("report_id", "section", "position", "key", "total") VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer seriesStmt.Close()
	sections := []struct {
		name   string
		series domain.Series
	}{
		{SectionRegion, report.Regions},
		{SectionProduct, report.TopProducts},
		{SectionMonth, report.MonthlyTrend},
	}
	for _, sec := range sections {
		for i, p := range sec.series {
			if _, err := seriesStmt.ExecContext(ctx, report.ID, sec.name, i, p.Key, p.Total); err != nil {
				return fmt.Errorf("failed to insert %s row %q: %w", sec.name, p.Key, err)
			}
		}
	}

	cleaningStmt, err := tx.PrepareContext(ctx, `INSERT INTO "`+TableCleaning+`" ("report_id", "label", "value") VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer cleaningStmt.Close()
	rows := append(statisticsRows(report.Statistics), cleaningRows(report.CleanStats)...)
	for _, kv := range rows {
		if _, err := cleaningStmt.ExecContext(ctx, report.ID, kv.Label, kv.Value); err != nil {
			return fmt.Errorf("failed to insert %s: %w", kv.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}
