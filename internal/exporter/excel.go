package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salespulse/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetKPIs       = "KPIs"
	SheetRegions    = "Sales by Region"
	SheetProducts   = "Top Products"
	SheetTrend      = "Monthly Trend"
	SheetStatistics = "Statistics"
)

// ExcelWriter writes the report as a workbook with one sheet per view and a
// chart next to each series
type ExcelWriter struct{}

// NewExcelWriter creates a new workbook writer
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{}
}

// Format implements Writer
func (w *ExcelWriter) Format() domain.ReportFormat {
	return domain.ReportFormatExcel
}

// Write implements Writer
func (w *ExcelWriter) Write(ctx context.Context, path string, report *domain.SalesReport) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	// the default sheet becomes the KPI sheet
	if err := f.SetSheetName("Sheet1", SheetKPIs); err != nil {
		return err
	}
	if err := writeLabeledSheet(f, SheetKPIs, []string{"KPI", "Value"}, report.KPIs.Labeled(), header, money); err != nil {
		return err
	}

	charts := []struct {
		sheet     string
		keyHeader string
		series    domain.Series
		chartType excelize.ChartType
		title     string
	}{
		{SheetRegions, "Region", report.Regions, excelize.Col, "Sales by Region"},
		{SheetProducts, "Product", report.TopProducts, excelize.Col, "Top Products"},
		{SheetTrend, "Month", report.MonthlyTrend, excelize.Line, "Monthly Sales Trend"},
	}
	for _, c := range charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.NewSheet(c.sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", c.sheet, err)
		}
		if err := writeSeriesSheet(f, c.sheet, c.keyHeader, c.series, header, money); err != nil {
			return err
		}
		if len(c.series) == 0 {
			continue
		}
		if err := addSeriesChart(f, c.sheet, c.chartType, c.title, len(c.series)); err != nil {
			return fmt.Errorf("failed to add chart to %s: %w", c.sheet, err)
		}
	}

	if _, err := f.NewSheet(SheetStatistics); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", SheetStatistics, err)
	}
	stats := append(statisticsRows(report.Statistics), cleaningRows(report.CleanStats)...)
	if err := writeLabeledSheet(f, SheetStatistics, []string{"Statistic", "Value"}, stats, header, money); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeLabeledSheet(f *excelize.File, sheet string, headers []string, rows []domain.LabeledValue, header, money int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, kv := range rows {
		row := i + 2
		if err := f.SetCellValue(sheet, cell("A", row), kv.Label); err != nil {
			return err
		}
		var value interface{} = kv.Value
		if kv.Integer {
			value = int(kv.Value)
		}
		if err := f.SetCellValue(sheet, cell("B", row), value); err != nil {
			return err
		}
		if !kv.Integer {
			if err := f.SetCellStyle(sheet, cell("B", row), cell("B", row), money); err != nil {
				return err
			}
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}

func writeSeriesSheet(f *excelize.File, sheet, keyHeader string, series domain.Series, header, money int) error {
	headers := []string{keyHeader, "Sales"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, p := range series {
		row := []interface{}{p.Key, p.Total}
		if err := f.SetSheetRow(sheet, cell("A", i+2), &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return err
	}
	if len(series) > 0 {
		if err := f.SetCellStyle(sheet, "B2", cell("B", len(series)+1), money); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}

func addSeriesChart(f *excelize.File, sheet string, chartType excelize.ChartType, title string, n int) error {
	ref := fmt.Sprintf("'%s'!", sheet)
	return f.AddChart(sheet, "D2", &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       ref + "$B$1",
			Categories: fmt.Sprintf("%s$A$2:$A$%d", ref, n+1),
			Values:     fmt.Sprintf("%s$B$2:$B$%d", ref, n+1),
		}},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "none"},
		YAxis:  excelize.ChartAxis{MajorGridLines: true},
	})
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
