// Package exporter writes sales reports to disk.
//
// This package contains four writers behind the Writer interface:
//
// CSVWriter: core CSV writing with headers, streaming and a UTF-8 BOM for
// Excel compatibility. Reports are written as section, key, value rows.
//
// ExcelWriter: one sheet per view with a bar or line chart beside each series.
//
// SQLiteWriter: reports, kpis, series and cleaning tables in a fresh database.
//
// JSONWriter: the report as indented JSON.
//
// Example usage:
//
//	exp := exporter.New(paths, logger)
//	result, err := exp.Export(ctx, report, domain.ReportFormatExcel)
//	// result.Path == <reports dir>/sales_summary.xlsx
package exporter
