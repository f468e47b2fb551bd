package domain

import (
	"fmt"
	"strings"
)

// ReportFormat defines the format of an exported sales summary
type ReportFormat string

const (
	ReportFormatCSV    ReportFormat = "csv"
	ReportFormatExcel  ReportFormat = "xlsx"
	ReportFormatJSON   ReportFormat = "json"
	ReportFormatSQLite ReportFormat = "sqlite"
)

// ReportFormats lists every supported export format
var ReportFormats = []ReportFormat{
	ReportFormatCSV,
	ReportFormatExcel,
	ReportFormatJSON,
	ReportFormatSQLite,
}

// ParseReportFormat converts a user supplied format name. "excel" is accepted
// as an alias for xlsx and "db" for sqlite.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return ReportFormatCSV, nil
	case "xlsx", "excel":
		return ReportFormatExcel, nil
	case "json":
		return ReportFormatJSON, nil
	case "sqlite", "db":
		return ReportFormatSQLite, nil
	default:
		return "", fmt.Errorf("unsupported report format: %q", s)
	}
}

// Extension returns the file extension for the format, including the dot
func (f ReportFormat) Extension() string {
	switch f {
	case ReportFormatSQLite:
		return ".db"
	default:
		return "." + string(f)
	}
}
