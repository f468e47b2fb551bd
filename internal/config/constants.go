package config

import "time"

// Application constants
const (
	AppName    = "salespulse"
	AppVersion = "1.0.0"

	// DefaultSourceFile is looked up in the data directory when no source is given
	DefaultSourceFile = "sales_data_sample.csv"

	// Export file names, extension added per format
	ExportBaseName = "sales_summary"

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second
	HealthCheckTimeout = 5 * time.Second

	// Query limits
	MaxPreviewRows = 500
)
