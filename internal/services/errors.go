package services

import "errors"

// Sales service errors
var (
	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrInvalidExportName = errors.New("invalid export name")
	ErrNoExportsFound    = errors.New("no exports found")

	// Source errors
	ErrSourceNotConfigured = errors.New("sales source not configured")
)
