// Package shared holds code used across SalesPulse packages that belongs to
// no single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- sales CSV fixtures in both supported layouts
//	- a buffered slog handler for asserting on log output
//	- helpers that write fixtures to temp dirs or encode them as latin1
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    path := testutil.WriteCSV(t, "sales.csv", testutil.SimpleSalesCSV)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
package shared
