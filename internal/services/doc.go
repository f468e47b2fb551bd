// Package services implements the business logic layer of SalesPulse.
// It sits between the HTTP handlers and the data processing packages so
// that loading, caching and aggregation rules live in one place.
//
// # Available Services
//
//	- SalesService: loads the configured source through the dataset cache
//	  and answers the KPI, region, product, trend, preview, describe and
//	  export questions
//	- HealthService: liveness, readiness and runtime statistics
//
// # Error Handling
//
// Services return *errors.AppError values typed by what went wrong:
//
//	- SCHEMA when the source lacks a mapped column
//	- EMPTY_DATASET when an aggregate needs at least one record
//	- INVALID_ARGUMENT for a rejected top, n, format or export name
//	- PARSING when the source is not delimited text
//	- STORAGE for load and export I/O failures
//
// The underlying dataprocessing error stays in the chain, so errors.Is and
// errors.As keep working. Missing sources and cancelled contexts are wrapped
// with fmt.Errorf only and keep their fs.ErrNotExist or context identity.
//
// # Observability
//
// Every load, report and export runs in its own span on the global tracer.
// Loads, cache lookups, reports and exports are counted on the
// SalesMetrics instruments passed to NewSalesService.
package services
