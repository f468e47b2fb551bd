// Package http implements the HTTP handlers of the SalesPulse dashboard API.
// Handlers parse and validate the request, call the service layer and render
// the result; aggregation rules live in the services package.
//
// # Routes
//
//	GET    /api/health, /api/health/ready, /api/health/live, /api/version
//	GET    /api/system/stats
//	GET    /api/sales/report?top=N
//	GET    /api/sales/kpis | regions | products?n=N | trend
//	GET    /api/sales/preview?rows=N | describe | stats | formats | sources
//	GET    /api/sales/exports
//	POST   /api/sales/exports        {"format":"xlsx","top":10,"name":"q1"}
//	DELETE /api/sales/cache
//	GET    /metrics
//
// # Responses
//
// Successful responses share one envelope:
//
//	{"status": "success", "data": ..., "count": 3}
//
// count is present on list results only. Failures follow RFC 7807 Problem
// Details and are produced by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/data/schema",
//	    "title": "Schema Mismatch",
//	    "status": 422,
//	    "detail": "source sales.csv does not match the field mapping",
//	    "instance": "/api/sales/kpis",
//	    "trace_id": "4bf92f3577b34da6a3ce929d0e0e4736"
//	}
//
// # Testing
//
// Handlers depend on SalesServiceInterface so tests can use a testify mock.
package http
