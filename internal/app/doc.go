// Package app wires the SalesPulse dashboard server together: configuration,
// logging, OpenTelemetry, services, handlers and the HTTP server lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, SALES_* environment)
//	2. Initialize the slog logger
//	3. Resolve and create the data, reports and logs directories
//	4. Initialize OpenTelemetry and the sales metrics
//	5. Build the sales and health services
//	6. Set up the router and middleware
//	7. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then lets in-flight requests finish
// within the configured shutdown timeout, flushes telemetry and closes the
// log file. The package never calls os.Exit.
package app
