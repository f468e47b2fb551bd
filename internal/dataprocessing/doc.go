// Package dataprocessing loads raw sales exports, cleans them and computes the
// aggregate views used by the console runner, the HTTP API and the exporters.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Parser: reads a delimited source with a header row, decoding latin-1 by default
// 2. Pipeline: normalizes headers, validates the field mapping and drops bad rows
// 3. Analytics: KPIs, sales by region, top products, monthly trend and statistics
//
// # Usage
//
//	p := dataprocessing.NewPipeline(dataprocessing.DefaultOptions(), logger)
//	ds, err := p.LoadFile("sales_data_sample.csv")
//	if err != nil {
//	    return err
//	}
//
//	kpis, err := dataprocessing.CalculateKPIs(ds)
//	regions := dataprocessing.SalesByRegion(ds)
//	products, err := dataprocessing.TopProducts(ds, dataprocessing.DefaultTopN)
//	trend := dataprocessing.MonthlySalesTrend(ds)
//
// # Data Flow
//
//	CSV → Parser → raw rows → Pipeline → Dataset → Analytics → Reports
//
// # Error Handling
//
// Missing required columns fail the load with a *SchemaError. Rows whose sales
// amount or order date cannot be parsed are dropped and only counted in the
// dataset's CleanStats. Aggregates over an empty dataset return an
// *EmptyDatasetError and bad parameters an *InvalidArgumentError. Every typed
// error matches its sentinel with errors.Is.
//
// # Thread Safety
//
// A Dataset is never modified after loading, so any number of goroutines may
// compute aggregates from the same Dataset concurrently.
package dataprocessing
