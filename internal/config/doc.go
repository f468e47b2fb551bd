// Package config provides configuration management for salespulse.
//
// # Configuration Sources
//
// Configuration is built from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SALES_<SECTION>_<FIELD>:
//
//	SALES_SERVER_PORT=8080
//	SALES_LOGGING_LEVEL=debug
//	SALES_PIPELINE_SOURCE_FILE=/data/sales_data_sample.csv
//	SALES_PIPELINE_MAPPING_PRESET=simple
//	SALES_PIPELINE_MAPPING_REGION=Territory
//	SALES_PIPELINE_DATE_LAYOUTS=2006-01-02,1/2/2006
//
// # Path Management
//
// Paths resolves the data, reports and logs directories to absolute paths
// relative to paths.base_dir, or to the executable when no base is set:
//
//	paths, err := cfg.ResolvePaths()
//	source := paths.SourcePath(cfg.Pipeline.SourceFile)
//	report := paths.GetReportPath("sales_summary.xlsx")
package config
