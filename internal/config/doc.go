// Package config provides configuration management for retailcli.
// It loads configuration from multiple sources, validates it, and resolves
// the report output paths used by the rest of the application.
//
// # Configuration Sources
//
// Configuration is layered in the following order, later sources winning:
//
//	1. Default values (Default)
//	2. YAML file (retail.yaml, configs/retail.yaml or an explicit path)
//	3. Environment variables
//
// Command line flags in cmd/retail-report are applied on top of the result.
//
// # Environment Variables
//
// All environment variables follow the pattern RETAIL_<SECTION>_<FIELD>:
//
//	RETAIL_PIPELINE_INPUT_PATH="Online Retail.xlsx"
//	RETAIL_PIPELINE_TOP_N=10
//	RETAIL_REPORT_OUTPUT_DIR=reports
//	RETAIL_REPORT_FORMATS=csv,json,xlsx
//	RETAIL_LOGGING_LEVEL=debug
//	RETAIL_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// Validate checks the struct tags with go-playground/validator:
//
//	- Required fields are present
//	- Top-N and chart sizes are positive
//	- Report formats, log levels and exporters are known values
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := config.NewPaths(cfg)
package config
