// Package exporter renders a pipeline Result into report artifacts.
//
// CSVWriter writes the summary tables as CSV files with an optional UTF-8 BOM
// for Excel. BuildWorkbook lays the same tables out in an .xlsx workbook with
// a Charts sheet holding the monthly trend line and the top product and
// country column charts. WriteSummaryJSON and WriteText produce the machine
// and human readable summaries.
//
// Reporter ties these together and writes the enabled formats concurrently:
//
//	reporter := exporter.NewReporter(cfg.Report, paths, logger, providers, os.Stdout)
//	artifacts, err := reporter.Write(ctx, result)
package exporter
