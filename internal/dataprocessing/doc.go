// Package dataprocessing turns the raw online retail transaction table into
// the monthly, product and country summaries consumed by the reporter.
//
// # Architecture
//
// The package is organized into three stages run by a Pipeline:
//
// 1. Loader: reads the .xlsx or .csv source into Records
// 2. Cleaner: drops rows without a customer or with non-positive amounts and
// derives the invoice month
// 3. Aggregator: sums quantity per month, product and country
//
// Describe and Profile add column statistics and a data set overview.
//
// # Usage
//
//	pipeline := dataprocessing.NewPipeline(logger, providers, dataprocessing.DefaultPipelineOptions())
//	result, err := pipeline.Run(ctx, "Online Retail.xlsx")
//	if errors.IsEmptyResult(err) {
//	    // result holds the clean report only
//	}
//
// # Data Flow
//
//	File → Loader → Records → Cleaner → CleanRecords → Aggregator → SummaryTables
//
// # Error Handling
//
// A source that cannot be opened, lacks a required column or carries a
// non-numeric quantity or price fails with a LOAD error. A timestamp that
// does not parse drops only its row and is counted in the CleanReport. When
// no row survives cleaning Run returns an EMPTY_RESULT error along with the
// partial Result.
//
// All quantity sums are exact integers: every summary table sums to the
// total quantity of the clean set.
package dataprocessing
