package config

// Application constants
const (
	// Application Info
	AppName = "retailcli"

	// EnvPrefix is the prefix of every environment variable, e.g. RETAIL_PIPELINE_TOP_N
	EnvPrefix = "RETAIL"

	// Pipeline defaults
	DefaultInputPath      = "Online Retail.xlsx"
	DefaultTopN           = 10
	DefaultMaxParseErrors = 20

	// Report defaults
	DefaultOutputDir      = "reports"
	DefaultChartCountries = 10

	// Report file names
	MonthlyTotalsCSV = "monthly_totals.csv"
	TopProductsCSV   = "top_products.csv"
	CountryTotalsCSV = "country_totals.csv"
	StatisticsCSV    = "statistics.csv"
	SummaryJSON      = "summary.json"
	ReportWorkbook   = "retail_report.xlsx"

	// Log and telemetry defaults
	DefaultLogLevel    = "info"
	DefaultLogFile     = "logs/retailcli.log"
	DefaultTraceFile   = "traces.json"
	DefaultMetricsFile = "metrics.prom"
)
