package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig controls loading, cleaning and aggregation
type PipelineConfig struct {
	InputPath      string `yaml:"input_path" envconfig:"INPUT_PATH" validate:"required"`
	SheetName      string `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	TopN           int    `yaml:"top_n" envconfig:"TOP_N" validate:"min=1,max=10000"`
	MaxParseErrors int    `yaml:"max_parse_errors" envconfig:"MAX_PARSE_ERRORS" validate:"min=0"`
}

// ReportConfig controls which artifacts the reporter writes
type ReportConfig struct {
	OutputDir      string   `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	Formats        []string `yaml:"formats" envconfig:"FORMATS" validate:"min=1,dive,oneof=csv json xlsx text"`
	ChartCountries int      `yaml:"chart_countries" envconfig:"CHART_COUNTRIES" validate:"min=1"`
	BOMPrefix      bool     `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	TraceFile      string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	MetricsFile    string `yaml:"metrics_file" envconfig:"METRICS_FILE" validate:"required_if=MetricsEnabled true"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (when it exists), then RETAIL_* environment variables. An empty path
// searches the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override; unset ones keep file or default values.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// normalize lower-cases enumerations and trims formats
func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Telemetry.TraceExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.TraceExporter))

	formats := make([]string, 0, len(c.Report.Formats))
	seen := make(map[string]bool)
	for _, f := range c.Report.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	c.Report.Formats = formats
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// HasFormat reports whether the reporter should write the given format
func (r ReportConfig) HasFormat(format string) bool {
	for _, f := range r.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"retail.yaml",
		"configs/retail.yaml",
		"../configs/retail.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputPath:      DefaultInputPath,
			TopN:           DefaultTopN,
			MaxParseErrors: DefaultMaxParseErrors,
		},
		Report: ReportConfig{
			OutputDir:      DefaultOutputDir,
			Formats:        []string{"csv", "json", "xlsx", "text"},
			ChartCountries: DefaultChartCountries,
			BOMPrefix:      true,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			TraceFile:      DefaultTraceFile,
			MetricsEnabled: true,
			MetricsFile:    DefaultMetricsFile,
		},
	}
}
