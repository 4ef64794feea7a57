package config

import "time"

// Config is the root configuration for dataval. It is loaded from a YAML
// file (conventionally dataval.yaml) and may be overridden by DATAVAL_*
// environment variables.
type Config struct {
	// Rules locates the rule configuration used by schema validation.
	Rules RulesConfig `yaml:"rules"`

	// Validation controls the go/no-go gate.
	Validation ValidationConfig `yaml:"validation"`

	// Dataset controls how tabular data is read for expectation runs.
	Dataset DatasetConfig `yaml:"dataset"`

	// History controls persistence of validation runs.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch configures watch mode.
	Watch WatchConfig `yaml:"watch"`
}

// RulesConfig locates the rule configuration.
type RulesConfig struct {
	// Path is the rule configuration TOML file. Empty selects the rules
	// embedded in the binary.
	Path string `yaml:"path"`

	// Strict fails at load time when the rule configuration has no
	// [datatypes] section instead of on the first type lookup.
	// Default: true
	Strict bool `yaml:"strict"`
}

// ValidationConfig controls the go/no-go gate applied to validation reports.
type ValidationConfig struct {
	// ErrorThreshold is the number of errors tolerated before a run is
	// stopped.
	// Default: 0
	ErrorThreshold int `yaml:"error_threshold"`

	// StopOnErrors stops the run when ErrorThreshold is exceeded. When
	// false, the run is reported as degraded.
	// Default: true
	StopOnErrors bool `yaml:"stop_on_errors"`

	// Strict counts warning diagnostics as errors.
	// Default: false
	Strict bool `yaml:"strict"`
}

// DatasetConfig controls CSV reading.
type DatasetConfig struct {
	// Delimiter is the single-character field separator.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// NullTokens are cell values read as null. Unset selects
	// ["", "NA", "nan", "NaN", "None", "NULL", "null"].
	NullTokens []string `yaml:"null_tokens"`

	// TrimSpace trims surrounding whitespace from every cell.
	// Default: false
	TrimSpace bool `yaml:"trim_space"`

	// MaxCategories is the distinct-value limit below which schema
	// inference declares a column categorical.
	// Default: 30
	MaxCategories int `yaml:"max_categories"`
}

// HistoryConfig controls the run history store.
type HistoryConfig struct {
	// Enabled records every validate, check and watch run.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Driver selects the SQLite driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file. Empty keeps history in memory for the
	// lifetime of the process.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// MaxOpenConns limits open database connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// Retention controls pruning of old runs.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls pruning of old runs.
type RetentionConfig struct {
	// Days is how long runs are kept. Zero keeps runs forever.
	// Default: 90
	Days int `yaml:"days"`

	// Schedule is a standard five-field cron expression for pruning.
	// Empty disables scheduled pruning.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress serves the metrics endpoint in watch mode. Empty
	// disables the endpoint.
	// Example: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "dataval"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: ""
	Subsystem string `yaml:"subsystem"`

	// PushgatewayURL pushes metrics after one-shot commands. Empty disables
	// pushing.
	PushgatewayURL string `yaml:"pushgateway_url"`

	// PushJob is the job label used when pushing.
	// Default: "dataval"
	PushJob string `yaml:"push_job"`

	// DurationBuckets defines histogram buckets for run duration (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "dataval"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Path is the schema file or directory to watch.
	Path string `yaml:"path"`

	// Debounce coalesces bursts of file events.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`

	// Extensions are the file extensions that trigger validation.
	// Default: [".toml"]
	Extensions []string `yaml:"extensions"`
}
