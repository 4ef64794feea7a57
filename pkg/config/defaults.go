package config

import "time"

// Default values for configuration fields.
const (
	// Rules defaults
	DefaultRulesStrict = true

	// Validation defaults
	DefaultErrorThreshold = 0
	DefaultStopOnErrors   = true

	// Dataset defaults
	DefaultDelimiter     = ","
	DefaultMaxCategories = 30

	// History defaults
	DefaultHistoryEnabled           = true
	DefaultHistoryDriver            = "sqlite"
	DefaultHistoryPath              = "data/history.db"
	DefaultHistoryMaxOpenConns      = 4
	DefaultHistoryWALMode           = true
	DefaultHistoryBusyTimeout       = 5 * time.Second
	DefaultHistoryRetentionDays     = 90
	DefaultHistoryRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "dataval"
	DefaultMetricsPushJob     = "dataval"
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingExporter    = "otlp"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "dataval"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second

	// Watch defaults
	DefaultWatchDebounce = 200 * time.Millisecond
)

// Default histogram buckets for run duration, in seconds.
var DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// Default watched file extensions.
var DefaultWatchExtensions = []string{".toml"}

// Default returns a configuration with every field set to its default. It is
// the base that LoadConfig decodes a file onto, so boolean defaults survive
// keys the file leaves out.
func Default() *Config {
	cfg := &Config{
		Rules: RulesConfig{
			Strict: DefaultRulesStrict,
		},
		Validation: ValidationConfig{
			ErrorThreshold: DefaultErrorThreshold,
			StopOnErrors:   DefaultStopOnErrors,
		},
		History: HistoryConfig{
			Enabled: DefaultHistoryEnabled,
			WALMode: DefaultHistoryWALMode,
			Path:    DefaultHistoryPath,
			Retention: RetentionConfig{
				Days:     DefaultHistoryRetentionDays,
				Schedule: DefaultHistoryRetentionSchedule,
			},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
			Tracing: TracingConfig{
				Enabled: DefaultTracingEnabled,
				OTLP: OTLPConfig{
					Insecure: DefaultOTLPInsecure,
				},
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Fields that
// were explicitly set are left unchanged. Booleans and fields whose zero
// value is meaningful (history path, retention) are seeded by Default
// instead.
func ApplyDefaults(cfg *Config) {
	// Dataset defaults
	if cfg.Dataset.Delimiter == "" {
		cfg.Dataset.Delimiter = DefaultDelimiter
	}
	if cfg.Dataset.MaxCategories == 0 {
		cfg.Dataset.MaxCategories = DefaultMaxCategories
	}

	// History defaults
	if cfg.History.Driver == "" {
		cfg.History.Driver = DefaultHistoryDriver
	}
	if cfg.History.MaxOpenConns == 0 {
		cfg.History.MaxOpenConns = DefaultHistoryMaxOpenConns
	}
	if cfg.History.BusyTimeout == 0 {
		cfg.History.BusyTimeout = DefaultHistoryBusyTimeout
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}

	// Metrics defaults
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.PushJob == "" {
		cfg.Telemetry.Metrics.PushJob = DefaultMetricsPushJob
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	// Tracing defaults
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = append([]string(nil), DefaultWatchExtensions...)
	}
}
