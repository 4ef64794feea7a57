package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "DATAVAL_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded onto Default, so omitted keys keep their defaults.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention DATAVAL_SECTION_FIELD (e.g., DATAVAL_HISTORY_PATH) and always
// take precedence over the file. An empty path loads the defaults.
//
// The loading sequence is:
// 1. Start from Default
// 2. Decode the YAML file, if any
// 3. Apply environment variable overrides
// 4. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if cfg, err = parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Rules overrides
	envString("RULES_PATH", &cfg.Rules.Path)
	envBool("RULES_STRICT", &cfg.Rules.Strict)

	// Validation overrides
	envInt("VALIDATION_ERROR_THRESHOLD", &cfg.Validation.ErrorThreshold)
	envBool("VALIDATION_STOP_ON_ERRORS", &cfg.Validation.StopOnErrors)
	envBool("VALIDATION_STRICT", &cfg.Validation.Strict)

	// Dataset overrides
	envString("DATASET_DELIMITER", &cfg.Dataset.Delimiter)
	envList("DATASET_NULL_TOKENS", &cfg.Dataset.NullTokens)
	envBool("DATASET_TRIM_SPACE", &cfg.Dataset.TrimSpace)
	envInt("DATASET_MAX_CATEGORIES", &cfg.Dataset.MaxCategories)

	// History overrides
	envBool("HISTORY_ENABLED", &cfg.History.Enabled)
	envString("HISTORY_DRIVER", &cfg.History.Driver)
	envString("HISTORY_PATH", &cfg.History.Path)
	envBool("HISTORY_WAL_MODE", &cfg.History.WALMode)
	envDuration("HISTORY_BUSY_TIMEOUT", &cfg.History.BusyTimeout)
	envInt("HISTORY_RETENTION_DAYS", &cfg.History.Retention.Days)
	envString("HISTORY_RETENTION_SCHEDULE", &cfg.History.Retention.Schedule)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envString("TELEMETRY_METRICS_PUSHGATEWAY_URL", &cfg.Telemetry.Metrics.PushgatewayURL)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envString("TELEMETRY_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)

	// Watch overrides
	envString("WATCH_PATH", &cfg.Watch.Path)
	envDuration("WATCH_DEBOUNCE", &cfg.Watch.Debounce)
	envList("WATCH_EXTENSIONS", &cfg.Watch.Extensions)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envFloat(name string, dst *float64) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// envList splits a comma-separated value. The value "-" sets an empty list.
func envList(name string, dst *[]string) {
	val, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || val == "" {
		return
	}
	if val == "-" {
		*dst = []string{}
		return
	}
	parts := strings.Split(val, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	*dst = parts
}
