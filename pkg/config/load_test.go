package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataval.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
rules:
  path: "rules/custom.toml"
validation:
  error_threshold: 3
  stop_on_errors: false
dataset:
  delimiter: ";"
  null_tokens: ["", "-"]
history:
  driver: sqlite3
  path: "/var/lib/dataval/history.db"
  busy_timeout: 2s
  retention:
    days: 30
    schedule: "30 1 * * 0"
telemetry:
  logging:
    level: debug
    format: json
  metrics:
    listen_address: "127.0.0.1:9464"
watch:
  path: schemas
  debounce: 1s
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Rules.Path != "rules/custom.toml" {
		t.Errorf("Rules.Path = %q, want %q", cfg.Rules.Path, "rules/custom.toml")
	}
	if cfg.Validation.ErrorThreshold != 3 || cfg.Validation.StopOnErrors {
		t.Errorf("Validation = %+v, want threshold 3 without stop", cfg.Validation)
	}
	if cfg.Dataset.Delimiter != ";" {
		t.Errorf("Dataset.Delimiter = %q, want %q", cfg.Dataset.Delimiter, ";")
	}
	if !reflect.DeepEqual(cfg.Dataset.NullTokens, []string{"", "-"}) {
		t.Errorf("Dataset.NullTokens = %q", cfg.Dataset.NullTokens)
	}
	if cfg.History.Driver != "sqlite3" || cfg.History.BusyTimeout != 2*time.Second {
		t.Errorf("History = %+v", cfg.History)
	}
	if cfg.History.Retention.Days != 30 || cfg.History.Retention.Schedule != "30 1 * * 0" {
		t.Errorf("History.Retention = %+v", cfg.History.Retention)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Telemetry.Logging = %+v", cfg.Telemetry.Logging)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Watch.Debounce = %v, want 1s", cfg.Watch.Debounce)
	}

	// Keys the file leaves out keep their defaults.
	if !cfg.History.Enabled || !cfg.History.WALMode {
		t.Errorf("History.Enabled/WALMode = %v/%v, want true/true", cfg.History.Enabled, cfg.History.WALMode)
	}
	if !cfg.Rules.Strict {
		t.Error("Rules.Strict = false, want default true")
	}
	if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Telemetry.Metrics.Path, DefaultMetricsPath)
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("empty file config = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid yaml", "validation: [unclosed", "failed to parse"},
		{"unknown key", "validation:\n  treshold: 2\n", "failed to parse"},
		{"bad driver", "history:\n  driver: postgres\n", "history.driver"},
		{"bad schedule", "history:\n  retention:\n    schedule: \"every day\"\n", "history.retention.schedule"},
		{"bad level", "telemetry:\n  logging:\n    level: verbose\n", "telemetry.logging.level"},
		{"bad delimiter", "dataset:\n  delimiter: \"::\"\n", "dataset.delimiter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
history:
  path: "file.db"
telemetry:
  logging:
    level: info
`)

	t.Setenv("DATAVAL_HISTORY_PATH", "env.db")
	t.Setenv("DATAVAL_HISTORY_ENABLED", "false")
	t.Setenv("DATAVAL_VALIDATION_ERROR_THRESHOLD", "5")
	t.Setenv("DATAVAL_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("DATAVAL_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("DATAVAL_DATASET_NULL_TOKENS", "NA, n/a")
	t.Setenv("DATAVAL_WATCH_DEBOUNCE", "50ms")
	t.Setenv("DATAVAL_HISTORY_RETENTION_DAYS", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.History.Path != "env.db" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "env.db")
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
	if cfg.Validation.ErrorThreshold != 5 {
		t.Errorf("ErrorThreshold = %d, want 5", cfg.Validation.ErrorThreshold)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, "warn")
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("SampleRatio = %v, want 0.25", cfg.Telemetry.Tracing.SampleRatio)
	}
	if !reflect.DeepEqual(cfg.Dataset.NullTokens, []string{"NA", "n/a"}) {
		t.Errorf("NullTokens = %q, want [NA n/a]", cfg.Dataset.NullTokens)
	}
	if cfg.Watch.Debounce != 50*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 50ms", cfg.Watch.Debounce)
	}
	if cfg.History.Retention.Days != DefaultHistoryRetentionDays {
		t.Errorf("Retention.Days = %d, want unparsable override ignored", cfg.History.Retention.Days)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("DATAVAL_RULES_PATH", "rules.toml")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides(\"\") error = %v", err)
	}
	if cfg.Rules.Path != "rules.toml" {
		t.Errorf("Rules.Path = %q, want %q", cfg.Rules.Path, "rules.toml")
	}
	if cfg.Telemetry.Logging.Format != DefaultLoggingFormat {
		t.Errorf("Logging.Format = %q, want %q", cfg.Telemetry.Logging.Format, DefaultLoggingFormat)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	t.Setenv("DATAVAL_HISTORY_DRIVER", "mysql")

	_, err := LoadConfigWithEnvOverrides("")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 1 || verr.Errors[0].Field != "history.driver" {
		t.Errorf("Errors = %v, want one history.driver error", verr.Errors)
	}
}
