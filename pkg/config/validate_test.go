package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"negative threshold", func(c *Config) { c.Validation.ErrorThreshold = -1 }, "validation.error_threshold"},
		{"empty delimiter", func(c *Config) { c.Dataset.Delimiter = "" }, "dataset.delimiter"},
		{"quote delimiter", func(c *Config) { c.Dataset.Delimiter = `"` }, "dataset.delimiter"},
		{"negative categories", func(c *Config) { c.Dataset.MaxCategories = -1 }, "dataset.max_categories"},
		{"driver", func(c *Config) { c.History.Driver = "postgres" }, "history.driver"},
		{"busy timeout", func(c *Config) { c.History.BusyTimeout = -1 }, "history.busy_timeout"},
		{"retention days", func(c *Config) { c.History.Retention.Days = -7 }, "history.retention.days"},
		{"schedule", func(c *Config) { c.History.Retention.Schedule = "* * *" }, "history.retention.schedule"},
		{"logging level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"logging format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"pushgateway", func(c *Config) { c.Telemetry.Metrics.PushgatewayURL = "localhost" }, "telemetry.metrics.pushgateway_url"},
		{"buckets", func(c *Config) { c.Telemetry.Metrics.DurationBuckets = []float64{1, 1} }, "telemetry.metrics.duration_buckets"},
		{"sampler", func(c *Config) { c.Telemetry.Tracing.Enabled = true; c.Telemetry.Tracing.Sampler = "some" }, "telemetry.tracing.sampler"},
		{"exporter", func(c *Config) { c.Telemetry.Tracing.Enabled = true; c.Telemetry.Tracing.Exporter = "jaeger" }, "telemetry.tracing.exporter"},
		{"endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true; c.Telemetry.Tracing.Endpoint = "" }, "telemetry.tracing.endpoint"},
		{"sample ratio", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
		{"debounce", func(c *Config) { c.Watch.Debounce = -1 }, "watch.debounce"},
		{"extension", func(c *Config) { c.Watch.Extensions = []string{"toml"} }, "watch.extensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if len(verr.Errors) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(verr.Errors), verr.Errors)
			}
			if verr.Errors[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Errors[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidate_DisabledSectionsSkipped(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.Metrics.Enabled = false
	cfg.Telemetry.Metrics.Path = ""
	cfg.Telemetry.Tracing.Exporter = "zipkin"

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "history.driver", Message: "bad"}}}
	if got, want := single.Error(), "configuration validation failed: history.driver: bad"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "one"},
		{Field: "b", Message: "two"},
	}}
	got := multi.Error()
	if !strings.HasPrefix(got, "configuration validation failed with 2 errors:") {
		t.Errorf("Error() = %q", got)
	}
	if !strings.Contains(got, "  - a: one\n") || !strings.Contains(got, "  - b: two\n") {
		t.Errorf("Error() = %q, want both field errors", got)
	}

	if got := (ValidationError{}).Error(); got != "configuration validation failed" {
		t.Errorf("empty Error() = %q", got)
	}
}
