package cli

import (
	"errors"
	"fmt"
	"testing"

	"rdsa-hq/dataval/pkg/schema/validator"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{NewConfigError("history.path", "missing required field"), "config error in history.path: missing required field"},
		{NewConfigError("", "file not found"), "config error: file not found"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewCommandError("check", underlying)

	want := "command check failed: underlying error"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is(CommandError, underlying) = false, want true")
	}
}

func TestExitCode(t *testing.T) {
	gateErr := &validator.GateError{Total: 1, Errors: []validator.ColumnError{{Column: "a", Message: "bad"}}}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"config", NewConfigError("", "bad"), ExitFailure},
		{"gate", gateErr, ExitNoGo},
		{"wrapped gate", NewCommandError("validate", gateErr), ExitNoGo},
		{"checks failed", fmt.Errorf("returns: %w", ErrChecksFailed), ExitNoGo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
