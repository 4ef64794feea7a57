package cli

import (
	"errors"
	"fmt"

	"rdsa-hq/dataval/pkg/schema/validator"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1

	// ExitNoGo means the data or schema was checked and rejected, as
	// opposed to the command failing to run.
	ExitNoGo = 2
)

// ErrChecksFailed is returned by commands whose checks ran but did not all
// pass.
var ErrChecksFailed = errors.New("checks failed")

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Message
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var gateErr *validator.GateError
	if errors.As(err, &gateErr) || errors.Is(err, ErrChecksFailed) {
		return ExitNoGo
	}
	return ExitFailure
}
