// Package logging configures structured logging for dataval.
//
// It builds a log/slog logger from the telemetry.logging configuration
// section:
//
//	logger, err := logging.Install(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//
// Install also makes the logger the slog default, which is where library
// packages obtain their component loggers:
//
//	slog.Default().With("component", "history.sqlite")
//
// Run fields stored in a context with WithRunID, WithSource and
// WithDataAsset are added to every record logged through the *Context
// methods, together with the trace and span IDs of the active span.
package logging
