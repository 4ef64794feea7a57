// Package config loads dataval's runtime configuration.
//
// Configuration is read from a YAML file (conventionally dataval.yaml):
//
//	rules:
//	  path: rules.toml
//	validation:
//	  error_threshold: 0
//	  stop_on_errors: true
//	history:
//	  path: data/history.db
//	  retention:
//	    days: 90
//	    schedule: "0 3 * * *"
//	telemetry:
//	  logging:
//	    level: info
//	    format: text
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides (DATAVAL_SECTION_FIELD, for example
//     DATAVAL_HISTORY_PATH or DATAVAL_TELEMETRY_LOGGING_LEVEL)
//  4. Validation, which reports every invalid field at once as a
//     ValidationError
//
// # Singleton
//
// Commands call Initialize once at startup and read the result with
// GetConfig. Library packages take their configuration section as an
// argument instead.
package config
