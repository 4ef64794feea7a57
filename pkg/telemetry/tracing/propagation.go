package tracing

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Environment variables carrying W3C trace context into a command, so a
// dataval run shows up inside the trace of the CI job or scheduler that
// launched it.
const (
	EnvTraceParent = "TRACEPARENT"
	EnvTraceState  = "TRACESTATE"
)

// ExtractFromEnv returns ctx with the remote span context described by the
// TRACEPARENT and TRACESTATE environment variables. An absent or malformed
// TRACEPARENT leaves ctx unchanged.
func ExtractFromEnv(ctx context.Context) context.Context {
	return ExtractFromEnviron(ctx, os.Environ())
}

// ExtractFromEnviron is ExtractFromEnv over an explicit KEY=value list.
func ExtractFromEnviron(ctx context.Context, environ []string) context.Context {
	carrier := propagation.MapCarrier{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch key {
		case EnvTraceParent:
			if !ValidateTraceParent(value) {
				return ctx
			}
			carrier.Set("traceparent", value)
		case EnvTraceState:
			carrier.Set("tracestate", value)
		}
	}
	if carrier.Get("traceparent") == "" {
		return ctx
	}
	return propagation.TraceContext{}.Extract(ctx, carrier)
}

// InjectToEnviron returns KEY=value entries carrying the span context of
// ctx, for passing to child processes.
func InjectToEnviron(ctx context.Context) []string {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	var env []string
	if v := carrier.Get("traceparent"); v != "" {
		env = append(env, EnvTraceParent+"="+v)
	}
	if v := carrier.Get("tracestate"); v != "" {
		env = append(env, EnvTraceState+"="+v)
	}
	return env
}

// ValidateTraceParent reports whether traceparent is a well-formed W3C
// traceparent value: version-trace_id-parent_id-trace_flags with 2, 32, 16
// and 2 hex digits and non-zero IDs.
func ValidateTraceParent(traceparent string) bool {
	parts := strings.Split(traceparent, "-")
	if len(parts) != 4 {
		return false
	}
	for i, n := range []int{2, 32, 16, 2} {
		if len(parts[i]) != n || !isHexString(parts[i]) {
			return false
		}
	}
	if parts[1] == strings.Repeat("0", 32) || parts[2] == strings.Repeat("0", 16) {
		return false
	}
	return true
}

func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
