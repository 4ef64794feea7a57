package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"rdsa-hq/dataval/pkg/checks"
	"rdsa-hq/dataval/pkg/config"
	"rdsa-hq/dataval/pkg/dataset"
	"rdsa-hq/dataval/pkg/history"
	"rdsa-hq/dataval/pkg/schema/rules"
	"rdsa-hq/dataval/pkg/schema/validator"
	"rdsa-hq/dataval/pkg/telemetry/logging"
	"rdsa-hq/dataval/pkg/telemetry/metrics"
	"rdsa-hq/dataval/pkg/telemetry/tracing"
)

// app holds the services shared by the subcommand being run. It is set up
// by the root command's pre-run hook.
var app *env

type env struct {
	cfg     *config.Config
	logger  *logging.Logger
	tracer  *tracing.Tracer
	metrics *metrics.Collector
	checks  *checks.Registry

	storeMu sync.Mutex
	store   history.Store
}

func newEnv(cfg *config.Config, logOut io.Writer) (*env, error) {
	logger, err := logging.Install(logging.FromConfig(cfg.Telemetry.Logging, logOut))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return &env{
		cfg:     cfg,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		checks:  checks.Default(),
	}, nil
}

// close pushes metrics, flushes spans and closes the history store.
// Failures are logged: the command's own outcome has already been decided.
func (e *env) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := e.metrics.Push(ctx); err != nil {
		e.logger.Warn("failed to push metrics", "error", err)
	}
	if err := e.tracer.Shutdown(ctx); err != nil {
		e.logger.Warn("failed to flush traces", "error", err)
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("failed to close history store", "error", err)
		}
		e.store = nil
	}
}

// component returns a logger tagged with the component name.
func (e *env) component(name string) *slog.Logger {
	return e.logger.With("component", name)
}

// loadRules loads the rule configuration from path, falling back to the
// configured path and then to the embedded defaults. With rules.strict set
// the rules are checked eagerly.
func (e *env) loadRules(path string) (*rules.Config, error) {
	if path == "" {
		path = e.cfg.Rules.Path
	}

	var cfg *rules.Config
	if path == "" {
		cfg = rules.Default()
	} else {
		loaded, err := rules.Load(path)
		if err != nil {
			e.metrics.ObserveLoadError("rules")
			return nil, err
		}
		cfg = loaded
	}

	if e.cfg.Rules.Strict {
		if err := cfg.Check(validator.FieldNames()...); err != nil {
			return nil, fmt.Errorf("invalid rule configuration: %w", err)
		}
	}
	return cfg, nil
}

// gate builds the go/no-go gate from the validation config. A negative
// threshold keeps the configured value.
func (e *env) gate(threshold int, strict bool) validator.Gate {
	g := validator.Gate{
		Threshold:    e.cfg.Validation.ErrorThreshold,
		StopOnErrors: e.cfg.Validation.StopOnErrors,
		Strict:       e.cfg.Validation.Strict || strict,
		Logger:       e.component("gate"),
	}
	if threshold >= 0 {
		g.Threshold = threshold
	}
	return g
}

func (e *env) newValidator(r *rules.Config, gate validator.Gate) *validator.Validator {
	return validator.New(r,
		validator.WithChecks(e.checks),
		validator.WithLogger(e.component("validator")),
		validator.WithGate(gate),
	)
}

// csvOptions returns the CSV loading options from the dataset config.
func (e *env) csvOptions() dataset.CSVOptions {
	opts := dataset.CSVOptions{
		NullTokens: e.cfg.Dataset.NullTokens,
		TrimSpace:  e.cfg.Dataset.TrimSpace,
	}
	if r, _ := utf8.DecodeRuneInString(e.cfg.Dataset.Delimiter); r != utf8.RuneError {
		opts.Comma = r
	}
	return opts
}

// historyStore opens the configured history store on first use. It returns
// nil when history is disabled.
func (e *env) historyStore(ctx context.Context) (history.Store, error) {
	if !e.cfg.History.Enabled {
		return nil, nil
	}
	e.storeMu.Lock()
	defer e.storeMu.Unlock()
	if e.store != nil {
		return e.store, nil
	}

	store, err := history.Open(ctx, &history.SQLiteConfig{
		Path:         e.cfg.History.Path,
		Driver:       e.cfg.History.Driver,
		MaxOpenConns: e.cfg.History.MaxOpenConns,
		WALMode:      e.cfg.History.WALMode,
		BusyTimeout:  e.cfg.History.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	e.store = store
	return store, nil
}

// requireHistory is historyStore for the history subcommands, which cannot
// run without a store.
func (e *env) requireHistory(ctx context.Context) (history.Store, error) {
	store, err := e.historyStore(ctx)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("history is disabled (set history.enabled in the config)")
	}
	return store, nil
}

// record stores run in the history when enabled. Failures are logged and
// counted, never returned.
func (e *env) record(ctx context.Context, run *history.Run) {
	store, err := e.historyStore(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "history unavailable", "error", err)
		e.metrics.ObserveRecordError()
		return
	}
	if store == nil {
		return
	}

	ctx, span := e.tracer.Start(ctx, tracing.SpanHistoryRecord)
	defer span.End()
	span.SetAttributes(tracing.AttrRunID.String(run.ID))

	if err := store.Record(ctx, run); err != nil {
		tracing.SetError(span, err)
		e.logger.WarnContext(ctx, "failed to record run", "run_id", run.ID, "error", err)
		e.metrics.ObserveRecordError()
		return
	}
	e.logger.DebugContext(ctx, "run recorded", "run_id", run.ID, "decision", run.Decision)
}

// retention returns the retention settings from the history config.
func (e *env) retention() history.RetentionConfig {
	return history.RetentionConfig{
		RetentionDays: e.cfg.History.Retention.Days,
		Schedule:      e.cfg.History.Retention.Schedule,
	}
}
