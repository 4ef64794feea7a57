package expectations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/itchyny/timefmt-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rdsa-hq/dataval/pkg/checks"
	"rdsa-hq/dataval/pkg/dataset"
	"rdsa-hq/dataval/pkg/numfmt"
	"rdsa-hq/dataval/pkg/schema/rules"
	"rdsa-hq/dataval/pkg/values"
)

// Runner evaluates suites against tables.
type Runner struct {
	rules  *rules.Config
	checks *checks.Registry
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithRules sets the rule configuration used to classify data types.
func WithRules(cfg *rules.Config) Option {
	return func(r *Runner) {
		r.rules = cfg
	}
}

// WithChecks sets the registry custom_check expectations resolve against.
func WithChecks(reg *checks.Registry) Option {
	return func(r *Runner) {
		r.checks = reg
	}
}

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner using the default rules and built-in checks
// unless overridden.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		rules:  rules.Default(),
		checks: checks.Default(),
		logger: slog.Default().With("component", "expectations"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates every expectation of suite against table. It stops early
// only when ctx is cancelled, returning the partial result and ctx.Err().
func (r *Runner) Run(ctx context.Context, table *dataset.Table, suite *Suite) (*Result, error) {
	return r.run(ctx, table, suite, suite.Expectations)
}

// RunColumn evaluates only the expectations of suite that target column.
func (r *Runner) RunColumn(ctx context.Context, table *dataset.Table, column string, suite *Suite) (*Result, error) {
	return r.run(ctx, table, suite, suite.ForColumn(column))
}

func (r *Runner) run(ctx context.Context, table *dataset.Table, suite *Suite, exps []Expectation) (*Result, error) {
	ctx, span := otel.Tracer("dataval/expectations").Start(ctx, "expectations.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("suite.name", suite.Name),
		attribute.String("table.name", table.Name),
		attribute.Int("table.rows", table.Len()),
		attribute.Int("suite.expectations", len(exps)),
	)

	start := time.Now()
	result := &Result{
		Success:   true,
		Suite:     suite.Name,
		DataAsset: suite.DataAsset,
		Table:     table.Name,
		Results:   make([]ExpectationResult, 0, len(exps)),
	}

	for _, e := range exps {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return result, err
		}
		result.add(r.evaluate(table, e))
	}

	r.logger.DebugContext(ctx, "suite evaluated",
		"suite", suite.Name,
		"table", table.Name,
		"evaluated", result.Summary.Evaluated,
		"failed", result.Summary.Unsuccessful,
		"duration", time.Since(start),
	)
	span.SetAttributes(attribute.Int("suite.failed", result.Summary.Unsuccessful))
	if result.Success {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, "expectations failed")
	}
	return result, nil
}

// evaluate runs a single expectation.
func (r *Runner) evaluate(table *dataset.Table, e Expectation) ExpectationResult {
	res := ExpectationResult{ExpectationType: e.Type, Column: e.Column}

	vals, ok := table.Column(e.Column)
	if e.Type == ExpectColumnToExist {
		res.Success = ok
		if !ok {
			res.Details = &Details{Error: fmt.Sprintf("column '%s' not found in table '%s'", e.Column, table.Name)}
		}
		return res
	}
	if !ok {
		res.Details = &Details{Error: fmt.Sprintf("column '%s' not found in table '%s'", e.Column, table.Name)}
		return res
	}

	if e.Type == ExpectValuesNotNull {
		return finish(res, countNulls(vals))
	}
	if e.Type == ExpectValuesUnique {
		return finish(res, duplicates(vals))
	}

	pred, err := r.predicate(e)
	if err != nil {
		res.Details = &Details{ElementCount: len(vals), Error: err.Error()}
		return res
	}
	return finish(res, unexpected(vals, pred))
}

// predicate builds the per-value test for a value-wise expectation.
func (r *Runner) predicate(e Expectation) (func(any) bool, error) {
	switch e.Type {
	case ExpectValuesOfType:
		dt, _ := e.Kwargs["type_"].(string)
		return r.typePredicate(dt), nil

	case ExpectValueLengthsToEqual:
		n, _ := values.Int(e.Kwargs["value"])
		return func(v any) bool {
			return int64(utf8.RuneCountInString(values.String(v))) == n
		}, nil

	case ExpectValueLengthsBetween:
		minLen, hasMin := values.Int(e.Kwargs["min_value"])
		maxLen, hasMax := values.Int(e.Kwargs["max_value"])
		return func(v any) bool {
			n := int64(utf8.RuneCountInString(values.String(v)))
			return (!hasMin || n >= minLen) && (!hasMax || n <= maxLen)
		}, nil

	case ExpectValuesBetween:
		return betweenPredicate(e.Kwargs["min_value"], e.Kwargs["max_value"])

	case ExpectValuesInSet:
		set, _ := e.Kwargs["value_set"].([]any)
		return func(v any) bool { return inSet(v, set) }, nil

	case ExpectValuesMatchRegex:
		pattern, _ := e.Kwargs["regex"].(string)
		re, err := regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
		}
		return func(v any) bool {
			ok, err := re.MatchString(values.String(v))
			return err == nil && ok
		}, nil

	case ExpectValuesMatchStrftimeFormat:
		format, _ := e.Kwargs["strftime_format"].(string)
		return func(v any) bool {
			if t, ok := v.(time.Time); ok {
				_, err := timefmt.Parse(timefmt.Format(t, format), format)
				return err == nil
			}
			_, err := timefmt.Parse(values.String(v), format)
			return err == nil
		}, nil

	case ExpectValuesMatchNumberFormat:
		template, _ := e.Kwargs["number_format"].(string)
		f, err := numfmt.Parse(template)
		if err != nil {
			return nil, fmt.Errorf("invalid number format %q: %w", template, err)
		}
		return func(v any) bool {
			if s, ok := v.(string); ok {
				return f.Matches(s)
			}
			_, err := f.Format(v)
			return err == nil
		}, nil

	case ExpectValuesPassCustomCheck:
		name, _ := e.Kwargs["check"].(string)
		check, ok := r.checks.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("custom check '%s' is not registered", name)
		}
		return check.Fn, nil
	}
	return nil, fmt.Errorf("unsupported expectation type '%s'", e.Type)
}

// typePredicate reports whether a cell converts to the declared data_type.
func (r *Runner) typePredicate(dataType string) func(any) bool {
	switch r.rules.CategoryOf(dataType) {
	case rules.CategoryNumeric:
		if isIntegerType(dataType) {
			return func(v any) bool {
				_, ok := values.Int(v)
				return ok
			}
		}
		return func(v any) bool {
			_, ok := values.Float(v)
			return ok
		}
	case rules.CategoryDatetime:
		return func(v any) bool {
			_, err := values.Time(v)
			return err == nil
		}
	case rules.CategoryBoolean:
		return func(v any) bool {
			_, ok := values.Bool(v)
			return ok
		}
	}
	return func(any) bool { return true }
}

func isIntegerType(dataType string) bool {
	return strings.Contains(strings.ToLower(dataType), "int")
}

// betweenPredicate compares numerically when the bounds are numbers and as
// datetimes otherwise.
func betweenPredicate(lo, hi any) (func(any) bool, error) {
	numeric := (lo == nil || values.IsNumber(lo)) && (hi == nil || values.IsNumber(hi))
	if numeric {
		minF, hasMin := values.Float(lo)
		maxF, hasMax := values.Float(hi)
		return func(v any) bool {
			f, ok := values.Float(v)
			return ok && (!hasMin || f >= minF) && (!hasMax || f <= maxF)
		}, nil
	}

	var minT, maxT time.Time
	var err error
	if lo != nil {
		if minT, err = values.Time(lo); err != nil {
			return nil, fmt.Errorf("min_value %v: %w", lo, err)
		}
	}
	if hi != nil {
		if maxT, err = values.Time(hi); err != nil {
			return nil, fmt.Errorf("max_value %v: %w", hi, err)
		}
	}
	return func(v any) bool {
		t, err := values.Time(v)
		return err == nil && (lo == nil || !t.Before(minT)) && (hi == nil || !t.After(maxT))
	}, nil
}

// inSet compares by text, and numerically against numeric set members.
func inSet(v any, set []any) bool {
	s := values.String(v)
	for _, member := range set {
		if values.String(member) == s {
			return true
		}
		if values.IsNumber(member) {
			a, okA := values.Float(v)
			b, _ := values.Float(member)
			if okA && a == b {
				return true
			}
		}
	}
	return false
}

type tally struct {
	elements   int
	missing    int
	unexpected []any
	// denominator for the unexpected percentage
	base int
}

func unexpected(vals []any, pred func(any) bool) tally {
	t := tally{elements: len(vals)}
	for _, v := range vals {
		if dataset.IsNull(v) {
			t.missing++
			continue
		}
		if !pred(v) {
			t.unexpected = append(t.unexpected, v)
		}
	}
	t.base = t.elements - t.missing
	return t
}

func countNulls(vals []any) tally {
	t := tally{elements: len(vals), base: len(vals)}
	for _, v := range vals {
		if dataset.IsNull(v) {
			t.missing++
			t.unexpected = append(t.unexpected, nil)
		}
	}
	return t
}

func duplicates(vals []any) tally {
	t := tally{elements: len(vals)}
	counts := make(map[string]int)
	for _, v := range vals {
		if dataset.IsNull(v) {
			t.missing++
			continue
		}
		counts[values.String(v)]++
	}
	for _, v := range vals {
		if !dataset.IsNull(v) && counts[values.String(v)] > 1 {
			t.unexpected = append(t.unexpected, v)
		}
	}
	t.base = t.elements - t.missing
	return t
}

func finish(res ExpectationResult, t tally) ExpectationResult {
	res.Success = len(t.unexpected) == 0
	if res.Success {
		return res
	}

	d := &Details{
		ElementCount:    t.elements,
		MissingCount:    t.missing,
		UnexpectedCount: len(t.unexpected),
	}
	if t.base > 0 {
		d.UnexpectedPercent = 100 * float64(len(t.unexpected)) / float64(t.base)
	}
	partial := t.unexpected
	if len(partial) > maxPartialUnexpected {
		partial = partial[:maxPartialUnexpected]
	}
	d.PartialUnexpectedList = append([]any(nil), partial...)
	res.Details = d
	return res
}
