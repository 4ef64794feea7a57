package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rdsa-hq/dataval/pkg/expectations"
	"rdsa-hq/dataval/pkg/schema/validator"
)

// Kind distinguishes schema validation runs from data checks.
type Kind string

const (
	// KindSchema is a validation of a schema document against the rules.
	KindSchema Kind = "schema"

	// KindData is a run of an expectation suite against a table.
	KindData Kind = "data"
)

// ErrNotFound is returned by Store.Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Run is one recorded validation.
type Run struct {
	ID           string              `json:"id" yaml:"id"`
	Kind         Kind                `json:"kind" yaml:"kind"`
	Source       string              `json:"source" yaml:"source"`
	DataAsset    string              `json:"data_asset,omitempty" yaml:"data_asset,omitempty"`
	StartedAt    time.Time           `json:"started_at" yaml:"started_at"`
	Duration     time.Duration       `json:"duration" yaml:"duration"`
	ErrorCount   int                 `json:"error_count" yaml:"error_count"`
	WarningCount int                 `json:"warning_count" yaml:"warning_count"`
	Decision     string              `json:"decision" yaml:"decision"`
	Errors       map[string][]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewRun starts a run record with a fresh UUID.
func NewRun(kind Kind, source string) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Kind:      kind,
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the duration since StartedAt.
func (r *Run) Finish() {
	r.Duration = time.Since(r.StartedAt)
}

// ApplyReport copies the outcome of a schema validation into the run.
func (r *Run) ApplyReport(report *validator.Report, decision validator.Decision) {
	r.Decision = string(decision)
	if report == nil {
		return
	}
	r.ErrorCount = report.TotalErrors()
	r.WarningCount = len(report.Warnings())
	r.Errors = make(map[string][]string)
	for _, col := range report.FailedColumns() {
		r.Errors[col] = append([]string(nil), report.ColumnErrors(col)...)
	}
}

// ApplyResult copies the outcome of an expectation run into the run. Each
// failed expectation counts as one error.
func (r *Run) ApplyResult(result *expectations.Result) {
	if result == nil {
		return
	}
	if r.DataAsset == "" {
		r.DataAsset = result.DataAsset
	}
	r.ErrorCount = result.Summary.Unsuccessful
	r.Errors = make(map[string][]string)

	columns, byColumn := result.Failures()
	for _, col := range columns {
		for _, f := range byColumn[col] {
			r.Errors[col] = append(r.Errors[col], fmt.Sprintf("%s: %s", f.ExpectationType, f.Details))
		}
	}

	if result.Success {
		r.Decision = string(validator.DecisionGo)
	} else {
		r.Decision = string(validator.DecisionNoGo)
	}
}

// Query filters runs. Zero values match everything.
type Query struct {
	Kind      Kind
	Source    string
	DataAsset string
	Decision  string
	Since     *time.Time
	Until     *time.Time

	// Limit defaults to 100 for List.
	Limit  int
	Offset int
}

const defaultLimit = 100

func (q *Query) limit() int {
	if q == nil || q.Limit <= 0 {
		return defaultLimit
	}
	return q.Limit
}

func (q *Query) matches(r *Run) bool {
	if q == nil {
		return true
	}
	switch {
	case q.Kind != "" && r.Kind != q.Kind:
		return false
	case q.Source != "" && r.Source != q.Source:
		return false
	case q.DataAsset != "" && r.DataAsset != q.DataAsset:
		return false
	case q.Decision != "" && r.Decision != q.Decision:
		return false
	case q.Since != nil && r.StartedAt.Before(*q.Since):
		return false
	case q.Until != nil && r.StartedAt.After(*q.Until):
		return false
	}
	return true
}

// Store persists runs. Implementations are safe for concurrent use.
type Store interface {
	// Record persists a run. Recording an existing ID replaces it.
	Record(ctx context.Context, run *Run) error

	// Get returns the run with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns matching runs, newest first.
	List(ctx context.Context, query *Query) ([]*Run, error)

	// Count returns the number of matching runs, ignoring Limit and Offset.
	Count(ctx context.Context, query *Query) (int64, error)

	// Prune deletes runs started before cutoff and returns how many went.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}
