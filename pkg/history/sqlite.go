package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	// DriverSQLite is the pure-Go driver and the default.
	DriverSQLite = "sqlite"

	// DriverSQLite3 is the cgo driver.
	DriverSQLite3 = "sqlite3"
)

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    source TEXT NOT NULL,
    data_asset TEXT NOT NULL DEFAULT '',
    started_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    error_count INTEGER NOT NULL,
    warning_count INTEGER NOT NULL,
    decision TEXT NOT NULL,
    errors TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
CREATE INDEX IF NOT EXISTS idx_runs_decision ON runs(decision);
`

const runColumns = `id, kind, source, data_asset, started_at, duration_ns, error_count, warning_count, decision, errors`

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver is DriverSQLite or DriverSQLite3. Default: DriverSQLite.
	Driver string

	// MaxOpenConns. Default: 4
	MaxOpenConns int

	// WALMode enables write-ahead logging.
	WALMode bool

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/history.db",
		Driver:       DriverSQLite,
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore persists runs in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if needed) the database at config.Path.
func NewSQLiteStore(ctx context.Context, config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	driver := config.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverSQLite3 {
		return nil, newStorageError(driver, "open", fmt.Errorf("unsupported driver %q", driver))
	}

	db, err := sql.Open(driver, config.Path)
	if err != nil {
		return nil, newStorageError(driver, "open", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}

	s := &SQLiteStore{
		db:     db,
		driver: driver,
		logger: slog.Default().With("component", "history.sqlite"),
	}
	if err := s.initialize(ctx, config); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("history store opened", "path", config.Path, "driver", driver, "wal_mode", config.WALMode)
	return s, nil
}

func (s *SQLiteStore) initialize(ctx context.Context, config *SQLiteConfig) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		return newStorageError(s.driver, "ping", err)
	}

	if config.WALMode {
		if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			return newStorageError(s.driver, "enable_wal", err)
		}
	}
	if config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", config.BusyTimeout.Milliseconds())
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return newStorageError(s.driver, "set_busy_timeout", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return newStorageError(s.driver, "create_schema", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO schema_version (version) VALUES (?) ON CONFLICT(version) DO NOTHING", schemaVersion); err != nil {
		return newStorageError(s.driver, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return newStorageError(s.driver, "get_schema_version", err)
	}
	if version != schemaVersion {
		return newStorageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", schemaVersion, version))
	}
	return nil
}

func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	var errs any
	if len(run.Errors) > 0 {
		data, err := json.Marshal(run.Errors)
		if err != nil {
			return newStorageError(s.driver, "record", err)
		}
		errs = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.Source, run.DataAsset,
		run.StartedAt.UnixNano(), int64(run.Duration),
		run.ErrorCount, run.WarningCount, run.Decision, errs,
	)
	if err != nil {
		return newStorageError(s.driver, "record", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, newStorageError(s.driver, "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, newStorageError(s.driver, "get", err)
		}
		return nil, ErrNotFound
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, newStorageError(s.driver, "scan", err)
	}
	return run, nil
}

func (s *SQLiteStore) List(ctx context.Context, query *Query) ([]*Run, error) {
	where, args := buildWhere(query)
	stmt := `SELECT ` + runColumns + ` FROM runs` + where + ` ORDER BY started_at DESC, id ASC`
	stmt += fmt.Sprintf(" LIMIT %d", query.limit())
	if query != nil && query.Offset > 0 {
		stmt += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, newStorageError(s.driver, "list", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, newStorageError(s.driver, "scan", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError(s.driver, "list", err)
	}
	return runs, nil
}

func (s *SQLiteStore) Count(ctx context.Context, query *Query) (int64, error) {
	where, args := buildWhere(query)
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+where, args...).Scan(&n); err != nil {
		return 0, newStorageError(s.driver, "count", err)
	}
	return n, nil
}

func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, newStorageError(s.driver, "prune", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newStorageError(s.driver, "prune", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return newStorageError(s.driver, "close", err)
	}
	return nil
}

// buildWhere returns a " WHERE ..." clause (or "") and its arguments.
func buildWhere(query *Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var conds []string
	var args []any
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if query.Kind != "" {
		add("kind = ?", string(query.Kind))
	}
	if query.Source != "" {
		add("source = ?", query.Source)
	}
	if query.DataAsset != "" {
		add("data_asset = ?", query.DataAsset)
	}
	if query.Decision != "" {
		add("decision = ?", query.Decision)
	}
	if query.Since != nil {
		add("started_at >= ?", query.Since.UnixNano())
	}
	if query.Until != nil {
		add("started_at <= ?", query.Until.UnixNano())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		run       Run
		kind      string
		startedAt int64
		duration  int64
		errs      sql.NullString
	)
	err := rows.Scan(&run.ID, &kind, &run.Source, &run.DataAsset, &startedAt, &duration,
		&run.ErrorCount, &run.WarningCount, &run.Decision, &errs)
	if err != nil {
		return nil, err
	}

	run.Kind = Kind(kind)
	run.StartedAt = time.Unix(0, startedAt).UTC()
	run.Duration = time.Duration(duration)
	if errs.Valid && errs.String != "" {
		if err := json.Unmarshal([]byte(errs.String), &run.Errors); err != nil {
			return nil, fmt.Errorf("decode errors: %w", err)
		}
	}
	return &run, nil
}

var _ Store = (*SQLiteStore)(nil)
var _ Store = (*MemoryStore)(nil)

// Open returns the store described by config: a MemoryStore when Path is
// empty, otherwise a SQLiteStore.
func Open(ctx context.Context, config *SQLiteConfig) (Store, error) {
	if config == nil || config.Path == "" {
		return NewMemoryStore(), nil
	}
	store, err := NewSQLiteStore(ctx, config)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
