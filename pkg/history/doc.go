// Package history records validation runs so trends and regressions can be
// inspected after the fact.
//
// A Run is built with NewRun, filled from a schema Report (ApplyReport) or
// an expectation Result (ApplyResult), and persisted through a Store:
//
//	store, err := history.NewSQLiteStore(ctx, &history.SQLiteConfig{Path: "data/history.db"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	run := history.NewRun(history.KindSchema, path)
//	report, err := v.RunValidation(ctx, path)
//	run.ApplyReport(report, decision)
//	run.Finish()
//	if err := store.Record(ctx, run); err != nil {
//	    return err
//	}
//
// SQLiteStore works with either the pure-Go "sqlite" driver (default) or
// the cgo "sqlite3" driver. Timestamps are stored as Unix nanoseconds so
// both drivers read them back identically.
//
// Scheduler prunes runs older than RetentionConfig.RetentionDays on a cron
// schedule. JSONExporter and CSVExporter write runs for offline analysis.
package history
