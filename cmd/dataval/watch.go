package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"

	"rdsa-hq/dataval/pkg/cli"
	"rdsa-hq/dataval/pkg/config"
	"rdsa-hq/dataval/pkg/history"
	"rdsa-hq/dataval/pkg/schema/validator"
	"rdsa-hq/dataval/pkg/server"
	"rdsa-hq/dataval/pkg/telemetry/health"
	"rdsa-hq/dataval/pkg/watch"
)

var watchFlags struct {
	path        string
	rules       string
	metricsAddr string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate schemas whenever they change",
	Long: `Validate a schema file or directory, then re-validate each schema as it is
saved.

Results are printed as they happen and recorded in the history. With a
metrics address the command also serves Prometheus metrics and the
/healthz, /readyz and /version endpoints. The history retention schedule
runs while watching. SIGHUP reloads the config file's logging level.

Examples:
  # Watch a directory
  dataval watch --dir schemas/

  # Serve metrics and health endpoints
  dataval watch --dir schemas/ --metrics-addr :9090`,
	RunE: watchSchemas,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.path, "dir", "d", "", "schema file or directory (default: config watch.path)")
	watchCmd.Flags().StringVar(&watchFlags.rules, "rules", "", "rule configuration file")
	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "serve metrics and health on this address (default: config telemetry.metrics.listen_address)")
}

func watchSchemas(cmd *cobra.Command, args []string) error {
	path := watchFlags.path
	if path == "" {
		path = app.cfg.Watch.Path
	}
	if path == "" {
		return fmt.Errorf("--dir or watch.path must be specified")
	}
	if _, err := os.Stat(path); err != nil {
		return cli.NewCommandError("watch", err)
	}

	r, err := app.loadRules(watchFlags.rules)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	v := app.newValidator(r, app.gate(-1, false))

	ctx := commandContext(cmd)
	logger := app.component("watch")

	checker := health.New(0)
	checker.RegisterCheck("schemas", health.PathCheck(path))

	store, err := app.historyStore(ctx)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	if store != nil {
		checker.RegisterCheck("history", health.StoreCheck(store))
		scheduler := history.NewScheduler(store, app.retention())
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
			if next := scheduler.NextRun(); next != nil {
				logger.Debug("retention scheduler started", "next_prune", next)
			}
		}
	}

	addr := watchFlags.metricsAddr
	if addr == "" {
		addr = app.cfg.Telemetry.Metrics.ListenAddress
	}
	if addr != "" {
		srv := server.New(&server.Config{ListenAddress: addr}, telemetryHandler(checker), app.logger.Logger)
		srvCtx, stopServer := context.WithCancel(ctx)
		served := make(chan struct{})
		go func() {
			defer close(served)
			if err := srv.Start(srvCtx); err != nil {
				logger.Error("telemetry server failed", "error", err)
			}
		}()
		defer func() {
			stopServer()
			<-served
		}()
	}

	stopReload := reloadOnHangup(ctx)
	defer stopReload()

	w, err := watch.New(&watch.Config{
		Path:       path,
		Debounce:   app.cfg.Watch.Debounce,
		Extensions: app.cfg.Watch.Extensions,
		SkipHidden: true,
	}, app.logger.Logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	files, err := watchedSchemas(path, app.cfg.Watch.Extensions)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	sv := &schemaWatcher{validator: v, hashes: make(map[string]uint64)}
	sv.validate(ctx, files)

	fmt.Fprintf(stdout, "Watching %s (%d schemas). Press Ctrl+C to stop.\n", path, len(files))
	if err := w.Watch(ctx, sv.onChange); err != nil {
		return cli.NewCommandError("watch", err)
	}
	fmt.Fprintln(stdout, "✓ Watch stopped")
	return nil
}

// schemaWatcher validates changed schemas one batch at a time. Saves that
// leave a schema's content unchanged are skipped.
type schemaWatcher struct {
	mu        sync.Mutex
	validator *validator.Validator
	hashes    map[string]uint64
}

func (s *schemaWatcher) onChange(ctx context.Context, paths []string) error {
	app.metrics.ObserveWatchEvent(len(paths))
	s.validate(ctx, paths)
	return nil
}

// changed reports whether the content of path differs from the last
// validated version. Unreadable files are forgotten and not changed.
func (s *schemaWatcher) changed(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		delete(s.hashes, path)
		return false
	}
	sum := xxh3.Hash(data)
	if prev, ok := s.hashes[path]; ok && prev == sum {
		return false
	}
	s.hashes[path] = sum
	return true
}

func (s *schemaWatcher) validate(ctx context.Context, paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &validateOutput{}
	for _, p := range paths {
		if ctx.Err() != nil {
			return
		}
		if !s.changed(p) {
			continue
		}
		out.add(validateFile(ctx, s.validator, p))
	}
	if len(out.Schemas) == 0 {
		return
	}
	fmt.Fprintf(stdout, "[%s]\n", time.Now().Format(time.TimeOnly))
	_ = out.WriteText(stdout)
}

// telemetryHandler serves the metrics and health endpoints.
func telemetryHandler(checker *health.Checker) http.Handler {
	mux := http.NewServeMux()
	if app.metrics.Enabled() {
		mux.Handle(app.cfg.Telemetry.Metrics.Path, app.metrics.Handler())
	}
	health.Register(mux, checker, health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	return mux
}

// reloadOnHangup reloads the config file on SIGHUP and applies the new
// logging level. The returned function stops listening.
func reloadOnHangup(ctx context.Context) func() {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-hup:
				if err := config.ReloadConfig(cfgFile); err != nil {
					app.logger.Error("config reload failed", "error", err)
					continue
				}
				level := config.GetConfig().Telemetry.Logging.Level
				if err := app.logger.SetLevel(level); err != nil {
					app.logger.Error("config reload failed", "error", err)
					continue
				}
				app.logger.Info("config reloaded", "log_level", level)
			}
		}
	}()

	return func() {
		signal.Stop(hup)
		close(done)
	}
}

// watchedSchemas lists the schema files under path: path itself when it is
// a file, otherwise every file below it with a watched extension, skipping
// hidden files and directories.
func watchedSchemas(path string, extensions []string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	if len(extensions) == 0 {
		extensions = config.DefaultWatchExtensions
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != path && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if slices.ContainsFunc(extensions, func(e string) bool { return strings.ToLower(e) == ext }) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
