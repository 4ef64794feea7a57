package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config configures a Watcher.
type Config struct {
	// Path is a schema file or a directory of schemas.
	Path string

	// Debounce is the quiet period after the last change before the
	// callback runs. Default: 200ms
	Debounce time.Duration

	// Extensions limits which files trigger the callback. Default: .toml
	Extensions []string

	// SkipHidden ignores dot-files and dot-directories.
	SkipHidden bool
}

// DefaultConfig returns the default watch configuration.
func DefaultConfig() *Config {
	return &Config{
		Debounce:   200 * time.Millisecond,
		Extensions: []string{".toml"},
		SkipHidden: true,
	}
}

// OnChange receives the sorted set of files that changed during one
// debounce window.
type OnChange func(ctx context.Context, paths []string) error

// Watcher re-runs a callback when schema files change.
type Watcher struct {
	config   *Config
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	debounce *Debouncer

	// file is set when Path names a single file; its parent directory is
	// watched so editors that replace the file by rename are seen.
	file string

	mu      sync.Mutex
	running bool
}

// New creates a watcher for config.Path.
func New(config *Config, logger *slog.Logger) (*Watcher, error) {
	if config == nil || config.Path == "" {
		return nil, errors.New("watch: path is required")
	}
	defaults := DefaultConfig()
	if config.Debounce <= 0 {
		config.Debounce = defaults.Debounce
	}
	if len(config.Extensions) == 0 {
		config.Extensions = defaults.Extensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		config:   config,
		fsw:      fsw,
		logger:   logger.With("component", "watch"),
		debounce: NewDebouncer(config.Debounce),
	}, nil
}

// Watch blocks until ctx is cancelled, calling onChange after each burst
// of relevant file events. Callback errors are logged and watching
// continues.
func (w *Watcher) Watch(ctx context.Context, onChange OnChange) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		w.fsw.Close()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	if err := w.add(w.config.Path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.config.Path, err)
	}
	w.logger.Info("watching schemas", "path", w.config.Path, "debounce", w.config.Debounce)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) && w.file == "" {
				w.watchNewDir(event.Name)
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			w.debounce.Add(event.Name, func(paths []string) {
				if err := onChange(ctx, paths); err != nil {
					w.logger.Error("change handler failed", "paths", paths, "error", err)
				}
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.file = filepath.Clean(path)
		return w.fsw.Add(filepath.Dir(w.file))
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && w.hidden(p) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

func (w *Watcher) watchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.hidden(path) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("failed to watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.file != "" {
		return filepath.Clean(event.Name) == w.file
	}
	if w.hidden(event.Name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return slices.ContainsFunc(w.config.Extensions, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}

func (w *Watcher) hidden(path string) bool {
	return w.config.SkipHidden && strings.HasPrefix(filepath.Base(path), ".")
}

// Debouncer collects keys until no new key arrives for the interval, then
// hands the collected set to the most recent callback.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	pending  map[string]struct{}
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval, pending: make(map[string]struct{})}
}

// Add records key and restarts the quiet period.
func (d *Debouncer) Add(key string, callback func([]string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending[key] = struct{}{}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	clear(d.pending)
	cb := d.callback
	d.mu.Unlock()

	slices.Sort(keys)
	cb(keys)
}

// Stop cancels any pending callback. Later calls to Add are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	clear(d.pending)
}
