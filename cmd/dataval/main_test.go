package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"rdsa-hq/dataval/pkg/config"
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// setupTestApp installs an env backed by a temporary history database and
// captures command output.
func setupTestApp(t *testing.T, modify ...func(*config.Config)) *syncBuffer {
	t.Helper()

	cfg := config.Default()
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	cfg.Telemetry.Logging.Level = "error"
	for _, m := range modify {
		m(cfg)
	}

	e, err := newEnv(cfg, io.Discard)
	if err != nil {
		t.Fatalf("newEnv() error = %v", err)
	}
	app = e

	out := &syncBuffer{}
	stdout = out
	t.Cleanup(func() {
		teardown(context.Background())
		stdout = os.Stdout
	})
	return out
}

// writeFile writes data to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
