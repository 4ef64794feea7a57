package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func resetGlobal() {
	globalConfig = nil
	initOnce = *new(sync.Once)
}

func TestInitialize(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, "rules:\n  path: first.toml\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := MustGetConfig().Rules.Path; got != "first.toml" {
		t.Errorf("Rules.Path = %q, want %q", got, "first.toml")
	}

	// Later calls are ignored.
	second := writeConfig(t, "rules:\n  path: second.toml\n")
	if err := Initialize(second); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	if got := GetConfig().Rules.Path; got != "first.toml" {
		t.Errorf("Rules.Path after second Initialize = %q, want %q", got, "first.toml")
	}
}

func TestInitialize_Error(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	if err := Initialize(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Initialize(missing) error = nil, want error")
	}
	if GetConfig() != nil {
		t.Error("GetConfig() != nil after failed Initialize")
	}
}

func TestReloadConfig(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, "validation:\n  error_threshold: 1\n")
	if err := Initialize(path); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("validation:\n  error_threshold: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if got := GetConfig().Validation.ErrorThreshold; got != 4 {
		t.Errorf("ErrorThreshold = %d, want 4", got)
	}

	// A broken file keeps the current configuration.
	if err := os.WriteFile(path, []byte("validation:\n  error_threshold: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ReloadConfig(path); err == nil {
		t.Error("ReloadConfig(invalid) error = nil, want error")
	}
	if got := GetConfig().Validation.ErrorThreshold; got != 4 {
		t.Errorf("ErrorThreshold after failed reload = %d, want 4", got)
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig() did not panic")
		}
	}()
	MustGetConfig()
}

func TestSetConfig_Concurrent(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetConfig(Default())
		}()
		go func() {
			defer wg.Done()
			_ = GetConfig()
		}()
	}
	wg.Wait()
	if GetConfig() == nil {
		t.Error("GetConfig() = nil after SetConfig")
	}
}
