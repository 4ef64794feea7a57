package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"rdsa-hq/dataval/pkg/history"
)

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{"no checks", nil, StatusReady},
		{"all ok", map[string]CheckFunc{
			"a": func(context.Context) error { return nil },
			"b": func(context.Context) error { return nil },
		}, StatusReady},
		{"one failing", map[string]CheckFunc{
			"a": func(context.Context) error { return nil },
			"b": func(context.Context) error { return errors.New("down") },
		}, StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}
			status := c.CheckReadiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("Status = %q, want %q", status.Status, tt.want)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	status := c.CheckReadiness(context.Background())
	got := status.Checks["slow"]
	if got.Status != StatusUnhealthy || got.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow check = %+v, want timeout", got)
	}
}

func TestChecker_ListChecks(t *testing.T) {
	c := New(0)
	c.RegisterCheck("b", PathCheck("."))
	c.RegisterCheck("a", PathCheck("."))
	c.RegisterCheck("a", PathCheck(".."))
	if got := c.ListChecks(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ListChecks() = %v, want [a b]", got)
	}
}

func TestPathCheck(t *testing.T) {
	dir := t.TempDir()
	if err := PathCheck(dir)(context.Background()); err != nil {
		t.Errorf("PathCheck(existing) = %v", err)
	}
	if err := PathCheck(filepath.Join(dir, "gone"))(context.Background()); err == nil {
		t.Error("PathCheck(missing) = nil, want error")
	}
}

func TestStoreCheck(t *testing.T) {
	store := history.NewMemoryStore()
	if err := StoreCheck(store)(context.Background()); err != nil {
		t.Errorf("StoreCheck(memory) = %v", err)
	}

	sqlite, err := history.NewSQLiteStore(context.Background(), &history.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "history.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	sqlite.Close()
	if err := StoreCheck(sqlite)(context.Background()); err == nil {
		t.Error("StoreCheck(closed) = nil, want error")
	}
}

func TestRegister(t *testing.T) {
	checker := New(time.Second)
	failing := false
	checker.RegisterCheck("schemas", func(context.Context) error {
		if failing {
			return errors.New("missing")
		}
		return nil
	})

	mux := http.NewServeMux()
	Register(mux, checker, VersionInfo{Version: "1.2.3", Commit: "abc"})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	get := func(path string) (int, map[string]any) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		return resp.StatusCode, body
	}

	if code, body := get(LivenessPath); code != http.StatusOK || body["status"] != StatusOK {
		t.Errorf("liveness = %d %v", code, body)
	}
	if code, body := get(ReadinessPath); code != http.StatusOK || body["status"] != StatusReady {
		t.Errorf("readiness = %d %v", code, body)
	}
	failing = true
	if code, body := get(ReadinessPath); code != http.StatusServiceUnavailable || body["status"] != StatusDegraded {
		t.Errorf("failing readiness = %d %v", code, body)
	}
	if code, body := get(VersionPath); code != http.StatusOK || body["version"] != "1.2.3" || body["go_version"] == "" {
		t.Errorf("version = %d %v", code, body)
	}

	resp, err := http.Post(srv.URL+LivenessPath, "text/plain", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST liveness = %d, want 405", resp.StatusCode)
	}
}
