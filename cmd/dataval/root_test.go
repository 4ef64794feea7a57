package main

import (
	"encoding/json"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"rdsa-hq/dataval/pkg/schema/rules"
)

func TestVersionCommand(t *testing.T) {
	out := setupTestApp(t)

	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()
	Version = "0.1.0-test"
	GitCommit = "abc123"
	BuildDate = "2026-10-18"

	versionCmd.Run(versionCmd, nil)

	got := out.String()
	for _, want := range []string{
		"dataval 0.1.0-test\n",
		"Git Commit: abc123\n",
		"Build Date: 2026-10-18\n",
		"Go Version: " + runtime.Version(),
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, want := range []string{"check", "checks", "completion", "history", "infer", "rules", "suite", "validate", "version", "watch"} {
		if !slices.Contains(got, want) {
			t.Errorf("rootCmd missing subcommand %q (have %v)", want, got)
		}
	}

	var history []string
	for _, c := range historyCmd.Commands() {
		history = append(history, c.Name())
	}
	if want := []string{"export", "list", "prune", "show"}; !slices.Equal(history, want) {
		t.Errorf("history subcommands = %v, want %v", history, want)
	}
}

func TestSetup_SkipsVersion(t *testing.T) {
	app = nil
	if err := setup(versionCmd, nil); err != nil {
		t.Fatalf("setup(version) error = %v", err)
	}
	if app != nil {
		t.Error("setup(version) built the environment")
	}

	comp := &cobra.Command{Use: "completion"}
	if err := setup(comp, nil); err != nil || app != nil {
		t.Errorf("setup(completion) = %v, app = %v", err, app)
	}
}

func TestListChecks(t *testing.T) {
	out := setupTestApp(t)
	checksFlags.format = "json"

	if err := listChecks(nil, nil); err != nil {
		t.Fatalf("listChecks() error = %v", err)
	}
	var got checkList
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output %q: %v", out.String(), err)
	}
	var names []string
	for _, c := range got {
		if c.Description == "" {
			t.Errorf("check %q has no description", c.Name)
		}
		names = append(names, c.Name)
	}
	if !slices.IsSorted(names) {
		t.Errorf("checks not sorted: %v", names)
	}
	if !slices.Contains(names, "is_yyyymm_period") {
		t.Errorf("checks = %v, want is_yyyymm_period", names)
	}

	out.Reset()
	checksFlags.format = "text"
	if err := listChecks(nil, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "is_positive  ") {
		t.Errorf("text output = %q", out.String())
	}
}

func TestPrintRules(t *testing.T) {
	out := setupTestApp(t)
	if err := printRules(nil, nil); err != nil {
		t.Fatalf("printRules() error = %v", err)
	}
	cfg, err := rules.LoadBytes(out.Bytes(), "stdout")
	if err != nil {
		t.Fatalf("printed rules do not load: %v", err)
	}
	if _, err := cfg.AllTypeNames(); err != nil {
		t.Errorf("AllTypeNames() error = %v", err)
	}
}
