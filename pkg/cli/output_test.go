package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"gopkg.in/yaml.v3"
)

type summary struct {
	Source string `json:"source" yaml:"source"`
	Errors int    `json:"errors" yaml:"errors"`
}

func (s summary) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s: %d errors\n", s.Source, s.Errors)
	return err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"plain value", "test message", "test message\n"},
		{"text writer", summary{Source: "survey.toml", Errors: 2}, "survey.toml: 2 errors\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TextFormatter{}).FormatTo(&buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("FormatTo() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatTo(&buf, summary{Source: "a.toml", Errors: 1}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	var got summary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if got.Source != "a.toml" || got.Errors != 1 {
		t.Errorf("decoded = %+v", got)
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatYAML).FormatTo(&buf, summary{Source: "a.toml", Errors: 3}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	want := "source: a.toml\nerrors: 3\n"
	if buf.String() != want {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), want)
	}
	var got summary
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil || got.Errors != 3 {
		t.Errorf("decoded = %+v, err = %v", got, err)
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatYAML, "*cli.YAMLFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}
	for _, tt := range tests {
		if got := fmt.Sprintf("%T", NewFormatter(tt.format)); got != tt.want {
			t.Errorf("NewFormatter(%q) type = %v, want %v", tt.format, got, tt.want)
		}
	}
}
