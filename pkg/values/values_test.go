package values

import (
	"math"
	"testing"
	"time"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{int64(3), 3, true},
		{2.5, 2.5, true},
		{" 7.25 ", 7.25, true},
		{"abc", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := Float(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Float(%#v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		in     any
		want   int64
		wantOK bool
	}{
		{int64(42), 42, true},
		{"17", 17, true},
		{4.0, 4, true},
		{4.5, 0, false},
		{math.NaN(), 0, false},
		{"1.5", 0, false},
		{false, 0, false},
	}
	for _, tt := range tests {
		got, ok := Int(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Int(%#v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBool(t *testing.T) {
	for _, in := range []any{true, "TRUE", "yes", int64(1)} {
		if got, ok := Bool(in); !ok || !got {
			t.Errorf("Bool(%#v) = %v, %v; want true, true", in, got, ok)
		}
	}
	for _, in := range []any{"maybe", int64(2), 1.0} {
		if _, ok := Bool(in); ok {
			t.Errorf("Bool(%#v) ok = true, want false", in)
		}
	}
}

func TestIsNumber(t *testing.T) {
	if !IsNumber(int64(1)) || !IsNumber(1.5) {
		t.Error("IsNumber should accept int64 and float64")
	}
	if IsNumber(true) || IsNumber("1") {
		t.Error("IsNumber should reject bool and string")
	}
	if IsInteger(1.0) {
		t.Error("IsInteger(1.0) = true")
	}
}

func TestTime(t *testing.T) {
	want := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, in := range []any{"2023-01-02", "2023/01/02", int64(20230102), want} {
		got, err := Time(in)
		if err != nil {
			t.Errorf("Time(%#v) error = %v", in, err)
			continue
		}
		if got.Year() != 2023 || got.Month() != time.January || got.Day() != 2 {
			t.Errorf("Time(%#v) = %v, want 2023-01-02", in, got)
		}
	}

	if _, err := Time("not a date"); err == nil {
		t.Error("Time(not a date) should fail")
	}
	if _, err := Time(true); err == nil {
		t.Error("Time(true) should fail")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b   any
		want   int
		wantOK bool
	}{
		{int64(1), 2.5, -1, true},
		{3.0, int64(3), 0, true},
		{"b", "a", 1, true},
		{time.Unix(10, 0), time.Unix(5, 0), 1, true},
		{"1", int64(1), 0, false},
	}
	for _, tt := range tests {
		got, ok := Compare(tt.a, tt.b)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Compare(%#v, %#v) = %d, %v; want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestString(t *testing.T) {
	if got := String(1234.5); got != "1234.5" {
		t.Errorf("String(1234.5) = %q", got)
	}
	if got := String(int64(7)); got != "7" {
		t.Errorf("String(7) = %q", got)
	}
	if got := String(nil); got != "" {
		t.Errorf("String(nil) = %q", got)
	}
}
