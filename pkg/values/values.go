// Package values converts the loosely typed values found in schema
// documents and table cells.
//
// Schema fields arrive as decoded TOML (int64, float64, bool, string,
// time.Time, []any) while cells arrive as whatever the dataset loader
// produced. Every conversion reports success instead of panicking.
package values

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// IsNumber reports whether v is an integer or floating-point value.
// Booleans are not numbers.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// IsInteger reports whether v has an integer Go type.
func IsInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// Float converts numeric values to float64. Strings are parsed.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Int converts integral values to int64. Floats with a fractional part and
// strings that are not integers fail.
func Int(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	case float32, float64:
		f, _ := Float(x)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	}
	if IsInteger(v) {
		f, _ := Float(v)
		return int64(f), true
	}
	return 0, false
}

// Bool converts booleans and their common textual spellings.
func Bool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "t", "yes", "y", "1":
			return true, true
		case "false", "f", "no", "n", "0":
			return false, true
		}
	case int64:
		if x == 0 || x == 1 {
			return x == 1, true
		}
	}
	return false, false
}

// String renders v as text. Floats use the shortest representation that
// round-trips.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// Time converts v to a time.Time. Strings go through a format-guessing date
// parser; integers are treated as compact dates such as 20240503.
func Time(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		t, err := dateparse.ParseAny(strings.TrimSpace(x))
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	case int64:
		return dateparse.ParseAny(strconv.FormatInt(x, 10))
	}
	return time.Time{}, fmt.Errorf("cannot interpret %v (%T) as a datetime", v, v)
}

// Compare orders two values that are both numbers, both datetimes or both
// strings. It returns -1, 0 or 1, and false when they are not comparable.
func Compare(a, b any) (int, bool) {
	if fa, ok := Float(a); ok && IsNumber(a) {
		if fb, ok := Float(b); ok && IsNumber(b) {
			return cmp(fa, fb), true
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb), true
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb), true
		}
	}
	return 0, false
}

func cmp(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
