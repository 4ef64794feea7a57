package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
)

// LengthBounds is a parsed length constraint. Max is -1 when unbounded.
type LengthBounds struct {
	Min int
	Max int
}

// Exact reports whether the constraint fixes a single length.
func (b LengthBounds) Exact() bool {
	return b.Min == b.Max
}

// Allows reports whether n satisfies the constraint.
func (b LengthBounds) Allows(n int) bool {
	return n >= b.Min && (b.Max < 0 || n <= b.Max)
}

// String renders the constraint in schema syntax.
func (b LengthBounds) String() string {
	if b.Exact() {
		return strconv.Itoa(b.Min)
	}
	return fmt.Sprintf(">=%d", b.Min)
}

// ParseLength parses a length field value. Accepted forms are a
// non-negative integer, an integer string, ">=N" (at least N) and ">N"
// (at least N+1).
func ParseLength(v any) (LengthBounds, bool) {
	switch x := v.(type) {
	case int64:
		if x < 0 {
			return LengthBounds{}, false
		}
		return LengthBounds{Min: int(x), Max: int(x)}, true
	case int:
		if x < 0 {
			return LengthBounds{}, false
		}
		return LengthBounds{Min: x, Max: x}, true
	case string:
		s := strings.TrimSpace(x)
		offset := 0
		switch {
		case strings.HasPrefix(s, ">="):
			s = strings.TrimSpace(s[2:])
		case strings.HasPrefix(s, ">"):
			s = strings.TrimSpace(s[1:])
			offset = 1
		default:
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return LengthBounds{}, false
			}
			return LengthBounds{Min: n, Max: n}, true
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return LengthBounds{}, false
		}
		return LengthBounds{Min: n + offset, Max: -1}, true
	}
	return LengthBounds{}, false
}

const strftimeDirectives = "aAbBcCdDeFfgGhHIjklmMnpRrSTtuUVwWxXyYzZ%"

// ValidateDateFormat checks that format is a usable strftime-style format:
// every directive is known, at least one date or time directive is present,
// and a sample timestamp survives formatting and parsing back.
func ValidateDateFormat(format string) error {
	directives := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 >= len(format) {
			return errors.New("stray '%' at end of format")
		}
		c := format[i+1]
		if c == '-' && i+2 < len(format) {
			i++
			c = format[i+1]
		}
		if !strings.ContainsRune(strftimeDirectives, rune(c)) {
			return fmt.Errorf("unknown directive '%%%c'", c)
		}
		if c != '%' && c != 'n' && c != 't' {
			directives++
		}
		i++
	}
	if directives == 0 {
		return errors.New("format has no date or time directives")
	}

	sample := time.Date(2024, time.May, 3, 13, 45, 30, 0, time.UTC)
	if _, err := timefmt.Parse(timefmt.Format(sample, format), format); err != nil {
		return fmt.Errorf("format does not round-trip: %w", err)
	}
	return nil
}
