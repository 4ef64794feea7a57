package checks

import (
	"strings"
	"time"
	"unicode"

	"rdsa-hq/dataval/pkg/values"
)

// Default returns a new registry pre-loaded with the built-in checks.
func Default() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// RegisterBuiltins adds the built-in checks to r.
func RegisterBuiltins(r *Registry) {
	r.MustRegister("is_positive", "Numeric value greater than zero", func(v any) bool {
		f, ok := values.Float(v)
		return ok && f > 0
	})
	r.MustRegister("is_non_negative", "Numeric value greater than or equal to zero", func(v any) bool {
		f, ok := values.Float(v)
		return ok && f >= 0
	})
	r.MustRegister("is_integer", "Value is a whole number", func(v any) bool {
		_, ok := values.Int(v)
		return ok
	})
	r.MustRegister("not_blank", "Text contains at least one non-space character", func(v any) bool {
		return strings.TrimSpace(values.String(v)) != ""
	})
	r.MustRegister("no_surrounding_whitespace", "Text has no leading or trailing whitespace", func(v any) bool {
		s := values.String(v)
		return s == strings.TrimSpace(s)
	})
	r.MustRegister("is_uppercase", "Text has no lowercase letters", func(v any) bool {
		s := values.String(v)
		return s == strings.ToUpper(s)
	})
	r.MustRegister("is_lowercase", "Text has no uppercase letters", func(v any) bool {
		s := values.String(v)
		return s == strings.ToLower(s)
	})
	r.MustRegister("is_alphanumeric", "Text contains only letters and digits", func(v any) bool {
		s := values.String(v)
		if s == "" {
			return false
		}
		for _, c := range s {
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				return false
			}
		}
		return true
	})
	r.MustRegister("is_digits", "Text contains only digits, leading zeros allowed", func(v any) bool {
		s := values.String(v)
		if s == "" {
			return false
		}
		for _, c := range s {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	})
	r.MustRegister("is_yyyymm_period", "Six-digit reporting period with a valid month, e.g. 202312", func(v any) bool {
		s := values.String(v)
		if len(s) != 6 {
			return false
		}
		_, err := time.Parse("200601", s)
		return err == nil
	})
	r.MustRegister("not_in_future", "Datetime value not later than now", func(v any) bool {
		t, err := values.Time(v)
		return err == nil && !t.After(time.Now())
	})
}
