package numfmt

import (
	"strconv"
	"strings"
)

// Matches reports whether s is exactly what the template produces for the
// number it spells. Only single-field templates can match.
func (f *Format) Matches(s string) bool {
	var prefix, suffix string
	var spec Spec
	fields := 0
	for _, seg := range f.segments {
		switch {
		case seg.field:
			if seg.conv != 0 {
				return false
			}
			spec = seg.spec
			fields++
		case fields == 0:
			prefix += seg.literal
		default:
			suffix += seg.literal
		}
	}
	if fields != 1 || len(s) < len(prefix)+len(suffix) {
		return false
	}
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return false
	}

	core := strings.TrimSpace(s[len(prefix) : len(s)-len(suffix)])
	if spec.Fill != ' ' && spec.Fill != '0' {
		core = strings.Trim(core, string(spec.Fill))
	}
	if spec.Grouping != 0 {
		core = strings.ReplaceAll(core, string(spec.Grouping), "")
	}
	if core == "" {
		return false
	}

	var value any
	switch spec.Type {
	case 'c', 's':
		return false
	case 'b', 'o', 'x', 'X':
		base := map[byte]int{'b': 2, 'o': 8, 'x': 16, 'X': 16}[spec.Type]
		digits := core
		neg := strings.HasPrefix(digits, "-")
		digits = strings.TrimLeft(digits, "+- ")
		if spec.Alternate && len(digits) > 2 {
			digits = digits[2:]
		}
		n, err := strconv.ParseInt(digits, base, 64)
		if err != nil {
			return false
		}
		if neg {
			n = -n
		}
		value = n
	case '%':
		fv, err := strconv.ParseFloat(strings.TrimSuffix(core, "%"), 64)
		if err != nil {
			return false
		}
		value = fv / 100
	case 'd', 'n':
		n, err := strconv.ParseInt(core, 10, 64)
		if err != nil {
			return false
		}
		value = n
	case 0:
		if n, err := strconv.ParseInt(core, 10, 64); err == nil {
			value = n
			break
		}
		fallthrough
	default:
		fv, err := strconv.ParseFloat(core, 64)
		if err != nil {
			return false
		}
		value = fv
	}

	out, err := f.Format(value)
	return err == nil && out == s
}
