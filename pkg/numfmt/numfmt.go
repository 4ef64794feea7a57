// Package numfmt implements the brace-style number format strings used by
// the number_str_format schema field, such as "{:,.2f}" or "{:>10d}".
//
// A template is literal text with replacement fields. Each field has the
// form {[0][!conv][:spec]} where spec follows the usual format-spec
// mini-language:
//
//	[[fill]align][sign][z][#][0][width][grouping][.precision][type]
//
// A template with no braces is treated as a bare spec, so ",.2f" and
// "{:,.2f}" are equivalent. All fields format the same single value.
package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Spec is a parsed format specification.
type Spec struct {
	Fill      rune
	Align     byte // '<', '>', '=', '^' or 0
	Sign      byte // '+', '-', ' ' or 0
	Alternate bool
	Width     int
	Grouping  byte // ',', '_' or 0
	Precision int  // -1 when unset
	Type      byte // 0 when unset
}

// Format is a parsed template.
type Format struct {
	template string
	segments []segment
}

type segment struct {
	literal string
	field   bool
	conv    byte
	spec    Spec
}

var printer = message.NewPrinter(language.English)

// Parse parses a template. Errors describe the first problem found.
func Parse(template string) (*Format, error) {
	f := &Format{template: template}

	if !strings.ContainsAny(template, "{}") {
		spec, err := ParseSpec(template)
		if err != nil {
			return nil, err
		}
		f.segments = []segment{{field: true, spec: spec}}
		return f, nil
	}

	var lit strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("single '{' encountered in format string")
			}
			seg, err := parseField(template[i+1 : i+end])
			if err != nil {
				return nil, err
			}
			if lit.Len() > 0 {
				f.segments = append(f.segments, segment{literal: lit.String()})
				lit.Reset()
			}
			f.segments = append(f.segments, seg)
			i += end
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("single '}' encountered in format string")
		default:
			lit.WriteByte(c)
		}
	}
	if lit.Len() > 0 {
		f.segments = append(f.segments, segment{literal: lit.String()})
	}

	return f, nil
}

func parseField(body string) (segment, error) {
	seg := segment{field: true}

	name, rest := body, ""
	if i := strings.IndexAny(body, "!:"); i >= 0 {
		name, rest = body[:i], body[i:]
	}
	if name != "" && name != "0" {
		return seg, fmt.Errorf("replacement field %q refers to an argument that is not supplied", name)
	}

	if strings.HasPrefix(rest, "!") {
		if len(rest) < 2 {
			return seg, fmt.Errorf("end of string while looking for conversion specifier")
		}
		seg.conv = rest[1]
		if seg.conv != 's' && seg.conv != 'r' && seg.conv != 'a' {
			return seg, fmt.Errorf("unknown conversion specifier %c", seg.conv)
		}
		rest = rest[2:]
		if rest != "" && !strings.HasPrefix(rest, ":") {
			return seg, fmt.Errorf("expected ':' after conversion specifier")
		}
	}

	spec, err := ParseSpec(strings.TrimPrefix(rest, ":"))
	if err != nil {
		return seg, err
	}
	seg.spec = spec
	return seg, nil
}

// ParseSpec parses a single format specification such as ",.2f".
func ParseSpec(s string) (Spec, error) {
	spec := Spec{Fill: ' ', Precision: -1}
	i := 0

	isAlign := func(b byte) bool { return b == '<' || b == '>' || b == '=' || b == '^' }

	if r, size := utf8.DecodeRuneInString(s); size > 0 && size < len(s) && isAlign(s[size]) {
		spec.Fill, spec.Align = r, s[size]
		i = size + 1
	} else if len(s) > 0 && isAlign(s[0]) {
		spec.Align = s[0]
		i = 1
	}

	if i < len(s) && (s[i] == '+' || s[i] == '-' || s[i] == ' ') {
		spec.Sign = s[i]
		i++
	}
	if i < len(s) && s[i] == 'z' {
		i++
	}
	if i < len(s) && s[i] == '#' {
		spec.Alternate = true
		i++
	}
	if i < len(s) && s[i] == '0' {
		if spec.Align == 0 {
			spec.Fill, spec.Align = '0', '='
		}
		i++
	}

	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > start {
		spec.Width, _ = strconv.Atoi(s[start:i])
	}

	if i < len(s) && (s[i] == ',' || s[i] == '_') {
		spec.Grouping = s[i]
		i++
	}

	if i < len(s) && s[i] == '.' {
		i++
		start = i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return spec, fmt.Errorf("format specifier missing precision")
		}
		spec.Precision, _ = strconv.Atoi(s[start:i])
	}

	if i < len(s) {
		if !strings.ContainsRune("bcdeEfFgGnosxX%", rune(s[i])) {
			return spec, fmt.Errorf("unknown format code '%c'", s[i])
		}
		spec.Type = s[i]
		i++
	}
	if i != len(s) {
		return spec, fmt.Errorf("invalid format specifier %q", s)
	}

	if spec.Grouping != 0 && (spec.Type == 'n' || spec.Type == 's' || spec.Type == 'c') {
		return spec, fmt.Errorf("cannot specify '%c' with '%c'", spec.Grouping, spec.Type)
	}
	if spec.Precision >= 0 && isIntegerType(spec.Type) {
		return spec, fmt.Errorf("precision not allowed in integer format specifier")
	}

	return spec, nil
}

// Apply parses template and formats v with it.
func Apply(template string, v any) (string, error) {
	f, err := Parse(template)
	if err != nil {
		return "", err
	}
	return f.Format(v)
}

// String returns the original template.
func (f *Format) String() string {
	return f.template
}

// Format renders v through every replacement field of the template.
// v must be an integer, a float or a string.
func (f *Format) Format(v any) (string, error) {
	var sb strings.Builder
	for _, seg := range f.segments {
		if !seg.field {
			sb.WriteString(seg.literal)
			continue
		}
		arg := v
		if seg.conv != 0 {
			arg = fmt.Sprint(v)
			if seg.conv != 's' {
				arg = strconv.Quote(arg.(string))
			}
		}
		out, err := seg.spec.Format(arg)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

// Format renders a single value according to the spec.
func (s Spec) Format(v any) (string, error) {
	switch x := v.(type) {
	case int:
		return s.formatInt(int64(x))
	case int32:
		return s.formatInt(int64(x))
	case int64:
		return s.formatInt(x)
	case float32:
		return s.formatFloat(float64(x))
	case float64:
		return s.formatFloat(x)
	case string:
		return s.formatString(x)
	}
	return "", fmt.Errorf("unsupported value of type %T", v)
}

func isIntegerType(t byte) bool {
	return t == 'b' || t == 'c' || t == 'd' || t == 'o' || t == 'x' || t == 'X'
}

func (s Spec) formatString(v string) (string, error) {
	if s.Type != 0 && s.Type != 's' {
		return "", fmt.Errorf("unknown format code '%c' for object of type 'str'", s.Type)
	}
	if s.Sign != 0 {
		return "", fmt.Errorf("sign not allowed in string format specifier")
	}
	if s.Align == '=' {
		return "", fmt.Errorf("'=' alignment not allowed in string format specifier")
	}
	if s.Precision >= 0 && utf8.RuneCountInString(v) > s.Precision {
		v = string([]rune(v)[:s.Precision])
	}
	return s.pad("", v, '<'), nil
}

func (s Spec) formatInt(v int64) (string, error) {
	switch s.Type {
	case 0, 'd', 'n':
	case 'b', 'o', 'x', 'X', 'c':
	case 's':
		return "", fmt.Errorf("unknown format code 's' for object of type 'int'")
	default:
		return s.formatFloat(float64(v))
	}

	neg := v < 0
	mag := uint64(v)
	if neg {
		mag = uint64(-v)
	}

	var digits, prefix string
	switch s.Type {
	case 'b':
		digits, prefix = strconv.FormatUint(mag, 2), "0b"
	case 'o':
		digits, prefix = strconv.FormatUint(mag, 8), "0o"
	case 'x':
		digits, prefix = strconv.FormatUint(mag, 16), "0x"
	case 'X':
		digits, prefix = strings.ToUpper(strconv.FormatUint(mag, 16)), "0X"
	case 'c':
		return s.pad("", string(rune(v)), '<'), nil
	case 'n':
		digits = printer.Sprintf("%d", mag)
	default:
		digits = strconv.FormatUint(mag, 10)
	}

	if s.Grouping != 0 {
		size := 3
		if s.Type == 'b' || s.Type == 'o' || s.Type == 'x' || s.Type == 'X' {
			size = 4
		}
		digits = group(digits, s.Grouping, size)
	}

	sign := s.signFor(neg)
	if s.Alternate {
		sign += prefix
	}
	return s.pad(sign, digits, '>'), nil
}

func (s Spec) formatFloat(v float64) (string, error) {
	if isIntegerType(s.Type) {
		return "", fmt.Errorf("unknown format code '%c' for object of type 'float'", s.Type)
	}
	if s.Type == 's' {
		return "", fmt.Errorf("unknown format code 's' for object of type 'float'")
	}

	neg := math.Signbit(v) && !math.IsNaN(v)
	mag := math.Abs(v)
	prec := s.Precision

	var body, suffix string
	switch {
	case math.IsInf(mag, 0):
		body = "inf"
	case math.IsNaN(mag):
		body = "nan"
	default:
		switch s.Type {
		case 'f', 'F':
			if prec < 0 {
				prec = 6
			}
			body = strconv.FormatFloat(mag, 'f', prec, 64)
		case 'e', 'E':
			if prec < 0 {
				prec = 6
			}
			body = strconv.FormatFloat(mag, 'e', prec, 64)
		case '%':
			if prec < 0 {
				prec = 6
			}
			body = strconv.FormatFloat(mag*100, 'f', prec, 64)
			suffix = "%"
		case 'g', 'G', 'n':
			if prec < 0 {
				prec = 6
			}
			if prec == 0 {
				prec = 1
			}
			body = strconv.FormatFloat(mag, 'g', prec, 64)
		default:
			if prec < 0 {
				body = strconv.FormatFloat(mag, 'f', -1, 64)
				if !strings.ContainsAny(body, ".e") {
					body += ".0"
				}
			} else {
				body = strconv.FormatFloat(mag, 'g', max(prec, 1), 64)
			}
		}
	}

	if s.Type == 'F' || s.Type == 'E' || s.Type == 'G' {
		body = strings.ToUpper(body)
	}

	if s.Grouping != 0 && !strings.ContainsAny(body, "eEn") {
		intPart, frac := body, ""
		if i := strings.IndexByte(body, '.'); i >= 0 {
			intPart, frac = body[:i], body[i:]
		}
		body = group(intPart, s.Grouping, 3) + frac
	}

	return s.pad(s.signFor(neg), body+suffix, '>'), nil
}

func (s Spec) signFor(neg bool) string {
	switch {
	case neg:
		return "-"
	case s.Sign == '+':
		return "+"
	case s.Sign == ' ':
		return " "
	}
	return ""
}

// pad applies width, fill and alignment. sign is kept ahead of the padding
// for '=' alignment.
func (s Spec) pad(sign, body string, defaultAlign byte) string {
	n := utf8.RuneCountInString(sign) + utf8.RuneCountInString(body)
	if s.Width <= n {
		return sign + body
	}
	fill := strings.Repeat(string(s.Fill), s.Width-n)

	align := s.Align
	if align == 0 {
		align = defaultAlign
	}
	switch align {
	case '<':
		return sign + body + fill
	case '^':
		left := (s.Width - n) / 2
		return strings.Repeat(string(s.Fill), left) + sign + body + strings.Repeat(string(s.Fill), s.Width-n-left)
	case '=':
		return sign + fill + body
	}
	return fill + sign + body
}

// group inserts sep every size digits from the right of a run of digits.
func group(digits string, sep byte, size int) string {
	if len(digits) <= size {
		return digits
	}
	if size == 3 {
		if n, err := strconv.ParseUint(digits, 10, 64); err == nil {
			out := printer.Sprintf("%d", n)
			if sep != ',' {
				out = strings.ReplaceAll(out, ",", string(sep))
			}
			return out
		}
	}

	var sb strings.Builder
	lead := len(digits) % size
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += size {
		if sb.Len() > 0 {
			sb.WriteByte(sep)
		}
		sb.WriteString(digits[i : i+size])
	}
	return sb.String()
}
