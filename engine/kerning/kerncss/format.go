package kerncss

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/engine/kerning"
)

// Layout is the textual arrangement of rules.
type Layout int

// Layouts
const (
	Nested Layout = iota // one block, rules nested inside
	Flat                 // one rule per line, scope class prefixed
)

type formatter struct {
	layout    Layout
	precision int // -1: shortest representation
}

// Option configures formatting.
type Option func(*formatter)

// WithLayout selects the layout of rules.
func WithLayout(l Layout) Option {
	return func(f *formatter) {
		f.layout = l
	}
}

// FlatLayout selects the flat layout.
func FlatLayout() Option {
	return WithLayout(Flat)
}

// Precision rounds kerning values to n decimals. Trailing zeros are dropped.
func Precision(n int) Option {
	return func(f *formatter) {
		if n >= 0 {
			f.precision = n
		}
	}
}

// Format renders table t as a style sheet scoped under className.
//
// Kerning values of tables in design units are interpreted as thousandths
// of an em.
func Format(className string, t *kerning.Table, opts ...Option) string {
	f := formatter{precision: -1}
	for _, opt := range opts {
		opt(&f)
	}
	scope := "." + EscapeClass(className)
	var rules []string
	if t != nil {
		for _, group := range t.Groups {
			left := selector(group.Chars)
			for _, pk := range group.Kernings {
				rules = append(rules, fmt.Sprintf("%s + %s { margin-left: %sem; }",
					left, selector(pk.Chars), f.number(value(t, pk.Kerning))))
			}
		}
	}
	tracer().Debugf("formatted %d rules for %s", len(rules), scope)
	var sb strings.Builder
	switch f.layout {
	case Flat:
		for _, rule := range rules {
			sb.WriteString(scope)
			sb.WriteByte(' ')
			sb.WriteString(rule)
			sb.WriteByte('\n')
		}
	default:
		sb.WriteString(scope)
		sb.WriteString(" {")
		for _, rule := range rules {
			sb.WriteByte('\n')
			sb.WriteString(rule)
		}
		sb.WriteByte('}')
	}
	return sb.String()
}

func value(t *kerning.Table, v float64) float64 {
	if t.Unit == kerning.DesignUnits {
		return v / 1000
	}
	return v
}

func (f formatter) number(v float64) string {
	if f.precision < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', f.precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// selector builds ":is(.A,.B,…)" for a list of characters.
func selector(chars []string) string {
	classes := make([]string, len(chars))
	for i, c := range chars {
		classes[i] = "." + EscapeClass(c)
	}
	return ":is(" + strings.Join(classes, ",") + ")"
}

// EscapeClass escapes a string for use as a class selector.
//
// A leading digit (or a digit following a leading hyphen) is written as a
// hex escape, followed by a space if more characters follow. ASCII
// punctuation is backslash-escaped, control characters are hex-escaped.
// Non-ASCII characters are valid in identifiers and pass unchanged.
func EscapeClass(s string) string {
	if s == "-" {
		return `\-`
	}
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		more := i+1 < len(runes)
		switch {
		case r >= '0' && r <= '9' && (i == 0 || (i == 1 && runes[0] == '-')):
			sb.WriteString(hexEscape(r, more))
		case r < 0x20 || r == 0x7F:
			sb.WriteString(hexEscape(r, more))
		case r >= 0x80, r == '-', r == '_',
			r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func hexEscape(r rune, more bool) string {
	e := `\` + strconv.FormatInt(int64(r), 16)
	if more {
		e += " "
	}
	return e
}

// Validate parses a style sheet in flat layout and returns the number of
// rules found. Nested blocks are not understood.
func Validate(css string) (int, error) {
	sheet, err := parser.Parse(css)
	if err != nil {
		return 0, core.WrapError(err, core.EINVALID, "style sheet does not parse")
	}
	for _, rule := range sheet.Rules {
		if len(rule.Declarations) == 0 {
			return 0, core.Error(core.EINVALID, "rule %q without declarations", rule.Prelude)
		}
	}
	return len(sheet.Rules), nil
}
