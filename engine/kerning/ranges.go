package kerning

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/npillmayer/kernstyle/core"
	"golang.org/x/text/unicode/rangetable"
)

// UnicodeRange is a closed interval of code-points.
type UnicodeRange struct {
	Min, Max rune
}

func (r UnicodeRange) String() string {
	if r.Min == r.Max {
		return fmt.Sprintf("%d", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Ranges is an ordered list of code-point intervals. Intervals may overlap.
type Ranges []UnicodeRange

// Latin is the default set of ranges: ASCII digits, ASCII letters and the
// Latin-1 supplement from À to ÿ.
var Latin = Ranges{
	{48, 57},
	{65, 90},
	{97, 122},
	{192, 255},
}

var namedRanges = map[string]Ranges{
	"latin": Latin,
}

// ParseRanges reads a list of ranges, either the name of a predefined set
// ("latin") or a comma separated list of intervals and single code-points.
// Code-points may be given in decimal, as 0x-prefixed hex or as U+hex:
//
//	"48-57, 65-90, U+00C0-U+00FF, 0x20"
func ParseRanges(s string) (Ranges, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Latin, nil
	}
	if r, ok := namedRanges[strings.ToLower(s)]; ok {
		return r, nil
	}
	var ranges Ranges
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isInterval := strings.Cut(part, "-")
		min, err := parseCodePoint(lo)
		if err != nil {
			return nil, err
		}
		max := min
		if isInterval {
			if max, err = parseCodePoint(hi); err != nil {
				return nil, err
			}
		}
		if min > max {
			return nil, core.Error(core.EINVALID, "empty code-point range %q", part)
		}
		ranges = append(ranges, UnicodeRange{Min: min, Max: max})
	}
	if len(ranges) == 0 {
		return nil, core.Error(core.EINVALID, "no code-point ranges in %q", s)
	}
	return ranges, nil
}

func parseCodePoint(s string) (rune, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "U+") || strings.HasPrefix(s, "u+") {
		s = "0x" + s[2:]
	}
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil || n < 0 || n > unicode.MaxRune {
		return 0, core.Error(core.EINVALID, "not a code-point: %q", s)
	}
	return rune(n), nil
}

// Contains is a predicate: is r within at least one of the ranges?
func (rs Ranges) Contains(r rune) bool {
	for _, ur := range rs {
		if r >= ur.Min && r <= ur.Max {
			return true
		}
	}
	return false
}

func (rs Ranges) String() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// Table converts the ranges to a range table suitable for package unicode.
// Overlapping intervals are merged.
func (rs Ranges) Table() *unicode.RangeTable {
	tables := make([]*unicode.RangeTable, 0, len(rs))
	for _, r := range rs {
		if r.Min > r.Max || r.Min < 0 {
			continue
		}
		t := &unicode.RangeTable{}
		if r.Min <= 0xFFFF {
			hi := r.Max
			if hi > 0xFFFF {
				hi = 0xFFFF
			}
			t.R16 = []unicode.Range16{{Lo: uint16(r.Min), Hi: uint16(hi), Stride: 1}}
		}
		if r.Max > 0xFFFF {
			lo := r.Min
			if lo <= 0xFFFF {
				lo = 0x10000
			}
			t.R32 = []unicode.Range32{{Lo: uint32(lo), Hi: uint32(r.Max), Stride: 1}}
		}
		tables = append(tables, t)
	}
	return rangetable.Merge(tables...)
}
