package fontregistry

import (
	"regexp"
	"strconv"
	"strings"

	xfont "golang.org/x/image/font"
)

// Descriptor describes a font family available from some source, i.e., a
// list of font files or a web font service.
type Descriptor struct {
	Family   string
	Variants []string // "regular", "700italic", "Bold Italic", …
	Path     string   // local file path, if any
}

// MatchConfidence expresses how well a font variant fits a request.
type MatchConfidence int

// Levels of confidence. Clients usually accept matches above LowConfidence.
const (
	NoConfidence      MatchConfidence = 0
	LowConfidence     MatchConfidence = 2
	HighConfidence    MatchConfidence = 3
	PerfectConfidence MatchConfidence = 4
)

// ClosestMatch selects the variant best fitting style and weight from all
// descriptors with a family name matching pattern. pattern is a regular
// expression, compared case-insensitively.
//
// Upright and slanted variants never substitute for each other. Among the
// variants of the requested slant, the one with the nearest CSS weight wins.
// If nothing fits, confidence is NoConfidence.
func ClosestMatch(descs []Descriptor, pattern string, style xfont.Style, weight xfont.Weight) (
	match Descriptor, variant string, confidence MatchConfidence) {
	//
	family, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		tracer().Errorf("invalid font name pattern %q: %v", pattern, err)
		return
	}
	slanted := style == xfont.StyleItalic || style == xfont.StyleOblique
	want := cssWeight(weight)
	for _, d := range descs {
		if !family.MatchString(d.Family) {
			continue
		}
		for _, v := range d.Variants {
			w, s := parseVariant(v)
			if s != slanted {
				continue
			}
			if c := weightDistance(w, want); c > confidence {
				match, variant, confidence = d, v, c
			}
		}
	}
	return
}

// cssWeight maps x/image weights (Normal = 0, steps of 1) to CSS weights
// (normal = 400, steps of 100).
func cssWeight(w xfont.Weight) int {
	return 400 + 100*int(w)
}

// Longer names first, as "bold" is contained in "semibold".
var weightNames = []struct {
	name   string
	weight int
}{
	{"extralight", 200}, {"ultralight", 200},
	{"semibold", 600}, {"demibold", 600},
	{"extrabold", 800}, {"ultrabold", 800},
	{"hairline", 100}, {"thin", 100},
	{"light", 300}, {"medium", 500},
	{"bold", 700}, {"black", 900}, {"heavy", 900},
}

// parseVariant reads a variant name as used by Google Fonts ("700italic")
// or fontconfig ("Semi Bold Italic"). Names without a weight are 400.
func parseVariant(v string) (weight int, slanted bool) {
	v = strings.ToLower(v)
	v = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(v)
	slanted = strings.Contains(v, "italic") || strings.Contains(v, "oblique")
	digits := len(v) - len(strings.TrimLeft(v, "0123456789"))
	if n, err := strconv.Atoi(v[:digits]); err == nil {
		return n, slanted
	}
	for _, wn := range weightNames {
		if strings.Contains(v, wn.name) {
			return wn.weight, slanted
		}
	}
	return 400, slanted
}

func weightDistance(have, want int) MatchConfidence {
	d := have - want
	if d < 0 {
		d = -d
	}
	switch {
	case d == 0:
		return PerfectConfidence
	case d <= 100:
		return HighConfidence
	case d <= 300:
		return LowConfidence
	}
	return NoConfidence
}
