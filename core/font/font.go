/*
Package font is for font handling.

A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".
We hold it as the raw binary plus the structural view produced by
golang.org/x/image/font/sfnt. Binary parsing is left to sfnt entirely; this
package only asks questions about glyphs, kerning pairs and names.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package font

import (
	"errors"
	"sort"
	"unicode"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/rangetable"
)

// tracer traces with key 'kernstyle.font'.
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.font")
}

// ScalableFont is a parsed font together with its raw binary.
//
// A ScalableFont is not safe for concurrent use: sfnt needs a scratch
// buffer for most queries and we keep one per font.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path, if loaded from a file
	Binary   []byte     // raw data, uncompressed sfnt
	SFNT     *sfnt.Font // the font's container
	buf      sfnt.Buffer
}

// Glyph is an entry of a font's glyph table which has a code-point
// assigned to it.
type Glyph struct {
	Index     sfnt.GlyphIndex
	CodePoint rune
}

// Char returns the glyph's code-point as a string.
func (g Glyph) Char() string {
	return string(g.CodePoint)
}

// ParseOpenTypeFont hands a font binary to the structural parser.
// If the bytes are not a valid font, a *core.ParseError is returned.
func ParseOpenTypeFont(fbytes []byte) (*ScalableFont, error) {
	if len(fbytes) == 0 {
		return nil, &core.ParseError{Err: errors.New("empty font data")}
	}
	f := &ScalableFont{Binary: fbytes}
	otf, err := sfnt.Parse(f.Binary)
	if err != nil {
		return nil, &core.ParseError{Err: err}
	}
	f.SFNT = otf
	f.Fontname, _ = f.FullName()
	tracer().Debugf("parsed font %q with %d glyphs", f.Fontname, otf.NumGlyphs())
	return f, nil
}

// UnitsPerEm returns the font's design units per em, or 0 if the font does
// not tell.
func (sf *ScalableFont) UnitsPerEm() int {
	if sf.SFNT == nil {
		return 0
	}
	return int(sf.SFNT.UnitsPerEm())
}

// Glyphs returns every glyph which has a code-point contained in ranges,
// in glyph index order. A glyph reachable from more than one code-point is
// reported once, with the lowest of these code-points.
func (sf *ScalableFont) Glyphs(ranges *unicode.RangeTable) ([]Glyph, error) {
	if sf.SFNT == nil || ranges == nil {
		return nil, nil
	}
	seen := make(map[sfnt.GlyphIndex]bool)
	var glyphs []Glyph
	var err error
	rangetable.Visit(ranges, func(r rune) {
		if err != nil {
			return
		}
		gid, e := sf.SFNT.GlyphIndex(&sf.buf, r)
		if e != nil {
			err = e
			return
		}
		if gid == 0 || seen[gid] { // 0 is .notdef
			return
		}
		seen[gid] = true
		glyphs = append(glyphs, Glyph{Index: gid, CodePoint: r})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(glyphs, func(i, j int) bool {
		return glyphs[i].Index < glyphs[j].Index
	})
	return glyphs, nil
}

// Kerning returns the horizontal adjustment for the ordered pair (a, b)
// in font design units. sfnt consults GPOS pair adjustments first and falls
// back to table 'kern'. A pair unknown to the font yields 0.
func (sf *ScalableFont) Kerning(a, b Glyph) (int, error) {
	upem := sf.UnitsPerEm()
	if upem == 0 {
		return 0, nil
	}
	// with ppem set to units-per-em, sfnt's scaling is the identity
	k, err := sf.SFNT.Kern(&sf.buf, a.Index, b.Index, fixed.Int26_6(upem), xfont.HintingNone)
	if err != nil {
		if errors.Is(err, sfnt.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return int(k), nil
}

// FullName returns the font's full name from table 'name'.
func (sf *ScalableFont) FullName() (string, bool) {
	return sf.name(sfnt.NameIDFull)
}

// PlatformFullName returns the platform-specific full name entry
// (name ID 18, Macintosh only), which some fonts carry instead of a
// regular full name.
func (sf *ScalableFont) PlatformFullName() (string, bool) {
	return sf.name(sfnt.NameIDCompatibleFull)
}

func (sf *ScalableFont) name(id sfnt.NameID) (string, bool) {
	if sf.SFNT == nil {
		return "", false
	}
	n, err := sf.SFNT.Name(&sf.buf, id)
	if err != nil || n == "" {
		return "", false
	}
	return n, true
}

// --- Sample font ----------------------------------------------------------

// SampleFontBinary returns the raw bytes of the packaged sample font.
func SampleFontBinary() []byte {
	return goregular.TTF
}
