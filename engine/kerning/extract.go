package kerning

import (
	"context"
	"unicode"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/core/font"
	"github.com/npillmayer/kernstyle/core/font/decoder"
)

// Font is what extraction needs to know about a font.
// *font.ScalableFont implements it.
type Font interface {
	Glyphs(*unicode.RangeTable) ([]font.Glyph, error)
	Kerning(a, b font.Glyph) (int, error)
	UnitsPerEm() int
	FullName() (string, bool)
	PlatformFullName() (string, bool)
}

var _ Font = &font.ScalableFont{}

// Options control an extraction. The zero value extracts Latin ranges with
// em-relative values.
type Options struct {
	Ranges Ranges // code-points to consider, Latin if nil
	Unit   Unit   // requested unit of kerning values
}

// rawKerning is a pair kerning in design units.
type rawKerning struct {
	value int
	chars []string
}

// profile is the kerning behaviour of a single left-hand glyph.
type profile struct {
	left     string
	kernings []rawKerning
}

// sameAs compares two profiles position by position.
func (p profile) sameAs(other profile) bool {
	if len(p.kernings) != len(other.kernings) {
		return false
	}
	for i, k := range p.kernings {
		o := other.kernings[i]
		if k.value != o.value || len(k.chars) != len(o.chars) {
			return false
		}
		for j := range k.chars {
			if k.chars[j] != o.chars[j] {
				return false
			}
		}
	}
	return true
}

// Extract collects the kerning pairs of f for all glyphs with a code-point
// within opts.Ranges.
//
// Glyphs are visited in glyph index order. For every left-hand glyph,
// right-hand glyphs are grouped by kerning value, in the order the values
// are first encountered. Left-hand glyphs without any kerning are dropped,
// and left-hand glyphs with identical profiles are merged into the group of
// the earliest of them.
//
// Extraction stops early with ctx.Err() if ctx is cancelled.
func Extract(ctx context.Context, f Font, opts Options) (*Table, error) {
	if f == nil {
		return nil, core.Error(core.EINVALID, "no font to extract kerning from")
	}
	ranges := opts.Ranges
	if ranges == nil {
		ranges = Latin
	}
	glyphs, err := f.Glyphs(ranges.Table())
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot enumerate glyphs")
	}
	tracer().Debugf("extracting kerning for %d glyphs in ranges %s", len(glyphs), ranges)
	profiles := make([]profile, 0, len(glyphs))
	for _, a := range glyphs {
		if err := ctx.Err(); err != nil {
			tracer().Infof("kerning extraction cancelled")
			return nil, err
		}
		byValue := linkedhashmap.New()
		for _, b := range glyphs {
			k, err := f.Kerning(a, b)
			if err != nil {
				return nil, core.WrapError(err, core.EINTERNAL,
					"cannot read kerning for pair %q %q", a.Char(), b.Char())
			}
			if k == 0 {
				continue
			}
			if chars, found := byValue.Get(k); found {
				byValue.Put(k, append(chars.([]string), b.Char()))
			} else {
				byValue.Put(k, []string{b.Char()})
			}
		}
		if byValue.Empty() {
			continue
		}
		p := profile{left: a.Char(), kernings: make([]rawKerning, 0, byValue.Size())}
		it := byValue.Iterator()
		for it.Next() {
			p.kernings = append(p.kernings, rawKerning{
				value: it.Key().(int),
				chars: it.Value().([]string),
			})
		}
		profiles = append(profiles, p)
	}
	table := &Table{Unit: DesignUnits, Groups: []KerningSpec{}}
	divisor := 1.0
	if opts.Unit == EmRelative {
		if upem := f.UnitsPerEm(); upem > 0 {
			table.Unit = EmRelative
			divisor = float64(upem)
		} else {
			tracer().Infof("font does not tell units per em, kerning stays in design units")
		}
	}
	merged := make([]bool, len(profiles))
	for i, p := range profiles {
		if merged[i] {
			continue
		}
		group := KerningSpec{Chars: []string{p.left}}
		for j := i + 1; j < len(profiles); j++ {
			if !merged[j] && p.sameAs(profiles[j]) {
				group.Chars = append(group.Chars, profiles[j].left)
				merged[j] = true
			}
		}
		group.Kernings = make([]PairKerning, len(p.kernings))
		for k, raw := range p.kernings {
			group.Kernings[k] = PairKerning{
				Kerning: float64(raw.value) / divisor,
				Chars:   raw.chars,
			}
		}
		table.Groups = append(table.Groups, group)
	}
	table.FontName = displayName(f)
	tracer().Infof("font %q: %d kerning groups from %d kerned glyphs",
		table.FontName, len(table.Groups), len(profiles))
	return table, nil
}

// displayName prefers the full name of a font and falls back to the
// platform-specific full name.
func displayName(f Font) string {
	if name, ok := f.FullName(); ok {
		return name
	}
	if name, ok := f.PlatformFullName(); ok {
		return name
	}
	return ""
}

// ExtractBytes decodes a font binary and extracts its kerning table.
// Decoding failures are returned as they are (see package decoder).
func ExtractBytes(ctx context.Context, b []byte, dopts decoder.Options, opts Options) (*Table, error) {
	f, err := decoder.Decode(b, dopts).Await(ctx)
	if err != nil {
		return nil, err
	}
	return Extract(ctx, f, opts)
}
