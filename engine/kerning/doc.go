/*
Package kerning extracts pairwise kerning metrics from a font.

Fonts store kerning as adjustments between pairs of glyphs. Front ends which
split text into individually styled characters (for animation or
per-character editing) lose these adjustments, as every character is
shaped on its own. This package collects all non-zero adjustments for the
glyphs within a set of Unicode ranges and compacts them into a table:

	left-hand chars  →  [ (value, right-hand chars), … ]

Left-hand characters with identical kerning profiles share one entry.
Values are relative to the em square, unless the font does not tell its
units per em, in which case they stay in design units and the table says
so.

Extraction walks every ordered pair of glyphs, i.e. it is quadratic in the
number of glyphs selected. The default ranges (ASCII digits and letters,
Latin-1 letters) keep this small.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package kerning

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'kernstyle.kerning'.
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.kerning")
}
