/*
Package woff detects and unpacks compressed font containers.

Web fonts are frequently shipped as WOFF 1.0 (zlib-compressed tables) or
WOFF2 (a Brotli-compressed table stream, with optional transforms for some
tables). Unwrap turns either into a plain sfnt binary which the structural
parser understands.

WOFF2 transforms of tables 'glyf' and 'loca' are not reversed. Glyph
outlines are of no interest to kerning extraction, so the unpacked font
carries empty outlines for every glyph instead. All other tables are
restored byte for byte.

References:

▪ https://www.w3.org/TR/WOFF/

▪ https://www.w3.org/TR/WOFF2/

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package woff

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'kernstyle.font'
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.font")
}
