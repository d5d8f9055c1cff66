/*
Package kerncss renders kerning tables as style sheets.

Every character of a text is expected to live in its own element, carrying
the character itself as a class name:

	<div class="kern_Open_Sans">
	  <span class="A">A</span><span class="V">V</span>
	</div>

A kerning group of a table then becomes an adjacency rule, which moves the
right-hand element by the kerning value:

	:is(.A,.T) + :is(.V) { margin-left: -0.05em; }

Rules are scoped under the class of the containing element. By default they
are nested into a single block; hosts without support for CSS nesting may
request a flat layout with one rule per line, which also is the layout
Validate understands.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package kerncss

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'kernstyle.css'.
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.css")
}
