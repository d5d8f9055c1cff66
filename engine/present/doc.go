/*
Package present keeps a rendering surface in sync with a font and its
kerning style sheet.

A Controller owns the life cycle of a single font: whenever the font
changes, the style sheet of the previous font is revoked and a new
extraction starts. Results of extractions which have been superseded by a
later font change are dropped. On success the formatted style sheet is
injected into the surface and the font binary is registered for rendering.

Surfaces are abstracted as capabilities (StyleInjector, FontRegistrar).
Package htmlsurface implements them for an HTML document.

	ctrl := present.NewController(conf, surface, surface)
	go ctrl.Run(ctx)
	ctrl.FontChanged(fontBytes)

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package present

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'kernstyle.present'.
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.present")
}
