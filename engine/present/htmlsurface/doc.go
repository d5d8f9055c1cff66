/*
Package htmlsurface implements a rendering surface for kerning style
sheets on top of an HTML document tree.

A Document accepts style sheets and fonts from a present.Controller and
lays out a sample text as one span per user-perceived character, with the
character as the span's class. The spans are wrapped into a container
carrying the scope class of the kerning style sheet, thus rendering the
document in a browser shows the text kerned.

	doc := htmlsurface.New(fontregistry.GlobalRegistry())
	ctrl := present.NewController(conf, doc, doc)
	ctrl.Subscribe(doc.Update)
	doc.SetText("AVATAR")

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package htmlsurface

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'kernstyle.present'.
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.present")
}
