/*
Package fontregistry manages a registry for fonts which are ready to be
rendered.

A font is registered as its binary together with a name. Front ends use the
registry to look up fonts by name or by name prefix, e.g., for completion
in interactive sessions, and to serve font binaries to a renderer.

The package also knows how to match font names and variant names against
requested styles and weights, which is needed when choosing a font file
from a list of candidates.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'kernstyle.font'
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.font")
}
