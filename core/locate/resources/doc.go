/*
Package resources resolves font resources for an application.

As resource loading may be a time-consuming task, some functions in this
package will work in an async/await fashion by returning a promise.
Functions named

	Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

Fonts are searched for in the following order:

  - fonts already registered for rendering (see package fontregistry)
  - the packaged sample font, if the name is "sample"
  - a local file, if the name is a path to an existing file
  - system fonts
  - fonts known to fontconfig, if key 'fontconfig' is configured
  - the Google Fonts service, if key 'google-api-key' is configured

Fonts downloaded from Google are cached in the user's cache directory, in a
sub-folder named after the configuration key 'app-key'.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'kernstyle.resources'.
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.resources")
}
