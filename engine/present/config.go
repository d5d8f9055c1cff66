package present

import (
	"strconv"
	"strings"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/engine/kerning"
	"github.com/npillmayer/kernstyle/engine/kerning/kerncss"
	"github.com/npillmayer/schuko"
)

// Config holds the settings of a Controller.
type Config struct {
	Ranges     kerning.Ranges // code-points to extract kerning for
	ClassName  string         // custom scope class; derived from the font name if empty
	Unit       kerning.Unit   // unit of extracted values
	Decompress bool           // unpack compressed font containers
	Layout     kerncss.Layout // style sheet layout
}

// DefaultConfig returns a configuration for Latin ranges, em-relative
// values and nested style sheets.
func DefaultConfig() Config {
	return Config{
		Ranges:     kerning.Latin,
		Unit:       kerning.EmRelative,
		Decompress: true,
		Layout:     kerncss.Nested,
	}
}

// Configuration keys
const (
	KeyRanges     = "kern.ranges"     // "latin" or a list of code-point ranges
	KeyClass      = "kern.class"      // custom scope class
	KeyUnit       = "kern.unit"       // "em" or "design"
	KeyDecompress = "kern.decompress" // boolean
	KeyLayout     = "kern.layout"     // "nested" or "flat"
)

// ConfigFrom reads a configuration. Keys not set keep their defaults.
func ConfigFrom(conf schuko.Configuration) (Config, error) {
	c := DefaultConfig()
	if conf == nil {
		return c, nil
	}
	var err error
	if s := conf.GetString(KeyRanges); s != "" {
		if c.Ranges, err = kerning.ParseRanges(s); err != nil {
			return c, err
		}
	}
	c.ClassName = strings.TrimSpace(conf.GetString(KeyClass))
	if s := conf.GetString(KeyUnit); s != "" {
		if c.Unit, err = kerning.ParseUnit(s); err != nil {
			return c, core.WrapError(err, core.EINVALID, "configuration key %s", KeyUnit)
		}
	}
	if s := conf.GetString(KeyDecompress); s != "" {
		if c.Decompress, err = strconv.ParseBool(s); err != nil {
			return c, core.WrapError(err, core.EINVALID, "configuration key %s", KeyDecompress)
		}
	}
	switch s := strings.ToLower(conf.GetString(KeyLayout)); s {
	case "", "nested":
		c.Layout = kerncss.Nested
	case "flat":
		c.Layout = kerncss.Flat
	default:
		return c, core.Error(core.EINVALID, "configuration key %s: unknown layout %q", KeyLayout, s)
	}
	tracer().Debugf("kerning configuration: ranges=%s, unit=%s, layout=%d", c.Ranges, c.Unit, c.Layout)
	return c, nil
}
