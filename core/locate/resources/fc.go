package resources

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/schuko"
	xfont "golang.org/x/image/font"
)

// fcFormat makes fc-list print one font file per line: path, first family
// name and first style name.
const fcFormat = "%{file}|%{family[0]}|%{style[0]}\n"

// fontConfigList is fontconfig's font list, loaded at most once per process.
var fontConfigList struct {
	sync.Once
	descs []fontregistry.Descriptor
	err   error
}

// fontConfigFonts lists the font files known to fontconfig. Configuration
// key 'fontconfig' holds the absolute path of the fc-list binary. We call
// the binary instead of linking the C library.
func fontConfigFonts(conf schuko.Configuration) ([]fontregistry.Descriptor, error) {
	fontConfigList.Do(func() {
		fontConfigList.descs, fontConfigList.err = runFontConfig(conf.GetString("fontconfig"))
		if fontConfigList.err == nil {
			tracer().Infof("fontconfig lists %d font files", len(fontConfigList.descs))
		}
	})
	return fontConfigList.descs, fontConfigList.err
}

func runFontConfig(fclist string) ([]fontregistry.Descriptor, error) {
	if fclist == "" {
		return nil, core.Error(core.EMISSING, "fontconfig not configured")
	}
	if !filepath.IsAbs(fclist) {
		return nil, core.Error(core.EINVALID, "fc-list has to be configured as an absolute path: %s", fclist)
	}
	out, err := exec.Command(fclist, "--format", fcFormat).Output()
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot run %s", fclist)
	}
	return parseFontConfigList(bytes.NewReader(out))
}

// parseFontConfigList reads fc-list output in fcFormat:
//
//	/usr/share/fonts/Inter-Bold.otf|Inter|Bold
//
// Font collections are skipped, as are lines not in this format.
func parseFontConfigList(r io.Reader) ([]fontregistry.Descriptor, error) {
	var descs []fontregistry.Descriptor
	collections := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fpath, rest, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "|")
		if !ok {
			continue
		}
		family, style, ok := strings.Cut(rest, "|")
		if !ok || family == "" {
			continue
		}
		if strings.EqualFold(filepath.Ext(fpath), ".ttc") {
			collections++
			continue
		}
		if style == "" {
			style = "Regular"
		}
		descs = append(descs, fontregistry.Descriptor{
			Family:   family,
			Variants: []string{style},
			Path:     fpath,
		})
	}
	if collections > 0 {
		tracer().Infof("fontconfig: skipped %d font collections", collections)
	}
	return descs, scanner.Err()
}

// findFontConfigFont searches fontconfig's list for a font file matching
// pattern, style and weight. fontconfig is an optional source, so errors
// are traced and result in an empty descriptor.
func findFontConfigFont(conf schuko.Configuration, pattern string, style xfont.Style, weight xfont.Weight) (
	fontregistry.Descriptor, string) {
	//
	descs, err := fontConfigFonts(conf)
	if err != nil {
		tracer().Debugf("fontconfig: %v", err)
		return fontregistry.Descriptor{}, ""
	}
	desc, variant, confidence := fontregistry.ClosestMatch(descs, pattern, style, weight)
	if confidence <= fontregistry.LowConfidence {
		return fontregistry.Descriptor{}, ""
	}
	tracer().Debugf("fontconfig match %s|%s, confidence %d", desc.Family, variant, confidence)
	return desc, variant
}
