package resources

import (
	"context"
	"fmt"
	"os"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/core/font"
	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/schuko"
	xfont "golang.org/x/image/font"
)

// SampleFontName is the name of the packaged sample font.
const SampleFontName = "sample"

// FontSource tells where a font has been found.
type FontSource int

// Sources of fonts
const (
	UnknownSource FontSource = iota
	RegistrySource
	PackagedSource
	FileSource
	SystemSource
	FontConfigSource
	GoogleSource
)

func (src FontSource) String() string {
	switch src {
	case RegistrySource:
		return "registry"
	case PackagedSource:
		return "packaged"
	case FileSource:
		return "file"
	case SystemSource:
		return "system"
	case FontConfigSource:
		return "fontconfig"
	case GoogleSource:
		return "Google Fonts"
	}
	return "unknown"
}

// FontBinary is a resolved font, as it has been found. Font data may still
// be packaged in a compressed container.
type FontBinary struct {
	Name   string
	Path   string // file path, if any
	Source FontSource
	Binary []byte
}

// NotFound returns an application error for a missing font.
func NotFound(res string) error {
	e := fmt.Errorf("resource missing: %v", res)
	return core.WrapError(e, core.EMISSING, "font not found: %s", res)
}

type fontPlusErr struct {
	font FontBinary
	err  error
}

// FontBinaryPromise is the result of ResolveFont.
type FontBinaryPromise interface {
	Binary() (FontBinary, error)
	Await(ctx context.Context) (FontBinary, error)
}

type fontLoader struct {
	await func(ctx context.Context) (FontBinary, error)
}

func (loader fontLoader) Binary() (FontBinary, error) {
	return loader.await(context.Background())
}

func (loader fontLoader) Await(ctx context.Context) (FontBinary, error) {
	return loader.await(ctx)
}

// ResolveFont searches for a font by name. Style and weight are used for
// selecting a variant from font lists (fontconfig, Google Fonts).
// conf may be nil, which switches off fontconfig and Google Fonts.
func ResolveFont(conf schuko.Configuration, name string, style xfont.Style, weight xfont.Weight) FontBinaryPromise {
	ch := make(chan fontPlusErr, 1)
	go func(ch chan<- fontPlusErr) {
		result := fontPlusErr{}
		result.font, result.err = resolveFont(conf, name, style, weight)
		ch <- result
		close(ch)
	}(ch)
	return fontLoader{
		await: func(ctx context.Context) (FontBinary, error) {
			select {
			case <-ctx.Done():
				return FontBinary{}, ctx.Err()
			case r := <-ch:
				return r.font, r.err
			}
		},
	}
}

func resolveFont(conf schuko.Configuration, name string, style xfont.Style, weight xfont.Weight) (
	FontBinary, error) {
	//
	fb := FontBinary{Name: name}
	if e, ok := fontregistry.GlobalRegistry().Lookup(name); ok {
		tracer().Debugf("found font %s in registry", name)
		fb.Source, fb.Binary = RegistrySource, e.Binary
		return fb, nil
	}
	if name == SampleFontName {
		tracer().Debugf("using packaged sample font")
		fb.Source, fb.Binary = PackagedSource, font.SampleFontBinary()
		return fb, nil
	}
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		tracer().Debugf("%s is a font file", name)
		return loadFile(fb, FileSource, name)
	}
	if fpath, err := findfont.Find(name); err == nil && fpath != "" { // try to find as system font
		tracer().Debugf("%s is a system font", name)
		return loadFile(fb, SystemSource, fpath)
	}
	if conf == nil {
		return fb, NotFound(name)
	}
	if desc, variant := findFontConfigFont(conf, name, style, weight); desc.Path != "" {
		tracer().Debugf("fontconfig knows %s as %s (%s)", name, desc.Path, variant)
		return loadFile(fb, FontConfigSource, desc.Path)
	}
	fiList, err := FindGoogleFont(conf, name, style, weight)
	if err != nil {
		tracer().Infof("no Google font for %s: %v", name, err)
		return fb, NotFound(name)
	}
	fi := fiList[0]
	_, variant, _ := fontregistry.ClosestMatch(googleDescriptors(fiList[:1]), ".*", style, weight)
	fpath, err := CacheGoogleFont(conf, fi, variant)
	if err != nil {
		return fb, err
	}
	return loadFile(fb, GoogleSource, fpath)
}

func loadFile(fb FontBinary, src FontSource, fpath string) (FontBinary, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return fb, core.WrapError(err, core.EMISSING, "cannot read font file %s", fpath)
	}
	fb.Source, fb.Path, fb.Binary = src, fpath, b
	return fb, nil
}
