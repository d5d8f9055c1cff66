package fontregistry

import (
	"sort"
	"strings"
	"sync"

	"github.com/derekparker/trie"
	"github.com/npillmayer/kernstyle/core"
	xfont "golang.org/x/image/font"
)

// Entry is a font which is ready to be rendered.
type Entry struct {
	Name   string // display name
	Key    string // normalized name
	Binary []byte // font binary as supplied, possibly a WOFF/WOFF2 container
}

// Registry is a type for holding fonts ready for rendering.
type Registry struct {
	sync.Mutex
	fonts map[string]Entry
	names *trie.Trie // normalized names, for prefix search
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold renderable fonts.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	fr := &Registry{
		fonts: make(map[string]Entry),
		names: trie.New(),
	}
	return fr
}

// RegisterRenderableFont stores a font binary under a name.
//
// The font will be stored using the normalized font name as a key. A font
// already stored under this key is replaced, as a font of the same name may
// have been edited in the meantime.
func (fr *Registry) RegisterRenderableFont(name string, binary []byte) error {
	if len(binary) == 0 {
		return core.Error(core.EINVALID, "registry cannot store empty font %q", name)
	}
	key := NormalizeFontname(name, xfont.StyleNormal, xfont.WeightNormal)
	if key == "" {
		return core.Error(core.EINVALID, "registry cannot store font without a name")
	}
	fr.Lock()
	defer fr.Unlock()
	tracer().Debugf("registry stores font %s as %s", name, key)
	e := Entry{Name: name, Key: key, Binary: binary}
	fr.fonts[key] = e
	fr.names.Add(key, e.Name)
	return nil
}

// Lookup finds a font by name.
func (fr *Registry) Lookup(name string) (Entry, bool) {
	key := NormalizeFontname(name, xfont.StyleNormal, xfont.WeightNormal)
	fr.Lock()
	defer fr.Unlock()
	e, ok := fr.fonts[key]
	return e, ok
}

// MatchPrefix returns the display names of all fonts whose normalized name
// starts with the normalized prefix, sorted alphabetically.
func (fr *Registry) MatchPrefix(prefix string) []string {
	p := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(prefix), " ", "_"))
	fr.Lock()
	defer fr.Unlock()
	var names []string
	for _, key := range fr.names.PrefixSearch(p) {
		if node, ok := fr.names.Find(key); ok {
			names = append(names, node.Meta().(string))
		}
	}
	sort.Strings(names)
	return names
}

// Names returns the display names of all registered fonts, sorted
// alphabetically.
func (fr *Registry) Names() []string {
	return fr.MatchPrefix("")
}

// NormalizeFontname creates a registry key from a font name, a style and
// a weight. File extensions are stripped.
func NormalizeFontname(fname string, style xfont.Style, weight xfont.Weight) string {
	fname = strings.TrimSpace(fname)
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		switch strings.ToLower(fname[dot:]) {
		case ".ttf", ".otf", ".woff", ".woff2", ".ttc":
			fname = fname[:dot]
		}
	}
	fname = strings.ToLower(fname)
	switch style {
	case xfont.StyleItalic, xfont.StyleOblique:
		fname += "-italic"
	}
	switch weight {
	case xfont.WeightLight, xfont.WeightExtraLight:
		fname += "-light"
	case xfont.WeightBold, xfont.WeightExtraBold, xfont.WeightSemiBold:
		fname += "-bold"
	}
	return fname
}
