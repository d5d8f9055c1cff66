package htmlsurface

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/kernstyle/engine/present"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const skeleton = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>kernstyle</title></head>
<body><div id="kerning"></div></body></html>`

const (
	handleAttr = "data-kern-handle"
	fontAttr   = "data-kern-font"
)

var (
	selScope = cascadia.MustCompile("div#kerning")
	selFont  = cascadia.MustCompile("style[" + fontAttr + "]")
	selSheet = cascadia.MustCompile("style[" + handleAttr + "]")
)

// Document is an HTML document serving as a surface for a kerning
// controller. It is safe for concurrent use.
type Document struct {
	sync.Mutex
	root     *html.Node
	head     *html.Node
	scope    *html.Node
	seq      int
	text     string
	family   string
	registry *fontregistry.Registry
}

var _ present.StyleInjector = &Document{}
var _ present.FontRegistrar = &Document{}

// New creates an empty document. Fonts registered for rendering are stored
// in registry as well. registry may be nil.
func New(registry *fontregistry.Registry) *Document {
	root, err := html.Parse(strings.NewReader(skeleton))
	if err != nil {
		panic(err) // skeleton is constant
	}
	return &Document{
		root:     root,
		head:     findElement(atom.Head, root),
		scope:    selScope.MatchFirst(root),
		registry: registry,
	}
}

// InjectStylesheet appends a style element to the document head.
func (doc *Document) InjectStylesheet(css string) (present.Handle, error) {
	doc.Lock()
	defer doc.Unlock()
	doc.seq++
	h := present.Handle(fmt.Sprintf("kern-%d", doc.seq))
	doc.head.AppendChild(styleElement(handleAttr, string(h), css))
	tracer().Debugf("injected style sheet %s", h)
	return h, nil
}

// RevokeStylesheet removes the style element for handle h.
func (doc *Document) RevokeStylesheet(h present.Handle) error {
	doc.Lock()
	defer doc.Unlock()
	sel, err := cascadia.Compile(fmt.Sprintf("style[%s=%q]", handleAttr, string(h)))
	if err != nil {
		return core.WrapError(err, core.EINVALID, "invalid style sheet handle %q", h)
	}
	n := sel.MatchFirst(doc.root)
	if n == nil {
		return core.Error(core.EMISSING, "no style sheet with handle %q", h)
	}
	n.Parent.RemoveChild(n)
	tracer().Debugf("revoked style sheet %s", h)
	return nil
}

// RegisterRenderableFont embeds binary as a data URL in a @font-face rule
// and sets it as the document's font. A previously registered font is
// replaced.
func (doc *Document) RegisterRenderableFont(name string, binary []byte) error {
	if doc.registry != nil {
		if err := doc.registry.RegisterRenderableFont(name, binary); err != nil {
			return err
		}
	} else if strings.TrimSpace(name) == "" || len(binary) == 0 {
		return core.Error(core.EINVALID, "cannot register font without name or data")
	}
	doc.Lock()
	defer doc.Unlock()
	if old := selFont.MatchFirst(doc.root); old != nil {
		old.Parent.RemoveChild(old)
	}
	family := strings.ReplaceAll(name, `"`, `'`)
	css := fmt.Sprintf("@font-face { font-family: \"%s\"; src: url(data:%s;base64,%s); }\n"+
		"#kerning { font-family: \"%s\", sans-serif; }",
		family, mimeType(binary), base64.StdEncoding.EncodeToString(binary), family)
	// font faces have to precede kerning style sheets
	doc.head.InsertBefore(styleElement(fontAttr, family, css), selSheet.MatchFirst(doc.head))
	doc.family = family
	tracer().Infof("registered font %q for rendering", family)
	return nil
}

// Update adapts the scope class of the sample text to a controller's state.
// It is meant to be subscribed to a present.Controller.
func (doc *Document) Update(snap present.Snapshot) {
	doc.Lock()
	defer doc.Unlock()
	setAttr(doc.scope, "class", snap.ClassName)
}

// SetText replaces the sample text, one span per user-perceived character.
func (doc *Document) SetText(text string) {
	doc.Lock()
	defer doc.Unlock()
	for c := doc.scope.FirstChild; c != nil; c = doc.scope.FirstChild {
		doc.scope.RemoveChild(c)
	}
	doc.text = text
	for _, g := range present.SplitText(text) {
		span := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
		if g != present.NBSP {
			setAttr(span, "class", g)
		}
		span.AppendChild(&html.Node{Type: html.TextNode, Data: g})
		doc.scope.AppendChild(span)
	}
}

// Text returns the current sample text.
func (doc *Document) Text() string {
	doc.Lock()
	defer doc.Unlock()
	return doc.text
}

// FontFamily returns the name of the font registered last.
func (doc *Document) FontFamily() string {
	doc.Lock()
	defer doc.Unlock()
	return doc.family
}

// Stylesheets returns the kerning style sheets currently present, in
// order of injection.
func (doc *Document) Stylesheets() []string {
	doc.Lock()
	defer doc.Unlock()
	var sheets []string
	for _, n := range selSheet.MatchAll(doc.root) {
		if n.FirstChild != nil {
			sheets = append(sheets, n.FirstChild.Data)
		}
	}
	return sheets
}

// Render writes the document as HTML.
func (doc *Document) Render(w io.Writer) error {
	doc.Lock()
	defer doc.Unlock()
	return html.Render(w, doc.root)
}

// Query returns the nodes of the document matching a CSS selector.
func (doc *Document) Query(selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "invalid selector %q", selector)
	}
	doc.Lock()
	defer doc.Unlock()
	return sel.MatchAll(doc.root), nil
}

// ---------------------------------------------------------------------------

func styleElement(key, val, css string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: key, Val: val}},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	return n
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			if val == "" {
				n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			} else {
				n.Attr[i].Val = val
			}
			return
		}
	}
	if val != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	}
}

func findElement(a atom.Atom, h *html.Node) *html.Node {
	if h == nil {
		return nil
	}
	if h.DataAtom == a {
		return h
	}
	for ch := h.FirstChild; ch != nil; ch = ch.NextSibling {
		if r := findElement(a, ch); r != nil {
			return r
		}
	}
	return nil
}

func mimeType(binary []byte) string {
	switch {
	case bytes.HasPrefix(binary, []byte("wOFF")):
		return "font/woff"
	case bytes.HasPrefix(binary, []byte("wOF2")):
		return "font/woff2"
	case bytes.HasPrefix(binary, []byte("OTTO")):
		return "font/otf"
	}
	return "font/ttf"
}
