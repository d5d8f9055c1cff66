package htmlsurface

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/kernstyle/engine/kerning/kerncss"
	"github.com/npillmayer/kernstyle/engine/present"
	"github.com/npillmayer/kernstyle/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestInjectAndRevoke(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.present")
	defer teardown()
	//
	doc := New(nil)
	h1, err := doc.InjectStylesheet(".kern_X {}")
	require.NoError(t, err)
	h2, err := doc.InjectStylesheet(".kern_Y {}")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, []string{".kern_X {}", ".kern_Y {}"}, doc.Stylesheets())
	require.NoError(t, doc.RevokeStylesheet(h1))
	assert.Equal(t, []string{".kern_Y {}"}, doc.Stylesheets())
	err = doc.RevokeStylesheet(h1)
	assert.Equal(t, core.EMISSING, core.Code(err))
	var out bytes.Buffer
	require.NoError(t, doc.Render(&out))
	assert.Contains(t, out.String(), `<style data-kern-handle="`+string(h2)+`">.kern_Y {}</style>`)
}

func TestSpansPerCharacter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.present")
	defer teardown()
	//
	doc := New(nil)
	doc.Update(present.Snapshot{ClassName: "kern_Test"})
	doc.SetText("AVA TAR")
	assert.Equal(t, "AVA TAR", doc.Text())
	spans, err := doc.Query("div.kern_Test > span")
	require.NoError(t, err)
	assert.Len(t, spans, 7)
	pairs, err := doc.Query("div.kern_Test span.A + span.V")
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
	assert.Equal(t, "V", pairs[0].FirstChild.Data)
	unclassed, err := doc.Query("span:not([class])")
	require.NoError(t, err)
	require.Len(t, unclassed, 1)
	assert.Equal(t, present.NBSP, unclassed[0].FirstChild.Data)
	doc.SetText("T")
	spans, _ = doc.Query("span")
	assert.Len(t, spans, 1, "expected previous text to be replaced")
	doc.Update(present.Snapshot{})
	scoped, _ := doc.Query("div.kern_Test")
	assert.Empty(t, scoped)
}

func TestRegisterFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.present")
	defer teardown()
	//
	reg := fontregistry.NewRegistry()
	doc := New(reg)
	h, _ := doc.InjectStylesheet(".kern_Go {}")
	require.NoError(t, doc.RegisterRenderableFont("Go Regular", goregular.TTF))
	require.NoError(t, doc.RegisterRenderableFont("Go Regular", goregular.TTF))
	assert.Equal(t, "Go Regular", doc.FontFamily())
	faces, err := doc.Query("head > style[data-kern-font]")
	require.NoError(t, err)
	require.Len(t, faces, 1, "expected font face to be replaced")
	css := faces[0].FirstChild.Data
	assert.True(t, strings.HasPrefix(css, `@font-face { font-family: "Go Regular"; src: url(data:font/ttf;base64,`))
	assert.Equal(t, faces[0].NextSibling.Attr[0].Val, string(h), "expected font face before kerning")
	_, ok := reg.Lookup("Go Regular")
	assert.True(t, ok)
	assert.Error(t, doc.RegisterRenderableFont("", goregular.TTF))
	assert.Equal(t, "font/woff2", mimeType([]byte("wOF2....")))
}

func TestRegisterCompressedFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.present")
	defer teardown()
	//
	woff2, err := fonttest.WrapWOFF2(goregular.TTF)
	require.NoError(t, err)
	reg := fontregistry.NewRegistry()
	doc := New(reg)
	require.NoError(t, doc.RegisterRenderableFont("Go Regular", woff2))
	faces, err := doc.Query("head > style[data-kern-font]")
	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.Contains(t, faces[0].FirstChild.Data, "url(data:font/woff2;base64,")
	e, ok := reg.Lookup("Go Regular")
	require.True(t, ok)
	assert.Equal(t, woff2, e.Binary, "expected registry to keep the container as supplied")
}

func TestControllerOnDocument(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.present")
	defer teardown()
	//
	b, err := fonttest.KernedFont(fonttest.Pair{Left: 'A', Right: 'V', Value: -205})
	require.NoError(t, err)
	doc := New(fontregistry.NewRegistry())
	ctrl := present.NewController(present.DefaultConfig(), doc, doc)
	settled := make(chan present.Snapshot, 8)
	ctrl.Subscribe(doc.Update)
	ctrl.Subscribe(func(snap present.Snapshot) {
		if !snap.Pending() {
			settled <- snap
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)
	doc.SetText("AVA")
	require.NoError(t, ctrl.FontChanged(b))
	var snap present.Snapshot
	select {
	case snap = <-settled:
	case <-time.After(10 * time.Second):
		t.Fatalf("timeout waiting for kerning controller")
	}
	require.NoError(t, snap.Err)
	assert.Equal(t, []string{snap.CSS}, doc.Stylesheets())
	assert.Equal(t, snap.Table.FontName, doc.FontFamily())
	pairs, err := doc.Query("div." + kerncss.EscapeClass(snap.ClassName) + " span.A + span.V")
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}
