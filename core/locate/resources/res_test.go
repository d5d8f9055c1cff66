package resources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

func TestResolveSample(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.resources")
	defer teardown()
	//
	fb, err := ResolveFont(nil, SampleFontName, xfont.StyleNormal, xfont.WeightNormal).Binary()
	require.NoError(t, err)
	assert.Equal(t, PackagedSource, fb.Source)
	assert.Equal(t, goregular.TTF, fb.Binary)
}

func TestResolveFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.resources")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "test.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0644))
	fb, err := ResolveFont(nil, path, xfont.StyleNormal, xfont.WeightNormal).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FileSource, fb.Source)
	assert.Equal(t, path, fb.Path)
	assert.Equal(t, len(goregular.TTF), len(fb.Binary))
}

func TestResolveRegistered(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.resources")
	defer teardown()
	//
	require.NoError(t, fontregistry.GlobalRegistry().RegisterRenderableFont("Registered Test Face", goregular.TTF))
	fb, err := ResolveFont(nil, "registered test face", xfont.StyleNormal, xfont.WeightNormal).Binary()
	require.NoError(t, err)
	assert.Equal(t, RegistrySource, fb.Source)
	assert.Equal(t, "registry", fb.Source.String())
}

func TestResolveMissing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.resources")
	defer teardown()
	//
	_, err := ResolveFont(nil, "No Such Font Anywhere 4711", xfont.StyleNormal, xfont.WeightNormal).Binary()
	assert.Equal(t, core.EMISSING, core.Code(err))
	assert.True(t, strings.Contains(core.UserMessage(err), "No Such Font Anywhere 4711"))
}

func TestCacheDownload(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.resources")
	defer teardown()
	//
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.svg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<svg/>"))
	}))
	defer srv.Close()
	cache := t.TempDir()
	t.Setenv("HOME", cache)
	t.Setenv("XDG_CACHE_HOME", cache)
	cachedir, err := cacheDir(testconfig.Conf{"app-key": "kernstyle-test"}, "fonts")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(cachedir, filepath.Join("kernstyle-test", "fonts")))
	require.NoError(t, download(filepath.Join(cachedir, "test.svg"), srv.URL+"/logo.svg"))
	b, err := os.ReadFile(filepath.Join(cachedir, "test.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(b))
	//
	err = download(filepath.Join(cachedir, "missing.svg"), srv.URL+"/missing.svg")
	assert.Equal(t, core.ECONNECTION, core.Code(err))
	entries, err := os.ReadDir(cachedir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "expected failed download to leave no file behind")
	assert.Equal(t, "test.svg", entries[0].Name())
}

const fcListOutput = `/usr/share/fonts/truetype/inter/Inter-Bold.otf|Inter|Bold
/usr/share/fonts/truetype/inter/Inter-Regular.otf|Inter|Regular
/usr/share/fonts/truetype/inter/Inter-Italic.otf|Inter|Italic
/usr/share/fonts/noto/NotoSansCJK.ttc|Noto Sans CJK JP|Regular
/usr/share/fonts/misc/broken-line
`

func TestParseFontConfigList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.resources")
	defer teardown()
	//
	descs, err := parseFontConfigList(strings.NewReader(fcListOutput))
	require.NoError(t, err)
	require.Len(t, descs, 3, "expected collections and broken lines to be skipped")
	assert.Equal(t, "Inter", descs[1].Family)
	assert.Equal(t, []string{"Regular"}, descs[1].Variants)
	d, v, _ := fontregistry.ClosestMatch(descs, "inter", xfont.StyleNormal, xfont.WeightBold)
	assert.Equal(t, "Bold", v)
	assert.Equal(t, "/usr/share/fonts/truetype/inter/Inter-Bold.otf", d.Path)
	d, _, _ = fontregistry.ClosestMatch(descs, "inter", xfont.StyleItalic, xfont.WeightNormal)
	assert.Equal(t, "/usr/share/fonts/truetype/inter/Inter-Italic.otf", d.Path)
}

func TestRunFontConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.resources")
	defer teardown()
	//
	if runtime.GOOS == "windows" {
		t.Skip("fc-list stand-in is a shell script")
	}
	fclist := filepath.Join(t.TempDir(), "fc-list")
	script := "#!/bin/sh\ncat <<'EOF'\n" + fcListOutput + "EOF\n"
	require.NoError(t, os.WriteFile(fclist, []byte(script), 0755))
	descs, err := runFontConfig(fclist)
	require.NoError(t, err)
	assert.Len(t, descs, 3)
	_, err = runFontConfig("")
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = runFontConfig("fc-list")
	assert.Equal(t, core.EINVALID, core.Code(err), "expected relative path to be rejected")
}
