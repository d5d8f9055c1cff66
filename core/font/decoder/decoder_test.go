package decoder

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestDecodePlain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.font")
	defer teardown()
	//
	f, err := Decode(goregular.TTF, DefaultOptions()).Font()
	require.NoError(t, err)
	assert.Equal(t, 2048, f.UnitsPerEm())
	assert.NotEmpty(t, f.Fontname)
}

func TestDecodeWOFF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.font")
	defer teardown()
	//
	wrapped, err := fonttest.WrapWOFF(goregular.TTF)
	require.NoError(t, err)
	f, err := Decode(wrapped, DefaultOptions()).Font()
	require.NoError(t, err)
	plain, err := Decode(goregular.TTF, DefaultOptions()).Font()
	require.NoError(t, err)
	assert.Equal(t, plain.Fontname, f.Fontname)
	assert.Equal(t, plain.SFNT.NumGlyphs(), f.SFNT.NumGlyphs())
	//
	_, err = Decode(wrapped, Options{Raw: true}).Font()
	assert.Equal(t, core.EPARSE, core.Code(err), "expected parser to reject compressed data")
}

func TestDecodeWOFF2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.font")
	defer teardown()
	//
	kerned, err := fonttest.KernedFont(fonttest.Pair{Left: 'T', Right: 'o', Value: -164})
	require.NoError(t, err)
	wrapped, err := fonttest.WrapWOFF2(kerned)
	require.NoError(t, err)
	plain, err := Decode(kerned, DefaultOptions()).Font()
	require.NoError(t, err)
	f, err := Decode(wrapped, Options{}).Font()
	require.NoError(t, err, "expected zero options to unpack WOFF2")
	assert.Equal(t, plain.Fontname, f.Fontname)
	assert.Equal(t, plain.SFNT.NumGlyphs(), f.SFNT.NumGlyphs())
	assert.Equal(t, plain.UnitsPerEm(), f.UnitsPerEm())
	//
	_, err = Decode(wrapped, Options{Raw: true}).Font()
	var perr *core.ParseError
	assert.True(t, errors.As(err, &perr), "expected parse error for raw WOFF2, got %v", err)
}

func TestDecodeGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.font")
	defer teardown()
	//
	_, err := Decode([]byte("nonsense"), DefaultOptions()).Font()
	var pe *core.ParseError
	assert.True(t, errors.As(err, &pe), "expected parse error, got %v", err)
	//
	wrapped, err := fonttest.WrapWOFF(goregular.TTF)
	require.NoError(t, err)
	_, err = Decode(wrapped[:100], DefaultOptions()).Font()
	var de *core.DecompressionError
	assert.True(t, errors.As(err, &de), "expected decompression error, got %v", err)
	assert.True(t, core.IsFontError(err))
}

func TestDecodeFrom(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.font")
	defer teardown()
	//
	f, err := DecodeFrom(bytes.NewReader(goregular.TTF), DefaultOptions()).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(goregular.TTF), len(f.Binary))
}

func TestDecodeMissingFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.font")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "no-such-font.ttf")
	_, err := DecodeFile(path, DefaultOptions()).Font()
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestAwaitCancelled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.font")
	defer teardown()
	//
	block := make(chan struct{})
	p := DecodeFrom(blockingReader{block}, DefaultOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(block)
}

type blockingReader struct {
	block chan struct{}
}

func (r blockingReader) Read(p []byte) (int, error) {
	<-r.block
	return 0, errors.New("closed")
}
