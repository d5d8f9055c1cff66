package main

import (
	"testing"

	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFontCompleter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.cli")
	defer teardown()
	//
	reg := fontregistry.NewRegistry()
	require.NoError(t, reg.RegisterRenderableFont("Go Regular", []byte{1}))
	require.NoError(t, reg.RegisterRenderableFont("Gothic A1", []byte{2}))
	fc := fontCompleter{reg}
	complete := func(line string) ([]string, int) {
		rs := []rune(line)
		cands, n := fc.Do(rs, len(rs))
		var out []string
		for _, c := range cands {
			out = append(out, string(c))
		}
		return out, n
	}
	cands, n := complete(":font go r")
	assert.Equal(t, []string{"egular"}, cands)
	assert.Equal(t, 4, n)
	cands, _ = complete(":font go_r")
	assert.Equal(t, []string{"egular"}, cands)
	cands, _ = complete(":font Go")
	assert.Equal(t, []string{" Regular", "thic A1"}, cands)
	cands, _ = complete(":font gx")
	assert.Empty(t, cands)
	cands, _ = complete(":class go")
	assert.Empty(t, cands)
}

func TestCompletionsCompareRunes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.cli")
	defer teardown()
	//
	cands := completions([]string{"Ärger Sans"}, []rune("är"))
	require.Len(t, cands, 1)
	assert.Equal(t, "ger Sans", string(cands[0]))
}
