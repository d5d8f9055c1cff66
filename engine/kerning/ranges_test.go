package kerning

import (
	"testing"
	"unicode"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRanges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.kerning")
	defer teardown()
	//
	r, err := ParseRanges("latin")
	require.NoError(t, err)
	assert.Equal(t, Latin, r)
	r, err = ParseRanges("")
	require.NoError(t, err)
	assert.Equal(t, Latin, r)
	r, err = ParseRanges("48-57, 0x41-0x5A, U+00C0-U+00FF, 32")
	require.NoError(t, err)
	assert.Equal(t, Ranges{{48, 57}, {65, 90}, {192, 255}, {32, 32}}, r)
	assert.Equal(t, "48-57,65-90,192-255,32", r.String())
	for _, bad := range []string{"90-65", "abc", "-5", ",", "0x110000"} {
		_, err = ParseRanges(bad)
		assert.Equal(t, core.EINVALID, core.Code(err), "expected %q to be rejected", bad)
	}
}

func TestRangesTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.kerning")
	defer teardown()
	//
	table := Latin.Table()
	for _, r := range "09AZazÀÿ" {
		assert.True(t, unicode.Is(table, r), "expected %q in Latin table", r)
		assert.True(t, Latin.Contains(r))
	}
	for _, r := range "/:@[`{¿Ā " {
		assert.False(t, unicode.Is(table, r), "expected %q not in Latin table", r)
		assert.False(t, Latin.Contains(r))
	}
	overlap := Ranges{{65, 70}, {68, 75}, {0xFFF0, 0x10010}}
	table = overlap.Table()
	for _, r := range []rune{65, 70, 71, 75, 0xFFFF, 0x10000, 0x10010} {
		assert.True(t, unicode.Is(table, r), "expected %#x in merged table", r)
	}
	assert.False(t, unicode.Is(table, 76))
	assert.False(t, unicode.Is(Ranges{}.Table(), 'A'))
}

func TestTableLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.kerning")
	defer teardown()
	//
	table := &Table{
		FontName: "Open Sans Bold",
		Groups: []KerningSpec{
			{Chars: []string{"A", "T"}, Kernings: []PairKerning{
				{Kerning: -0.05, Chars: []string{"V", "W"}},
				{Kerning: 0.01, Chars: []string{"A"}},
			}},
		},
	}
	assert.Equal(t, "kern_Open_Sans_Bold", table.ClassName())
	k, ok := table.KerningFor("T", "W")
	assert.True(t, ok)
	assert.Equal(t, -0.05, k)
	k, ok = table.KerningFor("A", "A")
	assert.True(t, ok)
	assert.Equal(t, 0.01, k)
	_, ok = table.KerningFor("V", "A")
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
	var none *Table
	assert.Equal(t, 0, none.Len())
	assert.Equal(t, "kern_untitled", none.ClassName())
}

func TestParseUnit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.kerning")
	defer teardown()
	//
	u, err := ParseUnit("design")
	require.NoError(t, err)
	assert.Equal(t, DesignUnits, u)
	u, err = ParseUnit("EM")
	require.NoError(t, err)
	assert.Equal(t, EmRelative, u)
	_, err = ParseUnit("px")
	assert.Error(t, err)
}
