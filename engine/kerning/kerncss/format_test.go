package kerncss

import (
	"strings"
	"testing"

	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/kernstyle/engine/kerning"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *kerning.Table {
	return &kerning.Table{
		FontName: "Test",
		Groups: []kerning.KerningSpec{
			{Chars: []string{"A", "T"}, Kernings: []kerning.PairKerning{
				{Kerning: -0.05, Chars: []string{"V"}},
			}},
		},
	}
}

func TestFormatNested(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.css")
	defer teardown()
	//
	css := Format("kern_Test", sampleTable())
	assert.Equal(t, ".kern_Test {\n:is(.A,.T) + :is(.V) { margin-left: -0.05em; }}", css)
	assert.Equal(t, ".kern_Test {}", Format("kern_Test", &kerning.Table{}))
	assert.Equal(t, ".kern_Test {}", Format("kern_Test", nil))
}

func TestFormatSeveralRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.css")
	defer teardown()
	//
	table := sampleTable()
	table.Groups = append(table.Groups, kerning.KerningSpec{
		Chars: []string{"L"},
		Kernings: []kerning.PairKerning{
			{Kerning: -0.08, Chars: []string{"T", "V"}},
			{Kerning: 0.015, Chars: []string{"1"}},
		},
	})
	css := Format("x", table)
	lines := strings.Split(css, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, ".x {", lines[0])
	assert.Equal(t, ":is(.L) + :is(.T,.V) { margin-left: -0.08em; }", lines[2])
	assert.Equal(t, `:is(.L) + :is(.\31) { margin-left: 0.015em; }}`, lines[3])
}

func TestFormatDesignUnits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.css")
	defer teardown()
	//
	table := sampleTable()
	table.Unit = kerning.DesignUnits
	table.Groups[0].Kernings[0].Kerning = -50
	css := Format("kern_Test", table)
	assert.Contains(t, css, "margin-left: -0.05em;")
}

func TestPrecision(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.css")
	defer teardown()
	//
	table := sampleTable()
	table.Groups[0].Kernings[0].Kerning = -205.0 / 2048.0
	assert.Contains(t, Format("k", table, Precision(3)), "margin-left: -0.1em;")
	assert.Contains(t, Format("k", table, Precision(4)), "margin-left: -0.1001em;")
	table.Groups[0].Kernings[0].Kerning = -0.0001
	assert.Contains(t, Format("k", table, Precision(2)), "margin-left: 0em;")
}

func TestEscapeClass(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.css")
	defer teardown()
	//
	for in, out := range map[string]string{
		"A":        "A",
		"1":        `\31`,
		"0":        `\30`,
		"3D":       `\33 D`,
		"-":        `\-`,
		"-2":       `-\32`,
		"Ä":        "Ä",
		"kern_Go":  "kern_Go",
		"a.b":      `a\.b`,
		"x y":      `x\ y`,
		"\t":       `\9`,
		"kern_3_x": "kern_3_x",
	} {
		assert.Equal(t, out, EscapeClass(in), "escaping %q", in)
	}
}

func TestFlatLayoutValidates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.css")
	defer teardown()
	//
	table := sampleTable()
	table.Groups = append(table.Groups, kerning.KerningSpec{
		Chars: []string{"7"},
		Kernings: []kerning.PairKerning{
			{Kerning: -0.02, Chars: []string{"1"}},
			{Kerning: 0.01, Chars: []string{"A", "Å"}},
		},
	})
	css := Format("kern_Test", table, FlatLayout())
	assert.True(t, strings.HasPrefix(css, ".kern_Test :is(.A,.T) + :is(.V) { margin-left: -0.05em; }\n"))
	n, err := Validate(css)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	sheet, err := parser.Parse(css)
	require.NoError(t, err)
	for _, rule := range sheet.Rules {
		require.Len(t, rule.Declarations, 1)
		assert.Equal(t, "margin-left", rule.Declarations[0].Property)
		assert.True(t, strings.HasSuffix(rule.Declarations[0].Value, "em"))
	}
	assert.Equal(t, "", Format("kern_Test", &kerning.Table{}, FlatLayout()))
}
