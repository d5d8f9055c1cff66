package present

import (
	"sync"

	"github.com/npillmayer/uax/grapheme"
)

// NBSP is the content of spans for space characters. Adjacent inline
// elements would collapse a plain space.
const NBSP = "\u00a0"

var graphemeSetup sync.Once

// SplitText splits a text into user-perceived characters (grapheme
// clusters), one per styled element. Spaces are replaced by NBSP.
func SplitText(text string) []string {
	graphemeSetup.Do(grapheme.SetupGraphemeClasses)
	gstr := grapheme.StringFromString(text)
	l := gstr.Len()
	chars := make([]string, 0, l)
	for i := 0; i < l; i++ {
		g := gstr.Nth(i)
		if g == " " {
			g = NBSP
		}
		chars = append(chars, g)
	}
	return chars
}
