// Package fonts swaps the font of text elements for a hand-written one.
//
// Inkscape stores the font of a text object twice: in the CSS font-family
// property and in its own -inkscape-font-specification property. Both are set
// on <text> elements. On the inner containers (tspan, flowRoot, flowPara,
// flowSpan) both are removed so that they inherit the font from their <text>
// instead of overriding it.
package fonts

import (
	"github.com/matzehuels/xkcdify/pkg/svg"
)

// DefaultFamily is the font applied when no other is requested.
const DefaultFamily = "Humor Sans"

// FallbackFamily is a CSS font-family list for systems that lack the default
// font.
const FallbackFamily = `'Humor Sans', 'xkcd Script', 'Comic Sans MS', 'Bradley Hand', 'Segoe Script', sans-serif`

// Properties are the style properties that name a font.
var Properties = []string{"font-family", "-inkscape-font-specification"}

// HasFontStyle reports whether e is a text-bearing element with a style
// attribute.
func HasFontStyle(e *svg.Element) bool {
	return e.Kind.IsText() && e.Has("style")
}

// ApplyFont sets family on a <text> element, creating its style attribute if
// needed, or removes the font properties from any other element so that it
// inherits the family. A style attribute left with no declarations is
// dropped.
func ApplyFont(e *svg.Element, family string) {
	st := e.Style()
	if e.Kind == svg.KindText {
		for _, p := range Properties {
			st.Set(p, family)
		}
	} else {
		for _, p := range Properties {
			st.Delete(p)
		}
	}
	if st.Len() == 0 {
		e.Remove("style")
		return
	}
	e.SetStyle(st)
}

// ReplaceFonts applies family to every styled text element under roots and
// returns how many elements it touched. Running it twice has the same effect
// as running it once.
func ReplaceFonts(roots []*svg.Element, family string) int {
	n := 0
	for e := range svg.FindRecursive(roots, HasFontStyle) {
		ApplyFont(e, family)
		n++
	}
	return n
}
