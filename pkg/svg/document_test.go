package svg

import (
	"strings"
	"testing"

	"github.com/matzehuels/xkcdify/pkg/errors"
)

const inkscapeDoc = `<?xml version="1.0" encoding="UTF-8"?>
<!-- Created with Inkscape -->
<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd" width="100mm" height="50mm" viewBox="0 0 100 50">
  <sodipodi:namedview id="nv"/>
  <g inkscape:label="Layer 1" id="layer1">
    <path id="p1" d="M0,0 L10,0" style="fill:none;stroke:#000"/>
    <text id="t1" style="font-size:4px;font-family:Arial">Hello <tspan id="s1" style="font-family:Arial">world</tspan> &amp; more</text>
    <!-- note -->
    <flowRoot id="f1"><flowPara id="fp1" style="font-weight:bold">para</flowPara></flowRoot>
  </g>
</svg>
`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestParseRoundTrip(t *testing.T) {
	doc := mustParse(t, inkscapeDoc)
	if got := doc.String(); got != inkscapeDoc {
		t.Errorf("round trip mismatch\ngot:\n%s\nwant:\n%s", got, inkscapeDoc)
	}
}

func TestParseKinds(t *testing.T) {
	doc := mustParse(t, inkscapeDoc)

	tests := []struct {
		id   string
		kind Kind
	}{
		{"nv", KindOther},
		{"layer1", KindGroup},
		{"p1", KindPath},
		{"t1", KindText},
		{"s1", KindTSpan},
		{"f1", KindFlowRoot},
		{"fp1", KindFlowPara},
	}
	if doc.Root.Kind != KindSVG {
		t.Errorf("root kind = %v, want svg", doc.Root.Kind)
	}
	for _, tt := range tests {
		e := doc.ByID(tt.id)
		if e == nil {
			t.Errorf("element %q not found", tt.id)
			continue
		}
		if e.Kind != tt.kind {
			t.Errorf("element %q kind = %v, want %v", tt.id, e.Kind, tt.kind)
		}
	}
}

func TestParseTextAndTail(t *testing.T) {
	doc := mustParse(t, inkscapeDoc)
	text := doc.ByID("t1")
	span := doc.ByID("s1")

	if text.Text != "Hello " {
		t.Errorf("text.Text = %q", text.Text)
	}
	if span.Text != "world" {
		t.Errorf("tspan.Text = %q", span.Text)
	}
	if span.Tail != " & more" {
		t.Errorf("tspan.Tail = %q", span.Tail)
	}
	if span.Parent() != text {
		t.Error("tspan parent is not the text element")
	}
}

func TestParseNamespaces(t *testing.T) {
	doc := mustParse(t, `<svg:svg xmlns:svg="http://www.w3.org/2000/svg" xmlns:x="urn:x">`+
		`<svg:path id="a" d="M0 0"/><x:path id="b"/><svg:g xmlns:svg="urn:not-svg"><svg:path id="c"/></svg:g></svg:svg>`)

	if doc.Root.Kind != KindSVG {
		t.Errorf("prefixed root kind = %v", doc.Root.Kind)
	}
	if k := doc.ByID("a").Kind; k != KindPath {
		t.Errorf("svg:path kind = %v, want path", k)
	}
	if k := doc.ByID("b").Kind; k != KindOther {
		t.Errorf("x:path kind = %v, want other", k)
	}
	if k := doc.ByID("c").Kind; k != KindOther {
		t.Errorf("rebound prefix kind = %v, want other", k)
	}
}

func TestParseWithoutNamespace(t *testing.T) {
	doc := mustParse(t, `<svg><path id="p" d="M0 0"/></svg>`)
	if k := doc.ByID("p").Kind; k != KindPath {
		t.Errorf("kind = %v, want path", k)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not svg", `<html/>`},
		{"mismatched", `<svg><g></svg>`},
		{"unclosed", `<svg><g/>`},
		{"two roots", `<svg/><svg/>`},
		{"stray end", `</svg>`},
		{"bad syntax", `<svg><<</svg>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidDocument) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidDocument)
			}
		})
	}
}

func TestEncodeEscapes(t *testing.T) {
	doc := mustParse(t, `<svg><text id="t">a &lt; b</text></svg>`)
	el := doc.ByID("t")
	el.Set("data-x", `say "hi" & <bye>`)
	el.Text = "1 < 2 & 3 > 2"

	out := doc.String()
	for _, want := range []string{
		`data-x="say &quot;hi&quot; &amp; &lt;bye&gt;"`,
		`>1 &lt; 2 &amp; 3 &gt; 2</text>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	again := mustParse(t, out)
	if got := again.ByID("t").Attr("data-x"); got != `say "hi" & <bye>` {
		t.Errorf("attribute after reparse = %q", got)
	}
}

func TestElementAttrs(t *testing.T) {
	e := NewElement("path")
	e.Set("id", "a")
	e.Set("d", "M0 0")
	e.Set("id", "b")

	if got := e.ID(); got != "b" {
		t.Errorf("ID = %q, want b", got)
	}
	if e.Attrs[0].Name != "id" {
		t.Error("Set on an existing attribute moved it")
	}
	if !e.Remove("d") || e.Has("d") {
		t.Error("Remove did not delete d")
	}
	if e.Remove("d") {
		t.Error("second Remove reported success")
	}
}

func TestElementPath(t *testing.T) {
	doc := mustParse(t, `<svg><g/><g><path/><!-- c --><path/></g></svg>`)
	second := doc.Root.Children[1].Children[2]

	if got := second.Path(); got != "svg/g[1]/path[1]" {
		t.Errorf("Path = %q", got)
	}
	if got := second.Ref(); got != "svg/g[1]/path[1]" {
		t.Errorf("Ref without id = %q", got)
	}
	second.Set("id", "p")
	if got := second.Ref(); got != "p" {
		t.Errorf("Ref with id = %q", got)
	}
}
