package outline

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/xkcdify/pkg/svg"
)

const doc = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape">
  <g id="layer1" inkscape:label="Ink">
    <path id="a" d="M0 0 L1 1"/>
    <text id="t" style="font-family:Arial"><tspan style="font-family:Arial">x</tspan></text>
  </g>
  <!-- note -->
  <path id="b" d="M0 0 L2 2"/>
</svg>`

func parse(t *testing.T) *svg.Document {
	t.Helper()
	d, err := svg.ParseString(doc)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

type row struct {
	Label string
	Depth int
	State State
	Root  bool
}

func rows(entries []Entry) []row {
	out := make([]row, len(entries))
	for i, en := range entries {
		out[i] = row{Label(en.Element, false), en.Depth, en.State, en.Root}
	}
	return out
}

func TestWalk(t *testing.T) {
	d := parse(t)

	tests := []struct {
		name  string
		ids   []string
		fonts bool
		want  []row
	}{
		{
			name: "whole document",
			want: []row{
				{"svg", 0, StateInside, true},
				{"g #layer1", 1, StateInside, false},
				{"path #a", 2, StateSketched, false},
				{"text #t", 2, StateInside, false},
				{"tspan", 3, StateInside, false},
				{"path #b", 1, StateSketched, false},
			},
		},
		{
			name:  "layer with fonts",
			ids:   []string{"layer1"},
			fonts: true,
			want: []row{
				{"svg", 0, StateOutside, false},
				{"g #layer1", 1, StateInside, true},
				{"path #a", 2, StateSketched, false},
				{"text #t", 2, StateRestyled, false},
				{"tspan", 3, StateRestyled, false},
				{"path #b", 1, StateOutside, false},
			},
		},
		{
			name: "single path",
			ids:  []string{"b"},
			want: []row{
				{"svg", 0, StateOutside, false},
				{"g #layer1", 1, StateOutside, false},
				{"path #a", 2, StateOutside, false},
				{"text #t", 2, StateOutside, false},
				{"tspan", 3, StateOutside, false},
				{"path #b", 1, StateSketched, true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots, err := d.Selection(tt.ids)
			if err != nil {
				t.Fatal(err)
			}
			got := rows(Walk(d, roots, Options{Fonts: tt.fonts}))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Walk() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLabelDetailed(t *testing.T) {
	d := parse(t)
	got := Label(d.ByID("layer1"), true)
	if want := "g #layer1\nInk\nsvg/g[0]"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestToDOT(t *testing.T) {
	d := parse(t)
	roots, err := d.Selection([]string{"layer1"})
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(d, roots, Options{})

	for _, want := range []string{
		"digraph G {",
		`n1 [label="g #layer1", peripheries=2];`,
		`n2 [label="path #a", fillcolor=lightblue];`,
		`n5 [label="path #b", fontcolor=grey50, color=grey70];`,
		"n0 -> n1;",
		"n1 -> n2;",
		"n0 -> n5;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "note") {
		t.Error("comments should not appear in the outline")
	}
}
