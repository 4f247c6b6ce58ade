package outline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/xkcdify/pkg/fonts"
	"github.com/matzehuels/xkcdify/pkg/svg"
)

// Options configures outline generation.
type Options struct {
	// Detailed adds the Inkscape label and the stable element path to node
	// labels.
	Detailed bool

	// Fonts marks the text elements a font replacement would restyle.
	Fonts bool
}

// State is how a run treats one element.
type State int

const (
	StateOutside  State = iota // not under any selected root
	StateInside                // under a selected root, left alone
	StateSketched              // a path the walker visits
	StateRestyled              // a text element with a font to replace
)

// Entry is one element of an outline, in document order.
type Entry struct {
	Element *svg.Element
	Depth   int
	State   State
	Root    bool // a selected root
}

// Walk lists every element of doc with its state for a run over roots.
func Walk(doc *svg.Document, roots []*svg.Element, opts Options) []Entry {
	inside := make(map[*svg.Element]bool)
	isRoot := make(map[*svg.Element]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
		for e := range svg.FindRecursive([]*svg.Element{r}, svg.All) {
			inside[e] = true
		}
	}

	var entries []Entry
	var visit func(e *svg.Element, depth int)
	visit = func(e *svg.Element, depth int) {
		state := StateOutside
		switch {
		case !inside[e]:
		case svg.IsPath(e):
			state = StateSketched
		case opts.Fonts && fonts.HasFontStyle(e):
			state = StateRestyled
		default:
			state = StateInside
		}
		entries = append(entries, Entry{Element: e, Depth: depth, State: state, Root: isRoot[e]})
		for _, c := range e.Children {
			if c.IsElement() {
				visit(c, depth+1)
			}
		}
	}
	visit(doc.Root, 0)
	return entries
}

// Label returns the display name of an element: its tag, then its id.
func Label(e *svg.Element, detailed bool) string {
	label := e.Local()
	if id := e.ID(); id != "" {
		label += " #" + id
	}
	if !detailed {
		return label
	}
	if l := e.Label(); l != "" {
		label += "\n" + l
	}
	return label + "\n" + e.Path()
}

// ToDOT converts the element tree of doc to Graphviz DOT.
func ToDOT(doc *svg.Document, roots []*svg.Element, opts Options) string {
	entries := Walk(doc, roots, opts)
	ids := make(map[*svg.Element]string, len(entries))

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.15;\n")
	buf.WriteString("\n")

	for i, en := range entries {
		id := fmt.Sprintf("n%d", i)
		ids[en.Element] = id
		attrs := append([]string{fmt.Sprintf("label=%q", Label(en.Element, opts.Detailed))}, stateAttrs(en)...)
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, en := range entries {
		if p := en.Element.Parent(); p != nil {
			fmt.Fprintf(&buf, "  %s -> %s;\n", ids[p], ids[en.Element])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func stateAttrs(en Entry) []string {
	var attrs []string
	switch en.State {
	case StateOutside:
		attrs = append(attrs, "fontcolor=grey50", "color=grey70")
	case StateSketched:
		attrs = append(attrs, "fillcolor=lightblue")
	case StateRestyled:
		attrs = append(attrs, "fillcolor=lightyellow")
	}
	if en.Root {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
