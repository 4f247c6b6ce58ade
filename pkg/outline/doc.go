// Package outline draws the element tree of an SVG document as a graph.
//
// # Overview
//
// An outline shows which elements a sketch run would touch. Every element of
// the document becomes a box, with an edge to each of its children. Three
// states are marked:
//
//   - selected roots get a double outline
//   - paths the walker visits are filled blue
//   - text elements whose font would be replaced are filled yellow
//
// Elements outside the selection are drawn grey.
//
// # Usage
//
//	roots, _ := doc.Selection([]string{"layer1"})
//	dot := outline.ToDOT(doc, roots, outline.Options{Fonts: true})
//	svg, err := outline.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package outline
