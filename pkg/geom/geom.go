// Package geom defines the node-triple ("superpath") representation of cubic
// Bézier paths used by the sketch transforms.
//
// A [Path] is an ordered list of [SubPath] values. Each sub-path is an ordered
// list of [Node] triples: the incoming control point, the anchor, and the
// outgoing control point. The cubic segment between two consecutive nodes prev
// and cur is
//
//	curve.CubicBez{prev.Anchor, prev.Out, cur.In, cur.Anchor}
//
// Straight lines are nodes whose control points coincide with their anchors.
package geom

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
)

// Point is a 2D coordinate in document user units.
type Point = curve.Point

// Node is one path point together with its Bézier handles.
type Node struct {
	In     Point // control point of the segment ending here
	Anchor Point // on-curve point
	Out    Point // control point of the segment starting here
}

// Corner returns a node whose handles coincide with the anchor.
func Corner(pt Point) Node {
	return Node{In: pt, Anchor: pt, Out: pt}
}

// Translate moves all three points of the node by v.
func (n Node) Translate(v curve.Vec2) Node {
	return Node{
		In:     n.In.Translate(v),
		Anchor: n.Anchor.Translate(v),
		Out:    n.Out.Translate(v),
	}
}

// IsNaN reports whether any coordinate of the node is NaN.
func (n Node) IsNaN() bool {
	return n.In.IsNaN() || n.Anchor.IsNaN() || n.Out.IsNaN()
}

// IsInf reports whether any coordinate of the node is infinite.
func (n Node) IsInf() bool {
	return n.In.IsInf() || n.Anchor.IsInf() || n.Out.IsInf()
}

// Segment returns the cubic Bézier between two consecutive nodes.
func Segment(prev, cur Node) curve.CubicBez {
	return curve.CubicBez{P0: prev.Anchor, P1: prev.Out, P2: cur.In, P3: cur.Anchor}
}

// IsLine reports whether the segment from prev to cur has no curvature
// handles, i.e. it was drawn as a straight line.
func IsLine(prev, cur Node) bool {
	return prev.Out == prev.Anchor && cur.In == cur.Anchor
}

// SubPath is one contiguous stroke.
//
// When Closed is set the stroke returns to its first anchor. Readers that close
// a sub-path whose last anchor differs from its first append an explicit
// closing node, so the closing segment is an ordinary segment of Nodes.
type SubPath struct {
	Nodes  []Node
	Closed bool
}

// Clone returns a deep copy of s.
func (s SubPath) Clone() SubPath {
	nodes := make([]Node, len(s.Nodes))
	copy(nodes, s.Nodes)
	return SubPath{Nodes: nodes, Closed: s.Closed}
}

// Segments returns the number of Bézier segments in s.
func (s SubPath) Segments() int {
	return max(len(s.Nodes)-1, 0)
}

// First returns the first node. It panics on an empty sub-path.
func (s SubPath) First() Node { return s.Nodes[0] }

// Last returns the last node. It panics on an empty sub-path.
func (s SubPath) Last() Node { return s.Nodes[len(s.Nodes)-1] }

// Path is an ordered list of sub-paths.
type Path []SubPath

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	for i, sp := range p {
		out[i] = sp.Clone()
	}
	return out
}

// NodeCount returns the total number of nodes across all sub-paths.
func (p Path) NodeCount() int {
	n := 0
	for _, sp := range p {
		n += len(sp.Nodes)
	}
	return n
}

// SegmentCount returns the total number of segments across all sub-paths.
func (p Path) SegmentCount() int {
	n := 0
	for _, sp := range p {
		n += sp.Segments()
	}
	return n
}

// Validate reports structural problems: empty sub-paths and non-finite
// coordinates. The returned error names the offending sub-path and node.
func (p Path) Validate() error {
	for i, sp := range p {
		if len(sp.Nodes) == 0 {
			return fmt.Errorf("subpath %d: no nodes", i)
		}
		for j, n := range sp.Nodes {
			if n.IsNaN() || n.IsInf() {
				return fmt.Errorf("subpath %d node %d: non-finite coordinate", i, j)
			}
		}
	}
	return nil
}

// Bounds returns the bounding box of all anchors and handles.
// An empty path returns the zero rectangle.
func (p Path) Bounds() curve.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sp := range p {
		for _, n := range sp.Nodes {
			for _, pt := range [3]Point{n.In, n.Anchor, n.Out} {
				minX, minY = min(minX, pt.X), min(minY, pt.Y)
				maxX, maxY = max(maxX, pt.X), max(maxY, pt.Y)
			}
		}
	}
	if math.IsInf(minX, 1) {
		return curve.Rect{}
	}
	return curve.Rect{X0: minX, Y0: minY, X1: maxX, Y1: maxY}
}
