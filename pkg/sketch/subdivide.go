package sketch

import (
	"context"
	"math"

	"honnef.co/go/curve"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/geom"
)

// ArclenAccuracy is the absolute accuracy, in user units, of segment length
// estimates and of the arc-length split search.
const ArclenAccuracy = 1e-6

// MaxNodesPerPath bounds the number of nodes Subdivide may produce for one
// path. The count is planned from segment lengths before anything is split.
const MaxNodesPerPath = 1_000_000

// cancelCheckEvery is how many splits run between context checks.
const cancelCheckEvery = 1024

// splitSlack absorbs quadrature rounding so that a segment whose length is an
// exact multiple of the maximum is not cut once too often.
const splitSlack = 1e-9

// SegmentLength estimates the arc length of the cubic from prev to cur.
func SegmentLength(prev, cur geom.Node) float64 {
	return geom.Segment(prev, cur).Arclen(ArclenAccuracy)
}

// Subdivide returns a copy of path in which no segment is longer than
// maxLength. Each segment of length L is cut into ceil(L/maxLength) pieces of
// equal arc length; segments that already fit, including degenerate
// zero-length ones, are copied unchanged. Sub-path count, first and last
// anchors, and closure are preserved.
func Subdivide(path geom.Path, maxLength float64) (geom.Path, error) {
	return SubdivideContext(context.Background(), path, maxLength)
}

// SubdivideContext is Subdivide with cancellation. A path that would need
// more than [MaxNodesPerPath] nodes is rejected before any work is done.
func SubdivideContext(ctx context.Context, path geom.Path, maxLength float64) (geom.Path, error) {
	if err := errors.ValidatePositive("max segment length", maxLength); err != nil {
		return nil, err
	}
	plan, err := planSplits(path, maxLength)
	if err != nil {
		return nil, err
	}

	out := make(geom.Path, len(path))
	done := 0
	for i, sp := range path {
		nodes := make([]geom.Node, 1, plan.nodes[i])
		nodes[0] = sp.Nodes[0]
		for j, cur := range sp.Nodes[1:] {
			last := len(nodes) - 1
			for s := plan.splits[i][j]; s > 1; s-- {
				if done++; done%cancelCheckEvery == 0 {
					if err := ctx.Err(); err != nil {
						return nil, err
					}
				}
				prev, mid, rest := splitAtLength(nodes[last], cur, 1/float64(s))
				nodes[last] = prev
				nodes = append(nodes, mid)
				last++
				cur = rest
			}
			nodes = append(nodes, cur)
		}
		out[i] = geom.SubPath{Nodes: nodes, Closed: sp.Closed}
	}
	return out, nil
}

// splitPlan holds the piece count of every segment and the resulting node
// count of every sub-path.
type splitPlan struct {
	splits [][]int
	nodes  []int
}

// planSplits measures every segment once. Splitting only shortens the
// handles on the near side of a cut, so the length of the next segment is
// the same on the original nodes.
func planSplits(path geom.Path, maxLength float64) (splitPlan, error) {
	plan := splitPlan{splits: make([][]int, len(path)), nodes: make([]int, len(path))}
	total := 0
	for i, sp := range path {
		if len(sp.Nodes) == 0 {
			return splitPlan{}, errors.New(errors.ErrCodeInvalidGeometry, "subpath %d has no nodes", i)
		}
		count := 1
		plan.splits[i] = make([]int, len(sp.Nodes)-1)
		for j := 1; j < len(sp.Nodes); j++ {
			length := SegmentLength(sp.Nodes[j-1], sp.Nodes[j])
			splits := math.Ceil(length/maxLength - splitSlack)
			if math.IsNaN(splits) || splits > MaxNodesPerPath {
				return splitPlan{}, errors.New(errors.ErrCodeInvalidGeometry,
					"subpath %d: segment of length %g needs more than %d nodes", i, length, MaxNodesPerPath)
			}
			n := max(int(splits), 1)
			plan.splits[i][j-1] = n
			count += n
		}
		plan.nodes[i] = count
		if total += count; total > MaxNodesPerPath {
			return splitPlan{}, errors.New(errors.ErrCodeInvalidGeometry,
				"path needs more than %d nodes at a maximum segment length of %g", MaxNodesPerPath, maxLength)
		}
	}
	return plan, nil
}

// splitAtLength cuts the segment prev->cur where the first piece has the given
// fraction of the segment's arc length. It returns prev with its outgoing
// handle shortened, the new node at the cut, and cur with its incoming handle
// shortened.
func splitAtLength(prev, cur geom.Node, fraction float64) (geom.Node, geom.Node, geom.Node) {
	seg := geom.Segment(prev, cur)
	total := seg.Arclen(ArclenAccuracy)
	t := curve.SolveForArclen(seg, total*fraction, ArclenAccuracy)
	left, right := splitAt(seg, t)

	prev.Out = left.P1
	mid := geom.Node{In: left.P2, Anchor: left.P3, Out: right.P1}
	cur.In = right.P2
	return prev, mid, cur
}

// splitAt is a de Casteljau split of c at parameter t.
func splitAt(c curve.CubicBez, t float64) (curve.CubicBez, curve.CubicBez) {
	p01 := c.P0.Lerp(c.P1, t)
	p12 := c.P1.Lerp(c.P2, t)
	p23 := c.P2.Lerp(c.P3, t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	pm := p012.Lerp(p123, t)
	return curve.CubicBez{P0: c.P0, P1: p01, P2: p012, P3: pm},
		curve.CubicBez{P0: pm, P1: p123, P2: p23, P3: c.P3}
}
