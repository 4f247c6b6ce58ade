// Package svg is a small SVG document model: enough to find elements, edit
// their attributes and inline styles, read and write path data, and convert
// lengths to user units.
//
// # Document Tree
//
// [Parse] builds a tree of [Element] values tagged with a [Kind]. Only the
// kinds the sketch effect cares about are named; everything else is
// [KindOther] and passes through unchanged. [Document.Encode] writes the tree
// back with attribute order, prefixes and comments intact.
//
// # Traversal
//
// [FindRecursive] is a lazy pre-order search that takes the match condition
// as a predicate:
//
//	for el := range svg.FindRecursive(roots, svg.IsPath) {
//	    ...
//	}
//
// # Path Data
//
// [ParsePathData] and [FormatPathData] convert between d attributes and the
// node form in package geom. Arc lengths, quadratic raising and arc
// approximation come from honnef.co/go/curve.
package svg
