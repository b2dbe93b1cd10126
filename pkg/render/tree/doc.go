// Package tree renders the block hierarchy of a grid as a node-link diagram.
//
// Each block becomes a box under the grid node, with an arrow from every
// container to the blocks of its nested rows. Virtual blocks are drawn with a
// dashed grey outline. A block that appears in several places is drawn once
// with one arrow per owner.
//
//	dot := tree.ToDOT(g, tree.Options{Detailed: true, Result: res})
//	svg, err := tree.RenderSVG(ctx, dot)
//
// The DOT source can also be written out for use with the graphviz tools
// directly.
package tree
