// Package grid positions a tree of rectangular blocks onto a fixed-resolution
// logical grid.
//
// # Overview
//
// A [Grid] is a container of a known pixel size divided into Cols × Rows
// cells. Its unit size is floored (floor(width/cols), floor(height/rows)) so
// cells never exceed the container. Callers describe the content as ordered
// [Row] values, each holding [Block] elements placed left to right. The engine
// computes, for every block, a [Span]: four [Position] values, each a grid
// line plus a sub-cell pixel offset.
//
// # Blocks
//
// A block is one of two variants:
//
//   - [Measured]: has a pixel footprint supplied by an [Element]
//     collaborator. Its span covers ceil((footprint + incoming offset) / unit)
//     cells and the leftover becomes the end offset, which is always in
//     (-unit, 0].
//   - [Virtual]: a layout-only grouping. Its span is the bounding box of its
//     nested rows.
//
// Either variant may own nested rows. Nested rows are anchored at the block's
// start/top (plus the content padding of a measured block). Nested content can
// grow a measured block's span but never shrinks it.
//
// # Row Sizes
//
// Row alignment needs the size of a row before it is placed. Two strategies
// exist, selected per container with [Mode]:
//
//   - [ModeFast] sums footprints, sizing virtual blocks structurally.
//   - [ModePrecise] places the row into a scratch span table, reads back the
//     extent and discards the table. It is the only way to size virtual
//     content whose extent depends on nested alignment.
//
// Precise sizing silently falls back to fast sizing when the grid unit is not
// known yet.
//
// # Positions
//
// Offsets are carried into grid lines by [Normalize], which keeps the pixel
// coordinate but moves the offset into (-unit, 0]. Normalized positions order
// lexicographically (line, then offset), which is what the bounding-box
// aggregation relies on. Row cursors advance by raw bottoms; normalization is
// only applied to reported bounds.
//
// # Collaborators
//
// Painting and measuring are outside the engine. It talks to the host through
// [Element] (footprint and padding), [Placer] (commit a placement) and
// [RowObserver] (a debug hook per placed row).
//
// # Usage
//
//	g := grid.NewGrid(480, 400,
//	    grid.Center(grid.NewMeasured("title", 200, 30)),
//	    grid.NewRow(grid.NewMeasured("a", 100, 50), grid.NewMeasured("b", 50, 50)),
//	)
//	res, err := grid.New().Layout(g)
//	if err != nil {
//	    return err
//	}
//	span, _ := res.Span(title)
//
// # Concurrency
//
// A layout call is synchronous and walks the tree exclusively. Do not mutate
// or lay out the same tree from several goroutines at once.
package grid
