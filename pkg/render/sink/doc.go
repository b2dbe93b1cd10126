// Package sink renders a computed grid layout to output formats.
//
// # Formats
//
//   - [RenderJSON]: placements, spans, bounds and units for other tools
//   - [RenderSVG]: a scaled drawing of the container with every block as a
//     rectangle, optionally with grid lines and a row-boundary overlay
//   - [RenderText]: a table of placements for terminals and logs
//
// All renderers take the [grid.Result] together with the [grid.Grid] it was
// computed from; the grid supplies the container size and configuration.
// They never modify either and are safe to call concurrently.
//
// # Coordinates
//
// Pixel coordinates are relative to the container's top-left corner. A
// position on line L with offset o sits at (L-1)*unit + o. Virtual blocks and
// row boundaries are not moved by whole-grid alignment in the result; the SVG
// renderer shifts them by the alignment translation so they line up with the
// blocks they enclose.
package sink
