// Package render converts rendered layouts between output formats.
//
// The renderers themselves live in subpackages:
//
//   - [sink]: JSON, SVG and text renderings of a computed layout
//   - [tree]: the block hierarchy as a Graphviz diagram
//
// Both produce SVG. [ToPDF] and [ToPNG] convert any SVG using the external
// rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(res, g)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [sink]: github.com/matzehuels/gridui/pkg/render/sink
// [tree]: github.com/matzehuels/gridui/pkg/render/tree
package render
