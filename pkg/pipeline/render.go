package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/gridui/pkg/grid"
	"github.com/matzehuels/gridui/pkg/observability"
	"github.com/matzehuels/gridui/pkg/render"
	"github.com/matzehuels/gridui/pkg/render/sink"
	"github.com/matzehuels/gridui/pkg/render/tree"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, res *grid.Result, g *grid.Grid, opts Options) (map[string][]byte, error) {
	observability.Layout().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := renderFormats(ctx, res, g, opts)
	observability.Layout().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, res *grid.Result, g *grid.Grid, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte)

	// png and pdf convert the same drawing
	var svg []byte
	drawing := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(res, g, svgOpts...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = drawing()
		case FormatPNG:
			data, err = render.ToPNG(ctx, drawing(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, drawing())
		case FormatJSON:
			var jsonOpts []sink.JSONOption
			if jsonOpts, err = buildJSONOptions(g, opts); err == nil {
				data, err = sink.RenderJSON(res, g, jsonOpts...)
			}
		case FormatText:
			data = sink.RenderText(res)
		case FormatDOT:
			data = []byte(tree.ToDOT(g, treeOptions(res, opts)))
		case FormatTree:
			data, err = tree.RenderSVG(ctx, tree.ToDOT(g, treeOptions(res, opts)))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.GridLines {
		svgOpts = append(svgOpts, sink.WithGridLines())
	}
	if opts.RowOverlay {
		svgOpts = append(svgOpts, sink.WithRowOverlay())
	}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	return svgOpts
}

// buildJSONOptions adds the row boundaries and the top-level row size report
// when the row overlay is requested.
func buildJSONOptions(g *grid.Grid, opts Options) ([]sink.JSONOption, error) {
	if !opts.RowOverlay {
		return nil, nil
	}
	jsonOpts := []sink.JSONOption{sink.WithJSONRows()}
	if g != nil {
		sizes, _, err := grid.MeasureLayout(g.Layout, g.Mode, g.Cols, g.Units())
		if err != nil {
			return nil, err
		}
		jsonOpts = append(jsonOpts, sink.WithJSONRowSizes(sizes))
	}
	return jsonOpts, nil
}

func treeOptions(res *grid.Result, opts Options) tree.Options {
	return tree.Options{Detailed: opts.Detailed, Result: res}
}
