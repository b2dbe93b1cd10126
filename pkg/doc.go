// Package pkg provides the core libraries for gridui grid layout.
//
// # Overview
//
// gridui places rows of UI blocks onto a fixed column/row grid. Blocks may
// nest rows of their own, be virtual groups without a box, or be shared by
// several rows. The pkg directory is organized into these areas:
//
//  1. [grid] - The layout engine: positions, spans, row sizing and placement
//  2. [document] - Layout documents in JSON, YAML and TOML, and their validation
//  3. [render] - SVG, JSON and text output plus Graphviz block trees
//  4. [pipeline] - Orchestration (decode → build → layout → render)
//  5. [cache] - File, Redis and null caches for layouts and artifacts
//
// Supporting packages: [config] reads the TOML settings file, [errors]
// defines coded errors, [observability] carries instrumentation hooks and
// [buildinfo] reports the build version.
//
// # Architecture
//
// The typical data flow through gridui:
//
//	Layout document (JSON / YAML / TOML)
//	         ↓
//	    [document] package (decode, validate, build)
//	         ↓
//	    [grid] package (place every block)
//	         ↓
//	    [render] packages (draw or describe the placements)
//	         ↓
//	    SVG/PNG/PDF/JSON/text output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/gridui/pkg/grid"
//	    "github.com/matzehuels/gridui/pkg/render/sink"
//	)
//
//	g := grid.NewGrid(480, 400,
//	    grid.Row{Align: grid.Align{Horizontal: grid.AlignCenter},
//	        Elements: []grid.Block{grid.NewMeasured("title", 200, 30)}},
//	)
//	res, err := grid.New().Layout(g)
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(res, g)
//
// [grid]: github.com/matzehuels/gridui/pkg/grid
// [document]: github.com/matzehuels/gridui/pkg/document
// [render]: github.com/matzehuels/gridui/pkg/render
// [pipeline]: github.com/matzehuels/gridui/pkg/pipeline
// [cache]: github.com/matzehuels/gridui/pkg/cache
// [config]: github.com/matzehuels/gridui/pkg/config
// [errors]: github.com/matzehuels/gridui/pkg/errors
// [observability]: github.com/matzehuels/gridui/pkg/observability
// [buildinfo]: github.com/matzehuels/gridui/pkg/buildinfo
package pkg
