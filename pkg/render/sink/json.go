package sink

import (
	"encoding/json"

	"github.com/matzehuels/gridui/pkg/grid"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	rows     bool
	rowSizes []grid.RowSize
}

// WithJSONRows includes every committed row boundary, nested rows included.
func WithJSONRows() JSONOption { return func(r *jsonRenderer) { r.rows = true } }

// WithJSONRowSizes includes a precomputed row size report, usually from
// [grid.MeasureLayout].
func WithJSONRowSizes(sizes []grid.RowSize) JSONOption {
	return func(r *jsonRenderer) { r.rowSizes = sizes }
}

type jsonOutput struct {
	Grid     string             `json:"grid,omitempty"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	Cols     int                `json:"cols"`
	Rows     int                `json:"rows"`
	Mode     grid.Mode          `json:"mode,omitempty"`
	Unit     jsonUnit           `json:"unit"`
	AlignX   float64            `json:"align_x"`
	AlignY   float64            `json:"align_y"`
	Bounds   *grid.Bounds       `json:"bounds,omitempty"`
	Blocks   []jsonBlock        `json:"blocks"`
	Boundary []grid.RowBoundary `json:"row_boundaries,omitempty"`
	RowSizes []grid.RowSize     `json:"row_sizes,omitempty"`
}

type jsonUnit struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonBlock struct {
	ID      string    `json:"id"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Width   float64   `json:"width"`
	Height  float64   `json:"height"`
	Span    grid.Span `json:"span"`
	Virtual bool      `json:"virtual,omitempty"`
	Depth   int       `json:"depth"`
}

// RenderJSON exports the layout as a pretty-printed JSON document. Blocks
// appear in placement order, parents before their nested content.
func RenderJSON(res *grid.Result, g *grid.Grid, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Grid:     res.GridID,
		Unit:     jsonUnit{Width: res.Units.Width, Height: res.Units.Height},
		AlignX:   res.AlignX,
		AlignY:   res.AlignY,
		Blocks:   buildJSONBlocks(res),
		RowSizes: r.rowSizes,
	}
	if g != nil {
		out.Width, out.Height = g.Width, g.Height
		out.Cols, out.Rows = g.Cols, g.Rows
		out.Mode = g.Mode
	}
	if res.HasBounds {
		b := res.Bounds
		out.Bounds = &b
	}
	if r.rows {
		out.Boundary = res.Rows
	}

	return json.MarshalIndent(out, "", "  ")
}

func buildJSONBlocks(res *grid.Result) []jsonBlock {
	blocks := make([]jsonBlock, 0, len(res.Placements))
	for _, p := range res.Placements {
		x, y := p.Origin(res.Units)
		blocks = append(blocks, jsonBlock{
			ID:      p.ID,
			X:       x,
			Y:       y,
			Width:   p.Size.Width,
			Height:  p.Size.Height,
			Span:    p.Span,
			Virtual: p.Virtual,
			Depth:   p.Depth,
		})
	}
	return blocks
}
