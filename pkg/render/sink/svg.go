package sink

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/gridui/pkg/grid"
)

const svgCSS = `
    .frame { fill: #ffffff; stroke: #333333; stroke-width: 1; }
    .grid-line { stroke: #e3e3e3; stroke-width: 0.5; }
    .block { fill-opacity: 0.85; stroke: #333333; stroke-width: 1; }
    .virtual { fill: none; stroke: #888888; stroke-width: 1; stroke-dasharray: 4 3; }
    .label { font: 10px sans-serif; fill: #222222; pointer-events: none; }
    .row { fill: none; stroke: #d1495b; stroke-width: 1; stroke-dasharray: 2 2; }`

// depthFills colours measured blocks by nesting depth.
var depthFills = []string{"#8ecae6", "#ffb703", "#90be6d", "#f4a261", "#cdb4db", "#a8dadc"}

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	gridLines  bool
	rowOverlay bool
	labels     bool
}

// WithGridLines draws the cell grid behind the blocks.
func WithGridLines() SVGOption { return func(r *svgRenderer) { r.gridLines = true } }

// WithRowOverlay outlines every committed row boundary.
func WithRowOverlay() SVGOption { return func(r *svgRenderer) { r.rowOverlay = true } }

// WithLabels writes each block ID inside its rectangle.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// RenderSVG draws the container and every placed block. The canvas grows
// beyond the container when content overflows it.
func RenderSVG(res *grid.Result, g *grid.Grid, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	boxes := buildBoxes(res)
	frameW, frameH := frameSize(res, g)
	width, height := frameW, frameH
	for _, b := range boxes {
		width = math.Max(width, b.x+b.w)
		height = math.Max(height, b.y+b.h)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)
	fmt.Fprintf(&buf, `  <rect class="frame" x="0" y="0" width="%.1f" height="%.1f"/>`+"\n", frameW, frameH)

	if r.gridLines && g != nil {
		renderGridLines(&buf, g, res.Units)
	}

	buf.WriteString("  <g class=\"blocks\">\n")
	for _, b := range boxes {
		renderBox(&buf, b)
	}
	buf.WriteString("  </g>\n")

	if r.labels {
		buf.WriteString("  <g class=\"labels\">\n")
		for _, b := range boxes {
			if b.id == "" || b.virtual {
				continue
			}
			fmt.Fprintf(&buf, `    <text class="label" x="%.1f" y="%.1f">%s</text>`+"\n", b.x+3, b.y+11, html.EscapeString(b.id))
		}
		buf.WriteString("  </g>\n")
	}

	if r.rowOverlay {
		renderRows(&buf, res)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

type box struct {
	id         string
	x, y, w, h float64
	depth      int
	virtual    bool
}

func buildBoxes(res *grid.Result) []box {
	boxes := make([]box, 0, len(res.Placements))
	for _, p := range res.Placements {
		x, y := p.Origin(res.Units)
		if p.Virtual {
			x += res.AlignX
			y += res.AlignY
		}
		boxes = append(boxes, box{
			id: p.ID, x: x, y: y, w: p.Size.Width, h: p.Size.Height,
			depth: p.Depth, virtual: p.Virtual,
		})
	}
	return boxes
}

func frameSize(res *grid.Result, g *grid.Grid) (w, h float64) {
	if g != nil {
		return g.Width, g.Height
	}
	if res.HasBounds {
		return res.Bounds.Width(res.Units.Width), res.Bounds.Height(res.Units.Height)
	}
	return 0, 0
}

func renderGridLines(buf *bytes.Buffer, g *grid.Grid, u grid.Units) {
	buf.WriteString("  <g class=\"grid-lines\">\n")
	for i := 0; i <= g.Cols; i++ {
		x := float64(i) * u.Width
		fmt.Fprintf(buf, `    <line class="grid-line" x1="%.1f" y1="0" x2="%.1f" y2="%.1f"/>`+"\n", x, x, g.Height)
	}
	for j := 0; j <= g.Rows; j++ {
		y := float64(j) * u.Height
		fmt.Fprintf(buf, `    <line class="grid-line" x1="0" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", y, g.Width, y)
	}
	buf.WriteString("  </g>\n")
}

func renderBox(buf *bytes.Buffer, b box) {
	id := ""
	if b.id != "" {
		id = fmt.Sprintf(` id="block-%s"`, html.EscapeString(b.id))
	}
	if b.virtual {
		fmt.Fprintf(buf, `    <rect class="virtual"%s x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			id, b.x, b.y, b.w, b.h)
		return
	}
	fmt.Fprintf(buf, `    <rect class="block"%s x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		id, b.x, b.y, b.w, b.h, depthFills[b.depth%len(depthFills)])
}

func renderRows(buf *bytes.Buffer, res *grid.Result) {
	u := res.Units
	buf.WriteString("  <g class=\"rows\">\n")
	for _, rb := range res.Rows {
		x := pixel(rb.Start, u.Width) + res.AlignX
		y := pixel(rb.Top, u.Height) + res.AlignY
		w := rb.End.Pixels(u.Width) - rb.Start.Pixels(u.Width)
		h := rb.Bottom.Pixels(u.Height) - rb.Top.Pixels(u.Height)
		fmt.Fprintf(buf, `    <rect class="row" data-owner="%s" data-index="%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			html.EscapeString(rb.Owner), rb.Index, x, y, w, h)
	}
	buf.WriteString("  </g>\n")
}

// pixel converts a grid position to a container pixel coordinate.
func pixel(p grid.Position, unit float64) float64 {
	return float64(p.Line-1)*unit + p.Offset
}
