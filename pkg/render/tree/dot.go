package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gridui/pkg/grid"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the footprint and container settings to node labels, and
	// the committed span when Result is set. When false, only the block ID is
	// shown.
	Detailed bool
	Result   *grid.Result
}

// rootNode is the DOT name of the grid itself.
const rootNode = "grid"

// ToDOT converts the block tree of g to Graphviz DOT source. Nodes are named
// by visit order, so blocks sharing an ID stay distinct.
func ToDOT(g *grid.Grid, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	w := &walker{opts: opts, names: make(map[grid.Block]string)}
	if g != nil {
		fmt.Fprintf(&w.nodes, "  %q [label=%q, shape=folder];\n", rootNode, gridLabel(g, opts.Detailed))
		w.rows(rootNode, g.Layout)
	}

	buf.Write(w.nodes.Bytes())
	if w.edges.Len() > 0 {
		buf.WriteString("\n")
		buf.Write(w.edges.Bytes())
	}
	buf.WriteString("}\n")
	return buf.String()
}

type walker struct {
	opts  Options
	names map[grid.Block]string
	nodes bytes.Buffer
	edges bytes.Buffer
}

func (w *walker) rows(owner string, rows []grid.Row) {
	for ri, row := range rows {
		for _, b := range row.Elements {
			if b == nil {
				continue
			}
			name, seen := w.names[b]
			if !seen {
				name = "n" + strconv.Itoa(len(w.names))
				w.names[b] = name
				fmt.Fprintf(&w.nodes, "  %q [%s];\n", name, strings.Join(w.attrs(b), ", "))
			}
			if w.opts.Detailed {
				fmt.Fprintf(&w.edges, "  %q -> %q [label=%q];\n", owner, name, "r"+strconv.Itoa(ri))
			} else {
				fmt.Fprintf(&w.edges, "  %q -> %q;\n", owner, name)
			}
			if !seen {
				w.rows(name, b.Rows())
			}
		}
	}
}

func (w *walker) attrs(b grid.Block) []string {
	attrs := []string{fmt.Sprintf("label=%q", w.label(b))}
	if _, ok := b.(*grid.Virtual); ok {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

func (w *walker) label(b grid.Block) string {
	id := b.ID()
	if id == "" {
		id = "(anonymous)"
	}
	if !w.opts.Detailed {
		return id
	}

	var parts []string
	var c grid.Container
	switch v := b.(type) {
	case *grid.Measured:
		if v.Element != nil {
			s := v.Element.Measure()
			parts = append(parts, fmt.Sprintf("size: %gx%g", s.Width, s.Height))
			if p := v.Element.Padding(); p != (grid.Insets{}) {
				parts = append(parts, fmt.Sprintf("padding: %g,%g", p.Left, p.Top))
			}
		}
		c = v.Container
	case *grid.Virtual:
		parts = append(parts, "virtual")
		c = v.Container
	}
	if c.Cols > 0 {
		parts = append(parts, fmt.Sprintf("cols: %d", c.Cols))
	}
	if c.Mode != "" {
		parts = append(parts, fmt.Sprintf("mode: %s", c.Mode))
	}
	if w.opts.Result != nil {
		if span, ok := w.opts.Result.Span(b); ok {
			parts = append(parts, fmt.Sprintf("%v → %v", span.Start, span.End))
		}
	}
	return id + "\n" + strings.Join(parts, "\n")
}

func gridLabel(g *grid.Grid, detailed bool) string {
	name := g.ID
	if name == "" {
		name = rootNode
	}
	if !detailed {
		return name
	}
	return fmt.Sprintf("%s\n%gx%g px\n%d×%d cells", name, g.Width, g.Height, g.Cols, g.Rows)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces graphviz's pt-sized root element with a plain
// pixel-sized one so the diagram scales like the other SVG outputs.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
