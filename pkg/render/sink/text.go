package sink

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gridui/pkg/grid"
)

// RenderText renders the placements as a plain table, one line per block
// with nested blocks indented under their container.
func RenderText(res *grid.Result) []byte {
	rows := make([][]string, 0, len(res.Placements))
	for _, p := range res.Placements {
		x, y := p.Origin(res.Units)
		kind := "measured"
		if p.Virtual {
			kind = "virtual"
		}
		id := p.ID
		if id == "" {
			id = "-"
		}
		rows = append(rows, []string{
			strings.Repeat("  ", p.Depth) + id,
			kind,
			p.Span.Start.String(),
			p.Span.End.String(),
			p.Span.Top.String(),
			p.Span.Bottom.String(),
			fmt.Sprintf("%g,%g", x, y),
			fmt.Sprintf("%gx%g", p.Size.Width, p.Size.Height),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Block", "Kind", "Start", "End", "Top", "Bottom", "Origin", "Size").
		Rows(rows...)

	var b strings.Builder
	name := res.GridID
	if name == "" {
		name = "grid"
	}
	fmt.Fprintf(&b, "%s: %d blocks, %d rows, unit %gx%g\n",
		name, len(res.Placements), len(res.Rows), res.Units.Width, res.Units.Height)
	if res.HasBounds {
		fmt.Fprintf(&b, "bounds: %v-%v x %v-%v\n",
			res.Bounds.MinStart, res.Bounds.MaxEnd, res.Bounds.MinTop, res.Bounds.MaxBottom)
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	return []byte(b.String())
}
