package document

import (
	"fmt"

	"github.com/matzehuels/gridui/pkg/grid"
)

// Build validates doc and converts it into a grid. Zero cols or rows select
// the grid defaults; every block gets its document id or a path id.
func Build(doc *Document) (*grid.Grid, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	mode, _ := grid.ParseMode(doc.Mode)
	g := &grid.Grid{
		ID:     doc.ID,
		Width:  doc.Width,
		Height: doc.Height,
		Cols:   orDefault(doc.Cols, grid.DefaultCols),
		Rows:   orDefault(doc.Rows, grid.DefaultRows),
		Mode:   mode,
		Align:  doc.Align,
	}

	b := &builder{byID: make(map[string]grid.Block)}
	g.Layout = b.rows("", doc.Layout)

	if err := grid.CheckStructure(g.Layout, grid.Limits{}); err != nil {
		return nil, err
	}
	return g, nil
}

type builder struct {
	byID map[string]grid.Block
}

func (b *builder) rows(prefix string, specs []RowSpec) []grid.Row {
	rows := make([]grid.Row, 0, len(specs))
	for ri, rs := range specs {
		row := grid.Row{Align: rs.Align, Elements: make([]grid.Block, 0, len(rs.Elements))}
		for ei, spec := range rs.Elements {
			row.Elements = append(row.Elements, b.block(fmt.Sprintf("%sr%d.e%d", prefix, ri, ei), spec))
		}
		rows = append(rows, row)
	}
	return rows
}

// block registers the new block before building its nested rows so a ref
// below it resolves to the same value.
func (b *builder) block(path string, spec BlockSpec) grid.Block {
	if spec.Ref != "" {
		return b.byID[spec.Ref]
	}

	id := spec.ID
	if id == "" {
		id = path
	}
	// an empty mode inherits from the enclosing container
	var mode grid.Mode
	if spec.Mode != "" {
		mode, _ = grid.ParseMode(spec.Mode)
	}
	container := grid.Container{Cols: spec.Cols, Mode: mode}

	var out grid.Block
	switch {
	case spec.Spacer:
		s := grid.Spacer(spec.Width)
		s.Name = id
		b.register(spec.ID, s)
		out = s
	case spec.IsVirtual():
		v := &grid.Virtual{Name: id, Container: container}
		b.register(spec.ID, v)
		v.Layout = b.rows(path+".", spec.Layout)
		out = v
	default:
		box := grid.Box{Width: spec.Width, Height: spec.Height}
		if spec.Padding != nil {
			box.Pad = grid.Insets{Left: spec.Padding.Left, Top: spec.Padding.Top}
		}
		m := &grid.Measured{Name: id, Element: box, Container: container}
		b.register(spec.ID, m)
		m.Layout = b.rows(path+".", spec.Layout)
		out = m
	}
	return out
}

func (b *builder) register(id string, block grid.Block) {
	if id != "" {
		b.byID[id] = block
	}
}

func orDefault(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}

// Stats summarises the block tree of a document.
type Stats struct {
	Rows     int `json:"rows"`
	Measured int `json:"measured"`
	Virtual  int `json:"virtual"`
	Refs     int `json:"refs"`
	Depth    int `json:"depth"`
}

// Blocks returns the total number of block entries.
func (s Stats) Blocks() int { return s.Measured + s.Virtual + s.Refs }

// Count walks doc and counts its rows and blocks.
func Count(doc *Document) Stats {
	var s Stats
	var walk func(rows []RowSpec, depth int)
	walk = func(rows []RowSpec, depth int) {
		if depth > s.Depth {
			s.Depth = depth
		}
		for _, row := range rows {
			s.Rows++
			for _, b := range row.Elements {
				switch {
				case b.Ref != "":
					s.Refs++
					continue
				case b.IsVirtual():
					s.Virtual++
				default:
					s.Measured++
				}
				if len(b.Layout) > 0 {
					walk(b.Layout, depth+1)
				}
			}
		}
	}
	if doc != nil {
		walk(doc.Layout, 0)
	}
	return s
}
