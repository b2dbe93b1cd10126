package grid

import "github.com/matzehuels/gridui/pkg/errors"

// Placement is the committed position of one block. TranslateX/TranslateY
// are the sub-cell pixel translation applied on top of the cell span: the
// span's start/top offsets plus any whole-grid alignment.
type Placement struct {
	Block      Block   `json:"-"`
	ID         string  `json:"id,omitempty"`
	Span       Span    `json:"span"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	Size       Size    `json:"size"`
	Virtual    bool    `json:"virtual,omitempty"`
	Depth      int     `json:"depth"`
}

// Origin returns the top-left pixel coordinate of the placed box relative to
// the container's content origin.
func (p Placement) Origin(u Units) (x, y float64) {
	x = float64(p.Span.Start.Line-1)*u.Width + p.TranslateX
	y = float64(p.Span.Top.Line-1)*u.Height + p.TranslateY
	return x, y
}

// Result is the outcome of one Engine.Layout call. It encodes to JSON; a
// decoded result must be reattached to its grid with Bind before the block
// lookups work.
type Result struct {
	GridID     string        `json:"grid_id,omitempty"`
	Units      Units         `json:"units"`
	Bounds     Bounds        `json:"bounds"` // envelope of all top-level rows; valid when HasBounds
	HasBounds  bool          `json:"has_bounds"`
	AlignX     float64       `json:"align_x"` // whole-grid alignment translation
	AlignY     float64       `json:"align_y"`
	Placements []Placement   `json:"placements"` // tree order, parents before their nested content
	Rows       []RowBoundary `json:"rows"`

	index map[Block]int
}

// Placement returns the placement of b.
func (r *Result) Placement(b Block) (Placement, bool) {
	i, ok := r.index[b]
	if !ok {
		return Placement{}, false
	}
	return r.Placements[i], true
}

// Span returns the committed span of b.
func (r *Result) Span(b Block) (Span, bool) {
	p, ok := r.Placement(b)
	return p.Span, ok
}

// Find returns the first placement with the given block ID.
func (r *Result) Find(id string) (Placement, bool) {
	for _, p := range r.Placements {
		if p.ID == id {
			return p, true
		}
	}
	return Placement{}, false
}

// Bind reattaches r to the grid it was computed from, filling in each
// placement's Block. Placement order is the first-visit preorder of the block
// tree, so the walk lines up one to one; a mismatch in count or IDs means r
// belongs to another grid.
func (r *Result) Bind(g *Grid) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "bind: grid is nil")
	}
	var order []Block
	seen := make(map[Block]bool)
	var walk func(rows []Row)
	walk = func(rows []Row) {
		for _, row := range rows {
			for _, b := range row.Elements {
				if isNilBlock(b) || seen[b] {
					continue
				}
				seen[b] = true
				order = append(order, b)
				walk(b.Rows())
			}
		}
	}
	walk(g.Layout)

	if len(order) != len(r.Placements) {
		return errors.New(errors.ErrCodeInvalidInput,
			"bind: result has %d placements, grid has %d blocks", len(r.Placements), len(order))
	}
	index := make(map[Block]int, len(order))
	for i, b := range order {
		if r.Placements[i].ID != b.ID() {
			return errors.New(errors.ErrCodeInvalidInput,
				"bind: placement %d is %q, grid has %q", i, r.Placements[i].ID, b.ID())
		}
		r.Placements[i].Block = b
		index[b] = i
	}
	r.index = index
	return nil
}
