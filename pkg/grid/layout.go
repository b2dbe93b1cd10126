package grid

// RowBoundary describes one placed row. Top is the row's anchor, Bottom the
// largest bottom edge of its elements, Start the first element's start and
// End the cursor after the last element. Width is the row size reported by
// the active size strategy.
type RowBoundary struct {
	Owner  string   `json:"owner,omitempty"`
	Depth  int      `json:"depth"`
	Index  int      `json:"index"`
	Top    Position `json:"top"`
	Bottom Position `json:"bottom"`
	Start  Position `json:"start"`
	End    Position `json:"end"`
	Width  float64  `json:"width"`
}

// layoutRows stacks rows top to bottom from the given anchor and returns the
// normalized bounding box of everything placed. ok is false when no row had
// elements.
func (p *pass) layoutRows(sc scope, rows []Row, start, top Position) (bounds Bounds, ok bool) {
	cur := top
	for i, row := range rows {
		if len(row.Elements) == 0 {
			continue
		}

		// committed rows report their size to observers; aligned rows need it anyway
		var size *Size
		if !p.isScratch || !row.Align.IsZero() {
			s := p.rowSize(sc, row.Elements, start, cur)
			size = &s
		}

		end := p.packRow(sc, row, start, cur, size)
		bottom := p.maxBottom(row.Elements, cur)
		rowStart := p.spans[row.Elements[0]].Start

		if !p.isScratch {
			rb := RowBoundary{
				Owner:  sc.owner,
				Depth:  sc.depth,
				Index:  i,
				Top:    cur,
				Bottom: bottom,
				Start:  rowStart,
				End:    end,
				Width:  size.Width,
			}
			if p.onRow != nil {
				p.onRow(rb)
			}
			p.logger.Debug("placed row",
				"owner", sc.owner,
				"depth", sc.depth,
				"row", i,
				"elements", len(row.Elements),
				"start", rowStart,
				"end", end,
				"bottom", bottom)
		}

		rowBounds := Bounds{
			MinStart:  Normalize(rowStart, p.units.Width),
			MinTop:    Normalize(cur, p.units.Height),
			MaxEnd:    Normalize(end, p.units.Width),
			MaxBottom: Normalize(bottom, p.units.Height),
		}
		if !ok {
			bounds, ok = rowBounds, true
		} else {
			bounds = bounds.extend(rowBounds)
		}

		// the raw bottom seeds the next row so rounding does not compound
		cur = bottom
	}
	return bounds, ok
}

// maxBottom returns the largest bottom edge among the row's elements, never
// less than the row's own top.
func (p *pass) maxBottom(elements []Block, top Position) Position {
	m := Normalize(top, p.units.Height)
	for _, el := range elements {
		if s, ok := p.spans[el]; ok {
			m = MaxPosition(m, s.Bottom)
		}
	}
	return m
}
