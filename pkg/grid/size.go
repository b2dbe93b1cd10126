package grid

import (
	"math"
	"strings"

	"github.com/matzehuels/gridui/pkg/errors"
)

// Mode selects how row sizes are resolved.
type Mode string

const (
	// ModeFast sums already-known footprints without placing anything.
	ModeFast Mode = "fast"
	// ModePrecise places the row provisionally and reads back its extent.
	ModePrecise Mode = "precise"
)

// ParseMode parses a mode name. The empty string selects ModeFast.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeFast, nil
	case ModeFast, ModePrecise:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "invalid row size mode: %q (must be fast or precise)", s)
}

// RowSize is the resolved size of one row of a layout.
type RowSize struct {
	Index  int     `json:"index"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Align  Align   `json:"align"`
}

// Summary is the envelope of a layout's rows: the widest row by the summed
// row heights.
type Summary struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MeasureRow resolves the size of a row of elements. Precise mode needs known
// units and falls back to fast sizing otherwise; cols is the column count
// aligned nested rows are widened to. The row is checked like a layout first,
// so nil elements and cyclic nesting are reported instead of sized.
func MeasureRow(elements []Block, mode Mode, cols int, units Units) (Size, error) {
	if err := CheckStructure([]Row{{Elements: elements}}, Limits{}); err != nil {
		return Size{}, err
	}
	return measureRow(newPass(units, nil, true), elements, mode, cols), nil
}

func measureRow(p *pass, elements []Block, mode Mode, cols int) Size {
	return p.rowSize(scope{cols: cols, mode: mode}, elements, Pos(1, 0), Pos(1, 0))
}

// MeasureLayout resolves every row of a layout independently and summarises
// them. Empty rows report a zero size. Rows are checked as a whole before any
// is sized.
func MeasureLayout(rows []Row, mode Mode, cols int, units Units) ([]RowSize, Summary, error) {
	if err := CheckStructure(rows, Limits{}); err != nil {
		return nil, Summary{}, err
	}
	p := newPass(units, nil, true)
	sizes := make([]RowSize, 0, len(rows))
	var sum Summary
	for i, row := range rows {
		s := measureRow(p, row.Elements, mode, cols)
		sizes = append(sizes, RowSize{Index: i, Width: s.Width, Height: s.Height, Align: row.Align})
		sum.Width = math.Max(sum.Width, s.Width)
		sum.Height += s.Height
	}
	return sizes, sum, nil
}

// rowSize dispatches to the strategy selected by the scope.
func (p *pass) rowSize(sc scope, elements []Block, start, top Position) Size {
	if sc.mode == ModePrecise && p.units.Known() {
		if len(elements) == 0 {
			return Size{}
		}
		key := sizeKey{sc: sc, first: &elements[0], n: len(elements)}
		if s, ok := p.sizes[key]; ok {
			return s
		}
		s := p.preciseRowSize(sc, elements, start, top)
		p.sizes[key] = s
		return s
	}
	return fastRowSize(elements, sc.cols, p.units)
}

func fastRowSize(elements []Block, cols int, units Units) Size {
	var s Size
	for _, el := range elements {
		var fp Size
		switch b := el.(type) {
		case *Measured:
			fp = b.footprint()
		case *Virtual:
			if len(b.Layout) == 0 {
				continue
			}
			fp = virtualSize(b.Layout, cols, units)
		}
		s.Width += fp.Width
		s.Height = math.Max(s.Height, fp.Height)
	}
	return s
}

// virtualSize aggregates nested rows structurally. Rows aligned center or
// right claim at least the width of the container sizing the row, since their
// content is shifted across it.
func virtualSize(rows []Row, cols int, units Units) Size {
	var s Size
	for _, row := range rows {
		rs := fastRowSize(row.Elements, cols, units)
		if row.Align.Horizontal == AlignCenter || row.Align.Horizontal == AlignRight {
			rs.Width = math.Max(rs.Width, float64(cols)*units.Width)
		}
		s.Width = math.Max(s.Width, rs.Width)
		s.Height += rs.Height
	}
	return s
}

// preciseRowSize lays the row out into a scratch pass and measures the
// result. The scratch spans are dropped with the pass.
func (p *pass) preciseRowSize(sc scope, elements []Block, start, top Position) Size {
	scratch := p.scratch()
	scratch.packElements(sc, elements, start, top)

	first := scratch.spans[elements[0]]
	last := scratch.spans[elements[len(elements)-1]]
	width := last.End.Pixels(p.units.Width) - first.Start.Pixels(p.units.Width)

	minTop, maxBottom := math.Inf(1), math.Inf(-1)
	for _, el := range elements {
		s := scratch.spans[el]
		minTop = math.Min(minTop, s.Top.Pixels(p.units.Height))
		maxBottom = math.Max(maxBottom, s.Bottom.Pixels(p.units.Height))
	}
	return Size{Width: width, Height: maxBottom - minTop}
}
