package grid

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
)

// scope is the container context threaded through the recursion.
type scope struct {
	owner string
	cols  int
	mode  Mode
	depth int
}

// nested returns the scope for the rows of b.
func (sc scope) nested(b Block) scope {
	c := b.container()
	next := scope{owner: b.ID(), cols: sc.cols, mode: sc.mode, depth: sc.depth + 1}
	if c.Cols > 0 {
		next.cols = c.Cols
	}
	if c.Mode != "" {
		next.mode = c.Mode
	}
	return next
}

// pass holds the span table of one placement run. The committed pass records
// placement order and row boundaries; scratch passes used for precise sizing
// only fill their own span table. Precise row sizes are shared between a pass
// and its scratch passes.
type pass struct {
	units     Units
	spans     map[Block]Span
	order     []Block
	depths    map[Block]int
	sizes     map[sizeKey]Size
	onRow     func(RowBoundary)
	logger    *log.Logger
	isScratch bool
}

// sizeKey names a row by the backing array of its elements and the scope it
// is sized in. A row's precise size does not depend on where it is anchored.
type sizeKey struct {
	sc    scope
	first *Block
	n     int
}

func newPass(units Units, logger *log.Logger, isScratch bool) *pass {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &pass{
		units:     units,
		spans:     make(map[Block]Span),
		depths:    make(map[Block]int),
		sizes:     make(map[sizeKey]Size),
		logger:    logger,
		isScratch: isScratch,
	}
}

func (p *pass) scratch() *pass {
	s := newPass(p.units, p.logger, true)
	s.sizes = p.sizes
	return s
}

// reserve fixes b's slot in placement order before its nested content is
// placed, so parents precede children.
func (p *pass) reserve(b Block, depth int) {
	if p.isScratch {
		return
	}
	if _, seen := p.depths[b]; !seen {
		p.order = append(p.order, b)
	}
	p.depths[b] = depth
}

// packRow places the row's elements left to right from start and returns the
// end cursor. Aligned rows are sized first (size may carry a size already
// resolved for the same anchor) and placed with the alignment offsets folded
// into the incoming offsets.
func (p *pass) packRow(sc scope, row Row, start, top Position, size *Size) Position {
	if row.Align.IsZero() {
		return p.packElements(sc, row.Elements, start, top)
	}
	var s Size
	if size != nil {
		s = *size
	} else {
		s = p.rowSize(sc, row.Elements, start, top)
	}
	dx, dy := AlignmentOffset(row.Align, s.Width, s.Height, Extent{}, sc.cols, p.units)
	start.Offset += dx
	top.Offset += dy
	return p.packElements(sc, row.Elements, start, top)
}

func (p *pass) packElements(sc scope, elements []Block, start, top Position) Position {
	cur := start
	for _, el := range elements {
		cur = p.place(sc, el, cur, top)
	}
	return cur
}

// place computes the span of b anchored at start/top, lays out its nested
// rows and returns the span end as the next cursor.
func (p *pass) place(sc scope, b Block, start, top Position) Position {
	p.reserve(b, sc.depth)
	span := p.initialSpan(b, start, top)

	if rows := b.Rows(); len(rows) > 0 {
		anchorStart, anchorTop := span.Start, span.Top
		if m, ok := b.(*Measured); ok {
			pad := m.padding()
			anchorStart.Offset += pad.Left
			anchorTop.Offset += pad.Top
		}
		if bounds, ok := p.layoutRows(sc.nested(b), rows, anchorStart, anchorTop); ok {
			switch b.(type) {
			case *Virtual:
				span.End = bounds.MaxEnd
				span.Bottom = bounds.MaxBottom
			case *Measured:
				// nested content may grow a measured box, never shrink it
				span.End = MaxPosition(span.End, bounds.MaxEnd)
				span.Bottom = MaxPosition(span.Bottom, bounds.MaxBottom)
			}
		}
	}

	p.spans[b] = span
	return span.End
}

// initialSpan derives a measured span from the footprint. A virtual span is a
// point at the anchor until its nested rows resolve it.
func (p *pass) initialSpan(b Block, start, top Position) Span {
	m, ok := b.(*Measured)
	if !ok {
		return Span{Start: start, End: start, Top: top, Bottom: top}
	}
	fp := m.footprint()

	effW := fp.Width + start.Offset
	cols := math.Ceil(effW / p.units.Width)
	effH := fp.Height + top.Offset
	rows := math.Ceil(effH / p.units.Height)

	return Span{
		Start:  start,
		End:    Pos(start.Line+int(cols), effW-cols*p.units.Width),
		Top:    top,
		Bottom: Pos(top.Line+int(rows), effH-rows*p.units.Height),
	}
}
