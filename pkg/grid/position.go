package grid

import (
	"fmt"
	"math"
)

// Position is a grid line plus a sub-unit pixel displacement from that line.
// Grid lines are 1-based. A canonical offset lies in (-unit, 0]: the edge sits
// at or just before the line it is anchored to.
type Position struct {
	Line   int     `json:"line"`
	Offset float64 `json:"offset"`
}

// Pos is shorthand for Position{Line: line, Offset: offset}.
func Pos(line int, offset float64) Position {
	return Position{Line: line, Offset: offset}
}

// Pixels returns the absolute pixel coordinate of p for the given unit size,
// measured from grid line 0.
func (p Position) Pixels(unit float64) float64 {
	return float64(p.Line)*unit + p.Offset
}

// String implements fmt.Stringer.
func (p Position) String() string {
	return fmt.Sprintf("(%d, %g)", p.Line, p.Offset)
}

// Normalize carries whole units of p's offset into its grid line so that the
// offset ends up in (-unit, 0]. The pixel coordinate is preserved. A unit of
// zero or less leaves p unchanged.
func Normalize(p Position, unit float64) Position {
	if unit <= 0 || math.IsNaN(p.Offset) || math.IsInf(p.Offset, 0) {
		return p
	}
	if p.Offset <= 0 && p.Offset > -unit {
		return p
	}
	k := math.Ceil(p.Offset / unit)
	p.Line += int(k)
	p.Offset -= k * unit
	// ceil can land exactly on -unit after float rounding
	if p.Offset <= -unit {
		p.Line--
		p.Offset += unit
	}
	if p.Offset > 0 {
		p.Line++
		p.Offset -= unit
	}
	return p
}

// Compare orders positions lexicographically: grid line first, then offset.
// It returns -1, 0 or +1. Both positions should be canonical for the order to
// agree with pixel order.
func Compare(a, b Position) int {
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	}
	return 0
}

// Less reports whether a orders before b.
func Less(a, b Position) bool { return Compare(a, b) < 0 }

// MinPosition returns the smaller of a and b.
func MinPosition(a, b Position) Position {
	if Less(b, a) {
		return b
	}
	return a
}

// MaxPosition returns the larger of a and b.
func MaxPosition(a, b Position) Position {
	if Less(a, b) {
		return b
	}
	return a
}

// Span is the four-sided position of a block.
type Span struct {
	Start  Position `json:"start"`
	End    Position `json:"end"`
	Top    Position `json:"top"`
	Bottom Position `json:"bottom"`
}

// Width returns the horizontal extent of the span in pixels.
func (s Span) Width(unitW float64) float64 {
	return s.End.Pixels(unitW) - s.Start.Pixels(unitW)
}

// Height returns the vertical extent of the span in pixels.
func (s Span) Height(unitH float64) float64 {
	return s.Bottom.Pixels(unitH) - s.Top.Pixels(unitH)
}

// Bounds is the aggregate envelope of a layout subtree: the virtual block
// formed by all of its rows.
type Bounds struct {
	MinStart  Position `json:"min_start"`
	MinTop    Position `json:"min_top"`
	MaxEnd    Position `json:"max_end"`
	MaxBottom Position `json:"max_bottom"`
}

// Width returns the horizontal extent of the bounds in pixels.
func (b Bounds) Width(unitW float64) float64 {
	return b.MaxEnd.Pixels(unitW) - b.MinStart.Pixels(unitW)
}

// Height returns the vertical extent of the bounds in pixels.
func (b Bounds) Height(unitH float64) float64 {
	return b.MaxBottom.Pixels(unitH) - b.MinTop.Pixels(unitH)
}

// Contains reports whether s lies within b, comparing pixel coordinates with a
// small tolerance for float rounding.
func (b Bounds) Contains(s Span, unitW, unitH float64) bool {
	const eps = 1e-6
	return s.Start.Pixels(unitW) >= b.MinStart.Pixels(unitW)-eps &&
		s.End.Pixels(unitW) <= b.MaxEnd.Pixels(unitW)+eps &&
		s.Top.Pixels(unitH) >= b.MinTop.Pixels(unitH)-eps &&
		s.Bottom.Pixels(unitH) <= b.MaxBottom.Pixels(unitH)+eps
}

// extend folds a normalized row envelope into b.
func (b Bounds) extend(o Bounds) Bounds {
	return Bounds{
		MinStart:  MinPosition(b.MinStart, o.MinStart),
		MinTop:    MinPosition(b.MinTop, o.MinTop),
		MaxEnd:    MaxPosition(b.MaxEnd, o.MaxEnd),
		MaxBottom: MaxPosition(b.MaxBottom, o.MaxBottom),
	}
}
