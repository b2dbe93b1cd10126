package grid

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func posEqual(a, b Position) bool { return a.Line == b.Line && approx(a.Offset, b.Offset) }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Position
		unit float64
		want Position
	}{
		{"zero offset", Pos(3, 0), 40, Pos(3, 0)},
		{"canonical negative", Pos(3, -20), 40, Pos(3, -20)},
		{"small positive", Pos(1, 20), 40, Pos(2, -20)},
		{"one unit", Pos(1, 40), 40, Pos(2, 0)},
		{"several units", Pos(1, 150), 40, Pos(5, -10)},
		{"minus one unit", Pos(5, -40), 40, Pos(4, 0)},
		{"large negative", Pos(5, -130), 40, Pos(2, -10)},
		{"zero unit is a no-op", Pos(2, 75), 0, Pos(2, 75)},
		{"negative unit is a no-op", Pos(2, 75), -5, Pos(2, 75)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in, tt.unit)
			if !posEqual(got, tt.want) {
				t.Errorf("Normalize(%v, %v) = %v, want %v", tt.in, tt.unit, got, tt.want)
			}
		})
	}
}

func TestNormalizePreservesPixels(t *testing.T) {
	for _, unit := range []float64{1, 7, 40, 41.5} {
		for off := -200.0; off <= 200; off += 3.25 {
			p := Pos(4, off)
			n := Normalize(p, unit)
			if math.Abs(n.Pixels(unit)-p.Pixels(unit)) > 1e-6 {
				t.Fatalf("Normalize(%v, %v) = %v moves the pixel coordinate", p, unit, n)
			}
			if n.Offset > 0 || n.Offset <= -unit {
				t.Fatalf("Normalize(%v, %v) = %v, offset outside (-unit, 0]", p, unit, n)
			}
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, unit := range []float64{0.5, 3, 40, 99.9} {
		for off := -500.0; off <= 500; off += 7.1 {
			once := Normalize(Pos(2, off), unit)
			twice := Normalize(once, unit)
			if once != twice {
				t.Fatalf("Normalize not idempotent for offset %v unit %v: %v then %v", off, unit, once, twice)
			}
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b Position
		want int
	}{
		{Pos(1, 0), Pos(2, -30), -1},
		{Pos(3, -5), Pos(2, 0), 1},
		{Pos(2, -10), Pos(2, -5), -1},
		{Pos(2, -5), Pos(2, -10), 1},
		{Pos(2, -5), Pos(2, -5), 0},
	}

	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMinMaxPosition(t *testing.T) {
	a, b := Pos(2, -10), Pos(2, -5)
	if got := MinPosition(a, b); got != a {
		t.Errorf("MinPosition = %v, want %v", got, a)
	}
	if got := MaxPosition(a, b); got != b {
		t.Errorf("MaxPosition = %v, want %v", got, b)
	}
}

func TestSpanExtent(t *testing.T) {
	s := Span{Start: Pos(1, 0), End: Pos(4, -20), Top: Pos(1, 0), Bottom: Pos(2, -10)}
	if got := s.Width(40); !approx(got, 100) {
		t.Errorf("Width() = %v, want 100", got)
	}
	if got := s.Height(40); !approx(got, 30) {
		t.Errorf("Height() = %v, want 30", got)
	}
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{MinStart: Pos(1, 0), MinTop: Pos(1, 0), MaxEnd: Pos(5, -10), MaxBottom: Pos(3, 0)}

	inside := Span{Start: Pos(1, 20), End: Pos(4, 0), Top: Pos(1, 0), Bottom: Pos(2, 0)}
	if !b.Contains(inside, 40, 40) {
		t.Error("Contains(inside) = false, want true")
	}

	// (2, -30) and (1, 10) are the same pixel
	sameEdge := Span{Start: Pos(2, -30), End: Pos(5, -10), Top: Pos(1, 0), Bottom: Pos(3, 0)}
	if !b.Contains(sameEdge, 40, 40) {
		t.Error("Contains(sameEdge) = false, want true")
	}

	outside := Span{Start: Pos(1, 0), End: Pos(5, 0), Top: Pos(1, 0), Bottom: Pos(2, 0)}
	if b.Contains(outside, 40, 40) {
		t.Error("Contains(outside) = true, want false")
	}
}
