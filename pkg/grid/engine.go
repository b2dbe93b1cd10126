package grid

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridui/pkg/errors"
)

// Defaults for grids built with NewGrid and engines built with New.
const (
	DefaultCols     = 12
	DefaultRows     = 10
	DefaultMaxDepth = 64
	// DefaultMaxBlocks caps placements, shared blocks counted per appearance.
	DefaultMaxBlocks = 10000
)

// Grid is the top-level container. Its pixel size and column/row counts fix
// the grid unit for every descendant.
type Grid struct {
	ID     string
	Width  float64 // container pixel width
	Height float64 // container pixel height
	Cols   int
	Rows   int
	Mode   Mode
	Align  Align // whole-block alignment applied after layout
	Layout []Row
}

// NewGrid returns a 12×10 fast-mode grid of the given pixel size.
func NewGrid(width, height float64, rows ...Row) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cols:   DefaultCols,
		Rows:   DefaultRows,
		Mode:   ModeFast,
		Layout: rows,
	}
}

// Units returns the floored grid unit sizes of g. Flooring keeps the cells
// inside the container.
func (g *Grid) Units() Units {
	if g.Cols <= 0 || g.Rows <= 0 {
		return Units{}
	}
	return Units{
		Width:  math.Floor(g.Width / float64(g.Cols)),
		Height: math.Floor(g.Height / float64(g.Rows)),
	}
}

// Validate checks the container configuration.
func (g *Grid) Validate() error {
	switch {
	case g == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "grid is nil")
	case g.Cols <= 0 || g.Rows <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "grid needs positive column and row counts, got %d×%d", g.Cols, g.Rows)
	case !finitePositive(g.Width) || !finitePositive(g.Height):
		return errors.New(errors.ErrCodeInvalidConfig, "grid needs a positive pixel size, got %g×%g", g.Width, g.Height)
	}
	if u := g.Units(); !u.Known() {
		return errors.New(errors.ErrCodeInvalidConfig,
			"grid unit collapses to zero: %g×%g px over %d×%d cells", g.Width, g.Height, g.Cols, g.Rows)
	}
	switch g.Mode {
	case "", ModeFast, ModePrecise:
	default:
		return errors.New(errors.ErrCodeInvalidMode, "invalid row size mode: %q", g.Mode)
	}
	return nil
}

func finitePositive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Placer commits a computed placement to the visual element of a measured
// block. It is never called for virtual blocks.
type Placer interface {
	ApplyPlacement(b *Measured, p Placement)
}

// PlacerFunc adapts a function to Placer.
type PlacerFunc func(b *Measured, p Placement)

// ApplyPlacement implements Placer.
func (f PlacerFunc) ApplyPlacement(b *Measured, p Placement) { f(b, p) }

// RowObserver receives every committed row boundary, nested rows included.
// It is purely observational.
type RowObserver interface {
	OnRowBoundary(rb RowBoundary)
}

// RowObserverFunc adapts a function to RowObserver.
type RowObserverFunc func(rb RowBoundary)

// OnRowBoundary implements RowObserver.
func (f RowObserverFunc) OnRowBoundary(rb RowBoundary) { f(rb) }

// Engine computes grid layouts. An Engine holds no per-layout state; the tree
// passed to Layout must not be mutated or read concurrently while the call
// runs.
type Engine struct {
	placer   Placer
	observer RowObserver
	logger   *log.Logger
	limits   Limits
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlacer registers the collaborator that applies placements.
func WithPlacer(p Placer) Option { return func(e *Engine) { e.placer = p } }

// WithRowObserver registers a debug hook called once per placed row.
func WithRowObserver(o RowObserver) Option { return func(e *Engine) { e.observer = o } }

// WithLogger sets the logger for debug output. Nil keeps the discard logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxDepth bounds the nesting depth accepted by Layout.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limits.MaxDepth = n
		}
	}
}

// WithMaxBlocks bounds the number of placements a layout may expand to.
func WithMaxBlocks(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limits.MaxBlocks = n
		}
	}
}

// New returns an engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		limits:   Limits{MaxDepth: DefaultMaxDepth, MaxBlocks: DefaultMaxBlocks},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout positions every block of g. Configuration and structural problems
// are reported before anything is placed; given a valid grid the layout
// always completes.
func (e *Engine) Layout(g *Grid) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := CheckStructure(g.Layout, e.limits); err != nil {
		return nil, err
	}

	units := g.Units()
	mode := g.Mode
	if mode == "" {
		mode = ModeFast
	}

	res := &Result{GridID: g.ID, Units: units}
	p := newPass(units, e.logger, false)
	p.onRow = func(rb RowBoundary) {
		res.Rows = append(res.Rows, rb)
		if e.observer != nil {
			e.observer.OnRowBoundary(rb)
		}
	}

	e.logger.Debug("layout start",
		"grid", g.ID,
		"cols", g.Cols,
		"rows", g.Rows,
		"unit_w", units.Width,
		"unit_h", units.Height,
		"mode", mode)

	sc := scope{owner: g.ID, cols: g.Cols, mode: mode}
	res.Bounds, res.HasBounds = p.layoutRows(sc, g.Layout, Pos(1, 0), Pos(1, 0))

	res.Placements = make([]Placement, 0, len(p.order))
	res.index = make(map[Block]int, len(p.order))
	for _, b := range p.order {
		span := p.spans[b]
		pl := Placement{
			Block:      b,
			ID:         b.ID(),
			Span:       span,
			TranslateX: span.Start.Offset,
			TranslateY: span.Top.Offset,
			Depth:      p.depths[b],
		}
		switch v := b.(type) {
		case *Measured:
			pl.Size = v.footprint()
		case *Virtual:
			pl.Virtual = true
			pl.Size = Size{Width: span.Width(units.Width), Height: span.Height(units.Height)}
		}
		res.index[b] = len(res.Placements)
		res.Placements = append(res.Placements, pl)
	}

	if res.HasBounds && !g.Align.IsZero() {
		dx, dy := AlignmentOffset(g.Align,
			res.Bounds.Width(units.Width), res.Bounds.Height(units.Height),
			Extent{Width: g.Width, Height: g.Height}, g.Cols, units)
		res.AlignX, res.AlignY = dx, dy
		for i := range res.Placements {
			if res.Placements[i].Virtual {
				continue
			}
			res.Placements[i].TranslateX += dx
			res.Placements[i].TranslateY += dy
		}
	}

	if e.placer != nil {
		for _, pl := range res.Placements {
			if m, ok := pl.Block.(*Measured); ok {
				e.placer.ApplyPlacement(m, pl)
			}
		}
	}

	e.logger.Debug("layout complete",
		"grid", g.ID,
		"blocks", len(res.Placements),
		"rows", len(res.Rows),
		"align_x", res.AlignX,
		"align_y", res.AlignY)

	return res, nil
}
