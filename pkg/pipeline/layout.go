package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/gridui/pkg/grid"
	"github.com/matzehuels/gridui/pkg/observability"
)

// ComputeLayout runs the grid engine over g with the logger of opts. Row
// boundaries are logged at debug level as they commit.
func ComputeLayout(ctx context.Context, g *grid.Grid, opts Options) (*grid.Result, error) {
	logger := opts.Logger
	blocks := 0
	if g != nil {
		blocks = countBlocks(g.Layout)
	}
	observability.Layout().OnLayoutStart(ctx, gridID(g), blocks)
	start := time.Now()

	engineOpts := []grid.Option{grid.WithLogger(logger)}
	if logger != nil {
		engineOpts = append(engineOpts, grid.WithRowObserver(grid.RowObserverFunc(func(rb grid.RowBoundary) {
			logger.Debug("row",
				"owner", rb.Owner,
				"index", rb.Index,
				"depth", rb.Depth,
				"start", rb.Start,
				"end", rb.End,
				"top", rb.Top,
				"bottom", rb.Bottom)
		})))
	}

	res, err := grid.New(engineOpts...).Layout(g)
	rows := 0
	if res != nil {
		rows = len(res.Rows)
	}
	observability.Layout().OnLayoutComplete(ctx, gridID(g), rows, time.Since(start), err)
	return res, err
}

func gridID(g *grid.Grid) string {
	if g == nil {
		return ""
	}
	return g.ID
}

// countBlocks counts distinct blocks in rows. Nil entries are skipped; the
// engine reports them.
func countBlocks(rows []grid.Row) int {
	seen := make(map[grid.Block]bool)
	var walk func(rows []grid.Row)
	walk = func(rows []grid.Row) {
		for _, row := range rows {
			for _, b := range row.Elements {
				if isNil(b) || seen[b] {
					continue
				}
				seen[b] = true
				walk(b.Rows())
			}
		}
	}
	walk(rows)
	return len(seen)
}

func isNil(b grid.Block) bool {
	switch v := b.(type) {
	case nil:
		return true
	case *grid.Measured:
		return v == nil
	case *grid.Virtual:
		return v == nil
	}
	return false
}
