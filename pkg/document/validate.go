package document

import (
	stderrors "errors"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/matzehuels/gridui/pkg/errors"
	"github.com/matzehuels/gridui/pkg/grid"
)

// Validate checks doc and reports every problem it finds at once. The result
// is an ErrCodeInvalidDocument error whose cause combines the individual
// problems; use Problems to list them.
func Validate(doc *Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "document is empty")
	}

	v := &validator{defined: make(map[string]bool)}
	if !positive(doc.Width) || !positive(doc.Height) {
		v.addf("", "width and height must be positive, got %g×%g", doc.Width, doc.Height)
	}
	if doc.Cols < 0 || doc.Rows < 0 {
		v.addf("", "cols and rows must not be negative, got %d×%d", doc.Cols, doc.Rows)
	}
	v.mode("", doc.Mode)
	v.align("", doc.Align)
	if err := errors.ValidateID(doc.ID); err != nil {
		v.add("", err)
	}
	v.rows("", doc.Layout)

	if v.err == nil {
		return nil
	}
	n := len(multierr.Errors(v.err))
	return errors.Wrap(errors.ErrCodeInvalidDocument, v.err, "document has %d problem%s", n, plural(n))
}

// Problems lists the individual problems behind a Validate error.
func Problems(err error) []error {
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != errors.ErrCodeInvalidDocument || e.Cause == nil {
		return nil
	}
	return multierr.Errors(e.Cause)
}

type validator struct {
	err     error
	defined map[string]bool
}

func (v *validator) add(at string, err error) {
	if at == "" {
		at = "document"
	}
	v.err = multierr.Append(v.err, fmt.Errorf("%s: %w", at, err))
}

func (v *validator) addf(at, format string, args ...any) {
	v.add(at, fmt.Errorf(format, args...))
}

func (v *validator) mode(at, mode string) {
	if _, err := grid.ParseMode(mode); err != nil {
		v.add(at, err)
	}
}

func (v *validator) align(at string, a grid.Align) {
	if _, err := grid.ParseHAlign(string(a.Horizontal)); err != nil {
		v.add(at, err)
	}
	if _, err := grid.ParseVAlign(string(a.Vertical)); err != nil {
		v.add(at, err)
	}
}

func (v *validator) rows(prefix string, rows []RowSpec) {
	for ri, row := range rows {
		v.align(fmt.Sprintf("%sr%d", prefix, ri), row.Align)
		for ei, b := range row.Elements {
			v.block(fmt.Sprintf("%sr%d.e%d", prefix, ri, ei), b)
		}
	}
}

func (v *validator) block(at string, b BlockSpec) {
	if b.Ref != "" {
		if b.ID != "" || b.Width != 0 || b.Height != 0 || b.Padding != nil || b.Virtual ||
			b.Spacer || b.Cols != 0 || b.Mode != "" || len(b.Layout) > 0 {
			v.addf(at, "a ref block cannot set any other field")
		}
		// refs point backwards so a block is always defined before reuse
		if !v.defined[b.Ref] {
			v.addf(at, "ref %q does not name an earlier block", b.Ref)
		}
		return
	}

	if err := errors.ValidateID(b.ID); err != nil {
		v.add(at, err)
	}
	if b.ID != "" {
		if v.defined[b.ID] {
			v.addf(at, "duplicate block id %q", b.ID)
		}
		v.defined[b.ID] = true
	}

	if !finite(b.Width) || !finite(b.Height) || b.Width < 0 || b.Height < 0 {
		v.addf(at, "width and height must be finite and not negative, got %g×%g", b.Width, b.Height)
	}
	if b.Cols < 0 {
		v.addf(at, "cols must not be negative, got %d", b.Cols)
	}
	v.mode(at, b.Mode)

	switch {
	case b.Virtual && b.Spacer:
		v.addf(at, "a block cannot be both virtual and a spacer")
	case b.Virtual && (b.Width != 0 || b.Height != 0 || b.Padding != nil):
		v.addf(at, "a virtual block has no size or padding")
	case b.Spacer && (b.Height != 0 || b.Padding != nil || len(b.Layout) > 0):
		v.addf(at, "a spacer only takes a width")
	}
	if b.Padding != nil && (!finite(b.Padding.Left) || !finite(b.Padding.Top)) {
		v.addf(at, "padding must be finite")
	}

	v.rows(at+".", b.Layout)
}

func positive(f float64) bool { return f > 0 && finite(f) }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
