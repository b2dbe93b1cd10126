package grid

import (
	"fmt"

	"github.com/matzehuels/gridui/pkg/errors"
)

// Limits bound the block trees accepted by CheckStructure. Zero fields select
// DefaultMaxDepth and DefaultMaxBlocks.
type Limits struct {
	MaxDepth int
	// MaxBlocks caps the number of placements with every shared block
	// counted once per appearance.
	MaxBlocks int
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxBlocks <= 0 {
		l.MaxBlocks = DefaultMaxBlocks
	}
	return l
}

// subtree is the checked shape of a container: its nesting height and the
// number of placements it expands to, itself included.
type subtree struct {
	height int
	count  int
}

// CheckStructure walks the block tree under rows and rejects nil elements,
// cyclic nesting, nesting deeper than the depth limit and trees that expand
// to more placements than the block limit. A block may appear in several
// places (the tree may be a DAG) as long as it never contains itself; each
// shared container is walked once.
func CheckStructure(rows []Row, limits Limits) error {
	limits = limits.withDefaults()
	onPath := make(map[Block]bool)
	done := make(map[Block]subtree)

	var walk func(rows []Row, depth int, path string) (subtree, error)
	walk = func(rows []Row, depth int, path string) (subtree, error) {
		var st subtree
		for ri, row := range rows {
			for ei, el := range row.Elements {
				at := path + elementPath(ri, ei)
				if isNilBlock(el) {
					return st, errors.New(errors.ErrCodeInvalidInput, "nil block at %s", at)
				}
				if onPath[el] {
					return st, errors.New(errors.ErrCodeCyclicNesting, "block %s at %s contains itself", describe(el), at)
				}

				sub, seen := done[el]
				switch {
				case seen:
				case len(el.Rows()) == 0:
					sub = subtree{count: 1}
				default:
					if depth+1 > limits.MaxDepth {
						return st, errors.New(errors.ErrCodeNestingTooDeep, "nesting exceeds %d levels at %s", limits.MaxDepth, at)
					}
					onPath[el] = true
					inner, err := walk(el.Rows(), depth+1, at+".")
					if err != nil {
						return st, err
					}
					delete(onPath, el)
					sub = subtree{height: inner.height + 1, count: inner.count + 1}
					done[el] = sub
				}

				if depth+sub.height > limits.MaxDepth {
					return st, errors.New(errors.ErrCodeNestingTooDeep, "nesting exceeds %d levels at %s", limits.MaxDepth, at)
				}
				st.height = max(st.height, sub.height)
				st.count += sub.count
				if st.count > limits.MaxBlocks {
					return st, errors.New(errors.ErrCodeLayoutTooLarge,
						"layout expands to more than %d blocks at %s", limits.MaxBlocks, at)
				}
			}
		}
		return st, nil
	}
	_, err := walk(rows, 0, "")
	return err
}

func isNilBlock(b Block) bool {
	switch v := b.(type) {
	case nil:
		return true
	case *Measured:
		return v == nil
	case *Virtual:
		return v == nil
	}
	return false
}

func describe(b Block) string {
	if id := b.ID(); id != "" {
		return "\"" + id + "\""
	}
	return "(unnamed)"
}

// elementPath names element ei of row ri, e.g. "r0.e2".
func elementPath(ri, ei int) string {
	return fmt.Sprintf("r%d.e%d", ri, ei)
}
