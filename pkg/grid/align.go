package grid

import (
	"math"
	"strings"

	"github.com/matzehuels/gridui/pkg/errors"
)

// HAlign is a horizontal alignment keyword. The zero value means unset.
type HAlign string

// VAlign is a vertical alignment keyword. The zero value means unset.
type VAlign string

const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"

	AlignTop    VAlign = "top"
	AlignMiddle VAlign = "middle"
	AlignBottom VAlign = "bottom"
)

// Align combines the two independent alignment axes.
type Align struct {
	Horizontal HAlign `json:"horizontal,omitempty" yaml:"horizontal,omitempty" toml:"horizontal,omitempty"`
	Vertical   VAlign `json:"vertical,omitempty" yaml:"vertical,omitempty" toml:"vertical,omitempty"`
}

// Grid-level alignments for Grid.Align.
var (
	GridCenter       = Align{Horizontal: AlignCenter}
	GridMiddle       = Align{Vertical: AlignMiddle}
	GridCenterMiddle = Align{Horizontal: AlignCenter, Vertical: AlignMiddle}
)

// IsZero reports whether neither axis is aligned.
func (a Align) IsZero() bool { return a.Horizontal == "" && a.Vertical == "" }

// ParseHAlign parses a horizontal keyword. The empty string is valid and
// means unset.
func ParseHAlign(s string) (HAlign, error) {
	switch h := HAlign(strings.ToLower(strings.TrimSpace(s))); h {
	case "", AlignLeft, AlignCenter, AlignRight:
		return h, nil
	}
	return "", errors.New(errors.ErrCodeInvalidAlign, "invalid horizontal alignment: %q (must be left, center or right)", s)
}

// ParseVAlign parses a vertical keyword. The empty string is valid and means
// unset.
func ParseVAlign(s string) (VAlign, error) {
	switch v := VAlign(strings.ToLower(strings.TrimSpace(s))); v {
	case "", AlignTop, AlignMiddle, AlignBottom:
		return v, nil
	}
	return "", errors.New(errors.ErrCodeInvalidAlign, "invalid vertical alignment: %q (must be top, middle or bottom)", s)
}

// Units is the pixel size of one grid cell along each axis.
type Units struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Known reports whether both unit sizes have been established.
func (u Units) Known() bool { return u.Width > 0 && u.Height > 0 }

// Extent is an optional container size for alignment. A zero axis falls back
// to the default container for that axis.
type Extent struct {
	Width  float64
	Height float64
}

// AlignmentOffset returns the pixel offsets that align content of the given
// size inside a container.
//
// Without an explicit container width the container spans cols grid units;
// without an explicit height it is the content height rounded up to whole
// grid units. An axis with no keyword yields zero.
func AlignmentOffset(a Align, contentW, contentH float64, container Extent, cols int, units Units) (dx, dy float64) {
	if a.Horizontal != "" {
		avail := container.Width
		if avail == 0 {
			avail = float64(cols) * units.Width
		}
		extra := avail - contentW
		switch a.Horizontal {
		case AlignCenter:
			dx = extra / 2
		case AlignRight:
			dx = extra
		}
	}
	if a.Vertical != "" {
		avail := container.Height
		if avail == 0 && units.Height > 0 {
			avail = math.Ceil(contentH/units.Height) * units.Height
		}
		extra := avail - contentH
		switch a.Vertical {
		case AlignMiddle:
			dy = extra / 2
		case AlignBottom:
			dy = extra
		}
	}
	return dx, dy
}
