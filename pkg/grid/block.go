package grid

// Size is a pixel footprint.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Insets is the content-area inset of a measured container. Only Left and
// Top influence where nested rows are anchored.
type Insets struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// Element is the rendering collaborator behind a Measured block.
//
// Measure returns the full outer footprint including the element's own
// margins. It must return the same value for repeated calls within one
// layout pass. Padding returns the content inset used to anchor nested rows.
type Element interface {
	Measure() Size
	Padding() Insets
}

// Container carries per-container settings for the nested rows of a block.
// Zero values inherit from the enclosing container.
type Container struct {
	Cols int  // columns assumed when a nested row aligns without a container width
	Mode Mode // row size strategy for the nested rows
}

// Block is a node of the layout tree. It is either a *Measured block, which
// has a pixel footprint, or a *Virtual block, which only groups rows.
type Block interface {
	// ID returns the caller-assigned identifier, possibly empty.
	ID() string
	// Rows returns the nested rows laid out inside the block.
	Rows() []Row

	container() Container
}

// Measured is a block with an intrinsic footprint supplied by its Element.
// It may also own nested rows; the footprint bounds the minimum box and the
// nested content can extend it.
type Measured struct {
	Name    string
	Element Element
	Layout  []Row
	Container
}

// ID implements Block.
func (m *Measured) ID() string { return m.Name }

// Rows implements Block.
func (m *Measured) Rows() []Row { return m.Layout }

func (m *Measured) container() Container { return m.Container }

// footprint returns the element's outer size, or zero when no element is set.
func (m *Measured) footprint() Size {
	if m.Element == nil {
		return Size{}
	}
	return m.Element.Measure()
}

func (m *Measured) padding() Insets {
	if m.Element == nil {
		return Insets{}
	}
	return m.Element.Padding()
}

// Virtual is a layout-only grouping with no footprint of its own. Its span is
// the bounding box of its nested rows; without rows it collapses to a point
// at its anchor.
type Virtual struct {
	Name   string
	Layout []Row
	Container
}

// ID implements Block.
func (v *Virtual) ID() string { return v.Name }

// Rows implements Block.
func (v *Virtual) Rows() []Row { return v.Layout }

func (v *Virtual) container() Container { return v.Container }

var (
	_ Block = (*Measured)(nil)
	_ Block = (*Virtual)(nil)
)

// Row is an ordered sequence of sibling blocks placed left to right along the
// same top line.
type Row struct {
	Elements []Block
	Align    Align
}

// Box is a static Element with a fixed footprint.
type Box struct {
	Width, Height float64
	Pad           Insets
}

// Measure implements Element.
func (b Box) Measure() Size { return Size{Width: b.Width, Height: b.Height} }

// Padding implements Element.
func (b Box) Padding() Insets { return b.Pad }

// NewMeasured returns a measured block backed by a fixed-size Box.
func NewMeasured(id string, width, height float64, rows ...Row) *Measured {
	return &Measured{Name: id, Element: Box{Width: width, Height: height}, Layout: rows}
}

// NewVirtual returns a virtual block grouping rows.
func NewVirtual(id string, rows ...Row) *Virtual {
	return &Virtual{Name: id, Layout: rows}
}

// SpacerHeight is the fixed height of a Spacer block.
const SpacerHeight = 5

// Spacer returns a measured block that reserves width pixels of horizontal
// space in a row.
func Spacer(width float64) *Measured {
	return &Measured{Element: Box{Width: width, Height: SpacerHeight}}
}

// NewRow builds an unaligned row.
func NewRow(elements ...Block) Row { return Row{Elements: elements} }

// Aligned rows, one constructor per common alignment.
func Left(elements ...Block) Row   { return Row{Elements: elements, Align: Align{Horizontal: AlignLeft}} }
func Center(elements ...Block) Row { return Row{Elements: elements, Align: Align{Horizontal: AlignCenter}} }
func Right(elements ...Block) Row  { return Row{Elements: elements, Align: Align{Horizontal: AlignRight}} }
func Top(elements ...Block) Row    { return Row{Elements: elements, Align: Align{Vertical: AlignTop}} }
func Middle(elements ...Block) Row { return Row{Elements: elements, Align: Align{Vertical: AlignMiddle}} }
func Bottom(elements ...Block) Row { return Row{Elements: elements, Align: Align{Vertical: AlignBottom}} }

func CenterMiddle(elements ...Block) Row {
	return Row{Elements: elements, Align: Align{Horizontal: AlignCenter, Vertical: AlignMiddle}}
}

func LeftMiddle(elements ...Block) Row {
	return Row{Elements: elements, Align: Align{Horizontal: AlignLeft, Vertical: AlignMiddle}}
}
