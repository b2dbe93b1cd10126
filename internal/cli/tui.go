package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridui/pkg/document"
	"github.com/matzehuels/gridui/pkg/grid"
	"github.com/matzehuels/gridui/pkg/pipeline"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// previewCommand creates the preview command, an interactive row browser.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		opts    pipeline.Options
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "preview [document]",
		Short: "Browse the placed rows of a document in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			merged := c.mergeOptions(cmd, opts)
			if err := merged.ValidateAndSetDefaults(); err != nil {
				return err
			}

			doc, err := pipeline.ReadFile(ctx, args[0])
			if err != nil {
				return err
			}
			doc = merged.Apply(doc)
			g, err := document.Build(doc)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Layout(ctx, g, document.Hash(doc), merged)
			if err != nil {
				return err
			}

			_, err = tea.NewProgram(NewRowListModel(g, res), tea.WithContext(ctx)).Run()
			return err
		},
	}
	addLayoutFlags(cmd, &opts)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// =============================================================================
// RowListModel - Interactive row browser
// =============================================================================

// RowListModel is the bubbletea model listing every placed row with the
// blocks that start on it.
type RowListModel struct {
	GridID string
	Units  grid.Units
	Rows   []grid.RowBoundary
	Blocks [][]grid.Placement // per row, the placements anchored on it
	Cursor int
	Height int
	Offset int
}

// NewRowListModel creates a row browser for a computed layout.
func NewRowListModel(g *grid.Grid, res *grid.Result) RowListModel {
	return RowListModel{
		GridID: g.ID,
		Units:  res.Units,
		Rows:   res.Rows,
		Blocks: rowBlocks(res),
		Height: 12,
	}
}

// rowBlocks assigns each placement to the first row of its depth whose
// top-left corner range contains the placement's own.
func rowBlocks(res *grid.Result) [][]grid.Placement {
	u := res.Units
	out := make([][]grid.Placement, len(res.Rows))
	for _, p := range res.Placements {
		x, y := p.Span.Start.Pixels(u.Width), p.Span.Top.Pixels(u.Height)
		for i, rb := range res.Rows {
			if rb.Depth != p.Depth {
				continue
			}
			if within(y, rb.Top.Pixels(u.Height), rb.Bottom.Pixels(u.Height)) &&
				within(x, rb.Start.Pixels(u.Width), rb.End.Pixels(u.Width)) {
				out[i] = append(out[i], p)
				break
			}
		}
	}
	return out
}

// within reports whether v lies in [lo, hi), treating an empty range as
// holding lo.
func within(v, lo, hi float64) bool {
	return v == lo || (v > lo && v < hi)
}

func (m RowListModel) Init() tea.Cmd {
	return nil
}

func (m RowListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Rows))
		case "end", "G":
			m.move(len(m.Rows))
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 3 {
			m.Height = 3
		}
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta rows and keeps it inside the window.
func (m *RowListModel) move(delta int) {
	m.Cursor = max(0, min(m.Cursor+delta, len(m.Rows)-1))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m RowListModel) View() string {
	var b strings.Builder

	title := "Rows"
	if m.GridID != "" {
		title += " of " + m.GridID
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  no rows were placed"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		rb := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		owner := rb.Owner
		if owner == "" {
			owner = "grid"
		}
		rows = append(rows, []string{
			cursor,
			strings.Repeat("  ", rb.Depth) + owner,
			strconv.Itoa(rb.Index),
			rb.Top.String(),
			rb.Bottom.String(),
			rb.Start.String(),
			rb.End.String(),
			strconv.Itoa(len(m.Blocks[i])),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Owner", "Row", "Top", "Bottom", "Start", "End", "Blocks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	return b.String()
}

// detail describes the selected row in pixels and lists its blocks.
func (m RowListModel) detail() string {
	rb := m.Rows[m.Cursor]
	top := float64(rb.Top.Line-1)*m.Units.Height + rb.Top.Offset
	bottom := float64(rb.Bottom.Line-1)*m.Units.Height + rb.Bottom.Offset

	var b strings.Builder
	fmt.Fprintf(&b, "  %s y %g..%g  width %g\n",
		listDimStyle.Render("pixels"), top, bottom, rb.Width)
	for _, p := range m.Blocks[m.Cursor] {
		x, y := p.Origin(m.Units)
		kind := "block"
		if p.Virtual {
			kind = "virtual"
		}
		fmt.Fprintf(&b, "    %s %s at %g,%g %s\n",
			StyleValue.Render(p.ID), listDimStyle.Render(kind), x, y,
			listDimStyle.Render(formatSize(p.Size.Width, p.Size.Height)))
	}
	return b.String()
}
