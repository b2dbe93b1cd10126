package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridui/pkg/document"
	"github.com/matzehuels/gridui/pkg/grid"
	"github.com/matzehuels/gridui/pkg/pipeline"
)

// sizesCommand creates the sizes command, which compares both row size
// strategies for the top-level rows of a document.
func (c *CLI) sizesCommand() *cobra.Command {
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "sizes [document]",
		Short: "Compare fast and precise row sizes",
		Long: `Compare fast and precise row sizes.

Fast sizing sums the known footprints of a row's blocks. Precise sizing places
the row provisionally and reads back its extent, which also accounts for
nested rows, alignment and padding. Rows where the two differ are marked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := c.mergeOptions(cmd, opts)
			doc, err := pipeline.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, err := document.Build(merged.Apply(doc))
			if err != nil {
				return err
			}
			out, err := renderSizes(g)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, out)
			return nil
		},
	}
	addLayoutFlags(cmd, &opts)
	return cmd
}

// renderSizes measures every top-level row of g in both modes and returns
// the comparison table followed by the layout envelopes.
func renderSizes(g *grid.Grid) (string, error) {
	units := g.Units()
	fast, fastSum, err := grid.MeasureLayout(g.Layout, grid.ModeFast, g.Cols, units)
	if err != nil {
		return "", err
	}
	precise, preciseSum, err := grid.MeasureLayout(g.Layout, grid.ModePrecise, g.Cols, units)
	if err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(fast))
	for i := range fast {
		mark := ""
		if fast[i].Width != precise[i].Width || fast[i].Height != precise[i].Height {
			mark = "*"
		}
		rows = append(rows, []string{
			strconv.Itoa(fast[i].Index),
			alignLabel(fast[i].Align),
			formatSize(fast[i].Width, fast[i].Height),
			formatSize(precise[i].Width, precise[i].Height),
			mark,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Row", "Align", "Fast", "Precise", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 4 {
				return StyleWarning
			}
			return lipgloss.NewStyle()
		})

	return fmt.Sprintf("%s\n%s  %s\n%s  %s",
		t.Render(),
		styleKey.Render("fast"), formatSize(fastSum.Width, fastSum.Height),
		styleKey.Render("precise"), formatSize(preciseSum.Width, preciseSum.Height)), nil
}

func formatSize(w, h float64) string {
	return fmt.Sprintf("%g×%g", w, h)
}

func alignLabel(a grid.Align) string {
	h, v := string(a.Horizontal), string(a.Vertical)
	switch {
	case h == "" && v == "":
		return "-"
	case v == "":
		return h
	case h == "":
		return v
	}
	return h + "/" + v
}
