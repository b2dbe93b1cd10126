package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridui/pkg/document"
	"github.com/matzehuels/gridui/pkg/errors"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [document]",
		Short: "Check a document and list every problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

func (c *CLI) runValidate(path string) error {
	doc, err := document.ReadFile(path)
	if err != nil {
		return err
	}

	if err := document.Validate(doc); err != nil {
		problems := document.Problems(err)
		printError("%s has %d problem%s", path, len(problems), plural(len(problems)))
		for _, p := range problems {
			printDetail("%s", p.Error())
		}
		return err
	}
	if _, err := document.Build(doc); err != nil {
		printError("%s: %s", path, errors.UserMessage(err))
		return err
	}

	stats := document.Count(doc)
	printSuccess("%s is valid", path)
	printStats(stats.Blocks(), stats.Rows, false)
	if stats.Refs > 0 {
		printDetail("%d shared block references", stats.Refs)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
