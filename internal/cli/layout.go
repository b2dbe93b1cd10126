package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridui/pkg/pipeline"
)

// layoutFlags holds the layout command flags that are not pipeline options.
type layoutFlags struct {
	formats string
	output  string
	noCache bool
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags layoutFlags
		opts  pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [document]",
		Short: "Lay out a document and write the rendered artifacts",
		Long: `Lay out a document and write the rendered artifacts.

The document is a JSON, YAML or TOML file describing the grid and its rows of
blocks. Each requested format is written next to the input (or under --output)
as <name>.<format>; the tree format is written as <name>.tree.svg.

Layouts and artifacts are cached, so rerunning an unchanged document is fast.
Flags override what the document and the config file set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := c.mergeOptions(cmd, opts)
			if f := parseFormats(flags.formats); len(f) > 0 {
				merged.Formats = f
			}
			return c.runLayout(cmd.Context(), args[0], merged, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output formats, comma-separated: svg, json, txt, dot, tree, png, pdf")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory or file base (default: next to the input)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)
	cmd.Flags().BoolVar(&opts.GridLines, "gridlines", false, "draw grid lines (svg)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "label blocks with their ids (svg)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show block details in tree diagrams")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "png resolution factor")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// addLayoutFlags registers the grid override flags shared by several commands.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "row size mode: fast, precise")
	cmd.Flags().IntVar(&opts.Cols, "cols", 0, "grid columns (default: document or 12)")
	cmd.Flags().IntVar(&opts.Rows, "rows", 0, "grid rows (default: document or 10)")
	cmd.Flags().BoolVar(&opts.RowOverlay, "overlay", false, "outline row boundaries (svg) and list them (json)")
}

// mergeOptions layers explicitly set flags over the config defaults.
func (c *CLI) mergeOptions(cmd *cobra.Command, flags pipeline.Options) pipeline.Options {
	opts := c.configDefaults()
	set := cmd.Flags().Changed
	if set("mode") {
		opts.Mode = flags.Mode
	}
	if set("cols") {
		opts.Cols = flags.Cols
	}
	if set("rows") {
		opts.Rows = flags.Rows
	}
	if set("overlay") {
		opts.RowOverlay = flags.RowOverlay
	}
	opts.GridLines = flags.GridLines
	opts.Labels = flags.Labels
	opts.Detailed = flags.Detailed
	opts.Scale = flags.Scale
	opts.Refresh = flags.Refresh
	opts.Logger = c.Logger
	return opts
}

// runLayout reads the document, runs the pipeline and writes every artifact.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, flags layoutFlags) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	doc, err := pipeline.ReadFile(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d blocks", res.Stats.Blocks))

	base, err := outputBase(input, flags.output)
	if err != nil {
		return err
	}

	var written []string
	for _, format := range opts.Formats {
		path := base + pipeline.Extension(format)
		if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Layout complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(res.Stats.Blocks, res.Stats.Rows, res.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Browse rows", appName+" preview "+input)

	return nil
}

// outputBase returns the path prefix for artifacts. An existing directory
// receives <input name>.<ext>; anything else is used as the prefix itself.
func outputBase(input, output string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if output == "" {
		return filepath.Join(filepath.Dir(input), name), nil
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name), nil
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	return strings.TrimSuffix(output, filepath.Ext(output)), nil
}
