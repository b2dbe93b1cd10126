// Package pipeline runs the decode → build → layout → render pipeline shared
// by the gridui CLI and HTTP service.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Decode: read a layout document (JSON, YAML or TOML)
//  2. Build: validate the document and convert it into a [grid.Grid]
//  3. Layout: run the grid engine
//  4. Render: produce the requested output formats
//
// Layouts and rendered artifacts are cached by document hash and options, so
// rerunning an unchanged document is a cache lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats:    []string{"svg", "json"},
//	    RowOverlay: true,
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// [grid.Grid]: github.com/matzehuels/gridui/pkg/grid.Grid
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridui/pkg/cache"
	"github.com/matzehuels/gridui/pkg/document"
	"github.com/matzehuels/gridui/pkg/errors"
	"github.com/matzehuels/gridui/pkg/grid"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG  = "svg"  // drawing of the placed blocks
	FormatJSON = "json" // placements and spans
	FormatText = "txt"  // placement table
	FormatDOT  = "dot"  // block tree as Graphviz source
	FormatTree = "tree" // block tree rendered by Graphviz
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatText: true,
	FormatDOT:  true,
	FormatTree: true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// DefaultScale is the PNG resolution factor.
const DefaultScale = 2.0

// Extension returns the file suffix written for an artifact format.
func Extension(format string) string {
	if format == FormatTree {
		return ".tree.svg"
	}
	return "." + format
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run. Zero values keep what the document
// says.
type Options struct {
	// Build options override the document's grid settings.
	Mode string `json:"mode,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	RowOverlay bool     `json:"row_overlay,omitempty"` // outline row boundaries (svg) and list them (json)
	GridLines  bool     `json:"grid_lines,omitempty"`
	Labels     bool     `json:"labels,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"` // block details in tree diagrams
	Scale      float64  `json:"scale,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Mode != "" {
		if _, err := grid.ParseMode(o.Mode); err != nil {
			return err
		}
	}
	if o.Cols < 0 || o.Rows < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cols and rows must not be negative, got %d×%d", o.Cols, o.Rows)
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Apply returns a copy of doc with the grid overrides of o. The nested
// layout is shared with doc.
func (o *Options) Apply(doc *document.Document) *document.Document {
	out := *doc
	if o.Mode != "" {
		out.Mode = o.Mode
	}
	if o.Cols > 0 {
		out.Cols = o.Cols
	}
	if o.Rows > 0 {
		out.Rows = o.Rows
	}
	return &out
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Mode: o.Mode, Cols: o.Cols, Rows: o.Rows}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Settings a format ignores are left out so they do not split its entries.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		k.RowOverlay, k.GridLines, k.Labels = o.RowOverlay, o.GridLines, o.Labels
		if format == FormatPNG {
			k.Scale = o.Scale
		}
	case FormatJSON:
		k.RowOverlay = o.RowOverlay
	case FormatDOT, FormatTree:
		k.Detailed = o.Detailed
	}
	return k
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the input after option overrides.
	Document *document.Document

	// DocHash is the content hash of Document.
	DocHash string

	// Grid is the engine input built from Document.
	Grid *grid.Grid

	// Layout is the computed layout, bound to Grid.
	Layout *grid.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Blocks     int
	Rows       int
	Depth      int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}
