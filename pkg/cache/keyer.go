package cache

import "time"

// Default time-to-live for cached entries.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Keyer derives cache keys. Every option that changes the output must feed
// into the key.
type Keyer interface {
	// LayoutKey names the computed layout of a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
	// ArtifactKey names one rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the engine settings that override the document.
type LayoutKeyOpts struct {
	Mode string `json:"mode,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// ArtifactKeyOpts are the renderer settings of one output.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	RowOverlay bool    `json:"row_overlay,omitempty"`
	GridLines  bool    `json:"grid_lines,omitempty"`
	Labels     bool    `json:"labels,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes the options together with the input hash.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() *DefaultKeyer { return &DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return entryKey{kind: KindLayout, input: docHash, opts: opts}.String()
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return entryKey{kind: KindArtifact, input: layoutHash, opts: opts}.String()
}

var _ Keyer = DefaultKeyer{}
