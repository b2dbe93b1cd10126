// Package document is the serialisable description of a grid layout.
//
// A [Document] names the container size, the grid resolution and a tree of
// rows and blocks. It can be written as JSON, YAML or TOML:
//
//	width: 480
//	height: 400
//	layout:
//	  - align: {horizontal: center}
//	    elements:
//	      - {id: title, width: 200, height: 30}
//	  - elements:
//	      - {id: a, width: 100, height: 50}
//	      - virtual: true
//	        layout:
//	          - elements: [{width: 40, height: 20}]
//
// [Build] validates a document and converts it to a [grid.Grid]. Blocks
// without an id get a path id that names their position in the tree, such as
// "r1.e1.r0.e0" for the first element of the first nested row of the second
// element of the second row.
package document

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/matzehuels/gridui/pkg/cache"
	"github.com/matzehuels/gridui/pkg/errors"
	"github.com/matzehuels/gridui/pkg/grid"
)

// Document is the root of a layout description.
type Document struct {
	ID     string     `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Width  float64    `json:"width" yaml:"width" toml:"width"`
	Height float64    `json:"height" yaml:"height" toml:"height"`
	Cols   int        `json:"cols,omitempty" yaml:"cols,omitempty" toml:"cols,omitempty"`
	Rows   int        `json:"rows,omitempty" yaml:"rows,omitempty" toml:"rows,omitempty"`
	Mode   string     `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	Align  grid.Align `json:"align,omitzero" yaml:"align,omitempty" toml:"align,omitempty"`
	Layout []RowSpec  `json:"layout" yaml:"layout" toml:"layout"`
}

// RowSpec is one row of blocks.
type RowSpec struct {
	Align    grid.Align  `json:"align,omitzero" yaml:"align,omitempty" toml:"align,omitempty"`
	Elements []BlockSpec `json:"elements" yaml:"elements" toml:"elements"`
}

// BlockSpec describes one block. A block is virtual when Virtual is set or
// when it has nested rows but no size. Ref reuses a block defined earlier in
// the document instead of describing a new one.
type BlockSpec struct {
	ID      string    `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Ref     string    `json:"ref,omitempty" yaml:"ref,omitempty" toml:"ref,omitempty"`
	Width   float64   `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height  float64   `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
	Padding *Padding  `json:"padding,omitempty" yaml:"padding,omitempty" toml:"padding,omitempty"`
	Virtual bool      `json:"virtual,omitempty" yaml:"virtual,omitempty" toml:"virtual,omitempty"`
	Spacer  bool      `json:"spacer,omitempty" yaml:"spacer,omitempty" toml:"spacer,omitempty"`
	Cols    int       `json:"cols,omitempty" yaml:"cols,omitempty" toml:"cols,omitempty"`
	Mode    string    `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	Layout  []RowSpec `json:"layout,omitempty" yaml:"layout,omitempty" toml:"layout,omitempty"`
}

// Padding is the content inset of a measured container.
type Padding struct {
	Left float64 `json:"left,omitempty" yaml:"left,omitempty" toml:"left,omitempty"`
	Top  float64 `json:"top,omitempty" yaml:"top,omitempty" toml:"top,omitempty"`
}

// IsVirtual reports whether b describes a virtual block.
func (b BlockSpec) IsVirtual() bool {
	if b.Virtual {
		return true
	}
	return !b.Spacer && b.Ref == "" && b.Width == 0 && b.Height == 0 && len(b.Layout) > 0
}

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %q (must be json, yaml or toml)", s)
}

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot detect the format of %s: no file extension", path)
	}
	return ParseFormat(ext)
}

// Decode reads a document in the given format. Unknown fields are rejected
// so typos surface instead of silently changing the layout.
func Decode(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read document")
	}

	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode json document")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode yaml document")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode toml document")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "unknown toml key %q", undecoded[0].String())
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %q", format)
	}
	return &doc, nil
}

// ReadFile decodes the document at path, detecting the format from its
// extension.
func ReadFile(path string) (*Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open document %s", path)
	}
	defer f.Close()
	return Decode(f, format)
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported document format: %q", format)
}

// Hash returns a content hash of doc that is independent of the encoding it
// was read from.
func Hash(doc *Document) string {
	data, _ := json.Marshal(doc)
	return cache.Hash(data)
}
