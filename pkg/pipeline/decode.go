package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/matzehuels/gridui/pkg/document"
	"github.com/matzehuels/gridui/pkg/observability"
)

// Decode reads a layout document in the given format and reports the decode
// to the layout hooks.
func Decode(ctx context.Context, r io.Reader, format document.Format) (*document.Document, error) {
	start := time.Now()
	doc, err := document.Decode(r, format)
	blocks := 0
	if err == nil {
		blocks = document.Count(doc).Blocks()
	}
	observability.Layout().OnDecode(ctx, string(format), blocks, time.Since(start), err)
	return doc, err
}

// ReadFile reads a layout document from disk, choosing the format by file
// extension.
func ReadFile(ctx context.Context, path string) (*document.Document, error) {
	start := time.Now()
	doc, err := document.ReadFile(path)
	format, _ := document.DetectFormat(path)
	blocks := 0
	if err == nil {
		blocks = document.Count(doc).Blocks()
	}
	observability.Layout().OnDecode(ctx, string(format), blocks, time.Since(start), err)
	return doc, err
}
