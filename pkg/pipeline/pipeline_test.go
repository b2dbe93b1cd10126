package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridui/pkg/cache"
	"github.com/matzehuels/gridui/pkg/document"
	"github.com/matzehuels/gridui/pkg/errors"
	"github.com/matzehuels/gridui/pkg/grid"
	"github.com/matzehuels/gridui/pkg/observability"
)

func testDocument() *document.Document {
	return &document.Document{
		ID: "page", Width: 480, Height: 400,
		Layout: []document.RowSpec{
			{Align: grid.Align{Horizontal: grid.AlignCenter}, Elements: []document.BlockSpec{
				{ID: "title", Width: 200, Height: 30},
			}},
			{Elements: []document.BlockSpec{
				{ID: "a", Width: 100, Height: 50},
				{ID: "group", Virtual: true, Layout: []document.RowSpec{
					{Elements: []document.BlockSpec{{ID: "icon", Width: 40, Height: 20}}},
				}},
			}},
		},
	}
}

func testRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
	t.Cleanup(func() { r.Close() })
	return r
}

type cacheRecorder struct {
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
	sets   map[string]int
}

func newCacheRecorder() *cacheRecorder {
	return &cacheRecorder{hits: map[string]int{}, misses: map[string]int{}, sets: map[string]int{}}
}

func (c *cacheRecorder) OnCacheHit(_ context.Context, k string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[k]++
}

func (c *cacheRecorder) OnCacheMiss(_ context.Context, k string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses[k]++
}

func (c *cacheRecorder) OnCacheSet(_ context.Context, k string, _ int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[k]++
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"txt", false},
		{"dot", false},
		{"tree", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}

	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		FormatSVG:  ".svg",
		FormatJSON: ".json",
		FormatTree: ".tree.svg",
		FormatText: ".txt",
	}
	for format, want := range tests {
		if got := Extension(format); got != want {
			t.Errorf("Extension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", o.Formats)
	}
	if o.Scale != DefaultScale || o.Logger == nil {
		t.Errorf("Scale = %v, Logger = %v", o.Scale, o.Logger)
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad mode", Options{Mode: "exact"}, errors.ErrCodeInvalidMode},
		{"negative cols", Options{Cols: -1}, errors.ErrCodeInvalidConfig},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestApply(t *testing.T) {
	doc := testDocument()
	doc.Cols = 6
	o := Options{Mode: "precise", Rows: 20}

	got := o.Apply(doc)
	if got.Mode != "precise" || got.Cols != 6 || got.Rows != 20 {
		t.Errorf("Apply() = mode %q cols %d rows %d, want precise 6 20", got.Mode, got.Cols, got.Rows)
	}
	if doc.Mode != "" || doc.Rows != 0 {
		t.Error("Apply() modified its input")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{RowOverlay: true, GridLines: true, Detailed: true, Scale: 3}

	if k := o.ArtifactKeyOpts(FormatText); k != (cache.ArtifactKeyOpts{Format: FormatText}) {
		t.Errorf("txt key = %+v, want format only", k)
	}
	if k := o.ArtifactKeyOpts(FormatSVG); !k.RowOverlay || !k.GridLines || k.Scale != 0 || k.Detailed {
		t.Errorf("svg key = %+v", k)
	}
	if k := o.ArtifactKeyOpts(FormatPNG); k.Scale != 3 {
		t.Errorf("png key = %+v, want scale 3", k)
	}
	if k := o.ArtifactKeyOpts(FormatDOT); !k.Detailed || k.RowOverlay {
		t.Errorf("dot key = %+v", k)
	}
}

func TestExecute(t *testing.T) {
	r := testRunner(t)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatSVG, FormatJSON, FormatText, FormatDOT}, RowOverlay: true}

	res, err := r.Execute(ctx, testDocument(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", res.CacheInfo)
	}
	if res.Stats.Blocks != 4 || res.Stats.Rows != 3 || res.Stats.Depth != 1 {
		t.Errorf("Stats = %+v, want 4 blocks 3 rows depth 1", res.Stats)
	}
	if len(res.Artifacts) != 4 {
		t.Fatalf("Artifacts = %d, want 4", len(res.Artifacts))
	}

	title, ok := res.Layout.Find("title")
	if !ok || title.Span.Start != grid.Pos(1, 140) {
		t.Errorf("title start = %v, want (1, 140)", title.Span.Start)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), `class="row"`) {
		t.Error("svg should carry the row overlay")
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), "digraph G {") {
		t.Error("dot artifact is not DOT source")
	}

	var out map[string]any
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &out); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if _, ok := out["row_sizes"]; !ok {
		t.Error("json artifact should include row sizes with the row overlay")
	}
}

func TestExecuteUsesCache(t *testing.T) {
	rec := newCacheRecorder()
	observability.SetCacheHooks(rec)
	t.Cleanup(observability.Reset)

	r := testRunner(t)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, testDocument(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	second, err := r.Execute(ctx, testDocument(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from the rendered one")
	}
	// the cached layout is bound to the new grid
	icon := second.Grid.Layout[1].Elements[1].Rows()[0].Elements[0]
	if p, ok := second.Layout.Placement(icon); !ok || p.ID != "icon" {
		t.Errorf("Placement(icon) = %+v, %v", p, ok)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.hits[keyTypeLayout] != 1 || rec.misses[keyTypeLayout] != 1 || rec.sets[keyTypeLayout] != 1 {
		t.Errorf("layout hooks = hits %d misses %d sets %d, want 1 each",
			rec.hits[keyTypeLayout], rec.misses[keyTypeLayout], rec.sets[keyTypeLayout])
	}
	if rec.hits[keyTypeArtifact] != 2 || rec.sets[keyTypeArtifact] != 2 {
		t.Errorf("artifact hooks = hits %d sets %d, want 2 each", rec.hits[keyTypeArtifact], rec.sets[keyTypeArtifact])
	}
}

func TestExecuteRefreshSkipsCache(t *testing.T) {
	r := testRunner(t)
	ctx := context.Background()

	if _, err := r.Execute(ctx, testDocument(), Options{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	res, err := r.Execute(ctx, testDocument(), Options{Refresh: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("refresh CacheInfo = %+v, want misses", res.CacheInfo)
	}
}

func TestExecuteOverridesSplitCache(t *testing.T) {
	r := testRunner(t)
	ctx := context.Background()

	if _, err := r.Execute(ctx, testDocument(), Options{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	res, err := r.Execute(ctx, testDocument(), Options{Cols: 10})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("a different column count must not reuse the cached layout")
	}
	if res.Grid.Cols != 10 || res.Layout.Units.Width != 48 {
		t.Errorf("grid cols = %d unit = %v, want 10 and 48", res.Grid.Cols, res.Layout.Units.Width)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	bad := testDocument()
	bad.Width = 0
	if _, err := r.Execute(ctx, bad, Options{}); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("Execute(bad document) error = %v, want %s", err, errors.ErrCodeInvalidDocument)
	}
	if _, err := r.Execute(ctx, testDocument(), Options{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Execute(bad format) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

type layoutRecorder struct {
	observability.NoopLayoutHooks
	mu     sync.Mutex
	events []string
}

func (l *layoutRecorder) record(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *layoutRecorder) OnDecode(_ context.Context, format string, _ int, _ time.Duration, _ error) {
	l.record("decode " + format)
}

func (l *layoutRecorder) OnLayoutStart(_ context.Context, gridID string, _ int) {
	l.record("layout " + gridID)
}

func (l *layoutRecorder) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, _ error) {
	l.record("render " + strings.Join(formats, ","))
}

func TestHooksFire(t *testing.T) {
	rec := &layoutRecorder{}
	observability.SetLayoutHooks(rec)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	doc, err := Decode(ctx, strings.NewReader(`{"width": 100, "height": 100, "layout": [{"elements": [{"width": 10, "height": 10}]}]}`), document.FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := NewRunner(nil, nil, nil).Execute(ctx, doc, Options{Formats: []string{FormatText}}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"decode json", "layout ", "render txt"}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if strings.Join(rec.events, "|") != strings.Join(want, "|") {
		t.Errorf("events = %q, want %q", rec.events, want)
	}
}
