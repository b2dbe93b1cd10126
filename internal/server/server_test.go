package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridui/pkg/cache"
	"github.com/matzehuels/gridui/pkg/observability"
	"github.com/matzehuels/gridui/pkg/pipeline"
)

const pageJSON = `{
  "id": "page",
  "width": 480,
  "height": 400,
  "layout": [
    {"align": {"horizontal": "center"}, "elements": [{"id": "title", "width": 200, "height": 30}]},
    {"elements": [{"id": "a", "width": 100, "height": 50}]}
  ]
}`

const pageYAML = `
width: 480
height: 400
layout:
  - elements:
      - id: a
        width: 100
        height: 50
`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(c, nil, logger), logger, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestFormats(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/formats")
	if err != nil {
		t.Fatalf("GET /v1/formats: %v", err)
	}
	defer resp.Body.Close()

	var body map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["input"]) != 3 || len(body["output"]) != len(pipeline.ValidFormats) {
		t.Errorf("formats = %v", body)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name        string
		query       string
		contentType string
		body        string
		wantType    string
		want        string
	}{
		{"svg default", "", "application/json", pageJSON, "image/svg+xml", `id="block-title"`},
		{"json", "?format=json", "application/json", pageJSON, "application/json", `"grid": "page"`},
		{"text", "?format=txt", "", pageJSON, "text/plain; charset=utf-8", "title"},
		{"dot", "?format=dot", "application/json", pageJSON, "text/vnd.graphviz; charset=utf-8", "digraph G {"},
		{"yaml body", "?format=json", "application/yaml", pageYAML, "application/json", `"id": "a"`},
		{"input param", "?format=json&input=yaml", "text/plain", pageYAML, "application/json", `"id": "a"`},
		{"overlay", "?overlay=true&gridlines=1", "application/json", pageJSON, "image/svg+xml", `class="row"`},
		{"cols override", "?format=json&cols=10", "application/json", pageJSON, "application/json", `"cols": 10`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/layout"+tt.query, tt.contentType, tt.body)
			body := readBody(t, resp)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, body)
			}
		})
	}
}

func TestLayoutCacheHeaders(t *testing.T) {
	ts := newTestServer(t)

	first := post(t, ts.URL+"/v1/layout", "application/json", pageJSON)
	if got := first.Header.Get(HeaderLayoutCache); got != "miss" {
		t.Errorf("first %s = %q, want miss", HeaderLayoutCache, got)
	}
	second := post(t, ts.URL+"/v1/layout", "application/json", pageJSON)
	if got := second.Header.Get(HeaderLayoutCache); got != "hit" {
		t.Errorf("second %s = %q, want hit", HeaderLayoutCache, got)
	}
	if got := second.Header.Get(HeaderRenderCache); got != "hit" {
		t.Errorf("second %s = %q, want hit", HeaderRenderCache, got)
	}
	refreshed := post(t, ts.URL+"/v1/layout?refresh=true", "application/json", pageJSON)
	if got := refreshed.Header.Get(HeaderLayoutCache); got != "miss" {
		t.Errorf("refresh %s = %q, want miss", HeaderLayoutCache, got)
	}
}

func TestLayoutErrors(t *testing.T) {
	ts := newTestServer(t, WithMaxBodySize(64))

	tests := []struct {
		name        string
		query       string
		contentType string
		body        string
		status      int
		code        string
	}{
		{"bad json", "", "application/json", `{"width": `, http.StatusBadRequest, "INVALID_DOCUMENT"},
		{"invalid document", "", "application/json", `{"width": 0, "height": 10, "layout": []}`, http.StatusBadRequest, "INVALID_DOCUMENT"},
		{"bad format", "?format=gif", "application/json", `{}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad mode", "?mode=exact", "application/json", `{"width": 10, "height": 10, "layout": []}`, http.StatusBadRequest, "INVALID_MODE"},
		{"bad cols", "?cols=-2", "application/json", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad bool", "?overlay=maybe", "application/json", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad content type", "", "image/png", `{}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"too large", "", "application/json", `{"id": "` + strings.Repeat("x", 100) + `"}`, http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/layout"+tt.query, tt.contentType, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			e := decodeError(t, resp)
			if e.Error.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", e.Error.Code, tt.code, e.Error.Message)
			}
			if e.RequestID == "" || e.RequestID != resp.Header.Get(RequestIDHeader) {
				t.Errorf("request_id = %q, header = %q", e.RequestID, resp.Header.Get(RequestIDHeader))
			}
		})
	}
}

func TestLayoutRejectsExpandingRefs(t *testing.T) {
	ts := newTestServer(t)

	// each level holds the previous one twice, doubling the placements
	var b strings.Builder
	b.WriteString(`{"width": 480, "height": 400, "layout": [{"elements": [{"id": "l0", "width": 4, "height": 4}]}`)
	for i := 1; i <= 22; i++ {
		fmt.Fprintf(&b, `, {"elements": [{"id": "l%d", "virtual": true, "layout": [{"elements": [{"ref": "l%d"}, {"ref": "l%d"}]}]}]}`, i, i-1, i-1)
	}
	b.WriteString(`]}`)

	start := time.Now()
	resp := post(t, ts.URL+"/v1/layout", "application/json", b.String())
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("request took %v", elapsed)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Error.Code != "LAYOUT_TOO_LARGE" {
		t.Errorf("code = %q, want LAYOUT_TOO_LARGE (%s)", e.Error.Code, e.Error.Message)
	}

	resp = post(t, ts.URL+"/v1/validate", "application/json", b.String())
	var v validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode validate response: %v", err)
	}
	if v.Valid || len(v.Problems) != 1 {
		t.Errorf("validate = %+v, want one problem", v)
	}
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		body      string
		valid     bool
		wantCount int
	}{
		{"good", pageJSON, true, 0},
		{"problems", `{"width": 0, "height": 10, "layout": [{"elements": [{"id": "a", "width": -1, "height": 1}, {"ref": "zzz"}]}]}`, false, 3},
		{"cycle", `{"width": 10, "height": 10, "layout": [{"elements": [{"id": "o", "virtual": true, "layout": [{"elements": [{"ref": "o"}]}]}]}]}`, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/validate", "application/json", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			var got validateResponse
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Valid != tt.valid || len(got.Problems) != tt.wantCount {
				t.Errorf("validate = %+v, want valid=%v with %d problems", got, tt.valid, tt.wantCount)
			}
		})
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v2/nothing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound || decodeError(t, resp).Error.Code != "NOT_FOUND" {
		t.Errorf("unknown route status = %d", resp.StatusCode)
	}

	resp2, err := http.Get(ts.URL + "/v1/layout")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/layout status = %d, want 405", resp2.StatusCode)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"client id", "trace-123", true},
		{"empty", "", false},
		{"unsafe", "bad id\nx", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
			if tt.in != "" {
				req.Header.Set(RequestIDHeader, tt.in)
			}
			rec := httptest.NewRecorder()
			requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if RequestID(r.Context()) == "" {
					t.Error("request id missing from context")
				}
			})).ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if tt.keep && got != tt.in {
				t.Errorf("id = %q, want %q", got, tt.in)
			}
			if !tt.keep && (got == "" || got == tt.in) {
				t.Errorf("id = %q, want a generated id", got)
			}
		})
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *httpRecorder) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	for _, path := range []string{"/healthz", "/missing"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.statuses) != 2 || rec.statuses[0] != 200 || rec.statuses[1] != 404 {
		t.Errorf("statuses = %v, want [200 404]", rec.statuses)
	}
}

func TestServeShutsDown(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(nil, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
