package server

import (
	"encoding/json"
	stderrors "errors"
	"mime"
	"net/http"
	"slices"
	"strconv"

	"github.com/matzehuels/gridui/pkg/buildinfo"
	"github.com/matzehuels/gridui/pkg/document"
	"github.com/matzehuels/gridui/pkg/errors"
	"github.com/matzehuels/gridui/pkg/observability"
	"github.com/matzehuels/gridui/pkg/pipeline"
)

// Response headers describing cache use.
const (
	HeaderLayoutCache = "X-Layout-Cache"
	HeaderRenderCache = "X-Render-Cache"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatTree: "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Server", buildinfo.UserAgent())
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	inputs := make([]string, 0, len(document.Formats))
	for _, f := range document.Formats {
		inputs = append(inputs, string(f))
	}
	outputs := make([]string, 0, len(pipeline.ValidFormats))
	for f := range pipeline.ValidFormats {
		outputs = append(outputs, f)
	}
	slices.Sort(outputs)
	writeJSON(w, http.StatusOK, map[string][]string{"input": inputs, "output": outputs})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := s.layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set(HeaderLayoutCache, hitOrMiss(res.CacheInfo.LayoutHit))
	w.Header().Set(HeaderRenderCache, hitOrMiss(res.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

type validateResponse struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
	Blocks   int      `json:"blocks"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := validateResponse{Valid: true, Blocks: document.Count(doc).Blocks()}
	if err := document.Validate(doc); err != nil {
		resp.Valid = false
		for _, p := range document.Problems(err) {
			resp.Problems = append(resp.Problems, p.Error())
		}
	} else if _, err := document.Build(doc); err != nil {
		// structural problems such as nesting cycles only surface in Build
		resp.Valid = false
		resp.Problems = []string{errors.UserMessage(err)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeErrorBody(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" is not allowed on "+r.URL.Path)
}

// decode reads the request body as a layout document.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*document.Document, error) {
	format, err := inputFormat(r)
	if err != nil {
		return nil, err
	}
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()
	return pipeline.Decode(r.Context(), body, format)
}

func inputFormat(r *http.Request) (document.Format, error) {
	if in := r.URL.Query().Get("input"); in != "" {
		return document.ParseFormat(in)
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return document.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "bad Content-Type %q", ct)
	}
	switch mt {
	case "application/json", "text/json":
		return document.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return document.FormatYAML, nil
	case "application/toml", "text/toml":
		return document.FormatTOML, nil
	case "text/plain", "application/octet-stream":
		return document.FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported Content-Type %q", mt)
}

// layoutOptions derives pipeline options from the query string on top of the
// server defaults.
func (s *Server) layoutOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.defaults
	opts.Logger = nil

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err
	}
	opts.Formats = []string{format}

	if m := q.Get("mode"); m != "" {
		opts.Mode = m
	}
	var err error
	if opts.Cols, err = intParam(q.Get("cols"), opts.Cols, "cols"); err != nil {
		return opts, err
	}
	if opts.Rows, err = intParam(q.Get("rows"), opts.Rows, "rows"); err != nil {
		return opts, err
	}
	for name, dst := range map[string]*bool{
		"overlay":   &opts.RowOverlay,
		"gridlines": &opts.GridLines,
		"labels":    &opts.Labels,
		"detailed":  &opts.Detailed,
		"refresh":   &opts.Refresh,
	} {
		if *dst, err = boolParam(q.Get(name), *dst, name); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func intParam(v string, def int, name string) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a non-negative integer, got %q", name, v)
	}
	return n, nil
}

func boolParam(v string, def bool, name string) (bool, error) {
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
	}
	return b, nil
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// writeError maps err to a status code and writes it as JSON. Client errors
// become 4xx; anything else is logged and reported as a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		writeErrorBody(w, r, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput),
			"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		return
	case errors.Is(err, errors.ErrCodeNotFound):
		writeErrorBody(w, r, http.StatusNotFound, string(errors.ErrCodeNotFound), errors.UserMessage(err))
		return
	case errors.IsClientError(err):
		writeErrorBody(w, r, http.StatusBadRequest, string(errors.GetCode(err)), err.Error())
		return
	}

	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeErrorBody(w, r, http.StatusInternalServerError, string(code), "internal error")
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     errorBody{Code: code, Message: msg},
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
