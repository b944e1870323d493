package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/chartgeom/pkg/buildinfo"
	"github.com/matzehuels/chartgeom/pkg/cache"
	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/selection"
	"github.com/matzehuels/chartgeom/pkg/dataset"
	cgerrors "github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/pipeline"
	"github.com/matzehuels/chartgeom/pkg/sink"
)

// GeometryResponse is the body of POST /v1/geometry.
type GeometryResponse struct {
	ID       string         `json:"id"`
	Hash     string         `json:"hash"`
	Cached   bool           `json:"cached"`
	Geometry chart.Geometry `json:"geometry"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable code and a readable message.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	doc, opts, err := s.readRequest(w, r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	g, hit, err := s.runner.ComputeWithCacheInfo(r.Context(), doc, opts)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	data, err := chart.MarshalGeometry(g)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GeometryResponse{
		ID:       requestID(r),
		Hash:     cache.Hash(data),
		Cached:   hit,
		Geometry: g,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	doc, opts, err := s.readRequest(w, r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = sink.FormatSVG
	}
	opts.Formats = []string{format}
	opts.Selection = selection.Selection{Active: q.Get("active"), Hovered: q.Get("hovered")}
	opts.Background = q.Get("background")
	if opts.Scale, err = floatParam(q.Get("scale")); err != nil {
		writeFailure(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", sink.ContentType(format))
	w.Header().Set("X-Geometry-Hash", res.GeometryHash)
	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// readRequest decodes the document body and the shared query parameters.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (dataset.Document, pipeline.Options, error) {
	var opts pipeline.Options
	q := r.URL.Query()
	var err error
	if opts.Width, err = floatParam(q.Get("width")); err != nil {
		return dataset.Document{}, opts, err
	}
	if opts.Height, err = floatParam(q.Get("height")); err != nil {
		return dataset.Document{}, opts, err
	}
	opts.Refresh, _ = strconv.ParseBool(q.Get("refresh"))
	opts.Logger = s.logger.With("request", requestID(r))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBody))
	if err != nil {
		return dataset.Document{}, opts, err
	}
	doc, err := dataset.Decode(body, formatFromContentType(r.Header.Get("Content-Type")))
	return doc, opts, err
}

func formatFromContentType(ct string) string {
	mt, _, _ := mime.ParseMediaType(ct)
	switch {
	case strings.HasSuffix(mt, "yaml"):
		return dataset.FormatYAML
	case strings.HasSuffix(mt, "toml"):
		return dataset.FormatTOML
	}
	return dataset.FormatJSON
}

func floatParam(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, cgerrors.Wrap(cgerrors.ErrCodeInvalidConfig, err, "invalid number %q", v)
	}
	return f, nil
}

func cacheHeader(info pipeline.CacheInfo) string {
	if info.ComputeHit && info.RenderHit {
		return "HIT"
	}
	return "MISS"
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// =============================================================================
// Responses
// =============================================================================

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch {
	case cgerrors.IsInvalid(err):
		return http.StatusBadRequest
	case cgerrors.Is(err, cgerrors.ErrCodeNotFound):
		return http.StatusNotFound
	case cgerrors.Is(err, cgerrors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(cgerrors.GetCode(err))
	if code == "" {
		code = string(cgerrors.ErrCodeInternal)
		if status == http.StatusRequestEntityTooLarge {
			code = "BODY_TOO_LARGE"
		}
	}
	writeError(w, r, status, code, cgerrors.UserMessage(err))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: msg, RequestID: requestID(r)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
