package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartgeom/pkg/cache"
	"github.com/matzehuels/chartgeom/pkg/pipeline"
)

const radialBody = `{
  "kind": "radial",
  "title": "Languages",
  "radial": {"data": [{"label": "go", "value": 60}, {"label": "rust", "value": 40}],
             "config": {"outer_radius": 50, "inner_radius_ratio": 0.5}}
}`

const streamYAML = `
kind: stream
stream:
  rows:
    - {x: mon, web: 3, mobile: 1}
    - {x: tue, web: 5, mobile: 2}
`

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := httptest.NewServer(New(pipeline.NewRunner(c, nil, logger), logger, opts).Handler())
	t.Cleanup(srv.Close)
	return srv
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

func decodeError(t *testing.T, resp *http.Response) ErrorBody {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e.Error
}

func TestGeometry(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := post(t, srv.URL+"/v1/geometry", "application/json", radialBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body GeometryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Geometry.Kind != "radial" || len(body.Geometry.Radial.Segments) != 2 {
		t.Errorf("geometry = %+v", body.Geometry)
	}
	if body.ID == "" || body.Hash == "" || body.Cached {
		t.Errorf("id=%q hash=%q cached=%v", body.ID, body.Hash, body.Cached)
	}

	again := post(t, srv.URL+"/v1/geometry", "application/json", radialBody)
	var second GeometryResponse
	_ = json.NewDecoder(again.Body).Decode(&second)
	if !second.Cached || second.Hash != body.Hash {
		t.Errorf("second request cached=%v hash match=%v", second.Cached, second.Hash == body.Hash)
	}
}

func TestGeometryUnsizedRadialUsesDefaultFrame(t *testing.T) {
	srv := newTestServer(t, Options{})
	body := `{"kind":"radial","radial":{"data":[{"label":"a","value":1},{"label":"b","value":2}]}}`
	resp := post(t, srv.URL+"/v1/geometry", "application/json", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, error = %+v", resp.StatusCode, decodeError(t, resp))
	}
	var got GeometryResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if r := got.Geometry.Radial; r == nil || r.OuterRadius != pipeline.DefaultHeight/2 {
		t.Errorf("radial = %+v, want outer radius %v", r, pipeline.DefaultHeight/2)
	}
}

func TestGeometryYAMLWithFrame(t *testing.T) {
	srv := newTestServer(t, Options{})
	resp := post(t, srv.URL+"/v1/geometry?width=300&height=150", "application/yaml", streamYAML)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body GeometryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Geometry.Width != 300 || body.Geometry.Height != 150 {
		t.Errorf("frame = %vx%v, want 300x150", body.Geometry.Width, body.Geometry.Height)
	}
}

func TestRender(t *testing.T) {
	srv := newTestServer(t, Options{})
	tests := []struct {
		query       string
		contentType string
		prefix      string
	}{
		{"", "image/svg+xml", "<svg"},
		{"?format=svg&active=go", "image/svg+xml", "<svg"},
		{"?format=png&scale=2", "image/png", "\x89PNG"},
		{"?format=pdf", "application/pdf", "%PDF-"},
		{"?format=json&hovered=rust", "application/json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/render"+tt.query, "application/json", radialBody)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %+v", resp.StatusCode, decodeError(t, resp))
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			data, _ := io.ReadAll(resp.Body)
			if !bytes.HasPrefix(data, []byte(tt.prefix)) {
				t.Errorf("body starts with %.8q, want %q", data, tt.prefix)
			}
			if resp.Header.Get("X-Geometry-Hash") == "" {
				t.Error("missing X-Geometry-Hash")
			}
		})
	}
}

func TestRenderCacheHeader(t *testing.T) {
	srv := newTestServer(t, Options{})
	first := post(t, srv.URL+"/v1/render", "application/json", radialBody)
	second := post(t, srv.URL+"/v1/render", "application/json", radialBody)
	if first.Header.Get("X-Cache") != "MISS" || second.Header.Get("X-Cache") != "HIT" {
		t.Errorf("X-Cache = %q then %q, want MISS then HIT",
			first.Header.Get("X-Cache"), second.Header.Get("X-Cache"))
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t, Options{MaxBody: 512})
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed json", "/v1/geometry", "{", http.StatusBadRequest, "INVALID_DOCUMENT"},
		{"unknown kind", "/v1/geometry", `{"kind": "pie"}`, http.StatusBadRequest, "INVALID_KIND"},
		{"bad config", "/v1/geometry", `{"kind": "radial", "radial": {"config": {"inner_radius_ratio": 3}}}`, http.StatusBadRequest, "INVALID_CONFIG"},
		{"bad format", "/v1/render?format=gif", radialBody, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad width", "/v1/geometry?width=wide", radialBody, http.StatusBadRequest, "INVALID_CONFIG"},
		{"too large", "/v1/geometry", `{"kind": "radial", "title": "` + strings.Repeat("x", 1024) + `"}`, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"},
		{"unknown route", "/v2/geometry", radialBody, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, "application/json", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeError(t, resp); e.Code != tt.code || e.Message == "" {
				t.Errorf("error = %+v, want code %s", e, tt.code)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "chartgeom_up 1\n")
	})
	srv := newTestServer(t, Options{Metrics: metrics})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" || health["version"] == "" {
		t.Errorf("health = %v", health)
	}

	mresp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer mresp.Body.Close()
	data, _ := io.ReadAll(mresp.Body)
	if !strings.Contains(string(data), "chartgeom_up") {
		t.Errorf("metrics body = %q", data)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(io.ErrUnexpectedEOF); got != http.StatusInternalServerError {
		t.Errorf("uncoded error status = %d", got)
	}
}

func TestLogWriter(t *testing.T) {
	var console bytes.Buffer
	w, closer := LogWriter(&console, LogFile{})
	if w != io.Writer(&console) {
		t.Error("without a path the console writer should be returned as is")
	}
	_ = closer.Close()

	path := filepath.Join(t.TempDir(), "server.log")
	w, closer = LogWriter(&console, LogFile{Path: path, MaxSizeMB: 1})
	if _, err := io.WriteString(w, "hello\n"); err != nil {
		t.Fatal(err)
	}
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello\n" {
		t.Errorf("log file = %q, %v", data, err)
	}
	if console.String() != "hello\n" {
		t.Errorf("console = %q", console.String())
	}
}
