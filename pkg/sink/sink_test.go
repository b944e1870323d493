package sink

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/hexbin"
	"github.com/matzehuels/chartgeom/pkg/chart/radial"
	"github.com/matzehuels/chartgeom/pkg/chart/selection"
	"github.com/matzehuels/chartgeom/pkg/chart/stream"
	"github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/geom"
)

func radialGeometry(t *testing.T) chart.Geometry {
	t.Helper()
	l, err := radial.Compute([]radial.DataSegment{
		{Label: "red", Value: 1, Color: "#ff0000"},
		{Label: "blue", Value: 1, Color: "#0000ff"},
		{Label: "empty", Value: 0, Color: "#00ff00"},
	}, radial.Config{OuterRadius: 100})
	if err != nil {
		t.Fatalf("radial.Compute() error: %v", err)
	}
	return chart.FromRadial(l)
}

func streamGeometry(t *testing.T) chart.Geometry {
	t.Helper()
	r, err := stream.Stack([]stream.SeriesPoint{
		{X: "a", Values: map[string]float64{"p": 1, "q": 2}},
		{X: "b", Values: map[string]float64{"p": 3, "q": 1}},
	}, []string{"p", "q"}, stream.OffsetZero, stream.CurveSmooth)
	if err != nil {
		t.Fatalf("stream.Stack() error: %v", err)
	}
	return chart.FromStream(r)
}

func hexbinGeometry(t *testing.T) chart.Geometry {
	t.Helper()
	r, err := hexbin.Build([]hexbin.DataPoint{{X: 1, Y: 1}, {X: 9, Y: 9}}, hexbin.Config{
		HexRadius: 10, PlotWidth: 100, PlotHeight: 100,
		XDomain: [2]float64{0, 10}, YDomain: [2]float64{0, 10},
	})
	if err != nil {
		t.Fatalf("hexbin.Build() error: %v", err)
	}
	return chart.FromHexbin(r)
}

func TestRenderSVG(t *testing.T) {
	tests := []struct {
		name  string
		geom  func(*testing.T) chart.Geometry
		paths int
	}{
		{"radial skips empty segment", radialGeometry, 2},
		{"stream", streamGeometry, 2},
		{"hexbin", hexbinGeometry, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg, err := RenderSVG(tt.geom(t))
			if err != nil {
				t.Fatalf("RenderSVG() error: %v", err)
			}
			s := string(svg)
			if !strings.HasPrefix(s, "<svg") || !strings.HasSuffix(s, "</svg>\n") {
				t.Errorf("not an svg document: %.60q", s)
			}
			if n := strings.Count(s, "<path "); n != tt.paths {
				t.Errorf("got %d paths, want %d", n, tt.paths)
			}
		})
	}
}

func TestRenderSVGSelectionClasses(t *testing.T) {
	g := radialGeometry(t)
	svg, err := RenderSVG(g, WithSelection(selection.Selection{Active: "red"}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, `class="item active" data-key="red"`) {
		t.Error("active segment should carry the active class")
	}
	if !strings.Contains(s, `class="item dimmed" data-key="blue"`) {
		t.Error("other segments should be dimmed")
	}
}

func TestRenderSVGEscapes(t *testing.T) {
	l, _ := radial.Compute([]radial.DataSegment{{Label: `<b>&"`, Value: 1}}, radial.Config{OuterRadius: 10})
	g := chart.FromRadial(l)
	g.Title = "a < b"
	svg, err := RenderSVG(g)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if strings.Contains(string(svg), "<b>") || !strings.Contains(string(svg), "a &lt; b") {
		t.Errorf("labels not escaped: %s", svg)
	}
}

func TestRenderJSON(t *testing.T) {
	g := streamGeometry(t)

	plain, err := RenderJSON(g)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	if back, err := chart.UnmarshalGeometry(plain); err != nil || back.Kind != chart.KindStream {
		t.Fatalf("plain JSON does not round-trip: %v", err)
	}

	data, err := RenderJSON(g, WithSelection(selection.Selection{Hovered: "q"}))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var out struct {
		Kind  string                     `json:"kind"`
		Flags map[string]selection.Flags `json:"flags"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Kind != chart.KindStream {
		t.Errorf("kind = %q", out.Kind)
	}
	if !out.Flags["q"].Hovered || !out.Flags["p"].Dimmed {
		t.Errorf("flags = %+v", out.Flags)
	}
}

func TestRenderPNG(t *testing.T) {
	g := radialGeometry(t)
	data, err := RenderPNG(g, WithScale(2), WithBackground("#ffffff"))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 400 {
		t.Fatalf("image size = %v, want 400x400", b)
	}

	// The red half spans 0°..180°, so 3 o'clock sits inside it.
	p := geom.Polar(100, 100, 80, 90).Scale(2)
	r, gg, b, _ := img.At(int(p.X), int(p.Y)).RGBA()
	if r>>8 < 200 || gg>>8 > 60 || b>>8 > 60 {
		t.Errorf("pixel at 3 o'clock = (%d, %d, %d), want red", r>>8, gg>>8, b>>8)
	}
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF(hexbinGeometry(t), WithSelection(selection.Selection{Active: hexbin.Key(0, 0)}))
	if err != nil {
		t.Fatalf("RenderPDF() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %.10q", data)
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render("gif", radialGeometry(t)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(gif) error = %v, want INVALID_FORMAT", err)
	}
	for _, format := range Formats {
		if _, err := Render(format, chart.Geometry{Kind: "pie"}); err == nil {
			t.Errorf("Render(%s) accepted an unknown kind", format)
		}
	}
	empty := chart.Geometry{Kind: chart.KindStream, Stream: &stream.Result{}}
	if _, err := RenderPNG(empty); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("zero-size frame error = %v, want INVALID_DOCUMENT", err)
	}
}

type recorder struct{ ops []string }

func (r *recorder) MoveTo(x, y float64)              { r.ops = append(r.ops, "M") }
func (r *recorder) LineTo(x, y float64)              { r.ops = append(r.ops, "L") }
func (r *recorder) CubicTo(_, _, _, _, _, _ float64) { r.ops = append(r.ops, "C") }
func (r *recorder) ClosePath()                       { r.ops = append(r.ops, "Z") }

func TestTraceFlattensArcs(t *testing.T) {
	a := geom.Arc{Center: geom.Pt(0, 0), Radius: 10, Start: 0, End: 180}
	var p geom.Path
	p.MoveTo(a.From())
	p.ArcTo(a)
	p.LineTo(geom.Pt(0, 0))
	p.Close()

	var r recorder
	trace(&r, p)
	if got := strings.Join(r.ops, ""); got != "MCCLZ" {
		t.Errorf("trace ops = %q, want MCCLZ", got)
	}
}

func TestContentType(t *testing.T) {
	for _, f := range Formats {
		if ContentType(f) == "application/octet-stream" {
			t.Errorf("ContentType(%s) not mapped", f)
		}
	}
}
