package sink

import (
	"fmt"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/selection"
	"github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/geom"
	"github.com/matzehuels/chartgeom/pkg/palette"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatJSON, FormatPNG, FormatPDF}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// outlineColor strokes active and hovered items.
const outlineColor = "#1f2328"

// Option configures a renderer.
type Option func(*options)

type options struct {
	selection  selection.Selection
	background string
	scale      float64
}

// WithSelection draws items with the flags derived from sel.
func WithSelection(sel selection.Selection) Option {
	return func(o *options) { o.selection = sel }
}

// WithBackground fills the canvas with a hex color before drawing.
func WithBackground(color string) Option {
	return func(o *options) { o.background = color }
}

// WithScale sets the PNG pixel density. Values <= 0 are ignored.
func WithScale(scale float64) Option {
	return func(o *options) {
		if scale > 0 {
			o.scale = scale
		}
	}
}

func newOptions(opts ...Option) options {
	o := options{scale: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Render dispatches to the renderer for format.
func Render(format string, g chart.Geometry, opts ...Option) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(g, opts...)
	case FormatJSON:
		return RenderJSON(g, opts...)
	case FormatPNG:
		return RenderPNG(g, opts...)
	case FormatPDF:
		return RenderPDF(g, opts...)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat,
		"invalid format: %q (must be one of: svg, json, png, pdf)", format)
}

// =============================================================================
// Shapes
// =============================================================================

// shape is one drawable item, independent of chart kind.
type shape struct {
	key   string
	title string
	color string
	path  geom.Path
	flags selection.Flags
}

// fill returns the color to paint the shape with.
func (s shape) fill() string {
	if s.flags.Dimmed {
		return palette.Dim(s.color)
	}
	return s.color
}

// strokeWidth returns the outline width, or 0 for no outline.
func (s shape) strokeWidth() float64 {
	switch {
	case s.flags.Active:
		return 2
	case s.flags.Hovered:
		return 1
	}
	return 0
}

// shapes flattens the populated geometry into drawing order. Items without a
// path (zero-value segments, segments narrower than the gap) are skipped.
func shapes(g chart.Geometry, sel selection.Selection) []shape {
	var out []shape
	add := func(key, title, color string, path geom.Path) {
		if path.Empty() {
			return
		}
		out = append(out, shape{key: key, title: title, color: color, path: path, flags: sel.FlagsFor(key)})
	}
	switch {
	case g.Radial != nil:
		for _, s := range g.Radial.Segments {
			add(s.Label, fmt.Sprintf("%s: %g (%.1f%%)", s.Label, s.Value, s.Percentage), s.Color, s.Path)
		}
	case g.Hexbin != nil:
		for _, b := range g.Hexbin.Bins {
			add(b.Key(), fmt.Sprintf("%s: %d", b.Key(), b.Count), b.Color, geom.Polygon(b.Polygon))
		}
	case g.Stream != nil:
		for _, l := range g.Stream.Layers {
			add(l.Key, l.Key, l.Color, l.Path)
		}
	}
	return out
}

// tracer receives path commands with arcs already flattened.
type tracer interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CubicTo(x1, y1, x2, y2, x3, y3 float64)
	ClosePath()
}

// trace replays p onto t.
func trace(t tracer, p geom.Path) {
	var cur geom.Point
	for _, c := range p {
		switch c.Op {
		case geom.OpMove:
			cur = c.Points[0]
			t.MoveTo(cur.X, cur.Y)
		case geom.OpLine:
			cur = c.Points[0]
			t.LineTo(cur.X, cur.Y)
		case geom.OpCubic:
			c1, c2, to := c.Points[0], c.Points[1], c.Points[2]
			t.CubicTo(c1.X, c1.Y, c2.X, c2.Y, to.X, to.Y)
			cur = to
		case geom.OpArc:
			a := *c.Arc
			if from := a.From(); !from.Near(cur, 1e-6) {
				t.LineTo(from.X, from.Y)
			}
			for _, seg := range a.Cubics() {
				t.CubicTo(seg.C1.X, seg.C1.Y, seg.C2.X, seg.C2.Y, seg.To.X, seg.To.Y)
			}
			cur = a.To()
		case geom.OpClose:
			t.ClosePath()
		}
	}
}

// canvasSize validates the geometry and returns its frame.
func canvasSize(g chart.Geometry) (w, h float64, err error) {
	if err := g.Validate(); err != nil {
		return 0, 0, err
	}
	if !(g.Width > 0) || !(g.Height > 0) {
		return 0, 0, errors.New(errors.ErrCodeInvalidDocument,
			"geometry has no drawable frame (%gx%g)", g.Width, g.Height)
	}
	return g.Width, g.Height, nil
}
