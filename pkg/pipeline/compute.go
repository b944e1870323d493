package pipeline

import (
	"math"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/hexbin"
	"github.com/matzehuels/chartgeom/pkg/chart/radial"
	"github.com/matzehuels/chartgeom/pkg/chart/stream"
	"github.com/matzehuels/chartgeom/pkg/dataset"
)

// Compute runs the engine named by the document's kind.
//
// When opts sets a frame, it fills the document's unset size fields: the
// stream canvas, the hexbin plot area, and the radial outer radius (half the
// shorter side). Sizes set in the document always win.
func Compute(doc dataset.Document, opts Options) (chart.Geometry, error) {
	if err := doc.Validate(); err != nil {
		return chart.Geometry{}, err
	}
	doc = WithFrame(doc, opts.Width, opts.Height)

	var g chart.Geometry
	switch doc.Kind {
	case chart.KindRadial:
		l, err := radial.Compute(doc.Radial.Data, doc.Radial.Config)
		if err != nil {
			return chart.Geometry{}, err
		}
		g = chart.FromRadial(l)
	case chart.KindHexbin:
		r, err := hexbin.Build(doc.Hexbin.Points, doc.Hexbin.Config)
		if err != nil {
			return chart.Geometry{}, err
		}
		g = chart.FromHexbin(r)
	case chart.KindStream:
		points, keys, err := doc.Stream.Series()
		if err != nil {
			return chart.Geometry{}, err
		}
		r, err := stream.StackWithConfig(points, keys, doc.Stream.Config)
		if err != nil {
			return chart.Geometry{}, err
		}
		g = chart.FromStream(r)
	}
	g.Title = doc.Title
	return g, nil
}

// WithFrame returns doc with unset size fields filled from a w x h frame.
// A zero side falls back to DefaultWidth or DefaultHeight. Sizes set in the
// document win. The caller's sections are never modified.
func WithFrame(doc dataset.Document, w, h float64) dataset.Document {
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}

	switch {
	case doc.Radial != nil:
		spec := *doc.Radial
		if spec.Config.OuterRadius == 0 {
			spec.Config.OuterRadius = math.Min(w, h) / 2
		}
		doc.Radial = &spec
	case doc.Hexbin != nil:
		spec := *doc.Hexbin
		if spec.Config.PlotWidth == 0 {
			spec.Config.PlotWidth = w
		}
		if spec.Config.PlotHeight == 0 {
			spec.Config.PlotHeight = h
		}
		doc.Hexbin = &spec
	case doc.Stream != nil:
		spec := *doc.Stream
		if spec.Config.Width == 0 {
			spec.Config.Width = w
		}
		if spec.Config.Height == 0 {
			spec.Config.Height = h
		}
		doc.Stream = &spec
	}
	return doc
}

// Items returns the number of drawable items and diagnostics in g.
func Items(g chart.Geometry) (items, diagnostics int) {
	return g.Size(), len(g.Diagnostics())
}
