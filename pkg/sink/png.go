package sink

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/errors"
)

// RenderPNG rasterizes g. The image is Width x Height pixels times the
// [WithScale] factor.
func RenderPNG(g chart.Geometry, opts ...Option) ([]byte, error) {
	w, h, err := canvasSize(g)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts...)

	dc := gg.NewContext(int(math.Ceil(w*o.scale)), int(math.Ceil(h*o.scale)))
	if o.background != "" {
		dc.SetHexColor(o.background)
		dc.Clear()
	}
	dc.Scale(o.scale, o.scale)

	for _, s := range shapes(g, o.selection) {
		trace(dc, s.path)
		dc.SetHexColor(s.fill())
		if sw := s.strokeWidth(); sw > 0 {
			dc.FillPreserve()
			dc.SetHexColor(outlineColor)
			dc.SetLineWidth(sw * o.scale)
			dc.Stroke()
			continue
		}
		dc.Fill()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
