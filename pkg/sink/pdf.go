package sink

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/palette"
)

// RenderPDF renders g as a single-page PDF sized to the geometry frame, one
// point per pixel.
func RenderPDF(g chart.Geometry, opts ...Option) ([]byte, error) {
	w, h, err := canvasSize(g)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts...)

	size := gofpdf.SizeType{Wd: w, Ht: h}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if g.Title != "" {
		pdf.SetTitle(g.Title, true)
	}
	pdf.SetCreator("chartgeom", false)
	pdf.AddPageFormat("", size)

	if o.background != "" {
		if err := setFillColor(pdf, o.background); err != nil {
			return nil, err
		}
		pdf.Rect(0, 0, w, h, "F")
	}

	for _, s := range shapes(g, o.selection) {
		if err := setFillColor(pdf, s.fill()); err != nil {
			return nil, err
		}
		trace(pdfTracer{pdf}, s.path)
		if sw := s.strokeWidth(); sw > 0 {
			_ = setDrawColor(pdf, outlineColor)
			pdf.SetLineWidth(sw)
			pdf.DrawPath("FD")
			continue
		}
		pdf.DrawPath("F")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write pdf")
	}
	return buf.Bytes(), nil
}

// pdfTracer adapts gofpdf's path API to tracer.
type pdfTracer struct{ pdf *gofpdf.Fpdf }

func (t pdfTracer) MoveTo(x, y float64) { t.pdf.MoveTo(x, y) }
func (t pdfTracer) LineTo(x, y float64) { t.pdf.LineTo(x, y) }
func (t pdfTracer) ClosePath()          { t.pdf.ClosePath() }
func (t pdfTracer) CubicTo(x1, y1, x2, y2, x3, y3 float64) {
	t.pdf.CurveBezierCubicTo(x1, y1, x2, y2, x3, y3)
}

func setFillColor(pdf *gofpdf.Fpdf, c string) error {
	r, g, b, err := palette.RGB255(c)
	if err != nil {
		return err
	}
	pdf.SetFillColor(int(r), int(g), int(b))
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c string) error {
	r, g, b, err := palette.RGB255(c)
	if err != nil {
		return err
	}
	pdf.SetDrawColor(int(r), int(g), int(b))
	return nil
}
