package sink

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/geom"
)

const shapeCSS = `
    .item { transition: opacity 0.2s ease; }
    .item.hovered { stroke: ` + outlineColor + `; stroke-width: 1; }
    .item.active { stroke: ` + outlineColor + `; stroke-width: 2; }
    .item.dimmed { opacity: 0.45; }`

// RenderSVG renders g as an SVG document. Selection flags become the CSS
// classes "active", "hovered" and "dimmed" on each item.
func RenderSVG(g chart.Geometry, opts ...Option) ([]byte, error) {
	w, h, err := canvasSize(g)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f">`+"\n",
		geom.Num(w), geom.Num(h), w, h)
	if g.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(g.Title))
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", shapeCSS)
	if o.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(o.background))
	}

	fmt.Fprintf(&buf, `  <g class="chart %s">`+"\n", g.Kind)
	for _, s := range shapes(g, o.selection) {
		renderShape(&buf, s)
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func renderShape(buf *bytes.Buffer, s shape) {
	fmt.Fprintf(buf, `    <path class="%s" data-key="%s" d="%s" fill="%s">`,
		shapeClass(s), html.EscapeString(s.key), s.path.SVG(), html.EscapeString(s.color))
	fmt.Fprintf(buf, "<title>%s</title></path>\n", html.EscapeString(s.title))
}

func shapeClass(s shape) string {
	classes := []string{"item"}
	if s.flags.Active {
		classes = append(classes, "active")
	}
	if s.flags.Hovered {
		classes = append(classes, "hovered")
	}
	if s.flags.Dimmed {
		classes = append(classes, "dimmed")
	}
	return strings.Join(classes, " ")
}
