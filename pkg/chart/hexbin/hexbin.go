// Package hexbin aggregates scattered points into a hexagonal density grid.
//
// The grid uses flat-top hexagons in offset columns: odd columns are shifted
// down by half a row so neighboring hexagons tile without gaps. The plot is
// padded by one hexagon radius on every side, and only bins whose center
// falls inside the padded rectangle exist; points snapping anywhere else are
// dropped rather than clipped into a partial hexagon.
package hexbin

import (
	"math"
	"sort"
	"strconv"

	"github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/geom"
	"github.com/matzehuels/chartgeom/pkg/palette"
	"github.com/matzehuels/chartgeom/pkg/scale"
)

// boundsEps absorbs float noise when comparing bin centers to the plot edges.
const boundsEps = 1e-9

// DataPoint is one input observation in data units.
type DataPoint struct {
	X float64 `json:"x" yaml:"x" toml:"x" bson:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y" bson:"y"`
}

// Config controls binning.
type Config struct {
	HexRadius  float64    `json:"hex_radius" yaml:"hex_radius" toml:"hex_radius"`
	PlotWidth  float64    `json:"plot_width" yaml:"plot_width" toml:"plot_width"`
	PlotHeight float64    `json:"plot_height" yaml:"plot_height" toml:"plot_height"`
	XDomain    [2]float64 `json:"x_domain" yaml:"x_domain" toml:"x_domain"`
	YDomain    [2]float64 `json:"y_domain" yaml:"y_domain" toml:"y_domain"`
	// ColorScale runs from sparse to dense. Empty selects palette.Sequential.
	ColorScale []string `json:"color_scale,omitempty" yaml:"color_scale,omitempty" toml:"color_scale,omitempty"`
}

// Bin is one occupied hexagon.
type Bin struct {
	Col     int          `json:"col" bson:"col"`
	Row     int          `json:"row" bson:"row"`
	CenterX float64      `json:"center_x" bson:"center_x"`
	CenterY float64      `json:"center_y" bson:"center_y"`
	Count   int          `json:"count" bson:"count"`
	Points  []DataPoint  `json:"points" bson:"points"`
	Color   string       `json:"color" bson:"color"`
	Polygon []geom.Point `json:"polygon" bson:"polygon"`
	D       string       `json:"d" bson:"d"`
}

// Key identifies the bin for selection, formatted "col,row".
func (b Bin) Key() string { return Key(b.Col, b.Row) }

// Key formats a grid address.
func Key(col, row int) string {
	return strconv.Itoa(col) + "," + strconv.Itoa(row)
}

// Result is the output of Build.
type Result struct {
	Bins        []Bin               `json:"bins" bson:"bins"`
	MaxCount    int                 `json:"max_count" bson:"max_count"`
	Dropped     int                 `json:"dropped" bson:"dropped"`
	Width       float64             `json:"width" bson:"width"`
	Height      float64             `json:"height" bson:"height"`
	HexRadius   float64             `json:"hex_radius" bson:"hex_radius"`
	Diagnostics []errors.Diagnostic `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
}

// Metrics holds the derived grid spacing for a hexagon radius.
type Metrics struct {
	Radius       float64
	Width        float64 // 2r
	Height       float64 // √3·r
	HorizSpacing float64
	VertSpacing  float64
}

// MetricsFor derives grid metrics for radius r.
func MetricsFor(r float64) Metrics {
	m := Metrics{Radius: r, Width: 2 * r, Height: math.Sqrt(3) * r}
	m.HorizSpacing = 0.75 * m.Width
	m.VertSpacing = m.Height
	return m
}

// Snap returns the grid address for a pixel position inside a plot padded by pad.
func (m Metrics) Snap(px, py, pad float64) (col, row int) {
	col = int(math.Round((px - pad) / m.HorizSpacing))
	shift := float64(col&1) * m.VertSpacing / 2
	row = int(math.Round((py - pad - shift) / m.VertSpacing))
	return col, row
}

// Center returns the pixel center of the bin at (col, row).
func (m Metrics) Center(col, row int, pad float64) geom.Point {
	shift := float64(col&1) * m.VertSpacing / 2
	return geom.Pt(pad+float64(col)*m.HorizSpacing, pad+float64(row)*m.VertSpacing+shift)
}

// Hexagon returns the six corners of a flat-top hexagon around c.
func (m Metrics) Hexagon(c geom.Point) []geom.Point {
	pts := make([]geom.Point, 6)
	for i := range pts {
		a := float64(i) * math.Pi / 3
		pts[i] = geom.Pt(c.X+m.Radius*math.Cos(a), c.Y+m.Radius*math.Sin(a))
	}
	return pts
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := errors.ValidatePositive("hex radius", c.HexRadius); err != nil {
		return err
	}
	if err := errors.ValidatePositive("plot width", c.PlotWidth); err != nil {
		return err
	}
	if err := errors.ValidatePositive("plot height", c.PlotHeight); err != nil {
		return err
	}
	if c.PlotWidth < 2*c.HexRadius || c.PlotHeight < 2*c.HexRadius {
		return errors.New(errors.ErrCodeInvalidConfig,
			"plot %gx%g is smaller than one hexagon of radius %g", c.PlotWidth, c.PlotHeight, c.HexRadius)
	}
	if err := errors.ValidateDomain("x domain", c.XDomain); err != nil {
		return err
	}
	return errors.ValidateDomain("y domain", c.YDomain)
}

// Build bins points. Configuration errors are INVALID_CONFIG; points with
// non-finite coordinates or that snap outside the padded plot are dropped
// and counted.
func Build(points []DataPoint, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	colors, err := palette.New(cfg.ColorScale, palette.Sequential)
	if err != nil {
		return Result{}, err
	}

	pad := cfg.HexRadius
	xs, err := scale.NewLinear(cfg.XDomain[0], cfg.XDomain[1], pad, cfg.PlotWidth-pad)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "x scale")
	}
	ys, err := scale.NewLinear(cfg.YDomain[0], cfg.YDomain[1], cfg.PlotHeight-pad, pad)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "y scale")
	}

	m := MetricsFor(cfg.HexRadius)
	res := Result{Width: cfg.PlotWidth, Height: cfg.PlotHeight, HexRadius: cfg.HexRadius}
	inside := func(c geom.Point) bool {
		return c.X >= pad-boundsEps && c.X <= cfg.PlotWidth-pad+boundsEps &&
			c.Y >= pad-boundsEps && c.Y <= cfg.PlotHeight-pad+boundsEps
	}

	type addr struct{ col, row int }
	bins := make(map[addr]*Bin)
	nonFinite := 0
	for _, p := range points {
		if !geom.Finite(p.X) || !geom.Finite(p.Y) {
			nonFinite++
			continue
		}
		col, row := m.Snap(xs.Map(p.X), ys.Map(p.Y), pad)
		c := m.Center(col, row, pad)
		if !inside(c) {
			res.Dropped++
			continue
		}
		b, ok := bins[addr{col, row}]
		if !ok {
			b = &Bin{Col: col, Row: row, CenterX: c.X, CenterY: c.Y}
			bins[addr{col, row}] = b
		}
		b.Count++
		b.Points = append(b.Points, p)
		if b.Count > res.MaxCount {
			res.MaxCount = b.Count
		}
	}

	if nonFinite > 0 {
		res.Dropped += nonFinite
		res.Diagnostics = append(res.Diagnostics,
			errors.Note(errors.DiagNonFinite, "", "%d points with non-finite coordinates dropped", nonFinite))
	}
	if out := res.Dropped - nonFinite; out > 0 {
		res.Diagnostics = append(res.Diagnostics,
			errors.Note(errors.DiagOutOfBounds, "", "%d points snapped outside the plot and were dropped", out))
	}

	res.Bins = make([]Bin, 0, len(bins))
	for _, b := range bins {
		b.Color = colors.ForRatio(b.Count, res.MaxCount)
		b.Polygon = m.Hexagon(geom.Pt(b.CenterX, b.CenterY))
		b.D = geom.Polygon(b.Polygon).SVG()
		res.Bins = append(res.Bins, *b)
	}
	sort.Slice(res.Bins, func(i, j int) bool {
		if res.Bins[i].Col != res.Bins[j].Col {
			return res.Bins[i].Col < res.Bins[j].Col
		}
		return res.Bins[i].Row < res.Bins[j].Row
	})
	return res, nil
}

// Total returns the number of points attributed to bins.
func (r Result) Total() int {
	n := 0
	for _, b := range r.Bins {
		n += b.Count
	}
	return n
}
