// Package stream stacks named series into layered bands.
//
// Series are stacked bottom to top in the order of the keys passed in. An
// offset strategy then shifts each column's baseline, and every layer is
// emitted as one closed outline: its top edge left to right, its bottom edge
// right to left.
//
// Columns are evenly spaced across the chart by array index; the X label on
// a SeriesPoint never affects position.
package stream

import (
	"math"
	"sort"

	"github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/geom"
	"github.com/matzehuels/chartgeom/pkg/palette"
	"github.com/matzehuels/chartgeom/pkg/scale"
)

// Offset selects how layer baselines are shifted per column.
type Offset string

const (
	OffsetZero       Offset = "zero"
	OffsetSilhouette Offset = "silhouette"
	OffsetWiggle     Offset = "wiggle"
	OffsetExpand     Offset = "expand"
)

// Curve selects the interpolation between consecutive columns.
type Curve string

const (
	CurveLinear Curve = "linear"
	CurveSmooth Curve = "smooth"
	CurveStep   Curve = "step"
)

// Default chart size used by Stack.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 400.0
)

// ExpandTotal is the per-column height after the expand offset.
const ExpandTotal = 100.0

// Offsets lists the supported offsets.
func Offsets() []Offset {
	return []Offset{OffsetZero, OffsetSilhouette, OffsetWiggle, OffsetExpand}
}

// Curves lists the supported curves.
func Curves() []Curve {
	return []Curve{CurveLinear, CurveSmooth, CurveStep}
}

// Config controls stacking and path generation.
type Config struct {
	Offset  Offset   `json:"offset,omitempty" yaml:"offset,omitempty" toml:"offset,omitempty"`
	Curve   Curve    `json:"curve,omitempty" yaml:"curve,omitempty" toml:"curve,omitempty"`
	Width   float64  `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height  float64  `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
	Palette []string `json:"palette,omitempty" yaml:"palette,omitempty" toml:"palette,omitempty"`
}

// LayerPoint is one layer's band at one column, in data units.
type LayerPoint struct {
	Index int     `json:"index" bson:"index"`
	Y0    float64 `json:"y0" bson:"y0"`
	Y1    float64 `json:"y1" bson:"y1"`
	Value float64 `json:"value" bson:"value"`
}

// Layer is the stacked band for one series key.
type Layer struct {
	Key    string       `json:"key" bson:"key"`
	Color  string       `json:"color" bson:"color"`
	Points []LayerPoint `json:"points" bson:"points"`
	Path   geom.Path    `json:"path,omitempty" bson:"path,omitempty"`
	D      string       `json:"d" bson:"d"`
}

// Result is the output of Stack.
type Result struct {
	Layers      []Layer             `json:"layers" bson:"layers"`
	PathsByKey  map[string]string   `json:"paths_by_key" bson:"paths_by_key"`
	Labels      []string            `json:"labels" bson:"labels"`
	MinY        float64             `json:"min_y" bson:"min_y"`
	MaxY        float64             `json:"max_y" bson:"max_y"`
	Width       float64             `json:"width" bson:"width"`
	Height      float64             `json:"height" bson:"height"`
	Offset      Offset              `json:"offset" bson:"offset"`
	Curve       Curve               `json:"curve" bson:"curve"`
	Diagnostics []errors.Diagnostic `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
}

// WithDefaults fills empty fields.
func (c Config) WithDefaults() Config {
	if c.Offset == "" {
		c.Offset = OffsetZero
	}
	if c.Curve == "" {
		c.Curve = CurveLinear
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Offset {
	case OffsetZero, OffsetSilhouette, OffsetWiggle, OffsetExpand:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown offset %q", c.Offset)
	}
	switch c.Curve {
	case CurveLinear, CurveSmooth, CurveStep:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown curve %q", c.Curve)
	}
	if err := errors.ValidatePositive("width", c.Width); err != nil {
		return err
	}
	return errors.ValidatePositive("height", c.Height)
}

// Stack stacks data at the default chart size.
func Stack(data []SeriesPoint, keys []string, offset Offset, curve Curve) (Result, error) {
	return StackWithConfig(data, keys, Config{Offset: offset, Curve: curve})
}

// StackWithConfig stacks data for keys, bottom to top.
//
// Missing values count as 0. Negative and non-finite values are clamped to 0
// and reported as diagnostics.
func StackWithConfig(data []SeriesPoint, keys []string, cfg Config) (Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := validateKeys(keys); err != nil {
		return Result{}, err
	}
	colors, err := palette.New(cfg.Palette, palette.Categorical)
	if err != nil {
		return Result{}, err
	}

	n := len(data)
	res := Result{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Offset:     cfg.Offset,
		Curve:      cfg.Curve,
		PathsByKey: make(map[string]string, len(keys)),
		Labels:     make([]string, n),
		Layers:     make([]Layer, len(keys)),
	}
	for i, p := range data {
		res.Labels[i] = p.X
	}
	res.Diagnostics = unknownSeries(data, keys)

	values := make([][]float64, len(keys))
	for k, key := range keys {
		values[k] = make([]float64, n)
		for i, p := range data {
			v := p.Values[key]
			switch {
			case !geom.Finite(v):
				res.Diagnostics = append(res.Diagnostics,
					errors.Note(errors.DiagNonFinite, key, "value %v at index %d treated as 0", v, i))
				v = 0
			case v < 0:
				res.Diagnostics = append(res.Diagnostics,
					errors.Note(errors.DiagNegativeValue, key, "value %g at index %d clamped to 0", v, i))
				v = 0
			}
			values[k][i] = v
		}
	}

	for k, key := range keys {
		res.Layers[k] = Layer{Key: key, Color: colors.Cycle(k), Points: make([]LayerPoint, n)}
	}
	if n == 0 || len(keys) == 0 {
		res.Diagnostics = append(res.Diagnostics, errors.Note(errors.DiagEmptyDataset, "", "nothing to stack"))
		for _, key := range keys {
			res.PathsByKey[key] = ""
		}
		res.MaxY = 1
		return res, nil
	}

	stacked := values
	if overflows(values) {
		stacked = rescale(values, 1/float64(len(keys)))
		res.Diagnostics = append(res.Diagnostics, errors.Note(errors.DiagTotalOverflow, "",
			"column totals exceed the float64 range; bands are scaled by 1/%d", len(keys)))
	}
	stackRaw(res.Layers, values, stacked)
	switch cfg.Offset {
	case OffsetSilhouette:
		offsetSilhouette(res.Layers)
	case OffsetWiggle:
		offsetWiggle(res.Layers, stacked)
	case OffsetExpand:
		for _, i := range offsetExpand(res.Layers, stacked) {
			res.Diagnostics = append(res.Diagnostics,
				errors.Note(errors.DiagZeroTotalIndex, "", "index %d sums to 0 and has no height", i))
		}
	}

	res.MinY, res.MaxY = extent(res.Layers)
	if cfg.Offset == OffsetExpand {
		res.MinY, res.MaxY = 0, ExpandTotal
	}
	if res.MaxY <= res.MinY {
		res.MaxY = res.MinY + 1
	}
	ys, err := scale.NewLinear(res.MinY, res.MaxY, cfg.Height, 0)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "y scale")
	}

	for k := range res.Layers {
		l := &res.Layers[k]
		l.Path = outline(l.Points, cfg.Curve, func(i int) float64 { return xAt(i, n, cfg.Width) }, ys.Map)
		l.D = l.Path.SVG()
		res.PathsByKey[l.Key] = l.D
	}
	return res, nil
}

func validateKeys(keys []string) error {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if err := errors.ValidateKey(k); err != nil {
			return err
		}
		if seen[k] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate series key %q", k)
		}
		seen[k] = true
	}
	return nil
}

func unknownSeries(data []SeriesPoint, keys []string) []errors.Diagnostic {
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	var extra []string
	for _, k := range Keys(data) {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	var out []errors.Diagnostic
	for _, k := range extra {
		out = append(out, errors.Note(errors.DiagUnknownSeries, k, "series not in key list, ignored"))
	}
	return out
}

// overflows reports whether any column total leaves the float64 range.
func overflows(values [][]float64) bool {
	for i := range values[0] {
		total := 0.0
		for k := range values {
			total += values[k][i]
		}
		if math.IsInf(total, 1) {
			return true
		}
	}
	return false
}

func rescale(values [][]float64, f float64) [][]float64 {
	out := make([][]float64, len(values))
	for k, row := range values {
		out[k] = make([]float64, len(row))
		for i, v := range row {
			out[k][i] = v * f
		}
	}
	return out
}

// stackRaw fills Y0/Y1 with the cumulative stack of stacked and Value with
// the matching input value.
func stackRaw(layers []Layer, values, stacked [][]float64) {
	n := len(values[0])
	for i := 0; i < n; i++ {
		base := 0.0
		for k := range layers {
			v := stacked[k][i]
			layers[k].Points[i] = LayerPoint{Index: i, Y0: base, Y1: base + v, Value: values[k][i]}
			base += v
		}
	}
}

func shift(layers []Layer, i int, d float64) {
	for k := range layers {
		layers[k].Points[i].Y0 += d
		layers[k].Points[i].Y1 += d
	}
}

// offsetSilhouette centers every column on the tallest column's middle.
func offsetSilhouette(layers []Layer) {
	top := layers[len(layers)-1].Points
	maxTop := 0.0
	for _, p := range top {
		maxTop = math.Max(maxTop, p.Y1)
	}
	for i := range top {
		shift(layers, i, (maxTop-top[i].Y1)/2)
	}
}

// offsetWiggle shifts each column by half its shortfall from the largest
// column total.
func offsetWiggle(layers []Layer, values [][]float64) {
	n := len(values[0])
	totals := make([]float64, n)
	maxTotal := 0.0
	for i := range totals {
		for k := range values {
			totals[i] += values[k][i]
		}
		maxTotal = math.Max(maxTotal, totals[i])
	}
	for i, t := range totals {
		shift(layers, i, (maxTotal-t)/2)
	}
}

// offsetExpand rescales each column to ExpandTotal independently. It returns
// the indices whose total is zero; those keep zero-height bands at 0.
func offsetExpand(layers []Layer, values [][]float64) []int {
	var zero []int
	n := len(values[0])
	for i := 0; i < n; i++ {
		total := 0.0
		for k := range values {
			total += values[k][i]
		}
		if total == 0 {
			zero = append(zero, i)
			continue
		}
		f := ExpandTotal / total
		for k := range layers {
			layers[k].Points[i].Y0 *= f
			layers[k].Points[i].Y1 *= f
		}
	}
	return zero
}

func extent(layers []Layer) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, l := range layers {
		for _, p := range l.Points {
			lo = math.Min(lo, p.Y0)
			hi = math.Max(hi, p.Y1)
		}
	}
	return lo, hi
}

// xAt spreads n columns across width; a single column sits in the middle.
func xAt(i, n int, width float64) float64 {
	if n == 1 {
		return width / 2
	}
	return float64(i) * width / float64(n-1)
}

// outline traces the top edge left to right, then the bottom edge back.
func outline(pts []LayerPoint, curve Curve, x func(int) float64, y func(float64) float64) geom.Path {
	n := len(pts)
	top := make([]geom.Point, n)
	bottom := make([]geom.Point, n)
	for i, p := range pts {
		top[i] = geom.Pt(x(i), y(p.Y1))
		bottom[i] = geom.Pt(x(i), y(p.Y0))
	}

	var path geom.Path
	path.MoveTo(top[0])
	for i := 1; i < n; i++ {
		join(&path, top[i-1], top[i], curve)
	}
	path.LineTo(bottom[n-1])
	for i := n - 1; i > 0; i-- {
		join(&path, bottom[i], bottom[i-1], curve)
	}
	path.Close()
	return path
}

// join connects from to "to", assuming the current point is from.
func join(path *geom.Path, from, to geom.Point, curve Curve) {
	xm := (from.X + to.X) / 2
	switch curve {
	case CurveStep:
		path.LineTo(geom.Pt(xm, from.Y))
		path.LineTo(geom.Pt(xm, to.Y))
		path.LineTo(to)
	case CurveSmooth:
		path.CubicTo(geom.Pt(xm, from.Y), geom.Pt(xm, to.Y), to)
	default:
		path.LineTo(to)
	}
}
