// Package geom provides the small numeric vocabulary shared by the chart
// engines: points, angle conversion, polar placement and path commands.
//
// # Angles
//
// Angles are expressed in degrees using compass orientation: 0° points to
// 12 o'clock and angles grow clockwise on screen (y axis pointing down). This
// matches how radial charts are read and makes the SVG sweep flag line up
// with the sign of an arc's angular span.
//
// # Paths
//
// A [Path] is an ordered list of drawing commands. Engines build paths once;
// sinks replay them (SVG serializes with [Path.SVG], raster and PDF sinks walk
// the commands and flatten arcs with [Arc.Cubics]).
package geom

import (
	"math"
	"strconv"
	"strings"
)

// Point is a 2D coordinate in pixel space.
type Point struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Near reports whether p and q are within eps of each other on both axes.
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Polar returns the point at compass angle deg and radius r around (cx, cy).
func Polar(cx, cy, r, deg float64) Point {
	a := Radians(deg)
	return Point{X: cx + r*math.Sin(a), Y: cy - r*math.Cos(a)}
}

// ChordAngle returns the angle in degrees that an arc of the given length
// subtends at radius r. It returns 0 for non-positive radii.
func ChordAngle(length, r float64) float64 {
	if r <= 0 {
		return 0
	}
	return Degrees(length / r)
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Shares returns each non-negative value as a fraction of their sum. When
// the sum overflows float64 the values are rescaled by their maximum first,
// so the fractions still sum to 1; overflow reports that case. A zero sum
// yields all-zero shares.
func Shares(values []float64) (shares []float64, overflow bool) {
	shares = make([]float64, len(values))
	var total, max float64
	for _, v := range values {
		total += v
		max = math.Max(max, v)
	}
	if total == 0 {
		return shares, false
	}
	if math.IsInf(total, 1) {
		overflow = true
		total = 0
		for _, v := range values {
			total += v / max
		}
		for i, v := range values {
			shares[i] = (v / max) / total
		}
		return shares, overflow
	}
	for i, v := range values {
		shares[i] = v / total
	}
	return shares, false
}

// Sum adds values, saturating at math.MaxFloat64 instead of overflowing.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	if math.IsInf(total, 1) {
		return math.MaxFloat64
	}
	return total
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

// Num formats a coordinate for path data: two decimals, trailing zeros
// trimmed, negative zero normalized.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
