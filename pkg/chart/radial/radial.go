// Package radial lays out donut, pie and half-donut charts.
//
// [Compute] turns labeled values into angular wedges. Wedges keep the order
// of the input, zero values keep a zero-width slot so label and color
// indices stay stable, and a fixed pixel gap between neighbors is converted
// to an angle separately at the outer and inner radius so the gap looks the
// same width along its whole length.
//
// Angles on [Segment] are compass degrees relative to the start of the
// chart (0 to Config.SweepDegrees). The rotation in [Config] only affects
// where the generated paths and anchors land on screen.
package radial

import (
	"math"

	"github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/geom"
	"github.com/matzehuels/chartgeom/pkg/palette"
)

// Supported sweeps.
const (
	FullCircle = 360.0
	HalfCircle = 180.0
)

// DataSegment is one labeled input value.
type DataSegment struct {
	Label string  `json:"label" yaml:"label" toml:"label"`
	Value float64 `json:"value" yaml:"value" toml:"value"`
	Color string  `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
}

// Config controls the radial layout.
type Config struct {
	// SweepDegrees is 360 for a full circle or 180 for a half circle.
	// Zero means 360.
	SweepDegrees float64 `json:"sweep_degrees,omitempty" yaml:"sweep_degrees,omitempty" toml:"sweep_degrees,omitempty"`
	// InnerRadiusRatio is the hole size as a fraction of OuterRadius; 0 draws a pie.
	InnerRadiusRatio float64 `json:"inner_radius_ratio" yaml:"inner_radius_ratio" toml:"inner_radius_ratio"`
	GapPixels        float64 `json:"gap_pixels" yaml:"gap_pixels" toml:"gap_pixels"`
	OuterRadius      float64 `json:"outer_radius" yaml:"outer_radius" toml:"outer_radius"`
	// Rotation is the compass angle where the chart starts. Nil selects
	// 0 (12 o'clock) for full circles and -90 (9 o'clock) for half circles.
	Rotation *float64 `json:"rotation,omitempty" yaml:"rotation,omitempty" toml:"rotation,omitempty"`
	// Palette colors segments without an explicit color, cycling.
	Palette []string `json:"palette,omitempty" yaml:"palette,omitempty" toml:"palette,omitempty"`
}

// Segment is the computed wedge for one DataSegment.
type Segment struct {
	Label      string     `json:"label" bson:"label"`
	Value      float64    `json:"value" bson:"value"`
	Percentage float64    `json:"percentage" bson:"percentage"`
	StartAngle float64    `json:"start_angle" bson:"start_angle"`
	EndAngle   float64    `json:"end_angle" bson:"end_angle"`
	SweptAngle float64    `json:"swept_angle" bson:"swept_angle"`
	Color      string     `json:"color" bson:"color"`
	Anchor     geom.Point `json:"anchor" bson:"anchor"`
	Path       geom.Path  `json:"path,omitempty" bson:"path,omitempty"`
	D          string     `json:"d,omitempty" bson:"d,omitempty"`
}

// Layout is the result of Compute.
type Layout struct {
	Segments    []Segment           `json:"segments" bson:"segments"`
	Total       float64             `json:"total" bson:"total"`
	Sweep       float64             `json:"sweep" bson:"sweep"`
	Rotation    float64             `json:"rotation" bson:"rotation"`
	Center      geom.Point          `json:"center" bson:"center"`
	OuterRadius float64             `json:"outer_radius" bson:"outer_radius"`
	InnerRadius float64             `json:"inner_radius" bson:"inner_radius"`
	Width       float64             `json:"width" bson:"width"`
	Height      float64             `json:"height" bson:"height"`
	Diagnostics []errors.Diagnostic `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
}

// WithDefaults returns cfg with the zero sweep and nil rotation resolved.
func (c Config) WithDefaults() Config {
	if c.SweepDegrees == 0 {
		c.SweepDegrees = FullCircle
	}
	if c.Rotation == nil {
		rot := 0.0
		if c.SweepDegrees == HalfCircle {
			rot = -90
		}
		c.Rotation = &rot
	}
	return c
}

// Validate checks the configuration. Callers normally go through Compute.
func (c Config) Validate() error {
	if c.SweepDegrees != FullCircle && c.SweepDegrees != HalfCircle {
		return errors.New(errors.ErrCodeInvalidConfig, "sweep must be 360 or 180 degrees, got %g", c.SweepDegrees)
	}
	if err := errors.ValidatePositive("outer radius", c.OuterRadius); err != nil {
		return err
	}
	if err := errors.ValidateRange("inner radius ratio", c.InnerRadiusRatio, 0, 1, false); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("gap", c.GapPixels); err != nil {
		return err
	}
	if c.Rotation != nil {
		if err := errors.ValidateFinite("rotation", *c.Rotation); err != nil {
			return err
		}
	}
	return nil
}

// Compute lays out data as wedges. It returns an INVALID_CONFIG error for
// bad configuration and for empty or duplicate labels; data problems (negative or non-finite values, wedges
// narrower than the gap) are repaired and reported as diagnostics.
func Compute(data []DataSegment, cfg Config) (Layout, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Layout{}, err
	}
	if err := validateLabels(data); err != nil {
		return Layout{}, err
	}
	colors, err := palette.New(cfg.Palette, palette.Categorical)
	if err != nil {
		return Layout{}, err
	}

	outer := cfg.OuterRadius
	inner := outer * cfg.InnerRadiusRatio
	rot := *cfg.Rotation
	out := Layout{
		Sweep:       cfg.SweepDegrees,
		Rotation:    rot,
		Center:      geom.Pt(outer, outer),
		OuterRadius: outer,
		InnerRadius: inner,
		Width:       2 * outer,
		Height:      2 * outer,
	}
	if cfg.SweepDegrees == HalfCircle && rot == -90 {
		out.Height = outer
	}

	values := make([]float64, len(data))
	for i, d := range data {
		v := d.Value
		switch {
		case !geom.Finite(v):
			out.Diagnostics = append(out.Diagnostics,
				errors.Note(errors.DiagNonFinite, d.Label, "value %v treated as 0", v))
			v = 0
		case v < 0:
			out.Diagnostics = append(out.Diagnostics,
				errors.Note(errors.DiagNegativeValue, d.Label, "value %g clamped to 0", v))
			v = 0
		}
		values[i] = v
	}
	shares, overflow := geom.Shares(values)
	out.Total = geom.Sum(values)
	if overflow {
		out.Diagnostics = append(out.Diagnostics, errors.Note(errors.DiagTotalOverflow, "",
			"total exceeds the float64 range; shares were computed from rescaled values"))
	}
	if out.Total == 0 {
		out.Segments = []Segment{}
		return out, nil
	}

	colorFor := func(i int, d DataSegment) (string, error) {
		if d.Color == "" {
			return colors.Cycle(i), nil
		}
		c, err := palette.New([]string{d.Color}, nil)
		if err != nil {
			return "", err
		}
		return c[0], nil
	}

	w := wedger{center: out.Center, outer: outer, inner: inner, rot: rot, gap: cfg.GapPixels}
	out.Segments = make([]Segment, len(data))
	cursor := 0.0
	for i, d := range data {
		pct := shares[i]
		swept := pct * cfg.SweepDegrees
		color, err := colorFor(i, d)
		if err != nil {
			return Layout{}, err
		}
		seg := Segment{
			Label:      d.Label,
			Value:      values[i],
			Percentage: pct,
			StartAngle: cursor,
			EndAngle:   cursor + swept,
			SweptAngle: swept,
			Color:      color,
			Anchor:     geom.Polar(out.Center.X, out.Center.Y, (inner+outer)/2, rot+cursor+swept/2),
		}
		cursor += swept

		switch {
		case swept == 0:
		case cfg.SweepDegrees == FullCircle && swept >= FullCircle-1e-9:
			seg.Path = w.ring()
		default:
			p, ok := w.wedge(seg.StartAngle, seg.EndAngle)
			if !ok {
				out.Diagnostics = append(out.Diagnostics, errors.Note(errors.DiagTooNarrow, d.Label,
					"%.3g° wedge is narrower than the %gpx gap and is not drawn", swept, cfg.GapPixels))
			}
			seg.Path = p
		}
		if !seg.Path.Empty() {
			seg.D = seg.Path.SVG()
		}
		out.Segments[i] = seg
	}
	return out, nil
}

// validateLabels rejects empty and duplicate labels; labels key selection.
func validateLabels(data []DataSegment) error {
	seen := make(map[string]bool, len(data))
	for _, d := range data {
		if err := errors.ValidateKey(d.Label); err != nil {
			return err
		}
		if seen[d.Label] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate segment label %q", d.Label)
		}
		seen[d.Label] = true
	}
	return nil
}

// GapAngle converts half of a pixel gap to degrees at radius r.
func GapAngle(gapPixels, r float64) float64 {
	return geom.ChordAngle(gapPixels/2, r)
}

type wedger struct {
	center       geom.Point
	outer, inner float64
	rot          float64
	gap          float64
}

// wedge builds the closed outline between relative angles start and end.
// It reports false when the gap consumes the whole outer arc.
func (w wedger) wedge(start, end float64) (geom.Path, bool) {
	start += w.rot
	end += w.rot

	var outerGap, innerGap float64
	if w.gap > 0 {
		outerGap = GapAngle(w.gap, w.outer)
		innerGap = GapAngle(w.gap, w.inner)
	}
	os, oe := start+outerGap, end-outerGap
	if oe <= os {
		return nil, false
	}

	var p geom.Path
	oa := geom.Arc{Center: w.center, Radius: w.outer, Start: os, End: oe}
	p.MoveTo(oa.From())
	p.ArcTo(oa)

	if w.inner <= 0 {
		p.LineTo(w.center)
		p.Close()
		return p, true
	}

	is, ie := start+innerGap, end-innerGap
	if ie <= is {
		// The gap edges cross before reaching the hole; meet at one point.
		p.LineTo(geom.Polar(w.center.X, w.center.Y, w.inner, (start+end)/2))
		p.Close()
		return p, true
	}
	ia := geom.Arc{Center: w.center, Radius: w.inner, Start: ie, End: is}
	p.LineTo(ia.From())
	p.ArcTo(ia)
	p.Close()
	return p, true
}

// ring draws a full annulus (or disc) with no seam, for a single segment
// covering the whole circle. The inner contour winds against the outer one so
// the hole stays empty under the nonzero fill rule.
func (w wedger) ring() geom.Path {
	var p geom.Path
	oa := geom.Arc{Center: w.center, Radius: w.outer, Start: w.rot, End: w.rot + FullCircle}
	p.MoveTo(oa.From())
	p.ArcTo(oa)
	p.Close()
	if w.inner > 0 {
		ia := geom.Arc{Center: w.center, Radius: w.inner, Start: w.rot + FullCircle, End: w.rot}
		p.MoveTo(ia.From())
		p.ArcTo(ia)
		p.Close()
	}
	return p
}

// SegmentAt returns the index of the segment containing the relative angle
// deg, or -1. Useful for hit testing in interactive front ends.
func (l Layout) SegmentAt(deg float64) int {
	if l.Sweep == FullCircle {
		deg = math.Mod(deg, FullCircle)
		if deg < 0 {
			deg += FullCircle
		}
	}
	for i, s := range l.Segments {
		if s.SweptAngle > 0 && deg >= s.StartAngle && deg < s.EndAngle {
			return i
		}
	}
	return -1
}
