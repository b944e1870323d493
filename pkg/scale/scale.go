// Package scale maps data values onto pixel ranges.
//
// [Linear] wraps go-moremath's normalized linear scale with an output range,
// which lets callers express inverted axes (data "up" maps to pixel "up") by
// passing a range whose start is greater than its end.
package scale

import (
	"fmt"

	moremath "github.com/aclements/go-moremath/scale"

	"github.com/matzehuels/chartgeom/pkg/geom"
)

// Linear maps a continuous domain onto a pixel range.
type Linear struct {
	norm   moremath.Linear
	r0, r1 float64
}

// NewLinear returns a scale mapping [d0, d1] onto [r0, r1]. The domain may be
// given in either order; it must be finite and non-degenerate.
func NewLinear(d0, d1, r0, r1 float64) (Linear, error) {
	for _, v := range []float64{d0, d1, r0, r1} {
		if !geom.Finite(v) {
			return Linear{}, fmt.Errorf("scale bounds must be finite")
		}
	}
	if d0 == d1 {
		return Linear{}, fmt.Errorf("degenerate domain [%g, %g]", d0, d1)
	}
	if d0 > d1 {
		d0, d1 = d1, d0
		r0, r1 = r1, r0
	}
	return Linear{
		norm: moremath.Linear{Min: d0, Max: d1, Base: 10},
		r0:   r0,
		r1:   r1,
	}, nil
}

// Map projects v from the domain onto the range. Values outside the domain
// extrapolate linearly.
func (s Linear) Map(v float64) float64 {
	return s.r0 + s.norm.Map(v)*(s.r1-s.r0)
}

// Invert projects a range value back into the domain.
func (s Linear) Invert(px float64) float64 {
	if s.r1 == s.r0 {
		return s.norm.Min
	}
	t := (px - s.r0) / (s.r1 - s.r0)
	return s.norm.Min + t*(s.norm.Max-s.norm.Min)
}

// Domain returns the domain bounds in ascending order.
func (s Linear) Domain() (lo, hi float64) { return s.norm.Min, s.norm.Max }

// Range returns the range bounds matching Domain's order.
func (s Linear) Range() (r0, r1 float64) { return s.r0, s.r1 }

// Ticks returns at most max "nice" major tick values inside the domain.
func (s Linear) Ticks(max int) []float64 {
	if max < 1 {
		return nil
	}
	major, _ := s.norm.Ticks(moremath.TickOptions{Max: max})
	return major
}
