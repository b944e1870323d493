// Package palette provides discrete color scales for chart geometry.
//
// Colors are plain "#rrggbb" strings on every public type so geometry stays
// serializable; parsing, validation and blending go through go-colorful.
package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/chartgeom/pkg/errors"
)

// Sequential is the default light-to-dark ramp used for density bins.
var Sequential = []string{
	"#eff3ff", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#084594",
}

// Categorical is the default cycle used for segments and stream layers.
var Categorical = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Scale is a validated, ordered list of colors.
type Scale []string

// New validates colors and returns them normalized to lowercase "#rrggbb".
// An empty input yields a copy of fallback.
func New(colors []string, fallback []string) (Scale, error) {
	if len(colors) == 0 {
		return append(Scale(nil), fallback...), nil
	}
	out := make(Scale, len(colors))
	for i, c := range colors {
		parsed, err := colorful.Hex(c)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "color %d (%q) is not a hex color", i, c)
		}
		out[i] = parsed.Hex()
	}
	return out, nil
}

// Cycle returns the i-th color, wrapping around the scale.
func (s Scale) Cycle(i int) string {
	if len(s) == 0 {
		return ""
	}
	if i < 0 {
		i = -i
	}
	return s[i%len(s)]
}

// ForRatio picks the color for count relative to max.
func (s Scale) ForRatio(count, max int) string {
	if len(s) == 0 {
		return ""
	}
	return s[Index(count, max, len(s))]
}

// Index maps count/max onto [0, n-1] with floor, clamped at both ends.
// It returns 0 when max or n is not positive.
func Index(count, max, n int) int {
	if max <= 0 || n <= 0 {
		return 0
	}
	i := int(math.Floor(float64(count) / float64(max) * float64(n-1)))
	if i > n-1 {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Blend mixes a and b in HCL space; t=0 returns a, t=1 returns b.
func Blend(a, b string, t float64) (string, error) {
	ca, err := colorful.Hex(a)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid color %q", a)
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid color %q", b)
	}
	switch {
	case t <= 0:
		return ca.Hex(), nil
	case t >= 1:
		return cb.Hex(), nil
	}
	return ca.BlendHcl(cb, t).Clamped().Hex(), nil
}

// Ramp builds an n-step scale from a to b.
func Ramp(a, b string, n int) (Scale, error) {
	if n < 2 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "ramp needs at least 2 steps, got %d", n)
	}
	out := make(Scale, n)
	for i := range out {
		c, err := Blend(a, b, float64(i)/float64(n-1))
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Dim washes c toward white, used for unselected items. Invalid input is
// returned unchanged.
func Dim(c string) string {
	out, err := Blend(c, "#ffffff", 0.6)
	if err != nil {
		return c
	}
	return out
}

// RGB255 returns the 8-bit channels of c.
func RGB255(c string) (r, g, b uint8, err error) {
	parsed, err := colorful.Hex(c)
	if err != nil {
		return 0, 0, 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid color %q", c)
	}
	r, g, b = parsed.RGB255()
	return r, g, b, nil
}
