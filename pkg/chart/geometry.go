package chart

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/matzehuels/chartgeom/pkg/chart/hexbin"
	"github.com/matzehuels/chartgeom/pkg/chart/radial"
	"github.com/matzehuels/chartgeom/pkg/chart/stream"
	"github.com/matzehuels/chartgeom/pkg/errors"
)

// Chart kinds.
const (
	KindRadial = "radial"
	KindHexbin = "hexbin"
	KindStream = "stream"
)

// Kinds lists the supported chart kinds.
var Kinds = []string{KindRadial, KindHexbin, KindStream}

// ValidKind reports whether kind is supported.
func ValidKind(kind string) bool { return slices.Contains(Kinds, kind) }

// =============================================================================
// Geometry - Unified Chart Format
// =============================================================================

// Geometry is the unified serialization format for all chart kinds.
//
// This is a discriminated union type - check Kind to determine which
// field is populated:
//
//	radial: Radial (segments, radii, center)
//	hexbin: Hexbin (bins, drop count)
//	stream: Stream (layers, paths by key, y extent)
//
// Width and Height are copied from the engine result so consumers can size
// a canvas without switching on Kind.
type Geometry struct {
	Kind   string  `json:"kind" bson:"kind"`
	Title  string  `json:"title,omitempty" bson:"title,omitempty"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Radial *radial.Layout `json:"radial,omitempty" bson:"radial,omitempty"`
	Hexbin *hexbin.Result `json:"hexbin,omitempty" bson:"hexbin,omitempty"`
	Stream *stream.Result `json:"stream,omitempty" bson:"stream,omitempty"`
}

// FromRadial wraps a radial layout.
func FromRadial(l radial.Layout) Geometry {
	return Geometry{Kind: KindRadial, Width: l.Width, Height: l.Height, Radial: &l}
}

// FromHexbin wraps a hexbin result.
func FromHexbin(r hexbin.Result) Geometry {
	return Geometry{Kind: KindHexbin, Width: r.Width, Height: r.Height, Hexbin: &r}
}

// FromStream wraps a stream result.
func FromStream(r stream.Result) Geometry {
	return Geometry{Kind: KindStream, Width: r.Width, Height: r.Height, Stream: &r}
}

// Diagnostics returns the engine diagnostics for whichever kind is set.
func (g Geometry) Diagnostics() []errors.Diagnostic {
	switch {
	case g.Radial != nil:
		return g.Radial.Diagnostics
	case g.Hexbin != nil:
		return g.Hexbin.Diagnostics
	case g.Stream != nil:
		return g.Stream.Diagnostics
	}
	return nil
}

// Keys returns the selectable keys in drawing order.
func (g Geometry) Keys() []string {
	var keys []string
	switch {
	case g.Radial != nil:
		for _, s := range g.Radial.Segments {
			keys = append(keys, s.Label)
		}
	case g.Hexbin != nil:
		for _, b := range g.Hexbin.Bins {
			keys = append(keys, b.Key())
		}
	case g.Stream != nil:
		for _, l := range g.Stream.Layers {
			keys = append(keys, l.Key)
		}
	}
	return keys
}

// Size returns the number of drawable items (segments, bins or layers).
func (g Geometry) Size() int { return len(g.Keys()) }

// Validate checks that the populated field matches Kind.
func (g Geometry) Validate() error {
	var ok bool
	switch g.Kind {
	case KindRadial:
		ok = g.Radial != nil
	case KindHexbin:
		ok = g.Hexbin != nil
	case KindStream:
		ok = g.Stream != nil
	default:
		return errors.New(errors.ErrCodeInvalidKind, "unknown chart kind %q", g.Kind)
	}
	if !ok {
		return errors.New(errors.ErrCodeInvalidDocument, "%s geometry is missing its %s section", g.Kind, g.Kind)
	}
	return nil
}

// =============================================================================
// Geometry Serialization API
// =============================================================================

// MarshalGeometry serializes a Geometry to pretty-printed JSON bytes.
func MarshalGeometry(g Geometry) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGeometry deserializes JSON bytes into a Geometry and validates it.
func UnmarshalGeometry(data []byte) (Geometry, error) {
	var g Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return Geometry{}, fmt.Errorf("unmarshal geometry: %w", err)
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// WriteGeometryFile writes a Geometry to a JSON file.
func WriteGeometryFile(g Geometry, path string) error {
	data, err := MarshalGeometry(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadGeometryFile reads a Geometry from a JSON file.
func ReadGeometryFile(path string) (Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Geometry{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalGeometry(data)
}
