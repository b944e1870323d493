package sink

import (
	"encoding/json"

	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/selection"
)

// jsonArtifact is the geometry plus the flags of the selection it was
// rendered with.
type jsonArtifact struct {
	chart.Geometry
	Selection *selection.Selection       `json:"selection,omitempty"`
	Flags     map[string]selection.Flags `json:"flags,omitempty"`
}

// RenderJSON renders g as indented JSON. Without a selection the output is
// exactly [chart.MarshalGeometry]; with one, a "selection" object and
// per-key "flags" are added.
func RenderJSON(g chart.Geometry, opts ...Option) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts...)
	if o.selection.Empty() {
		return chart.MarshalGeometry(g)
	}

	out := jsonArtifact{Geometry: g, Selection: &o.selection, Flags: map[string]selection.Flags{}}
	for _, key := range g.Keys() {
		out.Flags[key] = o.selection.FlagsFor(key)
	}
	return json.MarshalIndent(out, "", "  ")
}
