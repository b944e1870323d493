package pipeline

import (
	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/sink"
)

// Render generates output artifacts in the requested formats.
func Render(g chart.Geometry, opts Options) (map[string][]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	sinkOpts := opts.SinkOptions()

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := sink.Render(format, g, sinkOpts...)
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return nil, errors.Wrap(code, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFromGeometryData renders output from serialized geometry.
// This is useful when the geometry was computed elsewhere (e.g., cached).
func RenderFromGeometryData(data []byte, opts Options) (map[string][]byte, error) {
	g, err := chart.UnmarshalGeometry(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse geometry")
	}
	return Render(g, opts)
}
