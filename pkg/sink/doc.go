// Package sink renders chart geometry into output artifacts.
//
// # Overview
//
// A "sink" transforms a computed [chart.Geometry] into a final output format.
// This package provides renderers for:
//
//   - SVG: vector output with selection state as CSS classes
//   - JSON: the geometry itself, plus selection flags when a selection is set
//   - PNG: raster output drawn with fogleman/gg
//   - PDF: vector output drawn with gofpdf
//
// Every renderer replays the same [geom.Path] commands the engines produced,
// so all formats agree on shape. Arcs are emitted natively in SVG and
// flattened to cubic Béziers for PNG and PDF.
//
// # Selection
//
// Sinks never own selection state. Pass the caller's selection with
// [WithSelection]; each item is then drawn with its flags:
//
//   - active: outlined with a heavy stroke
//   - hovered: outlined with a light stroke
//   - dimmed: filled with a washed-out color
//
// Basic usage:
//
//	svg, err := sink.RenderSVG(g, sink.WithSelection(selection.Selection{Active: "b"}))
//	png, err := sink.RenderPNG(g, sink.WithScale(2))
//
// Use [Render] to dispatch on a format name.
//
// [geom.Path]: github.com/matzehuels/chartgeom/pkg/geom.Path
package sink
