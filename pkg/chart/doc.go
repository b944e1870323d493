// Package chart provides the serialization type shared by all chart engines.
//
// The engines live in subpackages and are independent of each other:
//
//   - radial: donut, pie and half-donut wedges with constant pixel gaps
//   - hexbin: hexagonal density bins over scattered points
//   - stream: stacked layers with zero, silhouette, wiggle and expand offsets
//   - selection: caller-owned active/hover state applied to any of the above
//
// This package sits at the serialization boundary. [Geometry] is a
// discriminated union over the three engine results and is what the
// pipeline caches, the HTTP API returns and the sinks render.
//
// # Constants
//
// This package is the single source of truth for chart kinds:
//
//	chart.KindRadial   // "radial"
//	chart.KindHexbin   // "hexbin"
//	chart.KindStream   // "stream"
//
// # Serialization
//
// Geometry round-trips through JSON:
//
//	{
//	  "kind": "radial",
//	  "width": 200, "height": 200,
//	  "radial": {"segments": [...], "total": 100, ...}
//	}
//
// Use [MarshalGeometry]/[UnmarshalGeometry] or the file helpers.
package chart
