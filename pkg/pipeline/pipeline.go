// Package pipeline provides the compute → render pipeline for chartgeom.
//
// This package implements the complete document → geometry → artifact flow
// used by the CLI and the HTTP server. By centralizing this logic, both entry
// points share caching, logging and observability behavior.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Compute: Run the chart engine named by the document's kind
//  2. Render: Generate output in various formats (SVG, JSON, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
// The engines are pure; the [Runner] owns the cache and memoizes both stages
// under content-derived keys.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	doc, _ := dataset.Load("signups.yaml")
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g, err := runner.Compute(ctx, doc, opts)
//	artifacts, err := runner.Render(ctx, g, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartgeom/pkg/cache"
	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/chart/selection"
	"github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels, applied to documents
	// that leave their size unset.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 400.0

	// DefaultScale is the default PNG pixel density.
	DefaultScale = 1.0

	// MaxScale bounds the PNG pixel density.
	MaxScale = 8.0
)

// Format constants for output formats.
const (
	FormatSVG  = sink.FormatSVG
	FormatJSON = sink.FormatJSON
	FormatPNG  = sink.FormatPNG
	FormatPDF  = sink.FormatPDF
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Compute options
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Refresh bool    `json:"refresh,omitempty"`

	// Render options
	Formats    []string            `json:"formats,omitempty"`
	Selection  selection.Selection `json:"selection,omitempty"`
	Scale      float64             `json:"scale,omitempty"`
	Background string              `json:"background,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies this run in logs and API responses.
	ID string

	// Geometry is the computed chart geometry.
	Geometry chart.Geometry

	// GeometryHash is the content hash of the geometry.
	GeometryHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items       int
	Diagnostics int
	ComputeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ComputeHit bool // Whether geometry came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(sink.Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateKind checks that a chart kind is valid.
func ValidateKind(kind string) error {
	if !chart.ValidKind(kind) {
		return errors.New(errors.ErrCodeInvalidKind,
			"invalid kind: %q (must be one of: %s)", kind, strings.Join(chart.Kinds, ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompute(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCompute checks the frame size fields.
func (o *Options) ValidateForCompute() error {
	if err := errors.ValidateNonNegative("width", o.Width); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("height", o.Height); err != nil {
		return err
	}
	o.setLoggerDefault()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLoggerDefault()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidatePositive("scale", o.Scale); err != nil {
		return err
	}
	if o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be at most %g, got %g", MaxScale, o.Scale)
	}
	return nil
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SinkOptions returns the renderer options for these settings.
func (o *Options) SinkOptions() []sink.Option {
	opts := []sink.Option{sink.WithSelection(o.Selection), sink.WithScale(o.Scale)}
	if o.Background != "" {
		opts = append(opts, sink.WithBackground(o.Background))
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Scale only changes PNG bytes, so other formats share one entry per selection.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		Active:     o.Selection.Active,
		Hovered:    o.Selection.Hovered,
		Background: o.Background,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
