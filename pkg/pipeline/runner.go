package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/chartgeom/pkg/cache"
	"github.com/matzehuels/chartgeom/pkg/chart"
	"github.com/matzehuels/chartgeom/pkg/dataset"
	"github.com/matzehuels/chartgeom/pkg/errors"
	"github.com/matzehuels/chartgeom/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete compute → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, doc dataset.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{ID: uuid.NewString()}
	logger := opts.Logger.With("run", result.ID[:8], "kind", doc.Kind)

	// Stage 1: Compute
	computeStart := time.Now()
	g, computeHit, err := r.ComputeWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Geometry = g
	result.Stats.ComputeTime = time.Since(computeStart)
	result.Stats.Items, result.Stats.Diagnostics = Items(g)
	result.CacheInfo.ComputeHit = computeHit

	if data, err := chart.MarshalGeometry(g); err == nil {
		result.GeometryHash = cache.Hash(data)
	}

	logger.Info("computed geometry",
		"items", result.Stats.Items,
		"diagnostics", result.Stats.Diagnostics,
		"cached", computeHit,
		"duration", result.Stats.ComputeTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeWithCacheInfo computes geometry with caching and returns cache hit info.
// Diagnostics are logged at warn level whether or not the geometry was cached.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, doc dataset.Document, opts Options) (chart.Geometry, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCompute(); err != nil {
		return chart.Geometry{}, false, err
	}
	if err := doc.Validate(); err != nil {
		return chart.Geometry{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnComputeStart(ctx, doc.Kind)
	start := time.Now()

	g, hit, err := r.compute(ctx, doc, opts)

	items, diags := Items(g)
	hooks.OnComputeComplete(ctx, doc.Kind, items, diags, time.Since(start), err)
	if err != nil {
		return chart.Geometry{}, false, err
	}
	for _, d := range g.Diagnostics() {
		opts.Logger.Warn("data diagnostic", "kind", g.Kind, "code", d.Code, "key", d.Key, "detail", d.Message)
	}
	return g, hit, nil
}

func (r *Runner) compute(ctx context.Context, doc dataset.Document, opts Options) (chart.Geometry, bool, error) {
	framed := WithFrame(doc, opts.Width, opts.Height)
	docHash, err := framed.Hash()
	if err != nil {
		return chart.Geometry{}, false, errors.Wrap(errors.ErrCodeInvalidDocument, err, "hash document")
	}
	cacheKey := r.Keyer.GeometryKey(doc.Kind, docHash)

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := chart.UnmarshalGeometry(data); err == nil {
				observability.Cache().OnCacheHit(ctx, observability.KeyGeometry)
				cached.Title = doc.Title
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, observability.KeyGeometry)
	}

	g, err := Compute(framed, Options{})
	if err != nil {
		return chart.Geometry{}, false, err
	}

	// Cache the result; cache failures never fail the run.
	if data, err := chart.MarshalGeometry(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGeometry); err == nil {
			observability.Cache().OnCacheSet(ctx, observability.KeyGeometry, len(data))
		} else {
			opts.Logger.Debug("cache write failed", "key", cacheKey, "error", err)
		}
	}

	return g, false, nil // Cache miss
}

// Compute is a convenience wrapper that calls ComputeWithCacheInfo and discards the cache hit info.
func (r *Runner) Compute(ctx context.Context, doc dataset.Document, opts Options) (chart.Geometry, error) {
	g, _, err := r.ComputeWithCacheInfo(ctx, doc, opts)
	return g, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g chart.Geometry, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if err := g.Validate(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, g.Kind, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, g, opts)

	hooks.OnRenderComplete(ctx, g.Kind, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, g chart.Geometry, opts Options) (map[string][]byte, bool, error) {
	// Compute cache key from geometry data
	geomData, err := chart.MarshalGeometry(g)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize geometry for cache key")
	}
	geomHash := cache.Hash(geomData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(geomHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, observability.KeyArtifact)
				break
			}
			observability.Cache().OnCacheHit(ctx, observability.KeyArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	// Render all formats
	rendered, err := Render(g, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(geomHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, observability.KeyArtifact, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g chart.Geometry, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
