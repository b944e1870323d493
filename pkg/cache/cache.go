// Package cache provides the caller-owned cache used by the pipeline runner.
//
// Chart engines are pure and never cache anything themselves. The runner
// memoizes computed geometry and rendered artifacts under content-derived
// keys: a SHA-256 of the canonical JSON of (kind, data, config) for geometry,
// and the geometry hash plus render options for artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [MemoryCache]: in-process ristretto cache, for the server
//   - [RedisCache]: shared cache across server replicas
//   - [MongoCache]: durable cache with a TTL index
//   - [NullCache]: caching disabled
//
// All backends store opaque bytes and are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTLs.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry type.
const (
	TTLGeometry = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key prefixes.
const (
	prefixGeometry = "geometry"
	prefixArtifact = "artifact"
)

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Active     string  `json:"active,omitempty"`
	Hovered    string  `json:"hovered,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	Background string  `json:"background,omitempty"`
}

// Keyer derives cache keys. Swap it to namespace keys (see ScopedKeyer).
type Keyer interface {
	// GeometryKey keys computed geometry by chart kind and document hash.
	GeometryKey(kind, docHash string) string
	// ArtifactKey keys a rendered artifact by geometry hash and render options.
	ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "prefix:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GeometryKey implements Keyer.
func (DefaultKeyer) GeometryKey(kind, docHash string) string {
	return hashKey(prefixGeometry, kind, docHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string {
	return hashKey(prefixArtifact, geometryHash, opts)
}
