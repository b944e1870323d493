package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The server uses it so several deployments can share one redis or mongo
// backend without seeing each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GeometryKey generates a prefixed key for geometry caching.
func (k *ScopedKeyer) GeometryKey(kind, docHash string) string {
	return k.prefix + k.inner.GeometryKey(kind, docHash)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(geometryHash, opts)
}
