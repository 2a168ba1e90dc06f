package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Several servers sharing one Redis instance use it to keep their probe
// results apart when they point at different asset hosts.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "streettype:staging:")
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

// ProbeKey generates a prefixed key for existence probes.
func (k *ScopedKeyer) ProbeKey(source, assetPath string) string {
	return k.prefix + k.inner.ProbeKey(source, assetPath)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(requestHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(requestHash, opts)
}
