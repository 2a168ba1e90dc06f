// Package cache provides key/value caching with TTL for streettype.
//
// The asset resolver's probe cache remembers whether an asset path exists so
// that repeated renders of the same characters do not have to hit the asset
// source again. The compose pipeline caches encoded artifacts keyed by the
// selected letterforms. Three backends are available:
//
//   - [NullCache]: never stores anything (the default; every call re-probes)
//   - [FileCache]: hash-sharded JSON files, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//
// Keys are built by a [Keyer] so that callers never hand-assemble key strings.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default TTLs per kind of cached data.
const (
	TTLProbe    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiration.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Keyer builds cache keys for the different kinds of cached data.
type Keyer interface {
	// ProbeKey returns the key for an asset existence probe.
	ProbeKey(source, assetPath string) string

	// ArtifactKey returns the key for a rendered artifact.
	ArtifactKey(requestHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the render options that affect artifact bytes.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key builder.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ProbeKey returns "probe:<source>:<path>".
func (DefaultKeyer) ProbeKey(source, assetPath string) string {
	return fmt.Sprintf("probe:%s:%s", source, assetPath)
}

// ArtifactKey hashes the request hash together with the options.
func (DefaultKeyer) ArtifactKey(requestHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", requestHash, opts)
}
