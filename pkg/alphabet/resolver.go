package alphabet

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/streettype/pkg/cache"
	"github.com/matzehuels/streettype/pkg/errors"
	"github.com/matzehuels/streettype/pkg/observability"
)

// ImageLoadError reports that an asset could not be fetched or decoded.
type ImageLoadError struct {
	Path AssetPath
	Err  error
}

// Error implements the error interface.
func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("failed to load image: %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ImageLoadError) Unwrap() error { return e.Err }

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for unknown styles and probe cache errors.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProbeCache remembers existence probe results in c for ttl.
// A nil cache disables probe caching.
func WithProbeCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		if c != nil {
			r.probes = c
			r.probeTTL = ttl
		}
	}
}

// WithKeyer sets the key builder for the probe cache.
func WithKeyer(k cache.Keyer) Option {
	return func(r *Resolver) {
		if k != nil {
			r.keyer = k
		}
	}
}

// Resolver maps characters to existing letterform assets and caches decoded
// images for its whole lifetime. It is safe for concurrent use.
type Resolver struct {
	source   Source
	logger   *log.Logger
	probes   cache.Cache
	probeTTL time.Duration
	keyer    cache.Keyer

	mu     sync.RWMutex
	images map[AssetPath]image.Image
	loads  singleflight.Group
	loaded atomic.Int64
}

// NewResolver creates a Resolver reading from source. Without options it
// logs nowhere and re-probes the source on every ListVariants call.
func NewResolver(source Source, opts ...Option) *Resolver {
	r := &Resolver{
		source: source,
		logger: log.New(io.Discard),
		probes: cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		images: make(map[AssetPath]image.Image),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Source returns the underlying asset source.
func (r *Resolver) Source() Source { return r.source }

// ResolvePath is [ResolvePath] with unknown style keys reported to the log.
func (r *Resolver) ResolvePath(ch rune, style, location string, variant int) (AssetPath, error) {
	p, err := ResolvePath(ch, style, location, variant)
	if errors.Is(err, errors.ErrCodeInvalidStyle) {
		r.logger.Error("Unknown style key", "style", style)
	}
	return p, err
}

// ProbeExists reports whether path exists in the source. Any failure,
// including a cancelled context, counts as "does not exist".
//
// Only definitive answers are cached: the asset is present, or the source
// reported ErrNotFound. Network failures and other errors are re-probed on
// the next call.
func (r *Resolver) ProbeExists(ctx context.Context, path AssetPath) bool {
	key := r.keyer.ProbeKey(r.source.Name(), string(path))
	if data, hit, err := r.probes.Get(ctx, key); err == nil && hit && len(data) == 1 {
		observability.Cache().OnCacheHit(ctx, "probe")
		return data[0] == '1'
	} else if err != nil {
		r.logger.Debug("Probe cache read failed", "path", path, "err", err)
	}
	observability.Cache().OnCacheMiss(ctx, "probe")

	err := r.source.Stat(ctx, path)
	exists := err == nil
	if ctx.Err() != nil {
		return exists
	}
	if !exists && !stderrors.Is(err, ErrNotFound) {
		r.logger.Debug("Probe failed", "path", path, "err", err)
		return false
	}

	val := []byte{'0'}
	if exists {
		val[0] = '1'
	}
	if err := r.probes.Set(ctx, key, val, r.probeTTL); err != nil {
		r.logger.Debug("Probe cache write failed", "path", path, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "probe", len(val))
	}
	return exists
}

// ListVariants probes variants 1 through MaxVariants of ch in order and
// returns the paths that exist, preserving index order.
//
// Probing is sequential. An unresolvable character or style yields the
// resolve error and no paths; the only other error is context cancellation.
func (r *Resolver) ListVariants(ctx context.Context, ch rune, style, location string) ([]AssetPath, error) {
	var found []AssetPath
	for i := 1; i <= MaxVariants; i++ {
		path, err := r.ResolvePath(ch, style, location, i)
		if err != nil {
			return nil, err
		}
		if r.ProbeExists(ctx, path) {
			found = append(found, path)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return found, nil
}

// LoadImage returns the decoded image at path.
//
// Cached images are returned immediately. Concurrent calls for a path that is
// already loading wait for that load instead of starting another, so each
// path is fetched at most once at a time. A successful load is cached for
// the lifetime of the Resolver; a failed load is not cached and is reported
// as *ImageLoadError.
func (r *Resolver) LoadImage(ctx context.Context, path AssetPath) (image.Image, error) {
	if img, ok := r.cached(path); ok {
		observability.Cache().OnCacheHit(ctx, "image")
		return img, nil
	}

	// The shared load must outlive a caller that gives up, since other
	// callers may be waiting on it.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.loads.DoChan(string(path), func() (any, error) {
		if img, ok := r.cached(path); ok {
			return img, nil
		}
		observability.Cache().OnCacheMiss(ctx, "image")

		img, err := r.load(loadCtx, path)
		if err != nil {
			return nil, &ImageLoadError{Path: path, Err: err}
		}

		r.mu.Lock()
		r.images[path] = img
		r.mu.Unlock()
		b := img.Bounds()
		observability.Cache().OnCacheSet(ctx, "image", b.Dx()*b.Dy()*4)
		return img, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Loads returns the number of underlying loads started so far.
func (r *Resolver) Loads() int64 {
	return r.loaded.Load()
}

// CachedImages returns the number of images held in the cache.
func (r *Resolver) CachedImages() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.images)
}

func (r *Resolver) cached(path AssetPath) (image.Image, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	img, ok := r.images[path]
	return img, ok
}

func (r *Resolver) load(ctx context.Context, path AssetPath) (image.Image, error) {
	r.loaded.Add(1)

	rc, err := r.source.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
