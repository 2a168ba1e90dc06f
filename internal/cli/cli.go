// Package cli implements the streettype command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streettype/internal/config"
	"github.com/matzehuels/streettype/pkg/alphabet"
	"github.com/matzehuels/streettype/pkg/cache"
	"github.com/matzehuels/streettype/pkg/gallery"
	"github.com/matzehuels/streettype/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "streettype"

	// defaultOutput is the file render writes when no --output is given.
	defaultOutput = "streettype.png"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the --config flag; empty means the default path.
	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the configuration once per process.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.config != nil {
		return *c.config, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.config = &cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// assetEnv is everything built from the [assets] and [cache] sections.
type assetEnv struct {
	runner   *pipeline.Runner
	resolver *alphabet.Resolver
	source   alphabet.Source

	// webRoot is the local asset tree, nil for a remote source.
	webRoot fs.FS
}

// newAssetEnv creates the source, resolver and pipeline runner for cfg.
// Rendered artifacts always use the configured cache; probe results share
// it only when [cache] probes is set.
func (c *CLI) newAssetEnv(ctx context.Context, cfg config.Config, noCache bool) (*assetEnv, error) {
	src, webRoot, err := newSource(cfg.Assets)
	if err != nil {
		return nil, err
	}

	store, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}

	keyer := newKeyer(cfg.Cache)
	opts := []alphabet.Option{alphabet.WithLogger(c.Logger), alphabet.WithKeyer(keyer)}
	if cfg.Cache.Probes {
		opts = append(opts, alphabet.WithProbeCache(store, cfg.Cache.TTL.Duration))
	}
	resolver := alphabet.NewResolver(src, opts...)
	c.Logger.Debug("asset source", "kind", src.Name(), "cache", cfg.Cache.Backend, "probes", cfg.Cache.Probes)

	return &assetEnv{
		runner:   pipeline.NewRunner(resolver, store, keyer, c.Logger),
		resolver: resolver,
		source:   src,
		webRoot:  webRoot,
	}, nil
}

func (e *assetEnv) Close() error {
	return e.runner.Close()
}

// newSource picks the remote source when a base URL is configured and the
// local tree otherwise.
func newSource(cfg config.Assets) (alphabet.Source, fs.FS, error) {
	if cfg.BaseURL != "" {
		src, err := alphabet.NewHTTPSource(cfg.BaseURL, nil)
		return src, nil, err
	}
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("asset root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("asset root %s is not a directory", cfg.Root)
	}
	root := os.DirFS(cfg.Root)
	return alphabet.NewFSSource(root), root, nil
}

func newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.CacheFile:
		dir, err := fileCacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// newKeyer namespaces cache keys with the configured prefix.
func newKeyer(cfg config.Cache) cache.Keyer {
	if cfg.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Prefix)
}

func newGallery(ctx context.Context, cfg config.Gallery) (gallery.Store, error) {
	switch cfg.Backend {
	case config.GalleryMongo:
		return gallery.NewMongoStore(ctx, gallery.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
		})
	case config.GalleryMemory:
		return gallery.NewMemoryStore(), nil
	default:
		return gallery.NewFileStore(cfg.Dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/streettype/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// fileCacheDir is the configured cache directory or the XDG default.
func fileCacheDir(cfg config.Cache) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cacheDir()
}
