// Package config loads the streettype configuration file.
//
// The file is TOML and optional. It lives at
// $XDG_CONFIG_HOME/streettype/config.toml (falling back to
// ~/.config/streettype/config.toml) unless a path is given explicitly:
//
//	[assets]
//	root = "/srv/streettype"          # directory containing assets/Alphabet/...
//	base_url = "https://cdn.example"  # remote asset tree, overrides root
//
//	[defaults]
//	style = "sans"
//	location = "NYC"
//	case = "upper"
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	backend = "redis"                 # none, file or redis
//	redis_addr = "localhost:6379"
//	prefix = "streettype:staging:"    # key namespace on a shared server
//	probes = true                     # also cache asset existence probes
//	ttl = "24h"                       # probe TTL
//
//	[gallery]
//	backend = "mongo"                 # memory, file or mongo
//	mongo_uri = "mongodb://localhost:27017"
//
// Environment variables override the file: STREETTYPE_ASSETS,
// STREETTYPE_ASSETS_URL, STREETTYPE_ADDR, STREETTYPE_REDIS_ADDR and
// STREETTYPE_MONGO_URI.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/streettype/pkg/cache"
	"github.com/matzehuels/streettype/pkg/errors"
	"github.com/matzehuels/streettype/pkg/pipeline"
)

const appName = "streettype"

// Backend names.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"

	GalleryMemory = "memory"
	GalleryFile   = "file"
	GalleryMongo  = "mongo"
)

// DefaultAddr is the default server listen address.
const DefaultAddr = ":8080"

// Config is the full configuration.
type Config struct {
	Assets   Assets   `toml:"assets"`
	Defaults Defaults `toml:"defaults"`
	Server   Server   `toml:"server"`
	Cache    Cache    `toml:"cache"`
	Gallery  Gallery  `toml:"gallery"`
}

// Assets locates the letterform asset tree.
type Assets struct {
	Root    string `toml:"root"`
	BaseURL string `toml:"base_url"`
}

// Defaults are applied to render options the user left empty.
type Defaults struct {
	Style        string `toml:"style"`
	Location     string `toml:"location"`
	Case         string `toml:"case"`
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	LetterHeight int    `toml:"letter_height"`
}

// Server configures the HTTP server.
type Server struct {
	Addr      string   `toml:"addr"`
	PublicURL string   `toml:"public_url"`
	Timeout   Duration `toml:"timeout"`
}

// Cache configures the artifact cache and the optional probe cache.
// Probes are off by default so that ListVariants re-probes the source.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
	Probes        bool     `toml:"probes"`
	TTL           Duration `toml:"ttl"`
}

// Gallery configures where shared renders are stored.
type Gallery struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// Duration is a time.Duration written as a string such as "90s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Assets: Assets{Root: "."},
		Defaults: Defaults{
			Style:    pipeline.DefaultStyle,
			Location: pipeline.DefaultLocation,
			Case:     string(pipeline.DefaultCase),
			Width:    pipeline.DefaultWidth,
			Height:   pipeline.DefaultHeight,
		},
		Server: Server{
			Addr:    DefaultAddr,
			Timeout: Duration{30 * time.Second},
		},
		Cache: Cache{
			Backend: CacheFile,
			TTL:     Duration{cache.TTLProbe},
		},
		Gallery: Gallery{
			Backend: GalleryFile,
		},
	}
}

// Path returns the default config file path using the XDG standard.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path on top of the defaults and applies
// environment overrides. An empty path means the default location, which
// may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case stderrors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file; defaults only.
	default:
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("STREETTYPE_ASSETS"); ok && v != "" {
		c.Assets.Root = v
	}
	if v, ok := lookup("STREETTYPE_ASSETS_URL"); ok && v != "" {
		c.Assets.BaseURL = v
	}
	if v, ok := lookup("STREETTYPE_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("STREETTYPE_REDIS_ADDR"); ok && v != "" {
		c.Cache.RedisAddr = v
	}
	if v, ok := lookup("STREETTYPE_MONGO_URI"); ok && v != "" {
		c.Gallery.MongoURI = v
	}
}

// Validate checks backend names and the settings each backend needs.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache: redis backend needs redis_addr")
		}
	default:
		return fmt.Errorf("cache: unknown backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}

	switch c.Gallery.Backend {
	case GalleryMemory, GalleryFile:
	case GalleryMongo:
		if c.Gallery.MongoURI == "" {
			return fmt.Errorf("gallery: mongo backend needs mongo_uri")
		}
	default:
		return fmt.Errorf("gallery: unknown backend %q (must be one of: memory, file, mongo)", c.Gallery.Backend)
	}

	if c.Assets.Root == "" && c.Assets.BaseURL == "" {
		return fmt.Errorf("assets: root or base_url is required")
	}
	if c.Assets.BaseURL != "" {
		if err := errors.ValidateURL(c.Assets.BaseURL); err != nil {
			return fmt.Errorf("assets: base_url: %w", err)
		}
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache: ttl must not be negative")
	}
	return nil
}

// Apply fills the render options the caller left empty from the defaults
// section.
func (d Defaults) Apply(opts *pipeline.Options) {
	if opts.Style == "" {
		opts.Style = d.Style
	}
	if opts.Location == "" {
		opts.Location = d.Location
	}
	if opts.Case == "" {
		opts.Case = d.Case
	}
	if opts.Width == 0 {
		opts.Width = d.Width
	}
	if opts.Height == 0 {
		opts.Height = d.Height
	}
	if opts.LetterHeight == 0 {
		opts.LetterHeight = d.LetterHeight
	}
}
