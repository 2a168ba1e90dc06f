package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streettype/pkg/cache"
	"github.com/matzehuels/streettype/pkg/letters"
	"github.com/matzehuels/streettype/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the composer and the server all use it.
//
// The Runner is stateless except for the resolver, cache and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options; they share the resolver's image cache.
type Runner struct {
	Resolver letters.Resolver
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner over the given asset resolver.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(resolver letters.Resolver, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Resolver: resolver,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute runs the complete select → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{Text: letters.ApplyCase(opts.Text, opts.CaseOption())}

	// Stage 1: Select
	selectStart := time.Now()
	entries, err := r.Select(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	result.Entries = entries
	result.Stats.Counts = letters.Count(entries)
	result.Stats.SelectTime = time.Since(selectStart)

	r.Logger.Info("selected letters",
		"letters", result.Stats.Letters,
		"placeholders", result.Stats.Placeholders,
		"duration", result.Stats.SelectTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, entries, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.FormatList(),
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Select applies the case option and picks a letterform per character.
func (r *Runner) Select(ctx context.Context, opts Options) ([]letters.Entry, error) {
	if err := opts.ValidateForSelect(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	text := letters.ApplyCase(opts.Text, opts.CaseOption())

	selOpts := []letters.Option{letters.WithLogger(opts.Logger)}
	if opts.Seed != 0 {
		selOpts = append(selOpts, letters.WithSeed(opts.Seed))
	}
	sel := letters.NewSelector(r.Resolver, selOpts...)

	hooks := observability.Pipeline()
	hooks.OnSelectStart(ctx, opts.Style, opts.Location, len([]rune(text)))
	start := time.Now()

	entries, err := sel.SelectLettersForText(ctx, text, opts.Style, opts.Location)

	counts := letters.Count(entries)
	hooks.OnSelectComplete(ctx, opts.Style, opts.Location, counts.Letters, counts.Placeholders, time.Since(start), err)
	return entries, err
}

// RenderWithCacheInfo renders the requested formats with caching and
// reports whether every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, entries []letters.Entry, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	hash := RequestHash(opts, entries)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := Render(entries, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Debug("artifact cache write failed", "format", format, "err", err)
		}
	}

	return rendered, false, nil
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
