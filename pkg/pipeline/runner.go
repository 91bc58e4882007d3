package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/radials/pkg/cache"
	"github.com/matzehuels/radials/pkg/observability"
	"github.com/matzehuels/radials/pkg/radial"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
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

// layoutEntry is the cached form of a computed layout.
type layoutEntry struct {
	Bundle radial.Bundle `json:"bundle"`
	Stats  radial.Stats  `json:"stats"`
}

// Execute runs the complete layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	layoutStart := time.Now()
	bundle, stats, layoutHit, err := r.LayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Bundle = bundle
	result.Stats.Stats = stats
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"records", stats.Records,
		"dropped", stats.Dropped,
		"arcs", len(bundle.Arcs),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	bundleData, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("serialize bundle: %w", err)
	}
	result.LayoutHash = cache.Hash(bundleData)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, bundle, result.LayoutHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes the bundle with caching and reports whether
// it came from the cache. Failed layouts are never cached.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, opts Options) (radial.Bundle, radial.Stats, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return radial.Bundle{}, radial.Stats{}, false, err
	}

	dataHash, err := opts.dataHash()
	if err != nil {
		return radial.Bundle{}, radial.Stats{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(dataHash, opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layoutEntry
			if err := json.Unmarshal(data, &cached); err == nil {
				hooks.OnCacheHit(ctx, cacheKey)
				return cached.Bundle, cached.Stats, true, nil
			}
			// Undecodable entries fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("cache lookup failed", "key", cacheKey, "error", err)
		}
		hooks.OnCacheMiss(ctx, cacheKey)
	}

	stage := observability.Pipeline()
	stage.OnLayoutStart(ctx, len(opts.Rows))
	start := time.Now()
	bundle, stats, err := radial.Compute(opts.Rows, opts.Roles, opts.Config, opts.Size())
	stage.OnLayoutComplete(ctx, len(bundle.Arcs), stats.Dropped, time.Since(start), err)
	if err != nil {
		return radial.Bundle{}, stats, false, err
	}
	if stats.Dropped > 0 {
		opts.Logger.Debug("dropped rows", "count", stats.Dropped, "kept", stats.Records)
	}

	entry := layoutEntry{Bundle: bundle, Stats: stats}
	if data, err := json.Marshal(entry); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache store failed", "key", cacheKey, "error", err)
		} else {
			hooks.OnCacheSet(ctx, cacheKey, len(data))
		}
	}

	return bundle, stats, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, opts Options) (radial.Bundle, radial.Stats, error) {
	b, stats, _, err := r.LayoutWithCacheInfo(ctx, opts)
	return b, stats, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, b radial.Bundle, layoutHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				opts.Logger.Warn("cache lookup failed", "key", key, "format", format, "error", err)
				break
			}
			if !hit {
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
	rendered, err := Render(b, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache store failed", "key", key, "format", format, "error", err)
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
