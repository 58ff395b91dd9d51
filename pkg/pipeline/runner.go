package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/chart"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/observability"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
)

// RosterSource loads a roster snapshot.
type RosterSource interface {
	Name() string
	Load(ctx context.Context) (*hris.Roster, error)
}

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

// LoadRoster fetches a roster from src, serving it from cache for
// [cache.TTLRoster] unless refresh is set. The bool reports a cache hit.
func (r *Runner) LoadRoster(ctx context.Context, src RosterSource, refresh bool) (*hris.Roster, bool, error) {
	key := r.Keyer.RosterKey(src.Name())

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			roster, err := hris.DecodeRoster(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "roster")
				return roster, true, nil
			}
			r.Logger.Debug("discarding unreadable cached roster", "source", src.Name(), "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "roster")
	}

	roster, err := src.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if roster.FetchedAt.IsZero() {
		roster.FetchedAt = time.Now().UTC()
	}

	if data, err := json.Marshal(roster); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLRoster); err == nil {
			observability.Cache().OnCacheSet(ctx, "roster", len(data))
		}
	}
	return roster, false, nil
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, roster *hris.Roster, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RosterHash: RosterHash(roster),
		Artifacts:  make(map[string][]byte),
	}
	result.Stats.Employees = len(roster.Employees)

	// Stage 1: Build
	buildStart := time.Now()
	f, err := Build(ctx, opts.Source, roster, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Forest = f
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Rendered = f.Stats.Rendered
	result.Stats.Hidden = f.Stats.Hidden()

	r.Logger.Info("built org tree",
		"employees", f.Stats.Total,
		"rendered", f.Stats.Rendered,
		"hidden", f.Stats.Hidden(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, c, layoutHit, err := r.LayoutWithCacheInfo(ctx, result.RosterHash, f, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Chart = c
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", l.Len(),
		"width", l.Width,
		"height", l.Height,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.RosterHash, f, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes the layout of f and its chart form. The chart
// JSON is cached under the layout key; the returned bool reports a hit.
// Positions are always recomputed because renderers need the live layout.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, rosterHash string, f *orgtree.Forest, opts Options) (*layout.Layout, chart.Chart, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, chart.Chart{}, false, err
	}

	l, err := ComputeLayout(ctx, f, opts)
	if err != nil {
		return nil, chart.Chart{}, false, err
	}

	key := r.Keyer.LayoutKey(rosterHash, opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if c, err := chart.UnmarshalChart(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return l, c, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	c := chart.Export(l, opts.Style)
	if data, err := chart.MarshalChart(c); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, c, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, rosterHash string, f *orgtree.Forest, l *layout.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutHash := cache.Hash([]byte(r.Keyer.LayoutKey(rosterHash, opts.LayoutKeyOpts())))

	// Try to get all formats from cache
	allCached := !opts.Refresh
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := Render(ctx, f, l, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
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
