package raster

import (
	"context"

	"github.com/matzehuels/svg2png/pkg/cache"
	"github.com/matzehuels/svg2png/pkg/observability"
	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

// CachedEngine wraps an Engine with an artifact cache keyed by the staged
// markup and the options. Cache failures never fail a render.
type CachedEngine struct {
	Engine Engine
	Cache  cache.Cache
	Keyer  cache.Keyer
}

// NewCachedEngine wraps e. A nil cache disables caching; a nil keyer uses the default.
func NewCachedEngine(e Engine, c cache.Cache, k cache.Keyer) *CachedEngine {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &CachedEngine{Engine: e, Cache: c, Keyer: k}
}

// Name returns the wrapped engine's name.
func (e *CachedEngine) Name() string {
	return e.Engine.Name()
}

// Available returns the wrapped engine's availability.
func (e *CachedEngine) Available() bool {
	return e.Engine.Available()
}

// Render returns a cached PNG when present, otherwise renders and stores it.
func (e *CachedEngine) Render(ctx context.Context, m *svgdoc.Mount, opts Options) ([]byte, error) {
	key := e.Keyer.ArtifactKey(cache.Hash(m.Markup()), cache.ArtifactKeyOpts{
		Engine:  e.Engine.Name(),
		Scale:   opts.Scale,
		Quality: opts.EncoderQuality,
	})

	if data, hit, err := e.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, key)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, key)

	data, err := e.Engine.Render(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := e.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}
	return data, nil
}

var _ Engine = (*CachedEngine)(nil)
