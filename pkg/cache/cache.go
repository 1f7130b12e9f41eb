// Package cache provides byte-level caching for rendered PNG artifacts.
//
// The same SVG rasterized with the same engine and options always yields the
// same PNG, so artifacts are cached under a key derived from the hash of the
// staged markup plus the conversion options. Backends:
//   - FileCache: one file per entry under the user cache directory (CLI)
//   - RedisCache: shared cache for multi-instance HTTP deployments
//   - NullCache: caching disabled
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().ArtifactKey(cache.Hash(markup), cache.ArtifactKeyOpts{
//	    Engine: "oksvg",
//	    Scale:  2,
//	})
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    return data, nil
//	}
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get returns the cached value and true on a hit.
	// A miss is reported as (nil, false, nil), never as an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLArtifact is how long rendered PNGs are kept.
const TTLArtifact = 7 * 24 * time.Hour

// NullCache stores nothing. Used for --no-cache and the "none" backend.
type NullCache struct{}

// NewNullCache returns a cache on which every Get misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
