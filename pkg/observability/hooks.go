// Package observability lets a host process watch conversions without the
// libraries depending on a metrics or tracing backend.
//
// Three hook sets exist: ConvertHooks (orchestrator and engine chain),
// CacheHooks (artifact cache lookups) and HTTPHooks (the web UI). Each
// defaults to a no-op and is replaced once at startup:
//
//	observability.SetConvertHooks(myHooks)
//
// Emitting code fetches the current set at the call site:
//
//	observability.Convert().OnConvertStart(ctx, "data-uri")
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// ConvertHooks receives events from the orchestrator and the engine chain.
type ConvertHooks interface {
	// OnConvertStart fires before staging, with the action mode.
	OnConvertStart(ctx context.Context, mode string)
	// OnConvertComplete fires once per OnConvertStart; err is nil on success.
	OnConvertComplete(ctx context.Context, mode string, duration time.Duration, err error)
	// OnEngineFallback fires when engine fails and the chain moves on.
	OnEngineFallback(ctx context.Context, engine string, err error)
}

// CacheHooks receives artifact cache events keyed by cache key.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	OnCacheSet(ctx context.Context, key string, size int)
}

// HTTPHooks receives one OnRequest and one OnResponse per served request.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

type NoopConvertHooks struct{}

func (NoopConvertHooks) OnConvertStart(context.Context, string)                          {}
func (NoopConvertHooks) OnConvertComplete(context.Context, string, time.Duration, error) {}
func (NoopConvertHooks) OnEngineFallback(context.Context, string, error)                 {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// slot holds one registered hook set, falling back to noop when empty.
type slot[T any] struct {
	cur  atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if p := s.cur.Load(); p != nil {
		return *p
	}
	return s.noop
}

// set ignores a nil h so a missing implementation never disables emission.
func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.cur.Store(&h)
}

var (
	convertSlot = slot[ConvertHooks]{noop: NoopConvertHooks{}}
	cacheSlot   = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpSlot    = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

func SetConvertHooks(h ConvertHooks) { convertSlot.set(h) }
func SetCacheHooks(h CacheHooks)     { cacheSlot.set(h) }
func SetHTTPHooks(h HTTPHooks)       { httpSlot.set(h) }

// Convert returns the current conversion hooks.
func Convert() ConvertHooks { return convertSlot.get() }

// Cache returns the current cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the current HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks. Tests call it between cases.
func Reset() {
	convertSlot.cur.Store(nil)
	cacheSlot.cur.Store(nil)
	httpSlot.cur.Store(nil)
}
