package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2png/pkg/observability"
)

// logHooks reports observability events as debug log lines. It is
// registered when the CLI runs with --verbose.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l}
}

func (h *logHooks) OnConvertStart(_ context.Context, mode string) {
	h.logger.Debug("conversion started", "mode", mode)
}

func (h *logHooks) OnConvertComplete(_ context.Context, mode string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("conversion failed", "mode", mode, "elapsed", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("conversion finished", "mode", mode, "elapsed", d.Round(time.Millisecond))
}

func (h *logHooks) OnEngineFallback(_ context.Context, engine string, err error) {
	h.logger.Debug("engine failed, trying next", "engine", engine, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h *logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h *logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

var (
	_ observability.ConvertHooks = (*logHooks)(nil)
	_ observability.CacheHooks   = (*logHooks)(nil)
	_ observability.HTTPHooks    = (*logHooks)(nil)
)
