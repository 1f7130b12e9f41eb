package raster

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/matzehuels/svg2png/pkg/observability"
	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

// Chain tries engines in order and falls back to the next one on failure.
// The preferred engine, when set and available, is tried first.
type Chain struct {
	engines   []Engine
	preferred string
}

// NewChain creates a chain over engines. preferred may be empty or EngineAuto.
func NewChain(preferred string, engines ...Engine) *Chain {
	if preferred == EngineAuto {
		preferred = ""
	}
	return &Chain{engines: engines, preferred: preferred}
}

// DefaultChain builds a chain over every known engine in EngineNames order.
func DefaultChain(preferred string, enableBrowser bool) (*Chain, error) {
	if preferred != "" && preferred != EngineAuto && !lo.Contains(EngineNames, preferred) {
		return nil, fmt.Errorf("unknown engine: %s (must be one of %v)", preferred, EngineNames)
	}
	engines := make([]Engine, 0, len(EngineNames))
	for _, name := range EngineNames {
		e, err := NewEngine(name, enableBrowser)
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
	}
	return NewChain(preferred, engines...), nil
}

// Name returns "chain" or the preferred engine's name.
func (c *Chain) Name() string {
	if c.preferred != "" {
		return c.preferred
	}
	return "chain"
}

// Available reports whether any engine can run.
func (c *Chain) Available() bool {
	return len(c.ordered()) > 0
}

// Engines returns all engines in the chain, available or not.
func (c *Chain) Engines() []Engine {
	return c.engines
}

// AvailableNames returns the names of runnable engines in try order.
func (c *Chain) AvailableNames() []string {
	return lo.Map(c.ordered(), func(e Engine, _ int) string { return e.Name() })
}

// ordered returns available engines with the preferred one first.
func (c *Chain) ordered() []Engine {
	available := lo.Filter(c.engines, func(e Engine, _ int) bool { return e.Available() })
	if c.preferred == "" {
		return available
	}
	first, rest := lo.FilterReject(available, func(e Engine, _ int) bool { return e.Name() == c.preferred })
	return append(first, rest...)
}

// Render tries each available engine until one succeeds.
// Context cancellation stops the chain immediately.
func (c *Chain) Render(ctx context.Context, m *svgdoc.Mount, opts Options) ([]byte, error) {
	engines := c.ordered()
	if len(engines) == 0 {
		return nil, fmt.Errorf("no SVG engines available")
	}

	var lastErr error
	for _, e := range engines {
		data, err := e.Render(ctx, m, opts)
		if err == nil {
			return data, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		observability.Convert().OnEngineFallback(ctx, e.Name(), err)
		lastErr = fmt.Errorf("%s: %w", e.Name(), err)
	}
	return nil, fmt.Errorf("all engines failed, last error: %w", lastErr)
}

// Close closes engines that hold resources (the browser engine).
func (c *Chain) Close() error {
	for _, e := range c.engines {
		if closer, ok := e.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

var _ Engine = (*Chain)(nil)
