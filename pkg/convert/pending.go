package convert

import (
	"context"
)

// Pending is a conversion running in the background.
type Pending struct {
	done chan struct{}
	res  *Result
	err  error
}

// ConvertAsync starts req in a new goroutine. The request text is captured
// before ConvertAsync returns.
func (o *Orchestrator) ConvertAsync(ctx context.Context, req Request) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.res, p.err = o.Do(ctx, req)
	}()
	return p
}

// Done is closed when the conversion finishes.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the conversion finishes or ctx is done. Giving up on
// the wait does not cancel the conversion; cancel the context passed to
// ConvertAsync for that.
func (p *Pending) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
