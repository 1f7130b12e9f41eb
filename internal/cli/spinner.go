package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// Spinner animates a message on stderr while a conversion runs.
type Spinner struct {
	message string
	out     io.Writer
	parent  context.Context

	mu      sync.Mutex // guards cancel and writes to out
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
	stopped atomic.Bool
}

// newSpinner ties the animation to ctx: it clears itself when
// ctx ends, and Cancelled reports that afterwards.
func newSpinner(ctx context.Context, message string) *Spinner {
	return &Spinner{message: message, out: os.Stderr, parent: ctx}
}

// Start begins the animation. It is a no-op once started or stopped.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.stopped.Load() {
		return
	}
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Spinner) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.write("\r\x1b[K")
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			s.write(fmt.Sprintf("\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message)))
		}
	}
}

func (s *Spinner) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, text)
}

// Stop ends the animation and waits for the line to be cleared. Safe to
// call repeatedly, with or without Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.stopped.Store(true)
		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
			s.wg.Wait()
		}
	})
}

// Cancelled reports whether the parent context ended before Stop.
func (s *Spinner) Cancelled() bool {
	return !s.stopped.Load() && s.parent.Err() != nil
}
