package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// ErrBackend is returned when a remote cache backend cannot be reached.
var ErrBackend = errors.New("cache backend unavailable")

// backoff retries remote cache calls that fail for transport reasons.
type backoff struct {
	attempts int
	delay    time.Duration
}

var redisBackoff = backoff{attempts: 3, delay: 50 * time.Millisecond}

// do runs fn until it returns nil or a non-transient error. When every attempt
// fails the last error is wrapped with ErrBackend.
func (b backoff) do(ctx context.Context, fn func() error) error {
	delay := b.delay
	var err error
	for i := 0; i < b.attempts; i++ {
		if err = fn(); !transient(err) {
			return err
		}
		if i == b.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}

// transient reports whether err came from the connection rather than the
// server's reply. Context errors are final.
func transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
