// Package intake reads a selected SVG file into a session.
//
// Intake does no MIME or well-formedness checks; markup is validated when it
// is converted. The only check is a size limit.
package intake

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/httputil"
	"github.com/matzehuels/svg2png/pkg/session"
)

// DefaultMaxBytes is the largest file Load accepts by default (10 MiB).
const DefaultMaxBytes int64 = 10 << 20

// Loader stores selected files in sessions.
type Loader struct {
	Store    session.Store
	MaxBytes int64
	TTL      time.Duration
	Logger   *log.Logger

	// Fetcher serves LoadURL and Source; nil disables remote sources.
	Fetcher *httputil.Fetcher
}

// NewLoader creates a loader with the default size limit and session TTL.
func NewLoader(store session.Store, logger *log.Logger) *Loader {
	return &Loader{Store: store, MaxBytes: DefaultMaxBytes, TTL: session.DefaultTTL, Logger: logger}
}

// Load reads r as text and stores it as the selection of sessionID, creating
// the session when it does not exist. An empty sessionID creates a new session.
// The previous selection is overwritten. An unknown sessionID is adopted, so
// callers holding client-supplied IDs must check the store first.
func (l *Loader) Load(ctx context.Context, sessionID, name string, r io.Reader) (*session.Session, error) {
	if l.Store == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no session store configured")
	}

	text, err := l.read(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess, err := l.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Select(filepath.Base(name), text)
	sess.Extend(l.ttl())

	if err := l.Store.Set(ctx, sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "store selection")
	}

	l.logger().Debug("file loaded", "session", sess.ID, "file", sess.FileName, "bytes", sess.Size)
	return sess, nil
}

// LoadFile opens path and loads it into sessionID.
func (l *Loader) LoadFile(ctx context.Context, sessionID, path string) (*session.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s is a directory", path)
		}
		if info.Size() > l.maxBytes() {
			return nil, tooLarge(l.maxBytes())
		}
	}
	return l.Load(ctx, sessionID, path, f)
}

// LoadURL fetches an http(s) URL and loads the body into sessionID.
func (l *Loader) LoadURL(ctx context.Context, sessionID, rawURL string) (*session.Session, error) {
	if l.Fetcher == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "remote sources are disabled")
	}
	f := *l.Fetcher
	f.MaxBytes = l.maxBytes()

	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		if stderrors.Is(err, httputil.ErrTooLarge) {
			return nil, tooLarge(l.maxBytes())
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "fetch %s", rawURL)
	}
	return l.Load(ctx, sessionID, path.Base(rawURL), bytes.NewReader(body))
}

// Source loads src as a URL when it looks like one, otherwise as a file path.
func (l *Loader) Source(ctx context.Context, sessionID, src string) (*session.Session, error) {
	if httputil.IsURL(src) {
		return l.LoadURL(ctx, sessionID, src)
	}
	return l.LoadFile(ctx, sessionID, src)
}

func (l *Loader) read(r io.Reader) (string, error) {
	limit := l.maxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read file")
	}
	if int64(len(data)) > limit {
		return "", tooLarge(limit)
	}
	return string(data), nil
}

func (l *Loader) session(ctx context.Context, sessionID string) (*session.Session, error) {
	if sessionID == "" {
		return session.New(l.ttl())
	}
	sess, err := l.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load session")
	}
	if sess != nil {
		return sess, nil
	}
	return session.NewWithID(sessionID, l.ttl())
}

func (l *Loader) maxBytes() int64 {
	if l.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return l.MaxBytes
}

func (l *Loader) ttl() time.Duration {
	if l.TTL <= 0 {
		return session.DefaultTTL
	}
	return l.TTL
}

func (l *Loader) logger() *log.Logger {
	if l.Logger == nil {
		return log.Default()
	}
	return l.Logger
}

func tooLarge(limit int64) error {
	return errors.New(errors.ErrCodeFileTooLarge, "file exceeds the %s limit", formatBytes(limit))
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MiB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KiB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
