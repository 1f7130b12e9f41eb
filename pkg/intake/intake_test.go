package intake

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/httputil"
	"github.com/matzehuels/svg2png/pkg/session"
)

func newLoader() (*Loader, *session.MemoryStore) {
	store := session.NewMemoryStore()
	return NewLoader(store, log.New(os.Stderr)), store
}

func TestLoadCreatesSession(t *testing.T) {
	l, store := newLoader()
	ctx := context.Background()

	sess, err := l.Load(ctx, "abc", "dir/logo.svg", strings.NewReader("<svg/>"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.ID != "abc" || sess.FileName != "logo.svg" || sess.SVGText != "<svg/>" {
		t.Errorf("Load = %+v", sess)
	}

	stored, _ := store.Get(ctx, "abc")
	if stored == nil || stored.SVGText != "<svg/>" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestLoadNewSessionWhenIDEmpty(t *testing.T) {
	l, store := newLoader()
	sess, err := l.Load(context.Background(), "", "a.svg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected generated session id")
	}
	if store.Len() != 1 {
		t.Errorf("store has %d sessions, want 1", store.Len())
	}
}

func TestLoadOverwritesSelection(t *testing.T) {
	l, store := newLoader()
	ctx := context.Background()

	first, _ := l.Load(ctx, "s", "a.svg", strings.NewReader("first"))
	snapshot := first.Snapshot()

	if _, err := l.Load(ctx, "s", "b.svg", strings.NewReader("second")); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, _ := store.Get(ctx, "s")
	if got.SVGText != "second" || got.FileName != "b.svg" {
		t.Errorf("stored = %+v, want second selection", got)
	}
	if snapshot != "first" {
		t.Errorf("earlier snapshot changed to %q", snapshot)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Error("reloading should keep the session's creation time")
	}
}

func TestLoadTooLarge(t *testing.T) {
	l, store := newLoader()
	l.MaxBytes = 8

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"under limit", "1234567", false},
		{"at limit", "12345678", false},
		{"over limit", "123456789", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(context.Background(), "s", "a.svg", strings.NewReader(tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeFileTooLarge) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeFileTooLarge)
			}
		})
	}

	// A rejected file leaves the previous selection in place.
	got, _ := store.Get(context.Background(), "s")
	if got == nil || got.SVGText != "12345678" {
		t.Errorf("stored = %+v, want last accepted selection", got)
	}
}

func TestLoadDoesNotValidateMarkup(t *testing.T) {
	l, _ := newLoader()
	sess, err := l.Load(context.Background(), "s", "notes.txt", strings.NewReader("not svg at all"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.SVGText != "not svg at all" {
		t.Errorf("SVGText = %q", sess.SVGText)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icon.svg")
	if err := os.WriteFile(path, []byte("<svg></svg>"), 0644); err != nil {
		t.Fatal(err)
	}

	l, _ := newLoader()
	ctx := context.Background()

	sess, err := l.LoadFile(ctx, "cli", path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if sess.FileName != "icon.svg" || sess.SVGText != "<svg></svg>" {
		t.Errorf("LoadFile = %+v", sess)
	}

	if _, err := l.LoadFile(ctx, "cli", filepath.Join(dir, "missing.svg")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing file error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if _, err := l.LoadFile(ctx, "cli", dir); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("directory error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}

	l.MaxBytes = 4
	if _, err := l.LoadFile(ctx, "cli", path); !errors.Is(err, errors.ErrCodeFileTooLarge) {
		t.Errorf("large file error = %v, want %s", err, errors.ErrCodeFileTooLarge)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{10 << 20, "10 MiB"},
		{4 << 10, "4 KiB"},
		{100, "100 bytes"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img/remote.svg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<svg>remote</svg>"))
	}))
	defer srv.Close()

	l, _ := newLoader()
	ctx := context.Background()

	if _, err := l.LoadURL(ctx, "s", srv.URL+"/img/remote.svg"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("without fetcher err = %v, want %s", err, errors.ErrCodeUnsupported)
	}

	f := httputil.NewFetcher(nil)
	f.Delay = time.Millisecond
	l.Fetcher = f

	sess, err := l.Source(ctx, "s", srv.URL+"/img/remote.svg")
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	if sess.FileName != "remote.svg" || sess.SVGText != "<svg>remote</svg>" {
		t.Errorf("Source = %+v", sess)
	}

	if _, err := l.LoadURL(ctx, "s", srv.URL+"/missing.svg"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("404 err = %v, want %s", err, errors.ErrCodeInvalidInput)
	}

	l.MaxBytes = 4
	if _, err := l.LoadURL(ctx, "s", srv.URL+"/img/remote.svg"); !errors.Is(err, errors.ErrCodeFileTooLarge) {
		t.Errorf("large body err = %v, want %s", err, errors.ErrCodeFileTooLarge)
	}
}
