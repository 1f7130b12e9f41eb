package cli

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2png/pkg/cache"
	"github.com/matzehuels/svg2png/pkg/config"
	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/session"
)

const testSVG = `<svg width="10" height="20"><rect width="10" height="20" fill="red"/></svg>`

// newTestCLI returns a CLI with an in-memory config whose state lives in
// temp dirs, and the dir used for outputs.
func newTestCLI(t *testing.T) (*CLI, *config.Config, string) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Raster.Engine = "oksvg"
	cfg.Cache.Backend = config.BackendNone
	cfg.Session.Dir = t.TempDir()
	cfg.Convert.OutputDir = t.TempDir()

	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.cfg = cfg
	return c, cfg, cfg.Convert.OutputDir
}

func writeSVG(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRunConvertDownload(t *testing.T) {
	c, _, out := newTestCLI(t)
	src := writeSVG(t, "logo.svg", testSVG)

	err := c.runConvert(context.Background(), src, convertOpts{scale: 2})
	if err != nil {
		t.Fatalf("runConvert() error: %v", err)
	}

	w, h := decodeSize(t, filepath.Join(out, "logo.png"))
	if w != 20 || h != 40 {
		t.Errorf("output size = %dx%d, want 20x40", w, h)
	}
}

func TestRunConvertOutputName(t *testing.T) {
	c, _, out := newTestCLI(t)
	src := writeSVG(t, "logo.svg", testSVG)

	if err := c.runConvert(context.Background(), src, convertOpts{output: "icon"}); err != nil {
		t.Fatalf("runConvert() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "icon.png")); err != nil {
		t.Errorf("expected icon.png: %v", err)
	}
}

func TestRunConvertErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int64
		want    errors.Code
	}{
		{"too large", testSVG, 16, errors.ErrCodeFileTooLarge},
		{"no svg root", "<div>nope</div>", 0, errors.ErrCodeNoSVGRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, cfg, _ := newTestCLI(t)
			if tt.max > 0 {
				cfg.Convert.MaxFileBytes = tt.max
			}
			src := writeSVG(t, "in.svg", tt.content)

			err := c.runConvert(context.Background(), src, convertOpts{})
			if !errors.Is(err, tt.want) {
				t.Errorf("runConvert() error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestSelectThenDownload(t *testing.T) {
	c, _, out := newTestCLI(t)
	src := writeSVG(t, "logo.svg", testSVG)

	root := c.RootCommand()
	root.SetArgs([]string{"select", src})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("select: %v", err)
	}

	root = c.RootCommand()
	root.SetArgs([]string{"download", "--scale", "1.5"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("download: %v", err)
	}

	w, h := decodeSize(t, filepath.Join(out, "converted-image.png"))
	if w != 15 || h != 30 {
		t.Errorf("output size = %dx%d, want 15x30", w, h)
	}
}

func TestDownloadWithoutSelection(t *testing.T) {
	c, _, _ := newTestCLI(t)

	root := c.RootCommand()
	root.SetArgs([]string{"download"})
	root.SilenceErrors = true
	err := root.ExecuteContext(context.Background())
	if !errors.Is(err, errors.ErrCodeNoSelection) {
		t.Errorf("download error = %v, want NO_SELECTION", err)
	}
}

func TestNewCache(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		noCache bool
		isFile  bool
	}{
		{"file", config.BackendFile, false, true},
		{"no-cache flag", config.BackendFile, true, false},
		{"none", config.BackendNone, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Backend = tt.backend
			cfg.Cache.Dir = t.TempDir()

			c, err := newCache(context.Background(), cfg, tt.noCache)
			if err != nil {
				t.Fatal(err)
			}
			defer c.Close()

			_, isFile := c.(*cache.FileCache)
			if isFile != tt.isFile {
				t.Errorf("newCache() = %T, want file cache %v", c, tt.isFile)
			}
		})
	}
}

func TestCLISessionPromotesMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Dir = t.TempDir()

	store, id, closeStore, err := cliSession(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()

	if id != session.CLIID {
		t.Errorf("id = %q, want %q", id, session.CLIID)
	}
	if _, ok := store.(*session.CLIStore); !ok {
		t.Errorf("store = %T, want *session.CLIStore", store)
	}
}

func TestNewStoreMemory(t *testing.T) {
	store, closeStore, err := newStore(context.Background(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()

	if _, ok := store.(*session.MemoryStore); !ok {
		t.Errorf("store = %T, want *session.MemoryStore", store)
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := newLogHooks(newLogger(&buf, log.DebugLevel))
	ctx := context.Background()

	h.OnConvertStart(ctx, "data-uri")
	h.OnCacheHit(ctx, "artifact:abc")
	h.OnEngineFallback(ctx, "rsvg-convert", os.ErrNotExist)

	out := buf.String()
	for _, want := range []string{"conversion started", "cache hit", "artifact:abc", "rsvg-convert"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestPurgeSessions(t *testing.T) {
	store := session.NewMemoryStore()
	expired, _ := session.NewWithID("old", time.Nanosecond)
	live, _ := session.NewWithID("new", time.Hour)
	ctx := context.Background()
	_ = store.Set(ctx, expired)
	_ = store.Set(ctx, live)

	ctx, cancel := context.WithCancel(withLogger(ctx, newLogger(&bytes.Buffer{}, log.InfoLevel)))
	done := make(chan struct{})
	go func() {
		purgeSessions(ctx, store, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for store.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	if _, err := store.Get(context.Background(), "new"); err != nil {
		t.Errorf("live session was purged: %v", err)
	}
}

func TestMainExitCodes(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	ctx := context.Background()

	var stderr bytes.Buffer
	if code := Main(ctx, []string{"--bogus"}, &stderr); code != 1 {
		t.Errorf("Main(--bogus) = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "bogus") {
		t.Errorf("stderr %q should name the bad flag", stderr.String())
	}

	if code := Main(ctx, []string{"-v", "config", "path"}, &bytes.Buffer{}); code != 0 {
		t.Errorf("Main(config path) = %d, want 0", code)
	}
}
