package raster

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/svg2png/pkg/cache"
	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="20"><rect width="10" height="20" fill="red"/></svg>`

func mount(t *testing.T, markup string) *svgdoc.Mount {
	t.Helper()
	doc, err := svgdoc.NewDocument(t.TempDir())
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	t.Cleanup(func() { doc.Close() })

	el, err := svgdoc.Parse(markup)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, err := doc.Attach(el)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return m
}

// stubEngine returns fixed data or a fixed error and counts calls.
type stubEngine struct {
	name      string
	available bool
	data      []byte
	err       error
	calls     atomic.Int32
}

func (s *stubEngine) Name() string    { return s.name }
func (s *stubEngine) Available() bool { return s.available }
func (s *stubEngine) Render(ctx context.Context, m *svgdoc.Mount, opts Options) ([]byte, error) {
	s.calls.Add(1)
	return s.data, s.err
}

func TestOKSVGEngineRender(t *testing.T) {
	m := mount(t, testSVG)
	e := NewOKSVGEngine()

	tests := []struct {
		scale      float64
		wantWidth  int
		wantHeight int
	}{
		{1, 10, 20},
		{2, 20, 40},
		{1.5, 15, 30},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("scale=%v", tt.scale), func(t *testing.T) {
			data, err := e.Render(context.Background(), m, Options{Scale: tt.scale, EncoderQuality: 1})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode png: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.wantWidth || b.Dy() != tt.wantHeight {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestOKSVGEngineCancelled(t *testing.T) {
	m := mount(t, testSVG)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewOKSVGEngine().Render(ctx, m, DefaultOptions()); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestOKSVGEngineHugeCanvas(t *testing.T) {
	m := mount(t, `<svg xmlns="http://www.w3.org/2000/svg" width="4294967296" height="4294967296"></svg>`)

	_, err := NewOKSVGEngine().Render(context.Background(), m, DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("Render err = %v, want too large", err)
	}
}

func TestCanvasSize(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		scale   float64
		wantW   int
		wantH   int
		wantErr bool
	}{
		{"rounds up", 10.2, 3, 1, 11, 3, false},
		{"scaled", 10, 20, 2, 20, 40, false},
		{"at limit", 16384, 16384, 1, 16384, 16384, false},
		{"over limit", 16385, 16384, 1, 0, 0, true},
		{"int overflow", 4294967296, 4294967296, 1, 0, 0, true},
		{"zero", 0, 10, 1, 0, 0, true},
		{"nan", math.NaN(), 10, 1, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := canvasSize(tt.w, tt.h, tt.scale)
			if (err != nil) != tt.wantErr || w != tt.wantW || h != tt.wantH {
				t.Errorf("canvasSize = %dx%d, %v", w, h, err)
			}
		})
	}
}

func TestPlaywrightTimeout(t *testing.T) {
	if got := playwrightTimeout(context.Background()); got != nil {
		t.Errorf("no deadline: got %v, want nil", *got)
	}

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if got := playwrightTimeout(expired); got == nil || *got != 1 {
		t.Errorf("expired deadline: got %v, want 1ms", got)
	}

	ctx, cancel2 := context.WithTimeout(context.Background(), time.Minute)
	defer cancel2()
	if got := playwrightTimeout(ctx); got == nil || *got < 1000 || *got > 60000 {
		t.Errorf("one minute deadline: got %v", got)
	}
}

func TestLengthAttr(t *testing.T) {
	tests := []struct {
		value  string
		want   float64
		wantOK bool
	}{
		{"10", 10, true},
		{"12.5px", 12.5, true},
		{"1in", 96, true},
		{" 72pt ", 96, true},
		{"50%", 0, false},
		{"2em", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			el, err := svgdoc.Parse(fmt.Sprintf(`<svg width=%q></svg>`, tt.value))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got, ok := lengthAttr(el, "width")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (got < tt.want-1e-9 || got > tt.want+1e-9) {
				t.Errorf("lengthAttr = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntrinsicSize(t *testing.T) {
	tests := []struct {
		name         string
		markup       string
		vbW, vbH     float64
		wantW, wantH float64
	}{
		{"explicit", `<svg width="40" height="30"></svg>`, 0, 0, 40, 30},
		{"viewbox only", `<svg></svg>`, 80, 60, 80, 60},
		{"width from viewbox ratio", `<svg width="40"></svg>`, 80, 60, 40, 30},
		{"height from viewbox ratio", `<svg height="30"></svg>`, 80, 60, 40, 30},
		{"browser default", `<svg></svg>`, 0, 0, 300, 150},
		{"width only no viewbox", `<svg width="50"></svg>`, 0, 0, 50, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := svgdoc.Parse(tt.markup)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			w, h := intrinsicSize(el, tt.vbW, tt.vbH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("intrinsicSize = %vx%v, want %vx%v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestChainFallback(t *testing.T) {
	m := mount(t, testSVG)

	broken := &stubEngine{name: "broken", available: true, err: fmt.Errorf("boom")}
	missing := &stubEngine{name: "missing", available: false, data: []byte("never")}
	good := &stubEngine{name: "good", available: true, data: []byte("png")}

	chain := NewChain("", broken, missing, good)
	data, err := chain.Render(context.Background(), m, DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(data) != "png" {
		t.Errorf("data = %q, want %q", data, "png")
	}
	if broken.calls.Load() != 1 || missing.calls.Load() != 0 || good.calls.Load() != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/0/1", broken.calls.Load(), missing.calls.Load(), good.calls.Load())
	}
	if got := chain.AvailableNames(); len(got) != 2 || got[0] != "broken" || got[1] != "good" {
		t.Errorf("AvailableNames = %v", got)
	}
}

func TestChainPreferred(t *testing.T) {
	m := mount(t, testSVG)

	first := &stubEngine{name: "first", available: true, data: []byte("a")}
	second := &stubEngine{name: "second", available: true, data: []byte("b")}

	data, err := NewChain("second", first, second).Render(context.Background(), m, DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(data) != "b" {
		t.Errorf("data = %q, want preferred engine output", data)
	}
	if first.calls.Load() != 0 {
		t.Error("non-preferred engine should not run when the preferred one succeeds")
	}
}

func TestChainStopsOnCancel(t *testing.T) {
	m := mount(t, testSVG)

	cancelled := &stubEngine{name: "slow", available: true, err: context.Canceled}
	next := &stubEngine{name: "next", available: true, data: []byte("x")}

	_, err := NewChain("", cancelled, next).Render(context.Background(), m, DefaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	if next.calls.Load() != 0 {
		t.Error("chain should stop after cancellation")
	}
}

func TestChainNoEngines(t *testing.T) {
	m := mount(t, testSVG)
	chain := NewChain("", &stubEngine{name: "off"})
	if chain.Available() {
		t.Error("Available() = true with no available engines")
	}
	if _, err := chain.Render(context.Background(), m, DefaultOptions()); err == nil {
		t.Error("expected error with no available engines")
	}
}

func TestDefaultChainUnknown(t *testing.T) {
	if _, err := DefaultChain("gimp", false); err == nil {
		t.Error("expected error for unknown engine")
	}
	chain, err := DefaultChain(EngineAuto, false)
	if err != nil {
		t.Fatalf("DefaultChain: %v", err)
	}
	names := chain.AvailableNames()
	if len(names) == 0 || names[0] != EngineOKSVG {
		t.Errorf("AvailableNames = %v, want oksvg first", names)
	}
	for _, n := range names {
		if n == EngineBrowser {
			t.Error("browser engine should be unavailable when disabled")
		}
	}
}

func TestCachedEngine(t *testing.T) {
	m := mount(t, testSVG)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	inner := &stubEngine{name: "stub", available: true, data: []byte("png-bytes")}
	e := NewCachedEngine(inner, c, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		data, err := e.Render(ctx, m, DefaultOptions())
		if err != nil {
			t.Fatalf("Render #%d: %v", i, err)
		}
		if string(data) != "png-bytes" {
			t.Errorf("Render #%d = %q", i, data)
		}
	}
	if inner.calls.Load() != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls.Load())
	}

	// A different scale is a different artifact.
	if _, err := e.Render(ctx, m, Options{Scale: 2, EncoderQuality: 1}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if inner.calls.Load() != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls.Load())
	}
}

func TestDataURI(t *testing.T) {
	if got := EncodeDataURI(nil); got != "" {
		t.Errorf("EncodeDataURI(nil) = %q, want empty", got)
	}

	uri := EncodeDataURI([]byte{0x89, 'P', 'N', 'G'})
	if uri != "data:image/png;base64,iVBORw==" {
		t.Errorf("EncodeDataURI = %q", uri)
	}
	data, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("DecodeDataURI = %q", data)
	}

	if _, err := DecodeDataURI("data:image/jpeg;base64,AAAA"); err == nil {
		t.Error("expected error for non-png data URI")
	}
}

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := DirSaver{Dir: dir}

	if err := s.Save(context.Background(), "../escape.png", []byte("png")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "escape.png"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(got) != "png" {
		t.Errorf("saved = %q", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1 (no temp files left)", len(entries))
	}

	for _, name := range []string{"", "/"} {
		if err := s.Save(context.Background(), name, []byte("png")); err == nil {
			t.Errorf("Save(%q) succeeded, want error", name)
		}
	}
}

func TestRasterizer(t *testing.T) {
	m := mount(t, testSVG)
	ctx := context.Background()

	t.Run("data uri", func(t *testing.T) {
		r := NewRasterizer(&stubEngine{name: "stub", available: true, data: []byte("x")})
		uri, err := r.PNGDataURI(ctx, m, DefaultOptions())
		if err != nil {
			t.Fatalf("PNGDataURI: %v", err)
		}
		if uri != "data:image/png;base64,eA==" {
			t.Errorf("uri = %q", uri)
		}
	})

	t.Run("empty output yields empty uri", func(t *testing.T) {
		r := NewRasterizer(&stubEngine{name: "stub", available: true})
		uri, err := r.PNGDataURI(ctx, m, DefaultOptions())
		if err != nil || uri != "" {
			t.Errorf("PNGDataURI = %q, %v; want empty, nil", uri, err)
		}
	})

	t.Run("save", func(t *testing.T) {
		r := NewRasterizer(&stubEngine{name: "stub", available: true, data: []byte("x")})
		var gotName string
		var gotData []byte
		saver := SaverFunc(func(_ context.Context, name string, data []byte) error {
			gotName, gotData = name, data
			return nil
		})
		if err := r.SavePNG(ctx, m, "out.png", DefaultOptions(), saver); err != nil {
			t.Fatalf("SavePNG: %v", err)
		}
		if gotName != "out.png" || string(gotData) != "x" {
			t.Errorf("saver got %q, %q", gotName, gotData)
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		r := NewRasterizer(&stubEngine{name: "stub", available: true, err: fmt.Errorf("boom")})
		_, err := r.PNGDataURI(ctx, m, DefaultOptions())
		if !errors.Is(err, errors.ErrCodeRasterize) {
			t.Errorf("err = %v, want %s", err, errors.ErrCodeRasterize)
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		r := NewRasterizer(&stubEngine{name: "stub", available: true, data: []byte("x")})
		_, err := r.PNGDataURI(ctx, m, Options{Scale: 0, EncoderQuality: 1})
		if !errors.Is(err, errors.ErrCodeInvalidOptions) {
			t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidOptions)
		}
	})
}
