package raster

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

// RSVGEngine shells out to rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RSVGEngine struct {
	binary string
}

// NewRSVGEngine creates an engine using rsvg-convert from PATH.
func NewRSVGEngine() *RSVGEngine {
	return &RSVGEngine{binary: "rsvg-convert"}
}

// Name returns the name of this engine.
func (e *RSVGEngine) Name() string {
	return EngineRSVG
}

// Available checks if rsvg-convert is available in PATH.
func (e *RSVGEngine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Render converts the staged file with the zoom factor set to opts.Scale.
func (e *RSVGEngine) Render(ctx context.Context, m *svgdoc.Mount, opts Options) ([]byte, error) {
	if !e.Available() {
		return nil, NewConverterError(e.Name(), "convert", fmt.Errorf("png export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin"))
	}
	args := []string{"-f", "png", "-z", strconv.FormatFloat(opts.Scale, 'f', 2, 64), m.Path()}
	return runConverter(ctx, e.Name(), e.binary, args)
}

// InkscapeEngine shells out to Inkscape (1.x command line).
type InkscapeEngine struct {
	binary string
}

// NewInkscapeEngine creates an engine using inkscape from PATH.
func NewInkscapeEngine() *InkscapeEngine {
	return &InkscapeEngine{binary: "inkscape"}
}

// Name returns the name of this engine.
func (e *InkscapeEngine) Name() string {
	return EngineInkscape
}

// Available checks if inkscape is available in PATH.
func (e *InkscapeEngine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Render exports the staged file to stdout at 96 dpi times opts.Scale.
func (e *InkscapeEngine) Render(ctx context.Context, m *svgdoc.Mount, opts Options) ([]byte, error) {
	if !e.Available() {
		return nil, NewConverterError(e.Name(), "convert", fmt.Errorf("inkscape not found in PATH"))
	}
	args := []string{
		m.Path(),
		"--export-type=png",
		"--export-filename=-",
		"--export-dpi=" + strconv.Itoa(int(96*opts.Scale+0.5)),
	}
	return runConverter(ctx, e.Name(), e.binary, args)
}

// runConverter runs a converter binary and returns its stdout.
func runConverter(ctx context.Context, name, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, NewConverterError(name, "convert", fmt.Errorf("%v: %s", err, errBuf.String()))
	}
	if out.Len() == 0 {
		return nil, NewConverterError(name, "convert", fmt.Errorf("got no data from %s", binary))
	}
	return out.Bytes(), nil
}
