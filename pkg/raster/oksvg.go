package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

// Browsers size an <svg> with no usable width, height or viewBox as 300x150.
const (
	defaultWidth  = 300
	defaultHeight = 150
)

// maxPixels bounds the output image (roughly a 16k x 16k canvas).
const maxPixels = 16384 * 16384

// OKSVGEngine rasterizes in-process with srwiley/oksvg and srwiley/rasterx.
type OKSVGEngine struct{}

// NewOKSVGEngine creates the pure Go engine.
func NewOKSVGEngine() *OKSVGEngine {
	return &OKSVGEngine{}
}

// Name returns the name of this engine.
func (e *OKSVGEngine) Name() string {
	return EngineOKSVG
}

// Available is always true; the engine has no external dependencies.
func (e *OKSVGEngine) Available() bool {
	return true
}

// Render draws the element at its intrinsic size multiplied by opts.Scale.
func (e *OKSVGEngine) Render(ctx context.Context, m *svgdoc.Mount, opts Options) (out []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// oksvg panics on some malformed path data.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, NewConverterError(e.Name(), "draw", fmt.Errorf("panic: %v", r))
		}
	}()

	icon, err := oksvg.ReadIconStream(bytes.NewReader(m.Markup()), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, NewConverterError(e.Name(), "parse", err)
	}

	w, h := intrinsicSize(m.Element(), icon.ViewBox.W, icon.ViewBox.H)
	outW, outH, err := canvasSize(w, h, opts.Scale)
	if err != nil {
		return nil, NewConverterError(e.Name(), "size", err)
	}

	icon.SetTarget(0, 0, float64(outW), float64(outH))
	img := image.NewRGBA(image.Rect(0, 0, outW, outH))
	scanner := rasterx.NewScannerGV(outW, outH, img, img.Bounds())
	raster := rasterx.NewDasher(outW, outH, scanner)
	icon.Draw(raster, 1.0)

	enc := png.Encoder{CompressionLevel: opts.compression()}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, NewConverterError(e.Name(), "encode", err)
	}
	return buf.Bytes(), nil
}

// canvasSize scales the intrinsic size to whole output pixels. The area is
// checked in float64 so huge dimensions cannot wrap around in int.
func canvasSize(w, h, scale float64) (int, int, error) {
	fw, fh := math.Ceil(w*scale), math.Ceil(h*scale)
	if math.IsNaN(fw) || math.IsNaN(fh) || fw <= 0 || fh <= 0 {
		return 0, 0, fmt.Errorf("empty canvas %gx%g", fw, fh)
	}
	if fw*fh > maxPixels {
		return 0, 0, fmt.Errorf("canvas %gx%g too large", fw, fh)
	}
	return int(fw), int(fh), nil
}

// intrinsicSize resolves the CSS pixel size of the root element: explicit
// width/height attributes first, then the viewBox, then the browser default.
// A single explicit dimension is completed from the viewBox aspect ratio.
func intrinsicSize(el *svgdoc.Element, vbW, vbH float64) (float64, float64) {
	w, wOK := lengthAttr(el, "width")
	h, hOK := lengthAttr(el, "height")

	switch {
	case wOK && hOK:
		return w, h
	case wOK && vbW > 0 && vbH > 0:
		return w, w * vbH / vbW
	case hOK && vbW > 0 && vbH > 0:
		return h * vbW / vbH, h
	case vbW > 0 && vbH > 0:
		return vbW, vbH
	}

	if !wOK {
		w = defaultWidth
	}
	if !hOK {
		h = defaultHeight
	}
	return w, h
}

// unitPx converts absolute CSS units to pixels.
var unitPx = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
}

// lengthAttr parses an absolute length attribute. Percentages and relative
// units (em, %) are reported as absent.
func lengthAttr(el *svgdoc.Element, key string) (float64, bool) {
	if el == nil {
		return 0, false
	}
	raw, ok := el.Attr(key)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSpace(raw)

	i := len(raw)
	for i > 0 && (raw[i-1] >= 'a' && raw[i-1] <= 'z') {
		i--
	}
	factor, known := unitPx[raw[i:]]
	if !known {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw[:i], 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * factor, true
}
