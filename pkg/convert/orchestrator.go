package convert

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/observability"
	"github.com/matzehuels/svg2png/pkg/raster"
	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

// DefaultTimeout bounds a single conversion.
const DefaultTimeout = 30 * time.Second

// Rasterizer is the external collaborator that turns a mounted element into a PNG.
// *raster.Rasterizer implements it.
type Rasterizer interface {
	// SavePNG renders m and hands the PNG to dst under filename.
	SavePNG(ctx context.Context, m *svgdoc.Mount, filename string, opts raster.Options, dst raster.Saver) error

	// PNGDataURI renders m and returns a data:image/png;base64 URI.
	// An empty string means the rasterizer produced nothing.
	PNGDataURI(ctx context.Context, m *svgdoc.Mount, opts raster.Options) (string, error)
}

// Orchestrator runs conversions. It is safe for concurrent use as long as its
// fields are not modified after the first call.
type Orchestrator struct {
	Rasterizer Rasterizer
	Document   *svgdoc.Document

	// Saver receives download-mode PNGs unless a Request carries its own.
	Saver raster.Saver

	// Display, if set, is shown every data URI preview.
	Display Display

	// Scale is the device pixel ratio. Values that are not positive
	// finite numbers mean 1.
	Scale float64

	// Timeout bounds each conversion. Zero disables the bound.
	Timeout time.Duration

	Logger *log.Logger
}

// NewOrchestrator creates an orchestrator with scale 1 and DefaultTimeout.
func NewOrchestrator(r Rasterizer, doc *svgdoc.Document, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		Rasterizer: r,
		Document:   doc,
		Scale:      raster.DefaultScale,
		Timeout:    DefaultTimeout,
		Logger:     logger,
	}
}

// Request describes one conversion.
type Request struct {
	// Text is the SVG markup. It is captured by value when the call starts.
	Text string

	// Filename is handed to the saver as given. Names containing a path
	// are rejected; ignored in data URI mode.
	Filename string

	Mode Mode

	// Saver overrides Orchestrator.Saver for this request.
	Saver raster.Saver

	// Scale overrides Orchestrator.Scale when positive.
	Scale float64
}

// Result describes a finished conversion.
type Result struct {
	Mode     Mode           `json:"mode"`
	Filename string         `json:"filename,omitempty"`
	URI      string         `json:"uri,omitempty"`
	Preview  *Preview       `json:"preview,omitempty"`
	Options  raster.Options `json:"options"`
	Duration time.Duration  `json:"duration"`
}

// Convert converts text in the given mode.
func (o *Orchestrator) Convert(ctx context.Context, text, filename string, mode Mode) (*Result, error) {
	return o.Do(ctx, Request{Text: text, Filename: filename, Mode: mode})
}

// Do runs req and waits for the rasterizer to finish. Failures are logged
// once and returned with an error code.
func (o *Orchestrator) Do(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	observability.Convert().OnConvertStart(ctx, req.Mode.String())

	res, err := o.run(ctx, req)

	elapsed := time.Since(start)
	observability.Convert().OnConvertComplete(ctx, req.Mode.String(), elapsed, err)
	if err != nil {
		o.logger().Error("conversion failed", "mode", req.Mode, "err", err)
		return nil, err
	}
	res.Duration = elapsed
	o.logger().Debug("conversion complete", "mode", req.Mode, "scale", res.Options.Scale, "duration", elapsed)
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request) (res *Result, err error) {
	if !req.Mode.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidOptions, "unknown mode %q", req.Mode)
	}
	if o.Rasterizer == nil || o.Document == nil {
		return nil, errors.New(errors.ErrCodeInternal, "orchestrator not configured")
	}

	filename := req.Filename
	saver := req.Saver
	if req.Mode == ModeDownload {
		if filename != "" {
			if err := errors.ValidateFilename(filename); err != nil {
				return nil, err
			}
		}
		if saver == nil {
			saver = o.Saver
		}
		if saver == nil {
			return nil, errors.New(errors.ErrCodeInvalidOptions, "no destination for download")
		}
	}

	el, err := svgdoc.Parse(req.Text)
	if err != nil {
		return nil, err
	}
	el.EnsureNamespace()

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	m, err := o.Document.Attach(el)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stage svg")
	}
	defer func() {
		if derr := m.Detach(); derr != nil {
			o.logger().Warn("detach staged svg", "mount", m.ID(), "err", derr)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, errors.New(errors.ErrCodeRasterize, "rasterizer panicked: %v", r)
		}
	}()

	opts := raster.Options{Scale: o.scale(req.Scale), EncoderQuality: raster.MaxQuality}
	res = &Result{Mode: req.Mode, Options: opts}

	switch req.Mode {
	case ModeDownload:
		if err := o.Rasterizer.SavePNG(ctx, m, filename, opts, saver); err != nil {
			return nil, classify(ctx, err)
		}
		res.Filename = filename

	case ModeDataURI:
		uri, err := o.Rasterizer.PNGDataURI(ctx, m, opts)
		if err != nil {
			return nil, classify(ctx, err)
		}
		if uri == "" {
			return nil, errors.New(errors.ErrCodeNoURI, "rasterization produced no URI")
		}
		preview := NewPreview(uri)
		res.URI = uri
		res.Preview = &preview
		if o.Display != nil {
			o.Display.Show(ctx, preview)
		}
	}
	return res, nil
}

// scale picks the per-request scale, then the orchestrator's, then 1.
func (o *Orchestrator) scale(override float64) float64 {
	for _, s := range []float64{override, o.Scale} {
		if s > 0 && !math.IsInf(s, 0) {
			return s
		}
	}
	return raster.DefaultScale
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

// classify gives uncoded rasterizer errors a code.
func classify(ctx context.Context, err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "conversion timed out")
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}
	return errors.Wrap(errors.ErrCodeRasterize, err, "rasterize")
}

// String describes the orchestrator for logs.
func (o *Orchestrator) String() string {
	return fmt.Sprintf("orchestrator(scale=%v, timeout=%s)", o.scale(0), o.Timeout)
}
