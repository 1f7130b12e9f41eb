package raster

import (
	"context"
	"fmt"

	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

// Engine names accepted by NewEngine and the --engine flag.
const (
	EngineAuto     = "auto"
	EngineOKSVG    = "oksvg"
	EngineRSVG     = "rsvg-convert"
	EngineInkscape = "inkscape"
	EngineBrowser  = "browser"
)

// EngineNames lists the selectable engines in default fallback order.
var EngineNames = []string{EngineOKSVG, EngineRSVG, EngineInkscape, EngineBrowser}

// Engine renders a staged SVG element to PNG bytes.
type Engine interface {
	// Name returns the engine name.
	Name() string

	// Available reports whether the engine can run on this system.
	Available() bool

	// Render rasterizes the mounted element.
	Render(ctx context.Context, m *svgdoc.Mount, opts Options) ([]byte, error)
}

// ConverterError represents an error from an engine.
type ConverterError struct {
	Converter string
	Operation string
	Err       error
}

func (e *ConverterError) Error() string {
	return fmt.Sprintf("%s converter %s failed: %v", e.Converter, e.Operation, e.Err)
}

func (e *ConverterError) Unwrap() error {
	return e.Err
}

// NewConverterError creates a new converter error.
func NewConverterError(converter, operation string, err error) error {
	return &ConverterError{
		Converter: converter,
		Operation: operation,
		Err:       err,
	}
}

// NewEngine returns the engine registered under name.
// The browser engine is returned disabled unless enableBrowser is set,
// because it downloads Chromium on first use.
func NewEngine(name string, enableBrowser bool) (Engine, error) {
	switch name {
	case EngineOKSVG:
		return NewOKSVGEngine(), nil
	case EngineRSVG:
		return NewRSVGEngine(), nil
	case EngineInkscape:
		return NewInkscapeEngine(), nil
	case EngineBrowser:
		return NewBrowserEngine(enableBrowser), nil
	default:
		return nil, fmt.Errorf("unknown engine: %s (must be one of %v)", name, EngineNames)
	}
}
