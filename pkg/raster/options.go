package raster

import (
	"image/png"

	"github.com/matzehuels/svg2png/pkg/errors"
)

const (
	// DefaultScale is used when no device pixel ratio is known.
	DefaultScale = 1.0

	// MaxQuality is the encoder quality requested by the orchestrator.
	MaxQuality = 1.0
)

// Options configures a single rasterization.
type Options struct {
	// Scale multiplies the intrinsic SVG size. Must be > 0.
	Scale float64 `json:"scale"`

	// EncoderQuality in [0, 1]; 1 is maximum quality.
	EncoderQuality float64 `json:"encoder_quality"`
}

// DefaultOptions returns scale 1 at maximum quality.
func DefaultOptions() Options {
	return Options{Scale: DefaultScale, EncoderQuality: MaxQuality}
}

// Validate checks both fields.
func (o Options) Validate() error {
	if err := errors.ValidateScale(o.Scale); err != nil {
		return err
	}
	return errors.ValidateQuality(o.EncoderQuality)
}

// compression maps the encoder quality onto a PNG compression level.
func (o Options) compression() png.CompressionLevel {
	if o.EncoderQuality >= 0.5 {
		return png.DefaultCompression
	}
	return png.BestSpeed
}
