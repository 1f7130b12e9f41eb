package raster

import (
	"context"
	"fmt"

	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

// Rasterizer turns a mounted element into either a saved PNG or a data URI.
type Rasterizer struct {
	Engine Engine
}

// NewRasterizer creates a rasterizer over engine.
func NewRasterizer(engine Engine) *Rasterizer {
	return &Rasterizer{Engine: engine}
}

// SavePNG renders m and hands the PNG to dst under filename.
func (r *Rasterizer) SavePNG(ctx context.Context, m *svgdoc.Mount, filename string, opts Options, dst Saver) error {
	if dst == nil {
		return errors.New(errors.ErrCodeInvalidOptions, "no saver configured")
	}
	data, err := r.render(ctx, m, opts)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New(errors.ErrCodeRasterize, "%s produced no image data", r.Engine.Name())
	}
	if err := dst.Save(ctx, filename, data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save %s", filename)
	}
	return nil
}

// PNGDataURI renders m and returns it as a data URI.
// An engine that produces no bytes yields "" and no error.
func (r *Rasterizer) PNGDataURI(ctx context.Context, m *svgdoc.Mount, opts Options) (string, error) {
	data, err := r.render(ctx, m, opts)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(data), nil
}

func (r *Rasterizer) render(ctx context.Context, m *svgdoc.Mount, opts Options) ([]byte, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing mounted")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if r.Engine == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no rasterization engine configured")
	}
	data, err := r.Engine.Render(ctx, m, opts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctxErr, "rasterize")
		}
		return nil, errors.Wrap(errors.ErrCodeRasterize, err, "rasterize with %s", r.Engine.Name())
	}
	return data, nil
}

// String describes the rasterizer for logs.
func (r *Rasterizer) String() string {
	if r.Engine == nil {
		return "rasterizer(<none>)"
	}
	return fmt.Sprintf("rasterizer(%s)", r.Engine.Name())
}
