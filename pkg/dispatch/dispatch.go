// Package dispatch implements the two user actions, "Download PNG" and
// "Get Base64". Each action reads the session's current selection, takes a
// snapshot of its text and hands it to the conversion orchestrator.
package dispatch

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svg2png/pkg/convert"
	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/raster"
	"github.com/matzehuels/svg2png/pkg/session"
)

// Messages logged by the actions.
const (
	MsgNoSelection    = "Please select an SVG file first"
	MsgDownloadFailed = "Download failed"
	MsgBase64Failed   = "Base64 generation failed"
)

// Converter runs a conversion request. *convert.Orchestrator implements it.
type Converter interface {
	Do(ctx context.Context, req convert.Request) (*convert.Result, error)
}

// Dispatcher binds the actions to a session store and a converter.
type Dispatcher struct {
	Store     session.Store
	Converter Converter
	Logger    *log.Logger

	// Scale overrides the converter's device pixel ratio when positive.
	Scale float64
}

// New creates a dispatcher.
func New(store session.Store, c Converter, logger *log.Logger) *Dispatcher {
	return &Dispatcher{Store: store, Converter: c, Logger: logger}
}

// WithScale returns a copy of d that converts at scale, typically the
// device pixel ratio reported by the client making the request.
func (d *Dispatcher) WithScale(scale float64) *Dispatcher {
	c := *d
	c.Scale = scale
	return &c
}

// Download converts the current selection and saves it as
// convert.DefaultFilename through saver (nil means the converter's default).
func (d *Dispatcher) Download(ctx context.Context, sessionID string, saver raster.Saver) (*convert.Result, error) {
	res, err := d.dispatch(ctx, sessionID, convert.ModeDownload, saver)
	if err != nil && !errors.Is(err, errors.ErrCodeNoSelection) {
		d.logger().Error(MsgDownloadFailed, "session", sessionID, "err", err)
	}
	return res, err
}

// Base64 converts the current selection to a data URI with preview.
func (d *Dispatcher) Base64(ctx context.Context, sessionID string) (*convert.Result, error) {
	res, err := d.dispatch(ctx, sessionID, convert.ModeDataURI, nil)
	if err != nil && !errors.Is(err, errors.ErrCodeNoSelection) {
		d.logger().Error(MsgBase64Failed, "session", sessionID, "err", err)
	}
	return res, err
}

func (d *Dispatcher) dispatch(ctx context.Context, sessionID string, mode convert.Mode, saver raster.Saver) (*convert.Result, error) {
	text, err := d.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return d.Converter.Do(ctx, convert.Request{
		Text:     text,
		Filename: convert.DefaultFilename,
		Mode:     mode,
		Saver:    saver,
		Scale:    d.Scale,
	})
}

// snapshot returns the selected text, or ErrCodeNoSelection.
func (d *Dispatcher) snapshot(ctx context.Context, sessionID string) (string, error) {
	var sess *session.Session
	if sessionID != "" && d.Store != nil {
		s, err := d.Store.Get(ctx, sessionID)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "load session")
		}
		sess = s
	}
	if !sess.HasSelection() {
		d.logger().Error(MsgNoSelection, "session", sessionID)
		return "", errors.New(errors.ErrCodeNoSelection, MsgNoSelection)
	}
	return sess.Snapshot(), nil
}

func (d *Dispatcher) logger() *log.Logger {
	if d.Logger == nil {
		return log.Default()
	}
	return d.Logger
}
