// Package cli implements the svg2png command-line interface.
//
// The CLI wraps the same orchestrator the web page uses. A file can be
// converted in one shot, or selected first and then acted on with the
// download and base64 commands, mirroring the page's two buttons.
//
// # Commands
//
//   - convert: Convert a file or URL to a PNG file or a data URI
//   - select, download, base64: Select an SVG, then run one of the two actions on it
//   - pick: Choose an SVG and an action interactively
//   - serve: Run the single-page web converter
//   - engines: List rasterization engines and whether they can run
//   - cache, session, config: Housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports conversion, cache and HTTP events. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger writes timestamped lines ("14:32:01.45") at level and above.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type loggerKey struct{}

// withLogger attaches l to ctx for code that only receives a context, such
// as background janitors.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the attached logger or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
