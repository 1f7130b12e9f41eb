package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2png/pkg/convert"
	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/raster"
	"github.com/matzehuels/svg2png/pkg/session"
)

// convertOpts holds flags for the convert command.
type convertOpts struct {
	engineOpts
	output  string
	outDir  string
	base64  bool
	scale   float64
	timeout time.Duration
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOpts{}

	cmd := &cobra.Command{
		Use:   "convert [file|url]",
		Short: "Convert an SVG file or URL to PNG",
		Long: `Convert an SVG to PNG in one step.

By default the PNG is written next to the working directory, named after the
input file. With --base64 a data URI is printed to stdout instead.`,
		Example: `  svg2png convert logo.svg
  svg2png convert logo.svg -o logo@2x.png --scale 2
  svg2png convert https://example.com/icon.svg --base64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), args[0], opts)
		},
	}

	opts.engineOpts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file name (default: input name with .png)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&opts.base64, "base64", false, "print a data:image/png;base64 URI instead of writing a file")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "device pixel ratio (default from config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "conversion timeout (default from config)")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, src string, opts convertOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.timeout > 0 {
		cfg.Convert.Timeout.Duration = opts.timeout
	}

	p, err := c.newPipeline(ctx, cfg, opts.engineOpts)
	if err != nil {
		return err
	}
	defer p.Close()

	// A throwaway session lets the loader enforce the size limit and fetch URLs.
	loader := c.newLoader(cfg, session.NewMemoryStore())
	sess, err := loader.Source(ctx, "", src)
	if err != nil {
		return err
	}

	req := convert.Request{Text: sess.Snapshot(), Mode: convert.ModeDownload, Scale: opts.scale}
	if opts.base64 {
		req.Mode = convert.ModeDataURI
	} else {
		req.Filename = convert.FilenameFor(src)
		if opts.output != "" {
			if req.Filename, err = convert.NormalizeFilename(opts.output); err != nil {
				return err
			}
		}
	}

	dir := opts.outDir
	if dir == "" {
		dir = cfg.Convert.OutputDir
	}
	return execute(ctx, sess.FileName, dir, func(ctx context.Context, saver raster.Saver) (*convert.Result, error) {
		if req.Mode == convert.ModeDownload {
			req.Saver = saver
		}
		return p.orchestrator.Do(ctx, req)
	})
}

// actionFunc runs one conversion; download-mode PNGs go to saver.
type actionFunc func(ctx context.Context, saver raster.Saver) (*convert.Result, error)

// execute runs an action with a spinner and reports the outcome.
// Downloads are written to dir.
func execute(ctx context.Context, label, dir string, run actionFunc) error {
	saver := newCountingSaver(raster.DirSaver{Dir: dir})

	spinner := newSpinner(ctx, fmt.Sprintf("Converting %s...", label))
	spinner.Start()
	res, err := run(ctx, saver)
	spinner.Stop()
	if err != nil {
		return err
	}

	return report(res, dir, saver.written())
}

// report prints a finished conversion. Data URIs go to stdout alone so the
// output can be piped.
func report(res *convert.Result, dir string, written int) error {
	stats := conversionStats{Scale: res.Options.Scale, Duration: res.Duration}

	switch res.Mode {
	case convert.ModeDataURI:
		if res.URI == "" {
			return errors.New(errors.ErrCodeNoURI, "no data URI produced")
		}
		png, err := raster.DecodeDataURI(res.URI)
		if err == nil {
			stats.Bytes = len(png)
		}
		fmt.Fprintln(os.Stdout, res.URI)
		fmt.Fprintln(os.Stderr, StyleDim.Render(stats.String()))
	default:
		stats.Bytes = written
		markOK.printf("Saved %s", res.Filename)
		printFile(filepath.Join(dir, res.Filename))
		printStats(stats)
	}
	return nil
}

// countingSaver records how many bytes the wrapped saver accepted.
type countingSaver struct {
	raster.Saver
	n atomic.Int64
}

func newCountingSaver(s raster.Saver) *countingSaver {
	return &countingSaver{Saver: s}
}

func (s *countingSaver) Save(ctx context.Context, filename string, png []byte) error {
	if err := s.Saver.Save(ctx, filename, png); err != nil {
		return err
	}
	s.n.Store(int64(len(png)))
	return nil
}

func (s *countingSaver) written() int {
	return int(s.n.Load())
}
