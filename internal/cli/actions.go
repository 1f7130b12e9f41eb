package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2png/pkg/config"
	"github.com/matzehuels/svg2png/pkg/convert"
	"github.com/matzehuels/svg2png/pkg/errors"
	"github.com/matzehuels/svg2png/pkg/raster"
	"github.com/matzehuels/svg2png/pkg/session"
)

// selectCommand creates the select command, the CLI's file input.
func (c *CLI) selectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select [file|url]",
		Short: "Select an SVG for the download and base64 commands",
		Long: `Select an SVG file or URL. The selection replaces any previous one and is
kept until it expires, so download and base64 can be run any number of times.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, id, closeStore, err := cliSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			sess, err := c.newLoader(cfg, store).Source(ctx, id, args[0])
			if err != nil {
				return err
			}
			markOK.printf("Selected %s", StyleHighlight.Render(sess.FileName))
			printDetail("%s, expires %s", formatSize(int64(sess.Size)), sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
			fmt.Println()
			printNextStep("Convert it", "svg2png download")
			return nil
		},
	}
}

// actionOpts holds flags shared by the download and base64 commands.
type actionOpts struct {
	engineOpts
	outDir string
	scale  float64
}

// downloadCommand creates the download command ("Download PNG").
func (c *CLI) downloadCommand() *cobra.Command {
	opts := actionOpts{}
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Convert the selected SVG and save it as " + convert.DefaultFilename,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAction(cmd.Context(), convert.ModeDownload, opts)
		},
	}
	opts.engineOpts.register(cmd)
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "output directory (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "device pixel ratio (default from config)")
	return cmd
}

// base64Command creates the base64 command ("Get Base64").
func (c *CLI) base64Command() *cobra.Command {
	opts := actionOpts{}
	cmd := &cobra.Command{
		Use:   "base64",
		Short: "Convert the selected SVG and print a PNG data URI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAction(cmd.Context(), convert.ModeDataURI, opts)
		},
	}
	opts.engineOpts.register(cmd)
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "device pixel ratio (default from config)")
	return cmd
}

// runAction dispatches one of the two actions against the CLI selection.
func (c *CLI) runAction(ctx context.Context, mode convert.Mode, opts actionOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	store, id, closeStore, err := cliSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	label := "selection"
	if sess, err := store.Get(ctx, id); err == nil && sess.HasSelection() {
		label = filepath.Base(sess.FileName)
	}

	err = c.dispatchAction(ctx, cfg, store, id, label, mode, opts)
	if errors.Is(err, errors.ErrCodeNoSelection) {
		printNextStep("Select one with", "svg2png select logo.svg")
	}
	return err
}

// dispatchAction runs the action for mode on session id and reports it.
func (c *CLI) dispatchAction(ctx context.Context, cfg *config.Config, store session.Store, id, label string, mode convert.Mode, opts actionOpts) error {
	p, err := c.newPipeline(ctx, cfg, opts.engineOpts)
	if err != nil {
		return err
	}
	defer p.Close()

	d := c.newDispatcher(store, p.orchestrator).WithScale(opts.scale)
	dir := opts.outDir
	if dir == "" {
		dir = cfg.Convert.OutputDir
	}

	return execute(ctx, label, dir, func(ctx context.Context, saver raster.Saver) (*convert.Result, error) {
		if mode == convert.ModeDataURI {
			return d.Base64(ctx, id)
		}
		return d.Download(ctx, id, saver)
	})
}
