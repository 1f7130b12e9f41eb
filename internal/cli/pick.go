package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// pickCommand creates the interactive pick command.
func (c *CLI) pickCommand() *cobra.Command {
	opts := actionOpts{}

	cmd := &cobra.Command{
		Use:   "pick [dir]",
		Short: "Pick an SVG and an action interactively",
		Long: `List the .svg files in a directory (default: the working directory), select
one, then choose "Download PNG" or "Get Base64".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runPick(cmd.Context(), dir, opts)
		},
	}

	opts.engineOpts.register(cmd)
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "output directory (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "device pixel ratio (default from config)")

	return cmd
}

func (c *CLI) runPick(ctx context.Context, dir string, opts actionOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	files, err := listSVGFiles(dir, cfg.Convert.MaxFileBytes)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println(noSelectionView(dir))
		return nil
	}

	final, err := tea.NewProgram(NewFileListModel(files), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	picked := final.(FileListModel).Selected
	if picked == nil {
		return nil
	}

	final, err = tea.NewProgram(NewActionListModel(picked.Name), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	chosen := final.(ActionListModel).Selected
	if chosen == nil {
		return nil
	}

	store, id, closeStore, err := cliSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := c.newLoader(cfg, store).LoadFile(ctx, id, picked.Path); err != nil {
		return err
	}

	return c.dispatchAction(ctx, cfg, store, id, picked.Name, chosen.Mode, opts)
}
