package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2png/pkg/session"
)

// sessionCommand creates the session command for inspecting the selection.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show or clear the current SVG selection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the selected SVG",
		Args:  cobra.NoArgs,
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

			sess, err := store.Get(ctx, id)
			if err != nil {
				return err
			}
			if !sess.HasSelection() {
				markInfo.printf("No SVG selected")
				printNextStep("Select one with", "svg2png select logo.svg")
				return nil
			}

			printKeyValue("File", sess.FileName)
			printKeyValue("Size", formatSize(int64(sess.Size)))
			printKeyValue("Selected", sess.UpdatedAt.Local().Format(time.DateTime))
			printKeyValue("Expires", sess.ExpiresAt.Local().Format(time.DateTime))
			if cs, ok := store.(*session.CLIStore); ok {
				printKeyValue("Stored in", cs.SessionPath())
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the selected SVG",
		Args:  cobra.NoArgs,
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

			if err := store.Delete(ctx, id); err != nil {
				return err
			}
			markOK.printf("Selection cleared")
			return nil
		},
	})

	return cmd
}
