package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2png/pkg/raster"
)

// enginesCommand creates the engines command.
func (c *CLI) enginesCommand() *cobra.Command {
	var browser bool

	cmd := &cobra.Command{
		Use:   "engines",
		Short: "List rasterization engines and whether they can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			chain, err := raster.DefaultChain(cfg.Raster.Engine, cfg.Raster.Browser || browser)
			if err != nil {
				return err
			}
			defer chain.Close()

			fmt.Println(enginesTable(chain))
			return nil
		},
	}

	cmd.Flags().BoolVar(&browser, "browser", false, "report the headless Chromium engine as enabled")
	return cmd
}

// enginesTable renders every engine in the chain with its try order.
func enginesTable(chain *raster.Chain) string {
	order := map[string]int{}
	for i, name := range chain.AvailableNames() {
		order[name] = i + 1
	}

	engines := chain.Engines()
	rows := make([][]string, 0, len(engines))
	for _, e := range engines {
		status, pos := "missing", "—"
		if n, ok := order[e.Name()]; ok {
			status, pos = "available", fmt.Sprint(n)
		}
		rows = append(rows, []string{pos, e.Name(), status})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleRowMuted).
		Headers("#", "Engine", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row >= len(rows) {
				return lipgloss.NewStyle()
			}
			if rows[row][2] == "available" {
				if col == 1 {
					return lipgloss.NewStyle().Foreground(colorOK)
				}
				return lipgloss.NewStyle()
			}
			return styleRowMuted
		}).
		Render()
}
