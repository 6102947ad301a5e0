package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/apiscout/pkg/catalog"
	"github.com/matzehuels/apiscout/pkg/pipeline"
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var eo engineOptions

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Pick a discovered API interactively and integrate it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			engine, cleanup, err := c.newEngine(ctx, cfg, eo)
			if err != nil {
				return err
			}
			defer cleanup()

			in := c.newIntegrator(cfg)
			in.LoadConfig()

			spinner := startSpinner(ctx, os.Stderr, "Querying registries...")
			records := engine.Discover(ctx)
			spinner.Stop()
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(records) == 0 {
				printWarning("No APIs discovered")
				return nil
			}

			final, err := tea.NewProgram(NewAPIListModel(records, in.Names()), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			selected := final.(APIListModel).Selected
			if selected == nil {
				return nil
			}

			runner := pipeline.NewRunner(engine, in, c.Logger)
			report, err := runner.Run(ctx, pipeline.RunOptions{Records: []catalog.APIRecord{*selected}})
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&eo.registries, "registry", nil, "registry URL to query (repeatable; overrides config)")
	cmd.Flags().BoolVar(&eo.refresh, "refresh", false, "bypass the response cache")

	return cmd
}
