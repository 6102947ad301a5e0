package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/apiscout/pkg/pipeline"
)

// integrateCommand creates the integrate command.
func (c *CLI) integrateCommand() *cobra.Command {
	var (
		dryRun bool
		eo     engineOptions
	)

	cmd := &cobra.Command{
		Use:   "integrate",
		Short: "Discover APIs and apply their integration configs",
		Long: `Load the integration mapping, discover APIs, and run the integration hook
for every discovered API that has an entry in the mapping.`,
		Example: `  apiscout integrate
  apiscout integrate --dry-run
  apiscout integrate --mapping ./config/api_mapping.json`,
		Args: cobra.NoArgs,
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

			runner := pipeline.NewRunner(engine, c.newIntegrator(cfg), loggerFromContext(ctx))
			report, err := runner.Run(ctx, pipeline.RunOptions{LoadMapping: true, DryRun: dryRun})
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show which hooks would run without running them")
	cmd.Flags().StringSliceVar(&eo.registries, "registry", nil, "registry URL to query (repeatable; overrides config)")
	cmd.Flags().BoolVar(&eo.refresh, "refresh", false, "bypass the response cache")

	return cmd
}

// printReport prints the summary of a pipeline run.
func printReport(r *pipeline.Report) {
	printNewline()
	if r.DryRun {
		printInfo("Dry run: %d of %d APIs would be integrated", len(r.Planned), len(r.Records))
		for _, p := range r.Planned {
			printDetail("%s %s (%s)", iconArrow, p.Name, p.Type.Label())
		}
	} else {
		printSuccess("Integrated %d of %d APIs", len(r.Integrated), len(r.Records))
		if len(r.Integrated) > 0 {
			printDetail("%s", strings.Join(r.Integrated, ", "))
		}
	}
	for _, e := range r.Errors {
		printError("%s: %s", e.Name, e.Error)
	}
	if len(r.Skipped) > 0 {
		printDetail("%d without a matching config", len(r.Skipped))
	}
	printKeyValue("Run", StyleDim.Render(r.RunID))
	if len(r.Records) == 0 {
		printNextStep("Check registries with", "apiscout discover -v")
	}
}
