package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <domain>",
		Short: "Resolve the OpenAPI endpoint of a domain",
		Long: `Request the API root of a domain without following redirects and print
the path of its Location header with ?format=openapi appended.`,
		Example: `  apiscout resolve api.example.com`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			engine, cleanup, err := c.newEngine(cmd.Context(), cfg, engineOptions{})
			if err != nil {
				return err
			}
			defer cleanup()

			endpoint, err := engine.ResolveEndpoint(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), endpoint)
			return nil
		},
	}
}
