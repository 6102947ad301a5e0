package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/apiscout/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The CLI's logger is attached to the command context before any subcommand
// runs, so code that only sees a context can use loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "apiscout discovers APIs and applies integration configs",
		Long:         `apiscout queries API registries for published API descriptions, normalizes what it finds, and applies per-API integration configuration kept in a local JSON mapping file.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "tool config file (default $XDG_CONFIG_HOME/apiscout/config.toml)")
	root.PersistentFlags().StringVar(&c.mappingPath, "mapping", "", "integration mapping file (overrides mapping_path)")

	root.AddCommand(c.discoverCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.integrateCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
