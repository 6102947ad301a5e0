package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/apiscout/pkg/catalog"
	"github.com/matzehuels/apiscout/pkg/config"
	apierrors "github.com/matzehuels/apiscout/pkg/errors"
	"github.com/matzehuels/apiscout/pkg/integration"
)

// configCommand creates the config command for the integration mapping.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update integration configs",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configSetCommand())
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configInitCommand())

	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print the integration mapping, or one entry of it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			in := c.newIntegrator(cfg)
			if err := in.Load(); err != nil {
				return err
			}

			var v any = in.Snapshot()
			if len(args) == 1 {
				entry, ok := in.Get(args[0])
				if !ok {
					return fmt.Errorf("no config for %q in %s", args[0], in.Path())
				}
				v = entry
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
}

// configSetCommand creates the "config set" subcommand.
func (c *CLI) configSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <type> [key=value...]",
		Short: "Store the integration config of an API",
		Long: `Store the integration config of an API and rewrite the mapping file.

The type must be openapi or swagger. Extra key=value pairs are stored as
additional fields; values that parse as JSON (numbers, booleans, objects)
keep their JSON type, everything else is stored as a string.`,
		Example: `  apiscout config set payments openapi base_path=/v1 retries=3`,
		Args:    cobra.MinimumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return []string{string(catalog.SpecOpenAPI), string(catalog.SpecSwagger)}, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := apierrors.ValidateAPIName(name); err != nil {
				return err
			}
			entry, err := buildConfig(args[1], args[2:])
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			in := c.newIntegrator(cfg)
			// A missing file is fine: it will be created.
			if err := in.Load(); err != nil {
				if _, statErr := os.Stat(in.Path()); statErr == nil {
					return err
				}
			}
			if err := in.Set(name, entry); err != nil {
				return err
			}
			printSuccess("Updated config for %s", name)
			printDetail("File: %s", in.Path())
			return nil
		},
	}
}

// buildConfig assembles a Config from a type and key=value pairs.
func buildConfig(specType string, pairs []string) (integration.Config, error) {
	t, err := catalog.ParseSpecType(specType)
	if err != nil || !t.Known() {
		return nil, fmt.Errorf("invalid type %q: must be openapi or swagger", specType)
	}

	cfg := integration.Config{integration.TypeKey: string(t)}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q: expected key=value", pair)
		}
		if key == integration.TypeKey {
			return nil, fmt.Errorf("set the type with the <type> argument, not %s=", key)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		cfg[key] = v
	}
	return cfg, nil
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the mapping and tool config file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			toolPath := c.configPath
			if toolPath == "" {
				if toolPath, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			printKeyValue("Mapping", cfg.MappingPath)
			printKeyValue("Config", toolPath)
			return nil
		},
	}
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a tool config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				printWarning("Config already exists: %s", path)
				printNextStep("Overwrite with", "apiscout config init --force")
				return nil
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			printSuccess("Wrote default config")
			printDetail("File: %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
