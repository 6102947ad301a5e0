package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/apiscout/pkg/catalog"
)

// Output formats for discovered records.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var validFormats = []string{formatTable, formatJSON, formatYAML}

// discoverCommand creates the discover command.
func (c *CLI) discoverCommand() *cobra.Command {
	var (
		format string
		eo     engineOptions
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Query API registries and list discovered APIs",
		Long: `Query every configured registry in order and list the APIs found.

Registries that fail are logged and skipped.`,
		Example: `  apiscout discover
  apiscout discover --format json
  apiscout discover --registry https://registry.example.com/apis --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
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

			prog := newProgress(c.Logger)
			var records []catalog.APIRecord
			if format == formatTable {
				spinner := startSpinner(ctx, os.Stderr, "Querying registries...")
				records = engine.Discover(ctx)
				spinner.Stop()
			} else {
				records = engine.Discover(ctx)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Discovered %d APIs", len(records)))

			return renderRecords(cmd.OutOrStdout(), records, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, yaml")
	cmd.Flags().StringSliceVar(&eo.registries, "registry", nil, "registry URL to query (repeatable; overrides config)")
	cmd.Flags().BoolVar(&eo.refresh, "refresh", false, "bypass the response cache")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(validFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func validateFormat(format string) error {
	for _, f := range validFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be one of table, json, yaml", format)
}

// renderRecords writes records to w in the given format.
func renderRecords(w io.Writer, records []catalog.APIRecord, format string) error {
	if records == nil {
		records = []catalog.APIRecord{}
	}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(records) == 0 {
			_, err := fmt.Fprintln(w, StyleDim.Render("No APIs discovered"))
			return err
		}
		_, err := fmt.Fprintln(w, recordTable(records).Render())
		return err
	}
}

// recordTable builds the lipgloss table used by discover.
func recordTable(records []catalog.APIRecord) *table.Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			orDash(r.Name),
			r.Specs.Type.Label(),
			orDash(r.Specs.Authentication),
			orDash(r.Endpoint),
			orDash(r.Specs.URL),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Spec", "Auth", "Endpoint", "Spec URL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 0:
				return cell.Foreground(colorCyan)
			case 1:
				if records[row].Specs.Type.Known() {
					return cell.Foreground(colorGreen)
				}
				return cell.Foreground(colorDim)
			case 4:
				return cell.Foreground(colorBlue)
			default:
				return cell.Foreground(colorWhite)
			}
		})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
