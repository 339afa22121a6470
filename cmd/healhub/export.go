// ABOUTME: CLI commands for exporting and importing healhub data.
// ABOUTME: Single collections export as CSV or JSON; full snapshots as JSON, YAML, or Markdown.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <collection|all>",
	Short: "Export data",
	Long: `Export one collection or everything.

COLLECTIONS:

  medicines, reminders, trackers, appointments, badges, all

FORMATS:

  csv        one collection as CSV (default for a collection)
  json       JSON (default for all; suitable for backup/restore)
  yaml       full snapshot as YAML
  markdown   full snapshot as Markdown tables

An empty collection exports as {"<name>": []} instead of CSV.

EXAMPLES:

  healhub export trackers > trackers.csv
  healhub export medicines --format json
  healhub export all -o backup.json
  healhub export all --format markdown`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: append([]string{"all"}, export.Collections...),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := exportData(args[0], exportFormat)
		if err != nil {
			return err
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			success(cmd, "Exported to %s", exportOutput)
			return nil
		}
		printLine(cmd, string(data))
		return nil
	},
}

func exportData(name, format string) ([]byte, error) {
	snap := export.Take(rt.store, rt.store.Clock().Now())

	if name == "all" {
		switch format {
		case "", "json":
			return export.JSON(snap)
		case "yaml":
			return export.YAML(snap)
		case "markdown", "md":
			return []byte(export.Markdown(snap, rt.loc)), nil
		}
		return nil, fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
	}

	items, err := snap.Items(name)
	if err != nil {
		return nil, err
	}
	switch format {
	case "", "csv":
		data, _, err := export.Collection(name, items, nil)
		if err != nil {
			return nil, fmt.Errorf("export failed: %w", err)
		}
		return []byte(data), nil
	case "json":
		return export.JSON(map[string]any{name: items})
	}
	return nil, fmt.Errorf("unknown format: %s (use csv or json)", format)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import data from a JSON backup",
	Long: `Import records from a file written by 'healhub export all'.

Records whose id already exists are skipped, so importing twice is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		snap, err := export.ParseSnapshot(data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		sum := export.Import(rt.store, snap)
		success(cmd, "Imported from %s", args[0])
		printf(cmd, "  medicines %d, reminders %d, trackers %d, appointments %d, badges %d\n",
			sum.Medicines, sum.Reminders, sum.Trackers, sum.Appointments, sum.Badges)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv, json, yaml, or markdown")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd, importCmd)
}
