// ABOUTME: CLI command for moving data between storage backends.
// ABOUTME: Copies every key from one backend to another, e.g. badger to charm.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/config"
	"github.com/harperreed/healhub/internal/kv"
	"github.com/harperreed/healhub/internal/logging"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data between storage backends",
	Long: `Copy all healhub data from one storage backend to another.

BACKENDS:

  badger   local Badger directory (default)
  sqlite   local SQLite file
  charm    Charm KV with cloud sync

Destination keys are overwritten. Without --force the command refuses
to write into a backend that already holds data.

USAGE:

  healhub migrate --from badger --to charm --dry-run
  healhub migrate --from badger --to charm

Remember to set "backend" in ~/.config/healhub/config.json afterwards.`,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := kv.ParseKind(migrateFrom)
		if err != nil {
			return err
		}
		to, err := kv.ParseKind(migrateTo)
		if err != nil {
			return err
		}
		if from == to {
			return fmt.Errorf("source and destination are both %s", from)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

		src, err := cfg.OpenBackendKind(from, logger)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", from, err)
		}
		defer func() { _ = src.Close() }()

		srcKeys, err := src.Keys()
		if err != nil {
			return fmt.Errorf("failed to list %s keys: %w", from, err)
		}

		if migrateDryRun {
			warn(cmd, "Dry run mode - no changes will be made")
			printf(cmd, "Would copy %d keys from %s to %s\n", len(srcKeys), from, to)
			return nil
		}

		dst, err := cfg.OpenBackendKind(to, logger)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", to, err)
		}
		defer func() { _ = dst.Close() }()

		if !migrateForce {
			dstKeys, err := dst.Keys()
			if err != nil {
				return fmt.Errorf("failed to list %s keys: %w", to, err)
			}
			if len(dstKeys) > 0 {
				return fmt.Errorf("%s already holds %d keys; use --force to overwrite", to, len(dstKeys))
			}
		}

		summary, err := kv.Migrate(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		success(cmd, "Migrated %s to %s", from, to)
		printf(cmd, "  Keys copied: %d\n", summary.Keys)
		if summary.Skipped > 0 {
			printf(cmd, "  Keys skipped: %d\n", summary.Skipped)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "badger", "source backend")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "overwrite a destination that already has data")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
