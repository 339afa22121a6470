// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports link, unlink, status, now, repair, reset, and wipe operations.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	charmkv "github.com/charmbracelet/charm/kv"
	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/config"
	"github.com/harperreed/healhub/internal/kv"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync data across devices",
	Long: `Sync healhub data across devices using Charm Cloud.

Sync needs the charm backend. Set it in ~/.config/healhub/config.json:

  { "backend": "charm" }

or move existing data with 'healhub migrate --from badger --to charm'.
Data is E2E encrypted with your SSH key before upload. The last writer wins.

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show backend, account, and record counts
  now         Sync immediately and reload
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)`,
}

var syncLinkCmd = &cobra.Command{
	Use:         "link",
	Short:       "Link this device to Charm",
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}
		success(cmd, "Device linked to Charm")
		printLine(cmd, "Run 'healhub sync now' to pull existing data.")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:         "unlink",
	Short:       "Disconnect from Charm",
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}
		success(cmd, "Device unlinked from Charm")
		printLine(cmd, "Your local data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		printf(cmd, "Backend: %s\n", rt.cfg.GetBackend())
		printf(cmd, "Store:   %s\n", rt.store.Status())

		if charm, ok := rt.backend.(*kv.CharmBackend); ok {
			id, err := charm.ID()
			if err != nil {
				warn(cmd, "Not linked to Charm")
				printLine(cmd, "\nRun 'healhub sync link' to connect to Charm.")
			} else {
				printLine(cmd, "Charm ID:", id)
				if charm.IsReadOnly() {
					warn(cmd, "Database is read-only (another healhub process holds the lock)")
				}
			}
		} else {
			printf(cmd, "Data:    %s\n", rt.cfg.GetDataDir())
			printLine(cmd, faint.Sprint("Cloud sync is off; set backend to charm to enable it."))
		}

		printLine(cmd)
		counts := rt.store.Counts()
		for _, name := range []string{"medicines", "reminders", "trackers", "appointments", "badges", "users"} {
			printf(cmd, "  %s %d\n", padRight(name, 13), counts[name])
		}
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync now and reload",
	RunE: func(cmd *cobra.Command, args []string) error {
		if charm, ok := rt.backend.(*kv.CharmBackend); ok {
			if err := charm.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			success(cmd, "Synced with Charm Cloud")
		}
		if err := rt.store.Refresh(); err != nil {
			return fmt.Errorf("reload failed: %w", err)
		}
		success(cmd, "Reloaded %d records", totalRecords(rt.store.Counts()))
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:         "wipe",
	Short:       "Delete all cloud and local data",
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCharm(); err != nil {
			return err
		}
		printLine(cmd, "This will PERMANENTLY DELETE all cloud backups and local healhub data.")
		if confirm(cmd, "Type 'wipe' to confirm: ") != "wipe" {
			printLine(cmd, "Canceled.")
			return nil
		}

		result, err := charmkv.Wipe(kv.DefaultStoreName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
		success(cmd, "Data wiped successfully")
		printf(cmd, "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		printf(cmd, "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:         "repair",
	Short:       "Repair database corruption",
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCharm(); err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		printLine(cmd, "Repairing healhub database...")
		result, err := charmkv.Repair(kv.DefaultStoreName, force)

		if result.WalCheckpointed {
			success(cmd, "WAL checkpointed")
		}
		if result.ShmRemoved {
			success(cmd, "SHM file removed")
		}
		if result.IntegrityOK {
			success(cmd, "Integrity check passed")
		} else {
			_, _ = red.Fprintln(cmd.OutOrStdout(), "✗ Integrity check failed")
		}
		if result.Vacuumed {
			success(cmd, "Database vacuumed")
		}

		if err != nil {
			if !force {
				warn(cmd, "Run with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}
		success(cmd, "Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Reset local data and restore from cloud",
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCharm(); err != nil {
			return err
		}
		printLine(cmd, "This will DELETE all local healhub data and restore from cloud.")
		answer := confirm(cmd, "Continue? [y/N]: ")
		if answer != "y" && answer != "Y" {
			printLine(cmd, "Canceled.")
			return nil
		}

		if err := charmkv.Reset(kv.DefaultStoreName); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		success(cmd, "Local data reset and restored from cloud")
		return nil
	},
}

func runCharm(arg string) error {
	c := exec.Command("charm", arg)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

func requireCharm() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.GetBackend() != kv.KindCharm {
		return fmt.Errorf("sync needs the charm backend (current: %s)", cfg.GetBackend())
	}
	return nil
}

func confirm(cmd *cobra.Command, prompt string) string {
	printf(cmd, "%s", prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(line)
}

func totalRecords(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

func init() {
	syncRepairCmd.Flags().Bool("force", false, "attempt recovery even if integrity checks fail")

	syncCmd.AddCommand(syncLinkCmd, syncUnlinkCmd, syncStatusCmd, syncNowCmd, syncRepairCmd, syncResetCmd, syncWipeCmd)
	rootCmd.AddCommand(syncCmd)
}
