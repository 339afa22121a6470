// ABOUTME: Root Cobra command for the healhub CLI.
// ABOUTME: Opens config, backend, and state store in PersistentPreRunE and flushes them afterwards.
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/config"
	"github.com/harperreed/healhub/internal/kv"
	"github.com/harperreed/healhub/internal/logging"
	"github.com/harperreed/healhub/internal/state"
)

// skipStore marks commands that must run without an open store.
const skipStore = "skip-store"

// runtime bundles everything a command needs.
type runtime struct {
	cfg     *config.Config
	logger  *log.Logger
	backend kv.Backend
	store   *state.Store
	loc     *time.Location

	// owned is false when a test injected the runtime.
	owned bool
}

var rt *runtime

var rootCmd = &cobra.Command{
	Use:   "healhub",
	Short: "Personal health tracker",
	Long: `HealHub tracks medicines, reminders, health trackers, and doctor appointments.

WHAT IT TRACKS:

  Medicines      name, dosage, frequency, prescribing doctor
  Reminders      one-off, daily, or weekly medicine reminders
  Trackers       water, sleep, exercise, mood, meals, vitals, bmi
  Appointments   doctor, specialty, date and time, location
  Badges         hydration, logging streaks, medication adherence

QUICK START:

  $ healhub med add Aspirin 100mg              # Add a medicine
  $ healhub reminder add "Morning pills" 08:00 --repeat daily --med Aspirin
  $ healhub track water 500                    # Log 500 ml of water
  $ healhub today                              # Today's totals
  $ healhub watch                              # Live view with notifications

SERVERS:

  $ healhub serve    # Local JSON API on 127.0.0.1:8737
  $ healhub mcp      # MCP server on stdio for AI assistants

STORAGE:

  Data lives in ~/.local/share/healhub (badger by default).
  Set "backend" in ~/.config/healhub/config.json to "sqlite" or "charm".
  The charm backend syncs across devices; see 'healhub sync'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Annotations[skipStore] != "" {
			return nil
		}
		if rt != nil {
			return nil
		}

		r, err := openRuntime()
		if err != nil {
			return err
		}
		rt = r
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if rt == nil {
			return nil
		}
		if !rt.owned {
			return rt.store.Flush()
		}
		err := rt.close()
		rt = nil
		return err
	},
}

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		printLine(cmd, "healhub", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func openRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("falling back to local time", "err", err)
	}

	backend, err := cfg.OpenBackend(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
	}

	store := state.Open(kv.NewStore(backend, kv.DefaultStoreName, logger), state.Options{
		Logger:       logger,
		PersistDelay: cfg.GetPersistDelay(),
	})

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		store:   store,
		loc:     loc,
		owned:   true,
	}, nil
}

func (r *runtime) close() error {
	storeErr := r.store.Close()
	if err := r.backend.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return storeErr
}
