// ABOUTME: CLI command for the live terminal dashboard.
// ABOUTME: Runs the reminder scheduler while the view is open and stops it on quit.
package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/toast"
	"github.com/harperreed/healhub/internal/tui"
)

var (
	watchDays   int
	watchReload time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard with reminder notifications",
	Long: `Open a live dashboard showing today's totals, a water chart, pending
reminders, and notification toasts.

Reminders fire while the dashboard is open. Notifications go to Telegram
when configured and appear as toasts otherwise.

KEYS:

  d   dismiss the oldest toast
  c   clear all toasts
  t   toggle light/dark theme
  ?   help
  q   quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		toasts := toast.NewQueue(rt.store.Clock(), rt.cfg.GetToastDuration())
		sched, err := startScheduler(ctx, rt, toasts)
		if err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() { _ = sched.Stop() }()
		reloadEvery(ctx, rt, watchReload)

		m := tui.New(rt.store, toasts, tui.Options{Location: rt.loc, ChartDays: watchDays})
		return tui.Run(ctx, m, tea.WithAltScreen())
	},
}

func init() {
	watchCmd.Flags().IntVar(&watchDays, "days", 7, "days shown in the water chart")
	watchCmd.Flags().DurationVar(&watchReload, "reload", 0, "re-read storage on this interval (for shared sqlite or charm backends)")
	rootCmd.AddCommand(watchCmd)
}
