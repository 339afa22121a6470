// ABOUTME: Wiring for the reminder scheduler and notification delivery.
// ABOUTME: Also provides 'notify test' to check the native channel end to end.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/notify"
	"github.com/harperreed/healhub/internal/scheduler"
	"github.com/harperreed/healhub/internal/toast"
)

// newDispatcher builds the notification dispatcher from config.
func newDispatcher(r *runtime) *notify.Dispatcher {
	channel := notify.NewTelegramChannel(r.cfg.TelegramToken, r.cfg.TelegramChatID)
	return notify.NewDispatcher(channel, r.logger.WithPrefix("notify"))
}

// startScheduler requests notification permission and starts the reminder
// scheduler. Undelivered notifications land in toasts.
func startScheduler(ctx context.Context, r *runtime, toasts *toast.Queue) (*scheduler.Scheduler, error) {
	d := newDispatcher(r)
	perm := d.RequestPermission(ctx)
	r.logger.Debug("notification permission", "permission", perm)

	s := scheduler.New(r.store, d, scheduler.Options{
		Interval:   r.cfg.GetTickInterval(),
		PruneEvery: r.cfg.GetClearInterval(),
		Location:   r.loc,
		Clock:      r.store.Clock(),
		Logger:     r.logger.WithPrefix("scheduler"),
		Fallback:   toasts.Fallback(),
	})
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// reloadEvery re-reads storage on an interval so writes from other
// processes show up. A zero interval disables it.
func reloadEvery(ctx context.Context, r *runtime, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.store.Refresh(); err != nil {
					r.logger.Warn("reload failed", "err", err)
				}
			}
		}
	}()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification tools",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test [message]",
	Short: "Send a test notification",
	Long: `Send a test notification through the native channel.

The native channel is a Telegram bot. Configure it with telegram_token and
telegram_chat_id in config.json, or HEALHUB_TELEGRAM_TOKEN and
HEALHUB_TELEGRAM_CHAT_ID. Without them the notification falls back to the
terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := "Notifications are working."
		if len(args) == 1 {
			body = args[0]
		}

		d := newDispatcher(rt)
		perm := d.RequestPermission(cmd.Context())
		printf(cmd, "Permission: %s\n", perm)

		fallback := func(title string, opts notify.Options) {
			warn(cmd, "Native delivery unavailable, showing here instead")
			printf(cmd, "  %s\n", notify.Format(title, opts))
		}
		if d.Notify(cmd.Context(), "HealHub", notify.Options{Body: body, Tag: "test"}, fallback) {
			success(cmd, "Sent via Telegram")
		}
		return nil
	},
}

func init() {
	notifyCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(notifyCmd)
}
