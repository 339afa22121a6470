// ABOUTME: CLI command for the local JSON HTTP API.
// ABOUTME: The reminder scheduler runs alongside; fallback notifications appear at /api/toasts.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/api"
	"github.com/harperreed/healhub/internal/toast"
)

var (
	serveAddr   string
	serveReload time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local JSON API",
	Long: `Serve the local JSON API and run the reminder scheduler.

ROUTES:

  GET    /api/health
  GET    /api/{medicines|reminders|trackers|appointments|badges}
  POST   /api/{collection}          add
  GET    /api/{collection}/:id
  PUT    /api/{collection}/:id      update
  DELETE /api/{collection}/:id
  GET    /api/settings              PUT to change
  GET    /api/theme                 POST /api/theme/toggle to flip
  GET    /api/toasts                DELETE /api/toasts/:id to dismiss
  GET    /api/reports/today
  GET    /api/reports/trackers/:type?days=7
  GET    /api/reports/bmi?weight=70&height=175&units=metric
  POST   /api/badges/compute
  GET    /api/export/{collection|all}?format=csv|json|yaml|markdown

The API binds to 127.0.0.1 by default and has no authentication.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		addr := serveAddr
		if addr == "" {
			addr = rt.cfg.GetServeAddr()
		}

		toasts := toast.NewQueue(rt.store.Clock(), rt.cfg.GetToastDuration())
		sched, err := startScheduler(ctx, rt, toasts)
		if err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() { _ = sched.Stop() }()
		reloadEvery(ctx, rt, serveReload)

		srv := api.New(rt.store, toasts, api.Options{
			Location: rt.loc,
			Logger:   rt.logger.WithPrefix("api"),
		})

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Listen(addr) }()
		success(cmd, "Serving on http://%s", addr)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		if err := srv.Shutdown(); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8737)")
	serveCmd.Flags().DurationVar(&serveReload, "reload", 0, "re-read storage on this interval (for shared sqlite or charm backends)")
	rootCmd.AddCommand(serveCmd)
}
