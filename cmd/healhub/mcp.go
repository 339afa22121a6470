// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server for AI assistant integration.
package main

import (
	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates over stdin/stdout. Add it to an MCP client config:

  {
    "mcpServers": {
      "healhub": { "command": "healhub", "args": ["mcp"] }
    }
  }

AVAILABLE TOOLS:

  add_medicine        Record a medicine
  list_medicines      List medicines
  delete_medicine     Delete a medicine by ID
  add_reminder        Create a reminder, optionally for a medicine
  list_reminders      List reminders
  mark_reminder       Mark a reminder taken, skipped, or pending
  add_tracker         Log a tracker entry
  list_trackers       List tracker entries
  today_totals        Today's water, sleep, and exercise totals
  add_appointment     Book a doctor appointment
  list_appointments   List appointments

AVAILABLE RESOURCES:

  healhub://today       Today's dashboard summary
  healhub://reminders   Pending reminders
  healhub://summary     Counts, latest readings, and badges`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(rt.store, rt.loc)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
