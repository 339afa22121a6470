// ABOUTME: CLI commands for the colour theme and user settings.
// ABOUTME: Settings keep unknown keys so newer clients do not lose data.
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/export"
	"github.com/harperreed/healhub/internal/models"
)

var themeCmd = &cobra.Command{
	Use:       "theme [toggle|light|dark]",
	Short:     "Show or change the colour theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"toggle", "light", "dark"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			printLine(cmd, rt.store.Theme().Get())
			return nil
		}

		var theme models.Theme
		if args[0] == "toggle" {
			theme = rt.store.ToggleTheme()
		} else {
			t, err := models.ParseTheme(args[0])
			if err != nil {
				return err
			}
			rt.store.SetTheme(t)
			theme = t
		}
		success(cmd, "Theme set to %s", theme)
		return nil
	},
}

var (
	settingsNotifications string
	settingsLead          int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	Long: `Show settings as JSON, or change them with flags.

EXAMPLES:

  healhub settings
  healhub settings --notifications off
  healhub settings --lead 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := rt.store.Settings().Get()
		changed := false

		if cmd.Flags().Changed("notifications") {
			on, err := parseSwitch(settingsNotifications)
			if err != nil {
				return err
			}
			s.NotificationsEnabled = on
			changed = true
		}
		if cmd.Flags().Changed("lead") {
			if settingsLead < 0 {
				return fmt.Errorf("lead must not be negative")
			}
			s.ReminderLeadMinutes = settingsLead
			changed = true
		}

		if changed {
			rt.store.Settings().Set(s)
			success(cmd, "Settings updated")
		}

		data, err := export.JSON(s)
		if err != nil {
			return err
		}
		printLine(cmd, string(data))
		return nil
	},
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return b, nil
}

func init() {
	settingsCmd.Flags().StringVar(&settingsNotifications, "notifications", "", "on or off")
	settingsCmd.Flags().IntVar(&settingsLead, "lead", 0, "reminder lead time in minutes")
	rootCmd.AddCommand(themeCmd, settingsCmd)
}
