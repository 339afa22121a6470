// ABOUTME: CLI commands for medicine reminders.
// ABOUTME: Reminder times are stored as local minute buckets so the scheduler can match them.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/scheduler"
	"github.com/harperreed/healhub/internal/validate"
)

var (
	reminderMed     string
	reminderRepeat  string
	reminderNotes   string
	reminderPending bool
)

var reminderCmd = &cobra.Command{
	Use:     "reminder",
	Aliases: []string{"rem", "r"},
	Short:   "Manage medicine reminders",
	Long: `Manage reminders. 'healhub watch' and 'healhub serve' fire them at their minute.

TIME FORMATS:

  08:00               today at 08:00
  2024-06-03 08:00    a specific date and time
  2024-06-03T08:00    same, ISO style

REPEAT:

  once (default), daily, weekly

EXAMPLES:

  healhub reminder add "Morning pills" 08:00 --med Aspirin --repeat daily
  healhub reminder list --pending
  healhub reminder take abc12345
  healhub reminder skip abc12345`,
}

var reminderAddCmd = &cobra.Command{
	Use:   "add <title> <time>",
	Short: "Add a reminder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := validate.ReminderForm{Title: args[0], Time: args[1], Repeat: reminderRepeat}

		at, err := parseWhen(args[1], rt.store.Clock().Now(), rt.loc)
		if err == nil {
			form.Time = scheduler.MinuteBucket(at, rt.loc)
		}
		if err := validate.Reminder(form, models.IsValidRepeat); err != nil {
			return err
		}

		r := models.Reminder{
			Title:  form.Title,
			Time:   form.Time,
			Repeat: models.Repeat(form.Repeat),
			Notes:  reminderNotes,
		}
		if reminderMed != "" {
			med, err := resolveMedicine(rt.store, reminderMed)
			if err != nil {
				return fmt.Errorf("medicine %w", err)
			}
			r.MedicineID = med.ID
		}

		r = rt.store.Reminders().Add(r)
		success(cmd, "Added reminder %s", r.Title)
		printf(cmd, "  %s %s %s\n", shortID(r.ID), r.Time, r.Repeat)
		return nil
	},
}

var reminderListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := 0
		for _, r := range rt.store.ListReminders() {
			if reminderPending && !r.Pending() {
				continue
			}
			label := r.Title
			if med, ok := rt.store.LookupMedicine(r.MedicineID); ok {
				label += " · " + med.Label()
			}
			printf(cmd, "%s %s %s %s %s%s\n",
				shortID(r.ID),
				padRight(r.Time, 16),
				padRight(string(r.Repeat), 7),
				padRight(statusColor(r.Status()), 8),
				label,
				notesSuffix(r.Notes))
			shown++
		}
		if shown == 0 {
			printLine(cmd, "No reminders found.")
		}
		return nil
	},
}

var reminderRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "del"},
	Short:   "Delete a reminder",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rt.store.Reminders().Find(args[0])
		if err != nil {
			return fmt.Errorf("reminder %w", err)
		}
		rt.store.Reminders().Delete(r.ID)
		removed(cmd, "Deleted reminder %s", r.Title)
		return nil
	},
}

func markCmd(use, short string, taken, skipped bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rt.store.Reminders().Find(args[0])
			if err != nil {
				return fmt.Errorf("reminder %w", err)
			}
			r, _ = rt.store.MarkReminder(r.ID, taken, skipped)
			success(cmd, "%s marked %s", r.Title, r.Status())
			return nil
		},
	}
}

func statusColor(status string) string {
	switch status {
	case "taken":
		return green.Sprint(status)
	case "skipped":
		return yellow.Sprint(status)
	case "disabled":
		return faint.Sprint(status)
	}
	return status
}

func init() {
	reminderAddCmd.Flags().StringVar(&reminderMed, "med", "", "medicine id, id prefix, or name")
	reminderAddCmd.Flags().StringVar(&reminderRepeat, "repeat", string(models.RepeatOnce), "once, daily, or weekly")
	reminderAddCmd.Flags().StringVar(&reminderNotes, "notes", "", "notes shown when no medicine is linked")
	reminderListCmd.Flags().BoolVarP(&reminderPending, "pending", "p", false, "only pending reminders")

	reminderCmd.AddCommand(
		reminderAddCmd,
		reminderListCmd,
		reminderRmCmd,
		markCmd("take", "Mark a reminder as taken", true, false),
		markCmd("skip", "Skip a reminder", false, true),
		markCmd("reset", "Mark a reminder as pending again", false, false),
	)
	rootCmd.AddCommand(reminderCmd)
}
