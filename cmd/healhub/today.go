// ABOUTME: CLI command for today's dashboard summary.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/export"
	"github.com/harperreed/healhub/internal/report"
	"github.com/harperreed/healhub/internal/state"
)

var todayJSON bool

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's totals",
	Long: `Show today's water, sleep, and exercise totals, medicines taken,
pending reminders, and upcoming appointments.

Totals add up every entry logged today in the configured timezone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := todaySummary(rt.store, rt.loc)

		if todayJSON {
			data, err := export.JSON(s)
			if err != nil {
				return err
			}
			printLine(cmd, string(data))
			return nil
		}

		printf(cmd, "%s\n\n", green.Sprint(s.Date))
		printf(cmd, "  %s %.0f ml\n", padRight("Water", 10), s.WaterML)
		printf(cmd, "  %s %.1f h\n", padRight("Sleep", 10), s.SleepHours)
		printf(cmd, "  %s %.0f min\n", padRight("Exercise", 10), s.ExerciseMinutes)
		printf(cmd, "  %s %d/%d taken\n", padRight("Medicines", 10), s.Medicines.Taken, s.Medicines.Taken+s.Medicines.NotTaken)
		if s.LatestMood != nil {
			printf(cmd, "  %s %.0f\n", padRight("Mood", 10), *s.LatestMood)
		}
		if s.LatestBMI != nil {
			printf(cmd, "  %s %.1f (%s)\n", padRight("BMI", 10), *s.LatestBMI, report.BMICategory(*s.LatestBMI))
		}

		if len(s.PendingReminders) > 0 {
			printf(cmd, "\nPending reminders\n")
			for _, r := range s.PendingReminders {
				printf(cmd, "  %s %s %s\n", shortID(r.ID), r.Time, r.Title)
			}
		}
		if len(s.UpcomingAppts) > 0 {
			printf(cmd, "\nUpcoming appointments\n")
			for _, a := range s.UpcomingAppts {
				printf(cmd, "  %s %s\n", shortID(a.ID), fmt.Sprintf("%s %s %s", a.Date, a.Time, a.DoctorName))
			}
		}
		return nil
	},
}

func todaySummary(st *state.Store, loc *time.Location) report.Summary {
	return report.Today(report.Inputs{
		Trackers:     st.Trackers().All(),
		Medicines:    st.Medicines().All(),
		Reminders:    st.ListReminders(),
		Appointments: st.Appointments().All(),
	}, st.Clock().Now(), loc)
}

func init() {
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(todayCmd)
}
