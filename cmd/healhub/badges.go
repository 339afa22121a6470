// ABOUTME: CLI command for listing and awarding achievement badges.
package main

import (
	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/badges"
)

var (
	badgesCompute bool
	badgesStreak  int
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Show earned badges",
	Long: `Show earned badges. With --compute, award any newly earned badges first.

BADGES:

  Hydration Hero      2000 ml of water on 7 different days
  Consistency         something logged every day for 7 days (see --streak)
  Medication Master   50 reminders taken`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if badgesCompute {
			fresh := badges.Award(rt.store, badges.Options{StreakDays: badgesStreak, Location: rt.loc})
			for _, b := range fresh {
				success(cmd, "Earned %s", b.Name)
			}
			if len(fresh) == 0 {
				printLine(cmd, "No new badges.")
			}
		}

		earned := rt.store.Badges().All()
		if len(earned) == 0 {
			printLine(cmd, "No badges yet.")
			return nil
		}
		for _, b := range earned {
			printf(cmd, "%s %s %s\n",
				faint.Sprint(b.AchievedAt.In(rt.loc).Format("2006-01-02")),
				padRight(b.Name, 16),
				b.Description)
		}
		return nil
	},
}

func init() {
	badgesCmd.Flags().BoolVar(&badgesCompute, "compute", false, "award newly earned badges")
	badgesCmd.Flags().IntVar(&badgesStreak, "streak", 7, "days needed for the logging streak badge")
	rootCmd.AddCommand(badgesCmd)
}
