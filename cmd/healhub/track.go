// ABOUTME: CLI commands for logging and listing tracker entries.
// ABOUTME: Numeric readings take one value; structured readings take key=value pairs.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/report"
	"github.com/harperreed/healhub/internal/validate"
)

var (
	trackAt       string
	trackNotes    string
	trackUnit     string
	trackWeight   float64
	trackHeight   float64
	trackImperial bool

	trackersType  string
	trackersLimit int
)

var trackCmd = &cobra.Command{
	Use:     "track <type> [value | key=value...]",
	Aliases: []string{"t"},
	Short:   "Log a tracker entry",
	Long: `Log a health tracker entry.

TYPES:

  water      ml            healhub track water 500
  sleep      hours         healhub track sleep 7.5
  exercise   minutes       healhub track exercise 30 --notes "run"
  mood       1-10 scale    healhub track mood 7
  meals      key=value     healhub track meals calories=650 protein=30
  vitals     key=value     healhub track vitals systolic=120 diastolic=80 pulse=64
  bmi        kg/m²         healhub track bmi --weight 70 --height 175

Use --imperial with --weight/--height to give pounds and inches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trackerType := args[0]
		values := args[1:]

		if trackerType == string(models.TrackerBMI) && len(values) == 0 && trackWeight > 0 {
			bmi, err := computeBMI(trackWeight, trackHeight, trackImperial)
			if err != nil {
				return err
			}
			values = []string{strconv.FormatFloat(bmi, 'f', -1, 64)}
		}
		if len(values) == 0 {
			return fmt.Errorf("%s requires a value", trackerType)
		}

		details, structured, err := parseDetails(values)
		if err != nil {
			return err
		}
		if err := validate.Tracker(trackerType, values[0], structured, models.IsValidTrackerType); err != nil {
			return err
		}

		entry := models.TrackerEntry{
			Type:  models.TrackerType(trackerType),
			Unit:  trackUnit,
			Notes: trackNotes,
		}
		if structured {
			entry.Value, err = models.ObjectValue(details)
			if err != nil {
				return fmt.Errorf("failed to encode reading: %w", err)
			}
		} else {
			v, _ := strconv.ParseFloat(values[0], 64)
			entry.Value = models.NumberValue(v)
		}
		if trackAt != "" {
			t, err := parseTime(trackAt, rt.loc)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", trackAt)
			}
			entry.Date = t
		}

		entry = rt.store.Trackers().Add(entry)
		success(cmd, "Logged %s", entry.Type)
		printf(cmd, "  %s %s %s\n", shortID(entry.ID), entry.ValueString(), entry.Unit)

		if entry.Type == models.TrackerBMI {
			if v, ok := entry.Number(); ok {
				printf(cmd, "  %s\n", report.BMICategory(v))
			}
		}
		return nil
	},
}

var trackersCmd = &cobra.Command{
	Use:   "trackers",
	Short: "Inspect tracker entries",
}

var trackersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List tracker entries",
	Long: `List recent tracker entries, newest first.

EXAMPLES:

  healhub trackers list
  healhub trackers list --type water -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []models.TrackerEntry
		if trackersType != "" {
			if !models.IsValidTrackerType(trackersType) {
				return fmt.Errorf("unknown tracker type: %s", trackersType)
			}
			entries = rt.store.TrackersByType(models.TrackerType(trackersType))
		} else {
			entries = rt.store.Trackers().All()
		}

		if len(entries) == 0 {
			printLine(cmd, "No entries found.")
			return nil
		}
		if trackersLimit > 0 && len(entries) > trackersLimit {
			entries = entries[:trackersLimit]
		}

		for _, e := range entries {
			printf(cmd, "%s %s %s %s %s%s\n",
				shortID(e.ID),
				faint.Sprint(e.Date.In(rt.loc).Format("2006-01-02 15:04")),
				padRight(string(e.Type), 9),
				truncate(e.ValueString(), 40),
				e.Unit,
				notesSuffix(e.Notes))
		}
		return nil
	},
}

var trackersRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "del"},
	Short:   "Delete a tracker entry",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := rt.store.Trackers().Find(args[0])
		if err != nil {
			return fmt.Errorf("entry %w", err)
		}
		rt.store.Trackers().Delete(e.ID)
		removed(cmd, "Deleted %s entry", e.Type)
		return nil
	},
}

// parseDetails reads key=value pairs. A single bare value is numeric.
func parseDetails(values []string) (map[string]float64, bool, error) {
	if len(values) == 1 && !strings.Contains(values[0], "=") {
		return nil, false, nil
	}

	details := make(map[string]float64, len(values))
	for _, pair := range values {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, false, fmt.Errorf("expected key=value, got %q", pair)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false, fmt.Errorf("invalid value for %s: %s", k, v)
		}
		details[k] = f
	}
	return details, true, nil
}

func computeBMI(weight, height float64, imperial bool) (float64, error) {
	if imperial {
		return report.BMIImperial(weight, height)
	}
	return report.BMIMetric(weight, height)
}

func init() {
	trackCmd.Flags().StringVar(&trackAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	trackCmd.Flags().StringVar(&trackNotes, "notes", "", "notes for the entry")
	trackCmd.Flags().StringVar(&trackUnit, "unit", "", "unit (defaults per type)")
	trackCmd.Flags().Float64Var(&trackWeight, "weight", 0, "weight for bmi (kg, or lb with --imperial)")
	trackCmd.Flags().Float64Var(&trackHeight, "height", 0, "height for bmi (cm, or in with --imperial)")
	trackCmd.Flags().BoolVar(&trackImperial, "imperial", false, "weight in lb and height in inches")

	trackersListCmd.Flags().StringVarP(&trackersType, "type", "t", "", "filter by tracker type")
	trackersListCmd.Flags().IntVarP(&trackersLimit, "limit", "n", 20, "max number of results")

	trackersCmd.AddCommand(trackersListCmd, trackersRmCmd)
	rootCmd.AddCommand(trackCmd, trackersCmd)
}
