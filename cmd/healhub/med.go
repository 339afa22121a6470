// ABOUTME: CLI commands for managing medicines.
// ABOUTME: Supports add, list, rm, and take with id-prefix lookup.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/state"
	"github.com/harperreed/healhub/internal/validate"
)

var (
	medFrequency string
	medDoctor    string
	medStart     string
	medEnd       string
	medNotes     string
	medTakeUndo  bool
)

var medCmd = &cobra.Command{
	Use:     "med",
	Aliases: []string{"medicine", "m"},
	Short:   "Manage medicines",
	Long: `Manage the medicines you take.

EXAMPLES:

  healhub med add Aspirin 100mg --frequency "once a day"
  healhub med add Metformin 500mg --doctor "Dr. Rao" --start 2024-06-01
  healhub med list
  healhub med take abc12345
  healhub med rm abc12345`,
}

var medAddCmd = &cobra.Command{
	Use:   "add <name> <dosage>",
	Short: "Add a medicine",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := validate.MedicineForm{
			Name:      args[0],
			Dosage:    args[1],
			Frequency: medFrequency,
			StartDate: medStart,
			EndDate:   medEnd,
			Doctor:    medDoctor,
		}
		if err := validate.Medicine(form); err != nil {
			return err
		}

		med := rt.store.Medicines().Add(models.Medicine{
			Name:      strings.TrimSpace(form.Name),
			Dosage:    strings.TrimSpace(form.Dosage),
			Frequency: form.Frequency,
			Doctor:    form.Doctor,
			StartDate: form.StartDate,
			EndDate:   form.EndDate,
			Notes:     medNotes,
		})

		success(cmd, "Added %s", med.Name)
		printf(cmd, "  %s %s\n", shortID(med.ID), med.Label())
		return nil
	},
}

var medListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List medicines",
	RunE: func(cmd *cobra.Command, args []string) error {
		meds := rt.store.Medicines().All()
		if len(meds) == 0 {
			printLine(cmd, "No medicines found.")
			return nil
		}

		for _, m := range meds {
			status := faint.Sprint("pending")
			if m.Taken {
				status = green.Sprint("taken")
			}
			printf(cmd, "%s %s %s %s%s\n",
				shortID(m.ID),
				padRight(truncate(m.Label(), 32), 32),
				padRight(m.Frequency, 14),
				status,
				notesSuffix(m.Notes))
		}
		return nil
	},
}

var medRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "del"},
	Short:   "Delete a medicine",
	Long: `Delete a medicine by its ID or ID prefix.

Reminders that point at the medicine are kept; they fall back to their
notes when they fire.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		med, err := rt.store.Medicines().Find(args[0])
		if err != nil {
			return fmt.Errorf("medicine %w", err)
		}
		rt.store.Medicines().Delete(med.ID)

		removed(cmd, "Deleted %s", med.Name)
		printf(cmd, "  %s %s\n", shortID(med.ID), med.Label())
		return nil
	},
}

var medTakeCmd = &cobra.Command{
	Use:   "take <id>",
	Short: "Mark a medicine as taken",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		med, err := rt.store.Medicines().Find(args[0])
		if err != nil {
			return fmt.Errorf("medicine %w", err)
		}
		med, _ = rt.store.Medicines().Modify(med.ID, func(m models.Medicine) models.Medicine {
			m.Taken = !medTakeUndo
			return m
		})

		if med.Taken {
			success(cmd, "Took %s", med.Label())
		} else {
			removed(cmd, "Marked %s as not taken", med.Label())
		}
		return nil
	},
}

// resolveMedicine finds a medicine by id, id prefix, or exact name.
func resolveMedicine(st *state.Store, ref string) (models.Medicine, error) {
	med, err := st.Medicines().Find(ref)
	if err == nil || !errors.Is(err, state.ErrNotFound) {
		return med, err
	}

	var match *models.Medicine
	for _, m := range st.Medicines().All() {
		if !strings.EqualFold(m.Name, ref) {
			continue
		}
		if match != nil {
			return models.Medicine{}, fmt.Errorf("%w %s: matches multiple medicines", state.ErrAmbiguous, ref)
		}
		m := m
		match = &m
	}
	if match == nil {
		return models.Medicine{}, err
	}
	return *match, nil
}

func init() {
	medAddCmd.Flags().StringVarP(&medFrequency, "frequency", "f", "", "how often to take it")
	medAddCmd.Flags().StringVar(&medDoctor, "doctor", "", "prescribing doctor")
	medAddCmd.Flags().StringVar(&medStart, "start", "", "start date (YYYY-MM-DD)")
	medAddCmd.Flags().StringVar(&medEnd, "end", "", "end date (YYYY-MM-DD)")
	medAddCmd.Flags().StringVar(&medNotes, "notes", "", "notes")
	medTakeCmd.Flags().BoolVar(&medTakeUndo, "undo", false, "mark as not taken")

	medCmd.AddCommand(medAddCmd, medListCmd, medRmCmd, medTakeCmd)
	rootCmd.AddCommand(medCmd)
}
