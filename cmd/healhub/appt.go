// ABOUTME: CLI commands for doctor appointments.
// ABOUTME: Lists upcoming appointments in chronological order.
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/validate"
)

var (
	apptSpecialty string
	apptLocation  string
	apptType      string
	apptNotes     string
	apptUpcoming  bool
)

var apptCmd = &cobra.Command{
	Use:     "appt",
	Aliases: []string{"appointment", "a"},
	Short:   "Manage doctor appointments",
	Long: `Manage doctor appointments.

EXAMPLES:

  healhub appt add "Dr. Rao" 2024-06-12 14:30 --specialty cardiology
  healhub appt add "Dr. Lee" 2024-07-01 --type virtual
  healhub appt list --upcoming
  healhub appt rm abc12345`,
}

var apptAddCmd = &cobra.Command{
	Use:   "add <doctor> <date> [time]",
	Short: "Add an appointment",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := validate.AppointmentForm{DoctorName: args[0], Date: args[1]}
		if len(args) == 3 {
			form.Time = args[2]
		}
		if err := validate.Appointment(form); err != nil {
			return err
		}

		a := rt.store.Appointments().Add(models.Appointment{
			DoctorName: form.DoctorName,
			Specialty:  apptSpecialty,
			Date:       form.Date,
			Time:       form.Time,
			Location:   apptLocation,
			Type:       apptType,
			Notes:      apptNotes,
		})

		success(cmd, "Added appointment with %s", a.DoctorName)
		printf(cmd, "  %s %s %s %s\n", shortID(a.ID), a.Date, a.Time, a.Type)
		return nil
	},
}

var apptListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List appointments",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := rt.store.Clock().Now()
		appts := rt.store.Appointments().All()

		type row struct {
			a    models.Appointment
			when string
			past bool
		}
		rows := make([]row, 0, len(appts))
		for _, a := range appts {
			t, ok := a.When(rt.loc)
			past := ok && t.Before(now)
			if apptUpcoming && past {
				continue
			}
			when := a.Date + " " + a.Time
			if ok {
				when = t.Format("2006-01-02 15:04")
			}
			rows = append(rows, row{a: a, when: when, past: past})
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].when < rows[j].when })

		if len(rows) == 0 {
			printLine(cmd, "No appointments found.")
			return nil
		}
		for _, r := range rows {
			when := r.when
			if r.past {
				when = faint.Sprint(when)
			}
			doctor := r.a.DoctorName
			if r.a.Specialty != "" {
				doctor += faint.Sprintf(" (%s)", r.a.Specialty)
			}
			printf(cmd, "%s %s %s %s%s\n",
				shortID(r.a.ID),
				when,
				padRight(r.a.Type, 10),
				doctor,
				notesSuffix(r.a.Location))
		}
		return nil
	},
}

var apptRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "del"},
	Short:   "Delete an appointment",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := rt.store.Appointments().Find(args[0])
		if err != nil {
			return fmt.Errorf("appointment %w", err)
		}
		rt.store.Appointments().Delete(a.ID)
		removed(cmd, "Deleted appointment with %s", a.DoctorName)
		return nil
	},
}

func init() {
	apptAddCmd.Flags().StringVar(&apptSpecialty, "specialty", "", "doctor specialty")
	apptAddCmd.Flags().StringVar(&apptLocation, "location", "", "clinic or address")
	apptAddCmd.Flags().StringVar(&apptType, "type", "in-person", "in-person or virtual")
	apptAddCmd.Flags().StringVar(&apptNotes, "notes", "", "notes")
	apptListCmd.Flags().BoolVarP(&apptUpcoming, "upcoming", "u", false, "hide past appointments")

	apptCmd.AddCommand(apptAddCmd, apptListCmd, apptRmCmd)
	rootCmd.AddCommand(apptCmd)
}
