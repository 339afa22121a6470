// ABOUTME: MCP tool implementations for the healhub collections.
// ABOUTME: Provides add/list/delete for medicines, reminders, trackers, and appointments.
package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/report"
	"github.com/harperreed/healhub/internal/scheduler"
	"github.com/harperreed/healhub/internal/validate"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_medicine",
		Description: "Add a medicine with its dosage",
	}, s.handleAddMedicine)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_medicines",
		Description: "List tracked medicines",
	}, s.handleListMedicines)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_medicine",
		Description: "Delete a medicine by ID or ID prefix",
	}, s.handleDeleteMedicine)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_reminder",
		Description: "Schedule a reminder, optionally linked to a medicine",
	}, s.handleAddReminder)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_reminders",
		Description: "List reminders, optionally only pending ones",
	}, s.handleListReminders)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mark_reminder",
		Description: "Mark a reminder as taken, skipped, or pending",
	}, s.handleMarkReminder)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_tracker",
		Description: "Record a tracker entry (water, sleep, exercise, mood, meals, vitals, bmi)",
	}, s.handleAddTracker)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_trackers",
		Description: "List tracker entries, optionally filtered by type",
	}, s.handleListTrackers)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "today_totals",
		Description: "Get today's water, sleep, and exercise totals",
	}, s.handleTodayTotals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_appointment",
		Description: "Book a doctor appointment",
	}, s.handleAddAppointment)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_appointments",
		Description: "List appointments, optionally only upcoming ones",
	}, s.handleListAppointments)
}

// Tool input/output types

type addMedicineInput struct {
	Name      string `json:"name" jsonschema:"Medicine name"`
	Dosage    string `json:"dosage" jsonschema:"Dosage, e.g. 100mg"`
	Frequency string `json:"frequency,omitempty" jsonschema:"How often it is taken"`
	Doctor    string `json:"doctor,omitempty" jsonschema:"Prescribing doctor"`
	StartDate string `json:"start_date,omitempty" jsonschema:"Start date (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"End date (YYYY-MM-DD)"`
	Notes     string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type recordOutput struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"Record ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type listInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type addReminderInput struct {
	Title      string `json:"title" jsonschema:"Reminder title"`
	Time       string `json:"time" jsonschema:"When to fire (ISO 8601 or YYYY-MM-DDTHH:MM local)"`
	MedicineID string `json:"medicine_id,omitempty" jsonschema:"Linked medicine ID or prefix"`
	Repeat     string `json:"repeat,omitempty" jsonschema:"once, daily, or weekly (default once)"`
	Notes      string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type listRemindersInput struct {
	PendingOnly bool `json:"pending_only,omitempty" jsonschema:"Only reminders neither taken nor skipped"`
	Limit       int  `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type markReminderInput struct {
	ID     string `json:"id" jsonschema:"Reminder ID or prefix"`
	Status string `json:"status" jsonschema:"taken, skipped, or pending"`
}

type reminderOutput struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type addTrackerInput struct {
	Type    string             `json:"type" jsonschema:"Tracker type (water, sleep, exercise, mood, meals, vitals, bmi)"`
	Value   float64            `json:"value,omitempty" jsonschema:"Numeric reading"`
	Details map[string]float64 `json:"details,omitempty" jsonschema:"Structured reading, e.g. systolic and diastolic for vitals"`
	Unit    string             `json:"unit,omitempty" jsonschema:"Unit, defaults per tracker type"`
	Date    string             `json:"date,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
	Notes   string             `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type listTrackersInput struct {
	Type  string `json:"type,omitempty" jsonschema:"Filter by tracker type"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type todayTotalsOutput struct {
	Date            string  `json:"date"`
	WaterML         float64 `json:"water_ml"`
	SleepHours      float64 `json:"sleep_hours"`
	ExerciseMinutes float64 `json:"exercise_minutes"`
	Message         string  `json:"message"`
}

type addAppointmentInput struct {
	DoctorName string `json:"doctor_name" jsonschema:"Doctor name"`
	Specialty  string `json:"specialty,omitempty" jsonschema:"Doctor specialty"`
	Date       string `json:"date" jsonschema:"Date (YYYY-MM-DD)"`
	Time       string `json:"time,omitempty" jsonschema:"Time (HH:MM)"`
	Location   string `json:"location,omitempty" jsonschema:"Clinic or address"`
	Type       string `json:"type,omitempty" jsonschema:"in-person or virtual (default in-person)"`
	Notes      string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type listAppointmentsInput struct {
	UpcomingOnly bool `json:"upcoming_only,omitempty" jsonschema:"Only appointments from now on"`
	Limit        int  `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

// Tool handlers

func (s *Server) handleAddMedicine(ctx context.Context, req *mcp.CallToolRequest, input addMedicineInput) (*mcp.CallToolResult, recordOutput, error) {
	err := validate.Medicine(validate.MedicineForm{
		Name:      input.Name,
		Dosage:    input.Dosage,
		Frequency: input.Frequency,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Doctor:    input.Doctor,
	})
	if err != nil {
		return nil, recordOutput{}, fmt.Errorf("invalid medicine: %w", err)
	}

	m := s.store.Medicines().Add(models.Medicine{
		Name:      strings.TrimSpace(input.Name),
		Dosage:    strings.TrimSpace(input.Dosage),
		Frequency: input.Frequency,
		Doctor:    input.Doctor,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Notes:     input.Notes,
	})
	if err := s.persist(); err != nil {
		return nil, recordOutput{}, err
	}

	return nil, recordOutput{
		ID:      m.ID.Short(),
		Message: fmt.Sprintf("Added medicine %s (ID: %s)", m.Label(), m.ID.Short()),
	}, nil
}

func (s *Server) handleListMedicines(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, any, error) {
	meds := limit(s.store.Medicines().All(), input.Limit)
	if len(meds) == 0 {
		return nil, map[string]any{"message": "No medicines found."}, nil
	}
	return nil, meds, nil
}

func (s *Server) handleDeleteMedicine(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	m, err := s.store.Medicines().Find(input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete medicine: %w", err)
	}
	s.store.Medicines().Delete(m.ID)
	if err := s.persist(); err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted medicine: %s", m.Name)}, nil
}

func (s *Server) handleAddReminder(ctx context.Context, req *mcp.CallToolRequest, input addReminderInput) (*mcp.CallToolResult, recordOutput, error) {
	err := validate.Reminder(validate.ReminderForm{
		Title:  input.Title,
		Time:   input.Time,
		Repeat: input.Repeat,
	}, models.IsValidRepeat)
	if err != nil {
		return nil, recordOutput{}, fmt.Errorf("invalid reminder: %w", err)
	}

	r := models.Reminder{
		Title:  strings.TrimSpace(input.Title),
		Time:   strings.TrimSpace(input.Time),
		Repeat: models.Repeat(input.Repeat),
		Notes:  input.Notes,
	}
	if input.MedicineID != "" {
		m, err := s.store.Medicines().Find(input.MedicineID)
		if err != nil {
			return nil, recordOutput{}, fmt.Errorf("medicine %w", err)
		}
		r.MedicineID = m.ID
	}

	r = s.store.Reminders().Add(r)
	if err := s.persist(); err != nil {
		return nil, recordOutput{}, err
	}

	return nil, recordOutput{
		ID:      r.ID.Short(),
		Message: fmt.Sprintf("Scheduled %q at %s, %s (ID: %s)", r.Title, r.Time, r.Repeat, r.ID.Short()),
	}, nil
}

func (s *Server) handleListReminders(ctx context.Context, req *mcp.CallToolRequest, input listRemindersInput) (*mcp.CallToolResult, any, error) {
	var out []models.Reminder
	for _, r := range s.store.ListReminders() {
		if input.PendingOnly && !r.Pending() {
			continue
		}
		out = append(out, r)
	}
	out = limit(out, input.Limit)
	if len(out) == 0 {
		return nil, map[string]any{"message": "No reminders found."}, nil
	}
	return nil, out, nil
}

func (s *Server) handleMarkReminder(ctx context.Context, req *mcp.CallToolRequest, input markReminderInput) (*mcp.CallToolResult, reminderOutput, error) {
	var taken, skipped bool
	switch strings.ToLower(input.Status) {
	case "taken":
		taken = true
	case "skipped":
		skipped = true
	case "pending":
	default:
		return nil, reminderOutput{}, fmt.Errorf("unknown status %q: want taken, skipped, or pending", input.Status)
	}

	r, err := s.store.Reminders().Find(input.ID)
	if err != nil {
		return nil, reminderOutput{}, fmt.Errorf("failed to mark reminder: %w", err)
	}
	r, _ = s.store.MarkReminder(r.ID, taken, skipped)
	if err := s.persist(); err != nil {
		return nil, reminderOutput{}, err
	}

	return nil, reminderOutput{
		ID:      r.ID.Short(),
		Status:  r.Status(),
		Message: fmt.Sprintf("Reminder %q is now %s", r.Title, r.Status()),
	}, nil
}

func (s *Server) handleAddTracker(ctx context.Context, req *mcp.CallToolRequest, input addTrackerInput) (*mcp.CallToolResult, recordOutput, error) {
	structured := len(input.Details) > 0
	value := strconv.FormatFloat(input.Value, 'f', -1, 64)
	if err := validate.Tracker(input.Type, value, structured, models.IsValidTrackerType); err != nil {
		return nil, recordOutput{}, fmt.Errorf("invalid tracker entry: %w", err)
	}

	t := models.TrackerType(input.Type)
	entry := models.TrackerEntry{
		Type:  t,
		Value: models.NumberValue(input.Value),
		Unit:  input.Unit,
		Notes: input.Notes,
	}
	if structured {
		raw, err := models.ObjectValue(input.Details)
		if err != nil {
			return nil, recordOutput{}, fmt.Errorf("failed to encode details: %w", err)
		}
		entry.Value = raw
	}
	if entry.Unit == "" {
		entry.Unit = models.TrackerUnits[t]
	}
	if input.Date != "" {
		at, ok := scheduler.ParseTime(input.Date, s.loc)
		if !ok {
			return nil, recordOutput{}, fmt.Errorf("invalid date: %s", input.Date)
		}
		entry = entry.WithDate(at)
	}

	entry = s.store.Trackers().Add(entry)
	if err := s.persist(); err != nil {
		return nil, recordOutput{}, err
	}

	return nil, recordOutput{
		ID:      entry.ID.Short(),
		Message: fmt.Sprintf("Added %s: %s %s (ID: %s)", entry.Type, entry.ValueString(), entry.Unit, entry.ID.Short()),
	}, nil
}

func (s *Server) handleListTrackers(ctx context.Context, req *mcp.CallToolRequest, input listTrackersInput) (*mcp.CallToolResult, any, error) {
	var entries []models.TrackerEntry
	if input.Type != "" {
		if !models.IsValidTrackerType(input.Type) {
			return nil, nil, fmt.Errorf("unknown tracker type: %s", input.Type)
		}
		entries = s.store.TrackersByType(models.TrackerType(input.Type))
	} else {
		entries = s.store.Trackers().All()
	}

	entries = limit(entries, input.Limit)
	if len(entries) == 0 {
		return nil, map[string]any{"message": "No tracker entries found."}, nil
	}
	return nil, entries, nil
}

func (s *Server) handleTodayTotals(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, todayTotalsOutput, error) {
	now := s.now()
	entries := s.store.Trackers().All()
	out := todayTotalsOutput{
		Date:            report.DayKey(now, s.loc),
		WaterML:         report.TodayTotal(entries, models.TrackerWater, now, s.loc),
		SleepHours:      report.TodayTotal(entries, models.TrackerSleep, now, s.loc),
		ExerciseMinutes: report.TodayTotal(entries, models.TrackerExercise, now, s.loc),
	}
	out.Message = fmt.Sprintf("%s: water %.0f ml, sleep %.1f h, exercise %.0f min",
		out.Date, out.WaterML, out.SleepHours, out.ExerciseMinutes)
	return nil, out, nil
}

func (s *Server) handleAddAppointment(ctx context.Context, req *mcp.CallToolRequest, input addAppointmentInput) (*mcp.CallToolResult, recordOutput, error) {
	err := validate.Appointment(validate.AppointmentForm{
		DoctorName: input.DoctorName,
		Date:       input.Date,
		Time:       input.Time,
	})
	if err != nil {
		return nil, recordOutput{}, fmt.Errorf("invalid appointment: %w", err)
	}

	a := s.store.Appointments().Add(models.Appointment{
		DoctorName: strings.TrimSpace(input.DoctorName),
		Specialty:  input.Specialty,
		Date:       input.Date,
		Time:       input.Time,
		Location:   input.Location,
		Type:       input.Type,
		Notes:      input.Notes,
	})
	if err := s.persist(); err != nil {
		return nil, recordOutput{}, err
	}

	return nil, recordOutput{
		ID:      a.ID.Short(),
		Message: fmt.Sprintf("Booked %s on %s %s (ID: %s)", a.DoctorName, a.Date, a.Time, a.ID.Short()),
	}, nil
}

func (s *Server) handleListAppointments(ctx context.Context, req *mcp.CallToolRequest, input listAppointmentsInput) (*mcp.CallToolResult, any, error) {
	now := s.now()
	var out []models.Appointment
	for _, a := range s.store.Appointments().All() {
		if input.UpcomingOnly {
			when, ok := a.When(s.loc)
			if !ok || when.Before(now) {
				continue
			}
		}
		out = append(out, a)
	}
	out = limit(out, input.Limit)
	if len(out) == 0 {
		return nil, map[string]any{"message": "No appointments found."}, nil
	}
	return nil, out, nil
}

// persist writes pending changes so other processes see them immediately.
func (s *Server) persist() error {
	if err := s.store.Flush(); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	return nil
}

func limit[T any](items []T, n int) []T {
	if n <= 0 {
		n = 20
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
