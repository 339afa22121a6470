// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Handlers are called directly against an in-memory state store.
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/healhub/internal/kv"
	"github.com/harperreed/healhub/internal/logging"
	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/state"
)

var testNow = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

// setupTestStore creates a hydrated state store over in-memory badger.
func setupTestStore(t *testing.T) *state.Store {
	t.Helper()

	backend, err := kv.OpenMemory(nil)
	if err != nil {
		t.Fatalf("Failed to open backend: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	st := state.Open(kv.NewStore(backend, "mcp-test", logging.Discard()), state.Options{
		Logger: logging.Discard(),
		Clock:  clockwork.NewFakeClockAt(testNow),
	})
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func setupTestServer(t *testing.T) (*Server, *state.Store) {
	t.Helper()
	st := setupTestStore(t)
	server, err := NewServer(st, time.UTC)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, st
}

func TestNewServer(t *testing.T) {
	server, _ := setupTestServer(t)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.store == nil {
		t.Error("Expected non-nil store")
	}
	if server.loc != time.UTC {
		t.Errorf("loc = %v, want UTC", server.loc)
	}
}

func TestHandleAddMedicine(t *testing.T) {
	server, st := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     addMedicineInput
		wantErr   bool
		errSubstr string
	}{
		{
			name:  "valid medicine",
			input: addMedicineInput{Name: "Aspirin", Dosage: "100mg"},
		},
		{
			name:  "medicine with dates",
			input: addMedicineInput{Name: "Metformin", Dosage: "500mg", StartDate: "2024-06-01", EndDate: "2024-12-01"},
		},
		{
			name:      "missing dosage",
			input:     addMedicineInput{Name: "Ibuprofen"},
			wantErr:   true,
			errSubstr: "Dosage is required",
		},
		{
			name:      "bad start date",
			input:     addMedicineInput{Name: "Ibuprofen", Dosage: "200mg", StartDate: "soon"},
			wantErr:   true,
			errSubstr: "start date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleAddMedicine(ctx, &mcp.CallToolRequest{}, tt.input)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.ID == "" {
				t.Error("Expected non-empty ID")
			}
			if !strings.Contains(output.Message, tt.input.Name) {
				t.Errorf("Message %q should mention %s", output.Message, tt.input.Name)
			}
		})
	}

	if got := st.Medicines().Len(); got != 2 {
		t.Errorf("Medicines().Len() = %d, want 2", got)
	}
	if st.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 after persist", st.Pending())
	}
}

func TestHandleListMedicinesEmpty(t *testing.T) {
	server, _ := setupTestServer(t)

	_, output, err := server.handleListMedicines(context.Background(), &mcp.CallToolRequest{}, listInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	m, ok := output.(map[string]any)
	if !ok {
		t.Fatalf("output type = %T, want map", output)
	}
	if m["message"] != "No medicines found." {
		t.Errorf("message = %v", m["message"])
	}
}

func TestHandleListMedicinesLimit(t *testing.T) {
	server, st := setupTestServer(t)
	for _, name := range []string{"A", "B", "C"} {
		st.Medicines().Add(models.Medicine{Name: name, Dosage: "1mg"})
	}

	_, output, err := server.handleListMedicines(context.Background(), &mcp.CallToolRequest{}, listInput{Limit: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	meds, ok := output.([]models.Medicine)
	if !ok {
		t.Fatalf("output type = %T, want []models.Medicine", output)
	}
	if len(meds) != 2 {
		t.Errorf("len = %d, want 2", len(meds))
	}
	if meds[0].Name != "C" {
		t.Errorf("first = %s, want newest C", meds[0].Name)
	}
}

func TestHandleDeleteMedicine(t *testing.T) {
	server, st := setupTestServer(t)
	m := st.Medicines().Add(models.Medicine{ID: "med-12345", Name: "Aspirin", Dosage: "100mg"})

	_, output, err := server.handleDeleteMedicine(context.Background(), &mcp.CallToolRequest{}, idInput{ID: "med-1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output.Message, "Aspirin") {
		t.Errorf("Message = %q", output.Message)
	}
	if _, ok := st.Medicines().Get(m.ID); ok {
		t.Error("medicine still present after delete")
	}
}

func TestHandleDeleteMedicineNotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	_, _, err := server.handleDeleteMedicine(context.Background(), &mcp.CallToolRequest{}, idInput{ID: "nope"})
	if err == nil {
		t.Fatal("Expected error for unknown id")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Error %q should contain 'not found'", err.Error())
	}
}

func TestHandleAddReminder(t *testing.T) {
	server, st := setupTestServer(t)
	ctx := context.Background()
	med := st.Medicines().Add(models.Medicine{ID: "med-abc", Name: "Aspirin", Dosage: "100mg"})

	tests := []struct {
		name      string
		input     addReminderInput
		wantErr   bool
		errSubstr string
	}{
		{
			name:  "one-shot reminder",
			input: addReminderInput{Title: "Pills", Time: "2024-06-03T09:30"},
		},
		{
			name:  "daily linked reminder",
			input: addReminderInput{Title: "Aspirin", Time: "2024-06-03T08:00:00Z", Repeat: "daily", MedicineID: "med-a"},
		},
		{
			name:      "missing time",
			input:     addReminderInput{Title: "Pills"},
			wantErr:   true,
			errSubstr: "time is required",
		},
		{
			name:      "bad repeat",
			input:     addReminderInput{Title: "Pills", Time: "2024-06-03T09:30", Repeat: "hourly"},
			wantErr:   true,
			errSubstr: "Repeat must be",
		},
		{
			name:      "unknown medicine",
			input:     addReminderInput{Title: "Pills", Time: "2024-06-03T09:30", MedicineID: "zzz"},
			wantErr:   true,
			errSubstr: "medicine not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleAddReminder(ctx, &mcp.CallToolRequest{}, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.ID == "" {
				t.Error("Expected non-empty ID")
			}
		})
	}

	reminders := st.ListReminders()
	if len(reminders) != 2 {
		t.Fatalf("len(reminders) = %d, want 2", len(reminders))
	}
	if reminders[0].MedicineID != med.ID {
		t.Errorf("MedicineID = %s, want %s", reminders[0].MedicineID, med.ID)
	}
	if reminders[1].Repeat != models.RepeatOnce {
		t.Errorf("Repeat = %s, want once", reminders[1].Repeat)
	}
}

func TestHandleMarkReminder(t *testing.T) {
	server, st := setupTestServer(t)
	ctx := context.Background()
	r := st.Reminders().Add(models.Reminder{ID: "rem-1", Title: "Pills", Time: "2024-06-03T09:30"})

	_, output, err := server.handleMarkReminder(ctx, &mcp.CallToolRequest{}, markReminderInput{ID: "rem-1", Status: "taken"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.Status != "taken" {
		t.Errorf("Status = %s, want taken", output.Status)
	}

	got, _ := st.Reminders().Get(r.ID)
	if !got.Taken || got.Skipped {
		t.Errorf("flags = taken:%v skipped:%v", got.Taken, got.Skipped)
	}

	_, output, err = server.handleMarkReminder(ctx, &mcp.CallToolRequest{}, markReminderInput{ID: "rem-1", Status: "pending"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.Status != "pending" {
		t.Errorf("Status = %s, want pending", output.Status)
	}

	_, _, err = server.handleMarkReminder(ctx, &mcp.CallToolRequest{}, markReminderInput{ID: "rem-1", Status: "later"})
	if err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Errorf("err = %v, want unknown status", err)
	}
}

func TestHandleListRemindersPendingOnly(t *testing.T) {
	server, st := setupTestServer(t)
	st.Reminders().Add(models.Reminder{Title: "done", Time: "2024-06-03T08:00", Taken: true})
	st.Reminders().Add(models.Reminder{Title: "open", Time: "2024-06-03T10:00"})

	_, output, err := server.handleListReminders(context.Background(), &mcp.CallToolRequest{}, listRemindersInput{PendingOnly: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	reminders, ok := output.([]models.Reminder)
	if !ok {
		t.Fatalf("output type = %T", output)
	}
	if len(reminders) != 1 || reminders[0].Title != "open" {
		t.Errorf("reminders = %+v, want only 'open'", reminders)
	}
}

func TestHandleAddTracker(t *testing.T) {
	server, st := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     addTrackerInput
		wantErr   bool
		errSubstr string
		wantUnit  string
	}{
		{
			name:     "water",
			input:    addTrackerInput{Type: "water", Value: 250},
			wantUnit: "ml",
		},
		{
			name:     "vitals with details",
			input:    addTrackerInput{Type: "vitals", Details: map[string]float64{"systolic": 120, "diastolic": 80}},
			wantUnit: "",
		},
		{
			name:     "sleep with date",
			input:    addTrackerInput{Type: "sleep", Value: 7.5, Date: "2024-06-02T23:00:00Z"},
			wantUnit: "hours",
		},
		{
			name:      "unknown type",
			input:     addTrackerInput{Type: "steps", Value: 1000},
			wantErr:   true,
			errSubstr: "Unknown tracker type",
		},
		{
			name:      "zero value",
			input:     addTrackerInput{Type: "water"},
			wantErr:   true,
			errSubstr: "positive number",
		},
		{
			name:      "bad date",
			input:     addTrackerInput{Type: "water", Value: 100, Date: "yesterday"},
			wantErr:   true,
			errSubstr: "invalid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleAddTracker(ctx, &mcp.CallToolRequest{}, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			entries := st.TrackersByType(models.TrackerType(tt.input.Type))
			if len(entries) != 1 {
				t.Fatalf("len(entries) = %d, want 1", len(entries))
			}
			if entries[0].Unit != tt.wantUnit {
				t.Errorf("Unit = %q, want %q", entries[0].Unit, tt.wantUnit)
			}
			if output.ID != entries[0].ID.Short() {
				t.Errorf("ID = %s, want %s", output.ID, entries[0].ID.Short())
			}
		})
	}

	vitals := st.TrackersByType(models.TrackerVitals)[0]
	var details map[string]float64
	if err := json.Unmarshal(vitals.Value, &details); err != nil {
		t.Fatalf("vitals value not an object: %v", err)
	}
	if details["systolic"] != 120 {
		t.Errorf("systolic = %v, want 120", details["systolic"])
	}
}

func TestHandleListTrackersInvalidType(t *testing.T) {
	server, _ := setupTestServer(t)

	_, _, err := server.handleListTrackers(context.Background(), &mcp.CallToolRequest{}, listTrackersInput{Type: "steps"})
	if err == nil {
		t.Error("Expected error for unknown tracker type")
	}
}

func TestHandleTodayTotals(t *testing.T) {
	server, st := setupTestServer(t)
	st.Trackers().Add(models.TrackerEntry{Type: models.TrackerWater, Date: testNow.Add(-time.Hour), Value: models.NumberValue(250)})
	st.Trackers().Add(models.TrackerEntry{Type: models.TrackerWater, Date: testNow.Add(-2 * time.Hour), Value: models.NumberValue(500)})
	st.Trackers().Add(models.TrackerEntry{Type: models.TrackerWater, Date: testNow.Add(-48 * time.Hour), Value: models.NumberValue(1000)})
	st.Trackers().Add(models.TrackerEntry{Type: models.TrackerExercise, Date: testNow, Value: models.NumberValue(30)})

	_, output, err := server.handleTodayTotals(context.Background(), &mcp.CallToolRequest{}, struct{}{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.Date != "2024-06-03" {
		t.Errorf("Date = %s", output.Date)
	}
	if output.WaterML != 750 {
		t.Errorf("WaterML = %v, want 750", output.WaterML)
	}
	if output.ExerciseMinutes != 30 {
		t.Errorf("ExerciseMinutes = %v, want 30", output.ExerciseMinutes)
	}
	if output.SleepHours != 0 {
		t.Errorf("SleepHours = %v, want 0", output.SleepHours)
	}
}

func TestHandleAddAndListAppointments(t *testing.T) {
	server, st := setupTestServer(t)
	ctx := context.Background()

	_, _, err := server.handleAddAppointment(ctx, &mcp.CallToolRequest{}, addAppointmentInput{DoctorName: "Dr. Lee", Date: "2024-06-10", Time: "14:30"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, _, err = server.handleAddAppointment(ctx, &mcp.CallToolRequest{}, addAppointmentInput{DoctorName: "Dr. Kim", Date: "2024-05-01"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, _, err = server.handleAddAppointment(ctx, &mcp.CallToolRequest{}, addAppointmentInput{DoctorName: "Dr. Bad", Date: "2024-06-10", Time: "2pm"})
	if err == nil {
		t.Error("Expected error for bad time")
	}

	if st.Appointments().Len() != 2 {
		t.Errorf("Len = %d, want 2", st.Appointments().Len())
	}

	_, output, err := server.handleListAppointments(ctx, &mcp.CallToolRequest{}, listAppointmentsInput{UpcomingOnly: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	appts, ok := output.([]models.Appointment)
	if !ok {
		t.Fatalf("output type = %T", output)
	}
	if len(appts) != 1 || appts[0].DoctorName != "Dr. Lee" {
		t.Errorf("appts = %+v, want only Dr. Lee", appts)
	}
	if appts[0].Type != "in-person" {
		t.Errorf("Type = %q, want in-person", appts[0].Type)
	}
}

func TestHandleTodayResource(t *testing.T) {
	server, st := setupTestServer(t)
	st.Trackers().Add(models.TrackerEntry{Type: models.TrackerWater, Date: testNow, Value: models.NumberValue(330)})
	st.Reminders().Add(models.Reminder{Title: "Evening pills", Time: "2024-06-03T20:00"})

	result, err := server.handleTodayResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Contents) == 0 {
		t.Fatal("Expected non-empty contents")
	}
	if result.Contents[0].URI != "healhub://today" {
		t.Errorf("URI = %s, want healhub://today", result.Contents[0].URI)
	}

	var summary map[string]any
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &summary); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if summary["waterMl"] != 330.0 {
		t.Errorf("waterMl = %v, want 330", summary["waterMl"])
	}
	if !strings.Contains(result.Contents[0].Text, "Evening pills") {
		t.Error("Expected pending reminder in result")
	}
}

func TestHandleRemindersResource(t *testing.T) {
	server, st := setupTestServer(t)
	med := st.Medicines().Add(models.Medicine{Name: "Aspirin", Dosage: "100mg"})
	st.Reminders().Add(models.Reminder{Title: "Pills", Time: "2024-06-03T09:30", MedicineID: med.ID})
	st.Reminders().Add(models.Reminder{Title: "Skipped", Time: "2024-06-03T07:30", Skipped: true})

	result, err := server.handleRemindersResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	text := result.Contents[0].Text
	if !strings.Contains(text, "Aspirin - 100mg") {
		t.Error("Expected medicine label in result")
	}
	if strings.Contains(text, "Skipped") {
		t.Error("Skipped reminder should be filtered out")
	}
}

func TestHandleSummaryResource(t *testing.T) {
	server, st := setupTestServer(t)
	st.Trackers().Add(models.TrackerEntry{Type: models.TrackerMood, Date: testNow.Add(-time.Hour), Value: models.NumberValue(3)})
	st.Trackers().Add(models.TrackerEntry{Type: models.TrackerMood, Date: testNow, Value: models.NumberValue(4)})
	st.Badges().Add(models.Badge{Name: "Hydration Hero"})

	result, err := server.handleSummaryResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var summary struct {
		Latest map[string]struct {
			Value json.RawMessage `json:"value"`
		} `json:"latest"`
		Badges []string `json:"badges"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &summary); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if string(summary.Latest["mood"].Value) != "4" {
		t.Errorf("latest mood = %s, want 4", summary.Latest["mood"].Value)
	}
	if len(summary.Badges) != 1 || summary.Badges[0] != "Hydration Hero" {
		t.Errorf("badges = %v", summary.Badges)
	}
}

func TestHandleSummaryResourceEmpty(t *testing.T) {
	server, _ := setupTestServer(t)

	result, err := server.handleSummaryResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(result.Contents[0].Text, `"badges": []`) {
		t.Errorf("Expected empty badges array, got %s", result.Contents[0].Text)
	}
}
