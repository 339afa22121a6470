// ABOUTME: Full data snapshots for backup, restore, and human-readable export.
// ABOUTME: Supports JSON, YAML, and Markdown formats.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/state"
)

// Snapshot is the full export format.
type Snapshot struct {
	Version      string                `json:"version"`
	ExportedAt   time.Time             `json:"exported_at"`
	Tool         string                `json:"tool"`
	Medicines    []models.Medicine     `json:"medicines"`
	Reminders    []models.Reminder     `json:"reminders"`
	Trackers     []models.TrackerEntry `json:"trackers"`
	Appointments []models.Appointment  `json:"appointments"`
	Badges       []models.Badge        `json:"badges"`
	Settings     models.Settings       `json:"settings"`
	Theme        models.Theme          `json:"theme"`
}

// Take captures the current state.
func Take(st *state.Store, now time.Time) *Snapshot {
	return &Snapshot{
		Version:      "1.0",
		ExportedAt:   now,
		Tool:         "healhub",
		Medicines:    st.Medicines().All(),
		Reminders:    st.Reminders().All(),
		Trackers:     st.Trackers().All(),
		Appointments: st.Appointments().All(),
		Badges:       st.Badges().All(),
		Settings:     st.Settings().Get(),
		Theme:        st.Theme().Get(),
	}
}

// Items returns the named collection of the snapshot.
func (s *Snapshot) Items(name string) (any, error) {
	switch name {
	case "medicines":
		return s.Medicines, nil
	case "reminders":
		return s.Reminders, nil
	case "trackers":
		return s.Trackers, nil
	case "appointments":
		return s.Appointments, nil
	case "badges":
		return s.Badges, nil
	}
	return nil, fmt.Errorf("unknown collection %q", name)
}

// Collections lists the exportable collection names.
var Collections = []string{"medicines", "reminders", "trackers", "appointments", "badges"}

// JSON encodes v with indentation.
func JSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// YAML renders the snapshot with trackers grouped by type.
func YAML(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	grouped := make(map[string][]any)
	if list, ok := doc["trackers"].([]any); ok {
		for _, item := range list {
			entry, _ := item.(map[string]any)
			t, _ := entry["type"].(string)
			if t == "" {
				t = "unknown"
			}
			delete(entry, "type")
			grouped[t] = append(grouped[t], entry)
		}
	}
	doc["trackers"] = grouped

	return yaml.Marshal(doc)
}

// Markdown renders the snapshot as tables, one section per collection.
func Markdown(s *Snapshot, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# HealHub Export - %s\n\n", s.ExportedAt.In(loc).Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.ExportedAt.Format(time.RFC3339)))

	if len(s.Medicines) > 0 {
		sb.WriteString("## Medicines\n\n")
		sb.WriteString("| Name | Dosage | Frequency | Doctor |\n")
		sb.WriteString("|------|--------|-----------|--------|\n")
		for _, m := range s.Medicines {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", m.Name, m.Dosage, m.Frequency, m.Doctor))
		}
		sb.WriteString("\n")
	}

	if len(s.Reminders) > 0 {
		sb.WriteString("## Reminders\n\n")
		sb.WriteString("| Time | Title | Repeat | Status |\n")
		sb.WriteString("|------|-------|--------|--------|\n")
		for _, r := range s.Reminders {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", r.Time, r.Title, r.Repeat, r.Status()))
		}
		sb.WriteString("\n")
	}

	grouped := make(map[models.TrackerType][]models.TrackerEntry)
	for _, e := range s.Trackers {
		grouped[e.Type] = append(grouped[e.Type], e)
	}
	types := make([]models.TrackerType, 0, len(grouped))
	for t := range grouped {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, t := range types {
		sb.WriteString(fmt.Sprintf("## %s\n\n", t))
		sb.WriteString("| Date | Value | Notes |\n")
		sb.WriteString("|------|-------|-------|\n")
		for _, e := range grouped[t] {
			sb.WriteString(fmt.Sprintf("| %s | %s %s | %s |\n",
				e.Date.In(loc).Format("2006-01-02 15:04"), e.ValueString(), e.Unit, e.Notes))
		}
		sb.WriteString("\n")
	}

	if len(s.Appointments) > 0 {
		sb.WriteString("## Appointments\n\n")
		sb.WriteString("| Date | Time | Doctor | Location |\n")
		sb.WriteString("|------|------|--------|----------|\n")
		for _, a := range s.Appointments {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", a.Date, a.Time, a.DoctorName, a.Location))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ImportSummary counts records added by Import.
type ImportSummary struct {
	Medicines    int
	Reminders    int
	Trackers     int
	Appointments int
	Badges       int
}

// Import adds snapshot records whose ids are not already present.
func Import(st *state.Store, s *Snapshot) ImportSummary {
	var sum ImportSummary
	sum.Medicines = importInto(st.Medicines(), s.Medicines)
	sum.Reminders = importInto(st.Reminders(), s.Reminders)
	sum.Trackers = importInto(st.Trackers(), s.Trackers)
	sum.Appointments = importInto(st.Appointments(), s.Appointments)
	sum.Badges = importInto(st.Badges(), s.Badges)
	return sum
}

func importInto[T state.Record[T]](c *state.Collection[T], items []T) int {
	added := 0
	// Walk backwards so prepending keeps the exported order.
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		if id := item.RecordID(); id != "" {
			if _, exists := c.Get(id); exists {
				continue
			}
		}
		c.Add(item)
		added++
	}
	return added
}

// ParseSnapshot decodes a JSON snapshot.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return &s, nil
}
