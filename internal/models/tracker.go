// ABOUTME: Polymorphic tracker entries for water, sleep, exercise, mood, meals, vitals, BMI.
// ABOUTME: Value holds raw JSON so numeric and structured readings share one collection.
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// TrackerType names the health metric an entry measures.
type TrackerType string

const (
	TrackerWater    TrackerType = "water"
	TrackerSleep    TrackerType = "sleep"
	TrackerExercise TrackerType = "exercise"
	TrackerMood     TrackerType = "mood"
	TrackerMeals    TrackerType = "meals"
	TrackerVitals   TrackerType = "vitals"
	TrackerBMI      TrackerType = "bmi"
)

// TrackerUnits maps tracker types to their default display units.
var TrackerUnits = map[TrackerType]string{
	TrackerWater:    "ml",
	TrackerSleep:    "hours",
	TrackerExercise: "min",
	TrackerMood:     "scale",
	TrackerMeals:    "",
	TrackerVitals:   "",
	TrackerBMI:      "kg/m²",
}

// AllTrackerTypes lists every valid tracker type.
var AllTrackerTypes = []TrackerType{
	TrackerWater, TrackerSleep, TrackerExercise, TrackerMood,
	TrackerMeals, TrackerVitals, TrackerBMI,
}

// IsValidTrackerType checks if a string is a valid tracker type.
func IsValidTrackerType(s string) bool {
	for _, t := range AllTrackerTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// TrackerEntry is one timestamped measurement.
type TrackerEntry struct {
	ID    ID              `json:"id"`
	Type  TrackerType     `json:"type"`
	Date  time.Time       `json:"date"`
	Value json.RawMessage `json:"value"`
	Unit  string          `json:"unit,omitempty"`
	Notes string          `json:"notes,omitempty"`
}

// NewTrackerEntry creates a numeric entry recorded now.
func NewTrackerEntry(t TrackerType, value float64) TrackerEntry {
	return TrackerEntry{
		ID:    NewID(),
		Type:  t,
		Date:  time.Now(),
		Value: NumberValue(value),
		Unit:  TrackerUnits[t],
	}
}

// NumberValue encodes a float as a raw JSON value.
func NumberValue(v float64) json.RawMessage {
	return json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))
}

// ObjectValue encodes a structured reading such as vitals.
func ObjectValue(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// RecordID returns the entry id.
func (e TrackerEntry) RecordID() ID { return e.ID }

// WithDefaults fills in a missing id, date, and unit.
func (e TrackerEntry) WithDefaults(newID func() ID, now time.Time) TrackerEntry {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Date.IsZero() {
		e.Date = now
	}
	if e.Unit == "" {
		e.Unit = TrackerUnits[e.Type]
	}
	return e
}

// WithDate sets a custom measurement time.
func (e TrackerEntry) WithDate(t time.Time) TrackerEntry {
	e.Date = t
	return e
}

// Number returns the numeric value of the entry. Numeric strings are
// accepted; objects and other shapes report false.
func (e TrackerEntry) Number() (float64, bool) {
	raw := bytes.TrimSpace(e.Value)
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ValueString renders the raw value for display.
func (e TrackerEntry) ValueString() string {
	if f, ok := e.Number(); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(bytes.TrimSpace(e.Value))
}
