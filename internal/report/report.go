// ABOUTME: Aggregations over tracker entries for dashboards and charts.
// ABOUTME: Daily totals always sum every entry of the day.
package report

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/harperreed/healhub/internal/models"
)

const dayLayout = "2006-01-02"

// Point is one day of a chart series.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DayKey returns the local calendar day of t.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayLayout)
}

// TodayTotal sums the numeric values of every entry of type t recorded on
// the same local day as now.
func TodayTotal(entries []models.TrackerEntry, t models.TrackerType, now time.Time, loc *time.Location) float64 {
	today := DayKey(now, loc)
	total := 0.0
	for _, e := range entries {
		if e.Type != t || DayKey(e.Date, loc) != today {
			continue
		}
		if v, ok := e.Number(); ok {
			total += v
		}
	}
	return total
}

// GroupByDate sums numeric entries of type t per local day, ascending.
// An empty type includes every entry.
func GroupByDate(entries []models.TrackerEntry, t models.TrackerType, loc *time.Location) []Point {
	sums := make(map[string]float64)
	for _, e := range entries {
		if t != "" && e.Type != t {
			continue
		}
		v, _ := e.Number()
		sums[DayKey(e.Date, loc)] += v
	}

	out := make([]Point, 0, len(sums))
	for date, v := range sums {
		out = append(out, Point{Date: date, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// LastNDays returns exactly n points ending today, filling gaps with zero.
func LastNDays(series []Point, n int, now time.Time, loc *time.Location) []Point {
	if n <= 0 {
		return []Point{}
	}
	if loc == nil {
		loc = time.Local
	}
	byDate := make(map[string]float64, len(series))
	for _, p := range series {
		byDate[p.Date] = p.Value
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	out := make([]Point, 0, n)
	for i := n - 1; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(dayLayout)
		out = append(out, Point{Date: key, Value: byDate[key]})
	}
	return out
}

// ErrInvalidMeasurement is returned for non-positive BMI inputs.
var ErrInvalidMeasurement = errors.New("weight and height must be positive")

// BMIMetric computes BMI from kilograms and centimetres, rounded to 0.1.
func BMIMetric(kg, cm float64) (float64, error) {
	if kg <= 0 || cm <= 0 {
		return 0, ErrInvalidMeasurement
	}
	m := cm / 100
	return round1(kg / (m * m)), nil
}

// BMIImperial computes BMI from pounds and inches, rounded to 0.1.
func BMIImperial(lb, in float64) (float64, error) {
	if lb <= 0 || in <= 0 {
		return 0, ErrInvalidMeasurement
	}
	return round1(703 * lb / (in * in)), nil
}

// BMICategory returns the standard category label.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MedicineStats counts medicines by taken flag.
type MedicineStats struct {
	Taken    int `json:"taken"`
	NotTaken int `json:"notTaken"`
}

// Medicines summarizes the taken flag across medicines.
func Medicines(meds []models.Medicine) MedicineStats {
	var s MedicineStats
	for _, m := range meds {
		if m.Taken {
			s.Taken++
		} else {
			s.NotTaken++
		}
	}
	return s
}

// Summary is the dashboard view of one day.
type Summary struct {
	Date             string               `json:"date"`
	WaterML          float64              `json:"waterMl"`
	SleepHours       float64              `json:"sleepHours"`
	ExerciseMinutes  float64              `json:"exerciseMinutes"`
	Medicines        MedicineStats        `json:"medicines"`
	PendingReminders []models.Reminder    `json:"pendingReminders"`
	UpcomingAppts    []models.Appointment `json:"upcomingAppointments"`
	LatestMood       *float64             `json:"latestMood,omitempty"`
	LatestBMI        *float64             `json:"latestBmi,omitempty"`
}

// Inputs bundles the collections a Summary reads.
type Inputs struct {
	Trackers     []models.TrackerEntry
	Medicines    []models.Medicine
	Reminders    []models.Reminder
	Appointments []models.Appointment
}

// Today builds the dashboard summary for now.
func Today(in Inputs, now time.Time, loc *time.Location) Summary {
	s := Summary{
		Date:             DayKey(now, loc),
		WaterML:          TodayTotal(in.Trackers, models.TrackerWater, now, loc),
		SleepHours:       TodayTotal(in.Trackers, models.TrackerSleep, now, loc),
		ExerciseMinutes:  TodayTotal(in.Trackers, models.TrackerExercise, now, loc),
		Medicines:        Medicines(in.Medicines),
		PendingReminders: []models.Reminder{},
		UpcomingAppts:    []models.Appointment{},
	}

	for _, r := range in.Reminders {
		if r.Pending() {
			s.PendingReminders = append(s.PendingReminders, r)
		}
	}

	for _, a := range in.Appointments {
		if when, ok := a.When(loc); ok && !when.Before(now) {
			s.UpcomingAppts = append(s.UpcomingAppts, a)
		}
	}
	sort.SliceStable(s.UpcomingAppts, func(i, j int) bool {
		a, _ := s.UpcomingAppts[i].When(loc)
		b, _ := s.UpcomingAppts[j].When(loc)
		return a.Before(b)
	})

	s.LatestMood = latest(in.Trackers, models.TrackerMood)
	s.LatestBMI = latest(in.Trackers, models.TrackerBMI)
	return s
}

func latest(entries []models.TrackerEntry, t models.TrackerType) *float64 {
	var best *models.TrackerEntry
	for i := range entries {
		e := &entries[i]
		if e.Type != t {
			continue
		}
		if _, ok := e.Number(); !ok {
			continue
		}
		if best == nil || e.Date.After(best.Date) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	v, _ := best.Number()
	return &v
}
