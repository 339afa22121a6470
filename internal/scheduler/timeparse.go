// ABOUTME: Reminder time parsing and minute-bucket formatting.
package scheduler

import (
	"strings"
	"time"
)

// BucketLayout is the minute resolution used for de-duplication.
const BucketLayout = "2006-01-02T15:04"

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// MinuteBucket formats t at minute resolution in loc.
func MinuteBucket(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(BucketLayout)
}

// ParseTime parses a stored reminder time. Values with an offset keep it;
// values without one are read in loc.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
