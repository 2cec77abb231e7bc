package aggregate

import (
	"fmt"
	"strings"
	"time"
)

// TimeUnit truncates temporal keys before grouping.
type TimeUnit string

// Time units.
const (
	NoTimeUnit TimeUnit = ""
	Day        TimeUnit = "day"
	Week       TimeUnit = "week"
	Month      TimeUnit = "month"
	Quarter    TimeUnit = "quarter"
	Year       TimeUnit = "year"
)

// ParseTimeUnit validates a time unit name.
func ParseTimeUnit(s string) (TimeUnit, bool) {
	switch u := TimeUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case Day, Week, Month, Quarter, Year:
		return u, true
	}
	return NoTimeUnit, false
}

// Bucket returns the start of the bucket containing t and its label.
// Weeks start on Monday.
func (u TimeUnit) Bucket(t time.Time) (time.Time, string) {
	t = t.UTC()
	y, m, d := t.Date()
	switch u {
	case Week:
		offset := (int(t.Weekday()) + 6) % 7
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
		return start, start.Format("2006-01-02")
	case Month:
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return start, start.Format("2006-01")
	case Quarter:
		q := (int(m)-1)/3 + 1
		start := time.Date(y, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return start, fmt.Sprintf("%d-Q%d", y, q)
	case Year:
		start := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.Format("2006")
	}
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.Format("2006-01-02")
}
