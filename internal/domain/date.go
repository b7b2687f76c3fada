package domain

import "time"

// DateLayout is the calendar-date format used for every date field.
const DateLayout = "2006-01-02"

// ParseDate parses a "2006-01-02" calendar date as midnight in loc.
// Dates carry no time-of-day meaning; loc only fixes which midnight.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// FormatDate renders t as a "2006-01-02" calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
