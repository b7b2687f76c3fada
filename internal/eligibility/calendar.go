// Package eligibility converts travel and residency records into
// physical-presence day counts and an eligibility forecast.
//
// Every function here is pure: it reads a snapshot of the user's data and the
// current time and returns a fresh result. Nothing is cached and nothing
// blocks, so callers simply re-invoke after any data change.
package eligibility

import (
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

const (
	// RequiredDays is the physical presence needed for eligibility.
	RequiredDays = 1095
	// WindowYears is the length of the rolling window presence is counted in.
	WindowYears = 5
	// TemporaryCreditFactor is the credit earned per day of temporary status.
	TemporaryCreditFactor = 0.5
	// TemporaryCreditCap bounds the total credit earned from temporary status.
	TemporaryCreditCap = 365.0
)

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// civilDay numbers the calendar day of t, ignoring its location's offset,
// so day arithmetic is immune to DST transitions.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// daysBetween is the number of calendar days from a to b; negative when b is before a.
func daysBetween(a, b time.Time) int {
	return int(civilDay(b) - civilDay(a))
}

// parseDay parses a calendar date in the location of ref.
func parseDay(s string, ref time.Time) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := domain.ParseDate(s, ref.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// Anchor returns the date the window and projection are computed from: the
// target date when it is set and parses, otherwise the start of today.
func Anchor(s domain.Settings, now time.Time) time.Time {
	if t, ok := parseDay(s.TargetDate, now); ok {
		return t
	}
	return startOfDay(now)
}

// Window returns the inclusive rolling window ending at anchor.
func Window(anchor time.Time) (start, end time.Time) {
	end = startOfDay(anchor)
	return end.AddDate(-WindowYears, 0, 0), end
}
