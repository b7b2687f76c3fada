package eligibility

import (
	"math"
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// Projection is the forecast eligibility date. When AlreadyEligible is true
// there is no further wait and Date is the zero time; callers must not
// render it as a date.
type Projection struct {
	AlreadyEligible bool
	Date            time.Time
}

// EstimatedEligibilityDate projects when daysInCanada reaches RequiredDays,
// assuming presence from today on. The date is pinned to the last instant
// of its calendar day so a live countdown reaches zero at day rollover.
func EstimatedEligibilityDate(daysInCanada float64, now time.Time) Projection {
	daysNeeded := int(math.Ceil(RequiredDays - daysInCanada))
	if daysNeeded <= 0 {
		return Projection{AlreadyEligible: true}
	}
	y, m, d := now.Date()
	return Projection{
		Date: time.Date(y, m, d+daysNeeded, 23, 59, 59, int(999*time.Millisecond), now.Location()),
	}
}

// Countdown is the time left until a Projection, split for display.
type Countdown struct {
	Eligible bool
	Days     int
	Hours    int
	Minutes  int
	Seconds  int
}

// CountdownTo splits the time from now until p. It reports Eligible when p
// is the already-eligible sentinel or the date has passed. Repeated calls
// with the same inputs return the same value.
func CountdownTo(p Projection, now time.Time) Countdown {
	if p.AlreadyEligible {
		return Countdown{Eligible: true}
	}
	left := p.Date.Sub(now)
	if left <= 0 {
		return Countdown{Eligible: true}
	}
	const day = 24 * time.Hour
	return Countdown{
		Days:    int(left / day),
		Hours:   int(left % day / time.Hour),
		Minutes: int(left % time.Hour / time.Minute),
		Seconds: int(left % time.Minute / time.Second),
	}
}

// Report bundles everything shown about eligibility at one instant.
type Report struct {
	Stats      domain.Stats
	Result     Result
	Projection Projection
	Countdown  Countdown
}

// BuildReport computes the stats, projection and countdown for doc as of now.
func BuildReport(doc domain.Document, now time.Time) Report {
	stats, res := CalculateStats(doc, now)
	proj := EstimatedEligibilityDate(stats.DaysInCanada, now)
	return Report{Stats: stats, Result: res, Projection: proj, Countdown: CountdownTo(proj, now)}
}
