package eligibility

import (
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// CalculateLegacy counts presence from a single PR date and the trip list.
//
// Presence runs from the later of the PR date and the window start up to the
// anchor. Every trip overlapping that span removes its overlap minus one day,
// since departure and return days count as partially present. One further
// day is taken off the total for the anchor-day boundary.
//
// A missing or unparseable PR date gives a zero result, not an error.
func CalculateLegacy(prDate string, trips []domain.Trip, anchor time.Time) Result {
	windowStart, windowEnd := Window(anchor)
	res := Result{
		Mode:        domain.ModeLegacy,
		Anchor:      windowEnd,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	pr, ok := parseDay(prDate, anchor)
	if !ok {
		return res
	}

	start := laterOf(pr, windowStart)
	res.EffectiveStart = start
	res.TotalDaysInPeriod = daysBetween(start, windowEnd)

	for _, t := range trips {
		dep, ok := parseDay(t.DepartureDate, anchor)
		if !ok {
			continue
		}
		ret, ok := parseDay(t.ReturnDate, anchor)
		if !ok {
			continue
		}
		if ret.Before(start) || dep.After(windowEnd) {
			continue
		}
		overlap := daysBetween(laterOf(dep, start), earlierOf(ret, windowEnd))
		res.DaysOutside += max(0, overlap-1)
	}

	res.DaysInCanada = float64(max(0, res.TotalDaysInPeriod-res.DaysOutside-1))
	return res
}
