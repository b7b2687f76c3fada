package eligibility

import (
	"math"
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// CalculatePeriodBased credits presence from explicit residency periods.
//
// Each period is clipped to the window and its inclusive day count lands in
// the bucket for its status. Window days covered by no period are reported
// as uncovered and shown as time outside, but they are not subtracted from
// presence. Temporary days earn half credit, capped at TemporaryCreditCap.
func CalculatePeriodBased(periods []domain.ResidencyPeriod, anchor time.Time) Result {
	windowStart, windowEnd := Window(anchor)
	res := Result{
		Mode:              domain.ModePeriod,
		Anchor:            windowEnd,
		WindowStart:       windowStart,
		WindowEnd:         windowEnd,
		TotalDaysInPeriod: daysBetween(windowStart, windowEnd) + 1,
	}

	for _, p := range periods {
		start, ok := parseDay(p.StartDate, anchor)
		if !ok {
			continue
		}
		end, ok := parseDay(p.EndDate, anchor)
		if !ok {
			continue
		}
		start = laterOf(start, windowStart)
		end = earlierOf(end, windowEnd)
		if start.After(end) {
			continue
		}

		days := daysBetween(start, end) + 1
		switch p.Status {
		case domain.StatusPR:
			res.PRDays += days
		case domain.StatusTemporary:
			res.TemporaryDays += days
		case domain.StatusAbsence:
			res.AbsenceDays += days
		}
	}

	covered := res.PRDays + res.TemporaryDays + res.AbsenceDays
	res.UncoveredDays = max(0, res.TotalDaysInPeriod-covered)
	res.TemporaryCredit = math.Min(TemporaryCreditCap, float64(res.TemporaryDays)*TemporaryCreditFactor)
	res.DaysInCanada = math.Max(0, float64(res.PRDays)+res.TemporaryCredit)
	res.DaysOutside = res.AbsenceDays + res.UncoveredDays
	return res
}
