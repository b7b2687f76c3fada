package eligibility

import (
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// Mode is the accounting mode chosen for a snapshot. It is a closed set:
// PeriodBased and LegacyTrips are the only implementations.
type Mode interface {
	// Name identifies the mode in results and API responses.
	Name() domain.Mode
	// Calculate runs the mode's algorithm for the window ending at anchor.
	Calculate(anchor time.Time) Result

	sealed()
}

// PeriodBased accounts presence from recorded residency periods.
type PeriodBased struct {
	Periods []domain.ResidencyPeriod
}

func (PeriodBased) Name() domain.Mode { return domain.ModePeriod }

func (m PeriodBased) Calculate(anchor time.Time) Result {
	return CalculatePeriodBased(m.Periods, anchor)
}

func (PeriodBased) sealed() {}

// LegacyTrips accounts presence from a PR date and the trip list.
type LegacyTrips struct {
	PRDate string
	Trips  []domain.Trip
}

func (LegacyTrips) Name() domain.Mode { return domain.ModeLegacy }

func (m LegacyTrips) Calculate(anchor time.Time) Result {
	return CalculateLegacy(m.PRDate, m.Trips, anchor)
}

func (LegacyTrips) sealed() {}

// ResolveMode picks the accounting mode for a snapshot. Any recorded
// residency period selects PeriodBased outright; the two modes are never blended.
func ResolveMode(s domain.Settings, trips []domain.Trip) Mode {
	if len(s.ResidencyPeriods) > 0 {
		return PeriodBased{Periods: s.ResidencyPeriods}
	}
	return LegacyTrips{PRDate: s.PRDate, Trips: trips}
}

// Calculate resolves the anchor and mode for doc and runs the accounting.
func Calculate(doc domain.Document, now time.Time) Result {
	return ResolveMode(doc.Settings, doc.Trips).Calculate(Anchor(doc.Settings, now))
}
