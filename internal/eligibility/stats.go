package eligibility

import (
	"math"
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// CalculateStats derives the dashboard statistics for doc as of now.
// The Result it was computed from is returned alongside for callers that
// show the accounting detail.
func CalculateStats(doc domain.Document, now time.Time) (domain.Stats, Result) {
	res := Calculate(doc, now)

	stats := domain.Stats{
		Mode:               res.Mode,
		DaysInCanada:       res.DaysInCanada,
		DaysRemaining:      math.Max(0, RequiredDays-res.DaysInCanada),
		ProgressPercentage: math.Max(0, math.Min(100, res.DaysInCanada/RequiredDays*100)),
		TotalTrips:         len(doc.Trips),
		IsPRDateSet:        doc.Settings.PRDate != "" || len(doc.Settings.ResidencyPeriods) > 0,
	}
	if res.Mode == domain.ModePeriod {
		stats.TotalTripDays = res.DaysOutside
	} else {
		stats.TotalTripDays = TotalTripDays(doc.Trips)
	}
	return stats, res
}

// PublicStatsFrom keeps the share-safe subset of stats. The percentage is
// rounded because the share page shows whole percents.
func PublicStatsFrom(stats domain.Stats) domain.PublicStats {
	return domain.PublicStats{
		DaysInCanada:       stats.DaysInCanada,
		ProgressPercentage: int(math.Round(stats.ProgressPercentage)),
		DaysRemaining:      stats.DaysRemaining,
		TotalTrips:         stats.TotalTrips,
		IsPRDateSet:        stats.IsPRDateSet,
	}
}
