package eligibility

import (
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// TripDuration is the number of whole days absent on a trip. The traveller
// is present for part of both the departure and the return day, so only the
// days strictly between them count. Unparseable dates yield 0.
func TripDuration(departureDate, returnDate string) int {
	dep, err := domain.ParseDate(departureDate, time.UTC)
	if err != nil {
		return 0
	}
	ret, err := domain.ParseDate(returnDate, time.UTC)
	if err != nil {
		return 0
	}
	span := daysBetween(dep, ret)
	if span < 0 {
		span = -span
	}
	return max(0, span-1)
}

// TotalTripDays sums TripDuration over every trip.
func TotalTripDays(trips []domain.Trip) int {
	total := 0
	for _, t := range trips {
		total += TripDuration(t.DepartureDate, t.ReturnDate)
	}
	return total
}
