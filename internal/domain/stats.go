package domain

// Mode names the accounting algorithm that produced a set of numbers.
// The two modes use different boundary conventions, so their day counts
// must never be compared with each other.
type Mode string

const (
	ModePeriod Mode = "period"
	ModeLegacy Mode = "legacy"
)

// Stats is the dashboard summary derived from a Document.
// It is computed on demand and never persisted.
type Stats struct {
	Mode               Mode    `json:"mode"`
	DaysInCanada       float64 `json:"daysInCanada"`
	DaysRemaining      float64 `json:"daysRemaining"`
	ProgressPercentage float64 `json:"progressPercentage"`
	TotalTrips         int     `json:"totalTrips"`
	TotalTripDays      int     `json:"totalTripDays"`
	IsPRDateSet        bool    `json:"isPRDateSet"`
}

// PublicStats is the anonymized subset of Stats republished on a share page.
type PublicStats struct {
	DaysInCanada       float64 `json:"daysInCanada"`
	ProgressPercentage int     `json:"progressPercentage"`
	DaysRemaining      float64 `json:"daysRemaining"`
	TotalTrips         int     `json:"totalTrips"`
	IsPRDateSet        bool    `json:"isPRDateSet"`
}
