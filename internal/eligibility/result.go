package eligibility

import (
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// Result is the day accounting for one snapshot.
// The bucket fields (PRDays through TemporaryCredit) are only filled in
// period mode; EffectiveStart only in legacy mode.
type Result struct {
	Mode        domain.Mode
	Anchor      time.Time
	WindowStart time.Time
	WindowEnd   time.Time

	TotalDaysInPeriod int
	DaysInCanada      float64
	DaysOutside       int

	PRDays          int
	TemporaryDays   int
	AbsenceDays     int
	UncoveredDays   int
	TemporaryCredit float64

	EffectiveStart time.Time
}
