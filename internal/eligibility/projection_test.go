package eligibility_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/citizenship-tracker/backend/internal/eligibility"
)

func TestEstimatedEligibilityDate_AlreadyEligible(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	for _, days := range []float64{1095, 1095.5, 2000} {
		p := eligibility.EstimatedEligibilityDate(days, now)
		assert.True(t, p.AlreadyEligible, "days=%v", days)
		assert.True(t, p.Date.IsZero(), "the sentinel must not carry a date")
	}
}

func TestEstimatedEligibilityDate_EndOfDay(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	p := eligibility.EstimatedEligibilityDate(1085, now)

	assert.False(t, p.AlreadyEligible)
	assert.Equal(t, time.Date(2025, 1, 11, 23, 59, 59, 999_000_000, time.UTC), p.Date)
}

func TestEstimatedEligibilityDate_RoundsPartialDaysUp(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	p := eligibility.EstimatedEligibilityDate(1094.5, now)

	assert.False(t, p.AlreadyEligible)
	assert.Equal(t, time.Date(2025, 1, 2, 23, 59, 59, 999_000_000, time.UTC), p.Date)
}

func TestEstimatedEligibilityDate_FromZero(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	p := eligibility.EstimatedEligibilityDate(0, now)

	assert.Equal(t, now.AddDate(0, 0, 1095).Add(24*time.Hour-time.Millisecond), p.Date)
}

func TestCountdownTo(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p := eligibility.Projection{Date: time.Date(2025, 1, 3, 23, 59, 59, 999_000_000, time.UTC)}

	got := eligibility.CountdownTo(p, now)

	assert.Equal(t, eligibility.Countdown{Days: 2, Hours: 11, Minutes: 59, Seconds: 59}, got)
	// Same inputs, same output.
	assert.Equal(t, got, eligibility.CountdownTo(p, now))
}

func TestCountdownTo_Eligible(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, eligibility.CountdownTo(eligibility.Projection{AlreadyEligible: true}, now).Eligible)

	past := eligibility.Projection{Date: now.Add(-time.Second)}
	assert.Equal(t, eligibility.Countdown{Eligible: true}, eligibility.CountdownTo(past, now))
}
