package eligibility

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// ValidateSettings checks settings before a save is accepted.
//   - PRDate and TargetDate, when set, must be valid dates.
//   - Residency periods must pass ValidatePeriods against the window of the
//     settings' own target date (today when unset).
//
// Every failure wraps domain.ErrValidation.
func ValidateSettings(s domain.Settings, now time.Time) error {
	if s.PRDate != "" {
		if _, err := domain.ParseDate(s.PRDate, now.Location()); err != nil {
			return fmt.Errorf("%w: prDate %q is not a valid date", domain.ErrValidation, s.PRDate)
		}
	}
	if s.TargetDate != "" {
		if _, err := domain.ParseDate(s.TargetDate, now.Location()); err != nil {
			return fmt.Errorf("%w: targetDate %q is not a valid date", domain.ErrValidation, s.TargetDate)
		}
	}
	return ValidatePeriods(s.ResidencyPeriods, Anchor(s, now))
}

type span struct {
	start, end time.Time
}

// ValidatePeriods enforces the residency period rules:
//   - both dates present and parseable, start not after end, known status;
//   - each period inside the rolling window ending at anchor;
//   - no two periods overlap: sorted by start, every period starts strictly
//     after the previous one ends.
func ValidatePeriods(periods []domain.ResidencyPeriod, anchor time.Time) error {
	windowStart, windowEnd := Window(anchor)

	spans := make([]span, 0, len(periods))
	for i, p := range periods {
		n := i + 1
		if strings.TrimSpace(p.StartDate) == "" || strings.TrimSpace(p.EndDate) == "" {
			return fmt.Errorf("%w: residency period %d needs both a start and an end date", domain.ErrValidation, n)
		}
		start, err := domain.ParseDate(p.StartDate, anchor.Location())
		if err != nil {
			return fmt.Errorf("%w: residency period %d has an invalid start date %q", domain.ErrValidation, n, p.StartDate)
		}
		end, err := domain.ParseDate(p.EndDate, anchor.Location())
		if err != nil {
			return fmt.Errorf("%w: residency period %d has an invalid end date %q", domain.ErrValidation, n, p.EndDate)
		}
		if !p.Status.Valid() {
			return fmt.Errorf("%w: residency period %d has unknown status %q", domain.ErrValidation, n, p.Status)
		}
		if start.After(end) {
			return fmt.Errorf("%w: residency period %d starts after it ends", domain.ErrValidation, n)
		}
		if start.Before(windowStart) || end.After(windowEnd) {
			return fmt.Errorf("%w: residency period %d must fall between %s and %s",
				domain.ErrValidation, n, domain.FormatDate(windowStart), domain.FormatDate(windowEnd))
		}
		spans = append(spans, span{start: start, end: end})
	}

	slices.SortFunc(spans, func(a, b span) int { return a.start.Compare(b.start) })
	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if !cur.start.After(prev.end) {
			return fmt.Errorf("%w: residency periods %s to %s and %s to %s overlap",
				domain.ErrValidation,
				domain.FormatDate(prev.start), domain.FormatDate(prev.end),
				domain.FormatDate(cur.start), domain.FormatDate(cur.end))
		}
	}
	return nil
}

// ValidateTrip enforces the trip form rules.
func ValidateTrip(t domain.Trip) error {
	dep, err := domain.ParseDate(t.DepartureDate, time.UTC)
	if err != nil {
		return fmt.Errorf("%w: departureDate %q is not a valid date", domain.ErrValidation, t.DepartureDate)
	}
	ret, err := domain.ParseDate(t.ReturnDate, time.UTC)
	if err != nil {
		return fmt.Errorf("%w: returnDate %q is not a valid date", domain.ErrValidation, t.ReturnDate)
	}
	if ret.Before(dep) {
		return fmt.Errorf("%w: return date must not be before departure date", domain.ErrValidation)
	}
	if strings.TrimSpace(t.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if !t.Reason.Valid() {
		return fmt.Errorf("%w: unknown reason %q", domain.ErrValidation, t.Reason)
	}
	if t.Reason == domain.ReasonOther && strings.TrimSpace(t.OtherReason) == "" {
		return fmt.Errorf("%w: otherReason is required when reason is other", domain.ErrValidation)
	}
	return nil
}
