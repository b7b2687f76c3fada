package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
	"github.com/pkordes/citizenship-tracker/backend/internal/eligibility"
)

// CalculationDetail exposes the accounting behind a Stats value.
type CalculationDetail struct {
	AnchorDate        string  `json:"anchorDate"`
	WindowStart       string  `json:"windowStart"`
	WindowEnd         string  `json:"windowEnd"`
	TotalDaysInPeriod int     `json:"totalDaysInPeriod"`
	DaysOutside       int     `json:"daysOutside"`
	PRDays            int     `json:"prDays"`
	TemporaryDays     int     `json:"temporaryDays"`
	AbsenceDays       int     `json:"absenceDays"`
	UncoveredDays     int     `json:"uncoveredDays"`
	TemporaryCredit   float64 `json:"temporaryCredit"`
	EffectiveStart    *string `json:"effectiveStart,omitempty"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	domain.Stats
	Calculation CalculationDetail `json:"calculation"`
}

// Countdown is the time left until the projected eligibility date.
type Countdown struct {
	Eligible bool `json:"eligible"`
	Days     int  `json:"days"`
	Hours    int  `json:"hours"`
	Minutes  int  `json:"minutes"`
	Seconds  int  `json:"seconds"`
}

// EligibilityResponse is the body of GET /eligibility. EstimatedDate and
// EstimatedAt are absent once the user is already eligible.
type EligibilityResponse struct {
	domain.Stats
	AlreadyEligible bool       `json:"alreadyEligible"`
	EstimatedDate   *string    `json:"estimatedDate,omitempty"`
	EstimatedAt     *time.Time `json:"estimatedAt,omitempty"`
	Countdown       Countdown  `json:"countdown"`
}

// GetStats handles GET /stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	stats, res, err := s.tracker.Stats(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Stats: stats, Calculation: calculationDetail(res)})
}

// GetEligibility handles GET /eligibility.
func (s *Server) GetEligibility(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	report, err := s.tracker.Eligibility(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	resp := EligibilityResponse{
		Stats:           report.Stats,
		AlreadyEligible: report.Projection.AlreadyEligible,
		Countdown: Countdown{
			Eligible: report.Countdown.Eligible,
			Days:     report.Countdown.Days,
			Hours:    report.Countdown.Hours,
			Minutes:  report.Countdown.Minutes,
			Seconds:  report.Countdown.Seconds,
		},
	}
	if !report.Projection.AlreadyEligible {
		date := domain.FormatDate(report.Projection.Date)
		at := report.Projection.Date
		resp.EstimatedDate = &date
		resp.EstimatedAt = &at
	}
	writeJSON(w, http.StatusOK, resp)
}

func calculationDetail(res eligibility.Result) CalculationDetail {
	d := CalculationDetail{
		AnchorDate:        domain.FormatDate(res.Anchor),
		WindowStart:       domain.FormatDate(res.WindowStart),
		WindowEnd:         domain.FormatDate(res.WindowEnd),
		TotalDaysInPeriod: res.TotalDaysInPeriod,
		DaysOutside:       res.DaysOutside,
		PRDays:            res.PRDays,
		TemporaryDays:     res.TemporaryDays,
		AbsenceDays:       res.AbsenceDays,
		UncoveredDays:     res.UncoveredDays,
		TemporaryCredit:   res.TemporaryCredit,
	}
	if !res.EffectiveStart.IsZero() {
		start := domain.FormatDate(res.EffectiveStart)
		d.EffectiveStart = &start
	}
	return d
}
