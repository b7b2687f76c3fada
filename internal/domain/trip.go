// Package domain contains the core data types for the Citizenship Tracker.
// Apart from uuid it has no external dependencies and is imported by every
// other internal package (eligibility, repo, service, handler).
package domain

import "strings"

// Reason is the category of a trip outside the home jurisdiction.
type Reason string

const (
	ReasonVacation  Reason = "vacation"
	ReasonBusiness  Reason = "business"
	ReasonFamily    Reason = "family"
	ReasonEducation Reason = "education"
	ReasonMedical   Reason = "medical"
	ReasonOther     Reason = "other"
)

// Valid reports whether r is one of the known reasons.
func (r Reason) Valid() bool {
	switch r {
	case ReasonVacation, ReasonBusiness, ReasonFamily, ReasonEducation, ReasonMedical, ReasonOther:
		return true
	}
	return false
}

// Trip is a record of time spent outside the home jurisdiction.
// Dates are kept as the "2006-01-02" strings the user entered so that an
// export/import cycle reproduces them exactly, even when malformed.
type Trip struct {
	ID            int64  `json:"id"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate"`
	Destination   string `json:"destination"`
	Reason        Reason `json:"reason"`
	OtherReason   string `json:"otherReason"`
}

// ReasonText is the label shown for a trip: the free-text reason for
// "other", the category otherwise.
func (t Trip) ReasonText() string {
	if t.Reason == ReasonOther && strings.TrimSpace(t.OtherReason) != "" {
		return t.OtherReason
	}
	return string(t.Reason)
}
