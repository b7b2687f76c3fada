package domain

import (
	"slices"
	"time"
)

// Document is the full snapshot of one user's data: every trip plus the
// settings. The calculator only ever reads a Document; services produce a
// new Document for every mutation and persist it whole.
type Document struct {
	UserID      string    `json:"-"`
	Trips       []Trip    `json:"trips"`
	Settings    Settings  `json:"settings"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewDocument returns the empty snapshot for a user with no stored data.
func NewDocument(userID string) Document {
	return Document{
		UserID:   userID,
		Trips:    []Trip{},
		Settings: DefaultSettings(),
	}
}

// Clone returns a deep copy so callers can derive a new snapshot without
// touching the one they were handed.
func (d Document) Clone() Document {
	out := d
	out.Trips = slices.Clone(d.Trips)
	if out.Trips == nil {
		out.Trips = []Trip{}
	}
	out.Settings.ResidencyPeriods = slices.Clone(d.Settings.ResidencyPeriods)
	return out
}

// WithTrips returns a copy of d with its trips replaced.
func (d Document) WithTrips(trips []Trip) Document {
	out := d.Clone()
	out.Trips = slices.Clone(trips)
	if out.Trips == nil {
		out.Trips = []Trip{}
	}
	return out
}

// WithSettings returns a copy of d with its settings replaced.
func (d Document) WithSettings(s Settings) Document {
	out := d.Clone()
	out.Settings = s
	out.Settings.ResidencyPeriods = slices.Clone(s.ResidencyPeriods)
	return out
}

// ExportFile is the JSON file a user downloads and can later import. A
// device's local snapshot sent for sync has the same shape.
// Trips and Settings are pointers so an import can tell a missing section
// from an empty one; Settings also tracks which of its keys were present.
type ExportFile struct {
	Trips      *[]Trip        `json:"trips"`
	Settings   *SettingsPatch `json:"settings"`
	ExportDate string         `json:"exportDate,omitempty"`
}
