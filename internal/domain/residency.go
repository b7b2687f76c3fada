package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ResidencyStatus is the legal status held during a ResidencyPeriod.
type ResidencyStatus string

const (
	// StatusPR is permanent-resident-equivalent time, credited in full.
	StatusPR ResidencyStatus = "pr"
	// StatusTemporary is non-permanent time, credited at a reduced rate.
	StatusTemporary ResidencyStatus = "temporary"
	// StatusAbsence is time spent outside the jurisdiction.
	StatusAbsence ResidencyStatus = "absence"
)

// Valid reports whether s is one of the known statuses.
func (s ResidencyStatus) Valid() bool {
	return s == StatusPR || s == StatusTemporary || s == StatusAbsence
}

// ResidencyPeriod is a continuous span of a single legal status.
type ResidencyPeriod struct {
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Status    ResidencyStatus `json:"status"`
}

// DefaultResidencyStatus is the display status of a fresh Settings.
const DefaultResidencyStatus = "permanent"

// Settings is the per-user configuration that drives the calculator.
// When ResidencyPeriods is non-empty it supersedes PRDate.
// Every field is always encoded; an empty period list encodes as [].
type Settings struct {
	PRDate           string            `json:"prDate"`
	TargetDate       string            `json:"targetDate"`
	ResidencyStatus  string            `json:"residencyStatus"`
	ResidencyPeriods []ResidencyPeriod `json:"residencyPeriods"`
}

// settingsJSON has the fields of Settings without its methods.
type settingsJSON Settings

func (s Settings) MarshalJSON() ([]byte, error) {
	out := settingsJSON(s)
	if out.ResidencyPeriods == nil {
		out.ResidencyPeriods = []ResidencyPeriod{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes s, reading null or [] periods as none and a null
// date as unset.
func (s *Settings) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var in struct {
		PRDate           *string           `json:"prDate"`
		TargetDate       *string           `json:"targetDate"`
		ResidencyStatus  *string           `json:"residencyStatus"`
		ResidencyPeriods []ResidencyPeriod `json:"residencyPeriods"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*s = Settings{
		PRDate:          deref(in.PRDate),
		TargetDate:      deref(in.TargetDate),
		ResidencyStatus: deref(in.ResidencyStatus),
	}
	if len(in.ResidencyPeriods) > 0 {
		s.ResidencyPeriods = in.ResidencyPeriods
	}
	return nil
}

// DefaultSettings returns the settings of a user who has entered nothing yet.
func DefaultSettings() Settings {
	return Settings{ResidencyStatus: DefaultResidencyStatus}
}

// SettingsPatch is a settings object as written in a backup file or a sync
// payload. A nil field was absent from the JSON. A present field replaces
// the current value even when it is empty or null.
type SettingsPatch struct {
	PRDate           *string            `json:"prDate,omitempty"`
	TargetDate       *string            `json:"targetDate,omitempty"`
	ResidencyStatus  *string            `json:"residencyStatus,omitempty"`
	ResidencyPeriods *[]ResidencyPeriod `json:"residencyPeriods,omitempty"`
}

// PatchOf returns a patch that sets every field of s.
func PatchOf(s Settings) SettingsPatch {
	periods := slices.Clone(s.ResidencyPeriods)
	if periods == nil {
		periods = []ResidencyPeriod{}
	}
	return SettingsPatch{
		PRDate:           &s.PRDate,
		TargetDate:       &s.TargetDate,
		ResidencyStatus:  &s.ResidencyStatus,
		ResidencyPeriods: &periods,
	}
}

// UnmarshalJSON records which keys are present. A present null clears the
// field.
func (p *SettingsPatch) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = SettingsPatch{}

	var err error
	if p.PRDate, err = presentString(raw, "prDate"); err != nil {
		return err
	}
	if p.TargetDate, err = presentString(raw, "targetDate"); err != nil {
		return err
	}
	if p.ResidencyStatus, err = presentString(raw, "residencyStatus"); err != nil {
		return err
	}
	if v, ok := raw["residencyPeriods"]; ok {
		var periods []ResidencyPeriod
		if err := json.Unmarshal(v, &periods); err != nil {
			return fmt.Errorf("settings.residencyPeriods: %w", err)
		}
		if periods == nil {
			periods = []ResidencyPeriod{}
		}
		p.ResidencyPeriods = &periods
	}
	return nil
}

func presentString(raw map[string]json.RawMessage, key string) (*string, error) {
	v, ok := raw[key]
	if !ok {
		return nil, nil
	}
	var s *string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, fmt.Errorf("settings.%s: %w", key, err)
	}
	if s == nil {
		s = new(string)
	}
	return s, nil
}

// Apply returns a copy of s with every field present in p replacing the
// corresponding field of s. It never mutates s or p.
func (s Settings) Apply(p SettingsPatch) Settings {
	out := s
	out.ResidencyPeriods = slices.Clone(s.ResidencyPeriods)
	if p.PRDate != nil {
		out.PRDate = *p.PRDate
	}
	if p.TargetDate != nil {
		out.TargetDate = *p.TargetDate
	}
	if p.ResidencyStatus != nil {
		out.ResidencyStatus = *p.ResidencyStatus
	}
	if p.ResidencyPeriods != nil {
		out.ResidencyPeriods = slices.Clone(*p.ResidencyPeriods)
		if out.ResidencyPeriods == nil {
			out.ResidencyPeriods = []ResidencyPeriod{}
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
