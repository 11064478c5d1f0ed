package model

import (
	"fmt"
	"slices"
	"time"
)

// TimeFormat is the HH:MM layout used for business hours.
const TimeFormat = "15:04"

// Settings are the admin-configurable business parameters.
type Settings struct {
	OpeningTime string         `json:"openingTime" yaml:"opening_time"`
	ClosingTime string         `json:"closingTime" yaml:"closing_time"`
	WorkingDays []time.Weekday `json:"workingDays" yaml:"working_days"` // 0 = Sunday
}

// DefaultSettings returns 09:00-19:00, Monday to Saturday.
func DefaultSettings() Settings {
	return Settings{
		OpeningTime: "09:00",
		ClosingTime: "19:00",
		WorkingDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
	}
}

// Validate checks hours ordering and weekday range.
func (s *Settings) Validate() error {
	open, err := ParseClock(s.OpeningTime)
	if err != nil {
		return validationError(fmt.Sprintf("invalid opening time %q", s.OpeningTime))
	}
	closing, err := ParseClock(s.ClosingTime)
	if err != nil {
		return validationError(fmt.Sprintf("invalid closing time %q", s.ClosingTime))
	}
	if open >= closing {
		return validationError("opening time must be before closing time")
	}
	for _, d := range s.WorkingDays {
		if d < time.Sunday || d > time.Saturday {
			return validationError(fmt.Sprintf("invalid working day %d", d))
		}
	}
	return nil
}

// IsWorkingDay reports whether the salon operates on the date's weekday.
func (s *Settings) IsWorkingDay(date time.Time) bool {
	return slices.Contains(s.WorkingDays, date.Weekday())
}

// ToggleWorkingDay adds or removes a weekday, keeping the list sorted.
func (s *Settings) ToggleWorkingDay(day time.Weekday) {
	if i := slices.Index(s.WorkingDays, day); i >= 0 {
		s.WorkingDays = slices.Delete(slices.Clone(s.WorkingDays), i, i+1)
		return
	}
	s.WorkingDays = append(slices.Clone(s.WorkingDays), day)
	slices.Sort(s.WorkingDays)
}

// Normalize sorts working days and drops duplicates.
func (s *Settings) Normalize() {
	if s.WorkingDays == nil {
		s.WorkingDays = []time.Weekday{}
	}
	slices.Sort(s.WorkingDays)
	s.WorkingDays = slices.Compact(s.WorkingDays)
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.WorkingDays = slices.Clone(s.WorkingDays)
	return s
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(v string) (int, error) {
	t, err := time.Parse(TimeFormat, v)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", v, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// AtClock returns the wall-clock time minutes after midnight on day, in
// day's location.
func AtClock(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location())
}
