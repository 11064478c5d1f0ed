// Package slots computes bookable start times within business hours.
package slots

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"salonbook/internal/model"
)

// Granularity is the fixed offset between candidate start times.
const Granularity = 30 * time.Minute

// Hours are business hours as minutes since midnight.
type Hours struct {
	Open  int
	Close int
}

// FixedHours are the built-in 09:00-19:00 business hours.
var FixedHours = Hours{Open: 9 * 60, Close: 19 * 60}

// HoursFromSettings converts admin settings into Hours.
func HoursFromSettings(s model.Settings) (Hours, error) {
	open, err := model.ParseClock(s.OpeningTime)
	if err != nil {
		return Hours{}, fmt.Errorf("opening time: %w", err)
	}
	closing, err := model.ParseClock(s.ClosingTime)
	if err != nil {
		return Hours{}, fmt.Errorf("closing time: %w", err)
	}
	if open >= closing {
		return Hours{}, fmt.Errorf("opening %s is not before closing %s", s.OpeningTime, s.ClosingTime)
	}
	return Hours{Open: open, Close: closing}, nil
}

// String renders hours as "HH:MM-HH:MM".
func (h Hours) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", h.Open/60, h.Open%60, h.Close/60, h.Close%60)
}

// Calculate yields start times on date, one per Granularity from opening,
// stopping once start+duration would pass closing. The sequence is lazy and
// can be ranged over any number of times.
func Calculate(date time.Time, durationMinutes int, hours Hours) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if durationMinutes <= 0 {
			return
		}
		step := int(Granularity / time.Minute)
		for offset := hours.Open; offset+durationMinutes <= hours.Close; offset += step {
			if !yield(model.AtClock(date, offset)) {
				return
			}
		}
	}
}

// Times collects Calculate into a slice.
func Times(date time.Time, durationMinutes int, hours Hours) []time.Time {
	return slices.Collect(Calculate(date, durationMinutes, hours))
}

// Contains reports whether start is one of the calculated slots.
func Contains(date time.Time, durationMinutes int, hours Hours, start time.Time) bool {
	for t := range Calculate(date, durationMinutes, hours) {
		if t.Equal(start) {
			return true
		}
	}
	return false
}

// Slot is a candidate start time with its occupancy.
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
}

// SlotInfo is a simplified representation for API responses.
type SlotInfo struct {
	Start     string `json:"start"` // "10:00"
	End       string `json:"end"`   // "11:30"
	Available bool   `json:"available"`
}

// OccupancyChecker checks whether a professional is already booked.
type OccupancyChecker interface {
	IsOccupied(ctx context.Context, professionalID string, start, end time.Time) (bool, error)
}

// Generator produces slots, optionally marking occupied ones.
type Generator struct {
	checker OccupancyChecker
}

// NewGenerator creates a slot generator. A nil checker keeps every slot available.
func NewGenerator(checker OccupancyChecker) *Generator {
	return &Generator{checker: checker}
}

// GenerateSlots returns all candidate slots for the professional on date.
func (g *Generator) GenerateSlots(ctx context.Context, professionalID string, date time.Time, durationMinutes int, hours Hours) ([]Slot, error) {
	duration := time.Duration(durationMinutes) * time.Minute
	var result []Slot

	for start := range Calculate(date, durationMinutes, hours) {
		end := start.Add(duration)
		occupied := false
		if g.checker != nil {
			var err error
			occupied, err = g.checker.IsOccupied(ctx, professionalID, start, end)
			if err != nil {
				return nil, fmt.Errorf("check slot %s: %w", start.Format(model.TimeFormat), err)
			}
		}
		result = append(result, Slot{StartTime: start, EndTime: end, Available: !occupied})
	}

	return result, nil
}

// GetAvailableSlots returns only available slots.
func GetAvailableSlots(slots []Slot) []Slot {
	var available []Slot
	for _, s := range slots {
		if s.Available {
			available = append(available, s)
		}
	}
	return available
}

// ToSlotInfo converts slots to SlotInfo for the API.
func ToSlotInfo(slots []Slot) []SlotInfo {
	result := make([]SlotInfo, len(slots))
	for i, s := range slots {
		result[i] = SlotInfo{
			Start:     s.StartTime.Format(model.TimeFormat),
			End:       s.EndTime.Format(model.TimeFormat),
			Available: s.Available,
		}
	}
	return result
}

// FormatDuration formats minutes like "1h 30min".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dmin", hours, mins)
}
