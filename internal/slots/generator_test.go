package slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/internal/model"
)

// mockChecker implements OccupancyChecker for testing
type mockChecker struct {
	booked map[string]bool // key: "HH:MM"
	err    error
}

func (m *mockChecker) IsOccupied(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.booked[start.Format("15:04")], nil
}

var baseDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name          string
		duration      int
		hours         Hours
		expectedCount int
		first, last   string
	}{
		{"one hour service", 60, FixedHours, 19, "09:00", "18:00"},
		{"thirty minutes", 30, FixedHours, 20, "09:00", "18:30"},
		{"long service", 181, FixedHours, 14, "09:00", "15:30"},
		{"exactly the window", 600, FixedHours, 1, "09:00", "09:00"},
		{"longer than window", 601, FixedHours, 0, "", ""},
		{"zero duration", 0, FixedHours, 0, "", ""},
		{"custom hours", 90, Hours{Open: 10 * 60, Close: 12 * 60}, 2, "10:00", "10:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := Times(baseDate, tt.duration, tt.hours)
			if len(times) != tt.expectedCount {
				t.Fatalf("expected %d slots, got %d", tt.expectedCount, len(times))
			}
			if tt.expectedCount == 0 {
				return
			}
			if got := times[0].Format("15:04"); got != tt.first {
				t.Errorf("first slot: expected %s, got %s", tt.first, got)
			}
			if got := times[len(times)-1].Format("15:04"); got != tt.last {
				t.Errorf("last slot: expected %s, got %s", tt.last, got)
			}
		})
	}
}

func TestCalculate_NeverPastClosing(t *testing.T) {
	closing := baseDate.Add(19 * time.Hour)
	for _, d := range []int{30, 45, 60, 90, 120, 181, 240} {
		for start := range Calculate(baseDate, d, FixedHours) {
			end := start.Add(time.Duration(d) * time.Minute)
			assert.False(t, end.After(closing), "duration %d start %s", d, start.Format("15:04"))
			assert.Equal(t, 0, start.Minute()%30)
		}
	}
}

func TestCalculate_Restartable(t *testing.T) {
	seq := Calculate(baseDate, 60, FixedHours)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, first, second)

	// early break stops the sequence
	taken := 0
	for range seq {
		taken++
		if taken == 3 {
			break
		}
	}
	assert.Equal(t, 3, taken)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(baseDate, 60, FixedHours, baseDate.Add(18*time.Hour)))
	assert.False(t, Contains(baseDate, 60, FixedHours, baseDate.Add(18*time.Hour+30*time.Minute)))
	assert.False(t, Contains(baseDate, 60, FixedHours, baseDate.Add(9*time.Hour+15*time.Minute)))
}

func TestHoursFromSettings(t *testing.T) {
	h, err := HoursFromSettings(model.Settings{OpeningTime: "08:30", ClosingTime: "17:00"})
	require.NoError(t, err)
	assert.Equal(t, Hours{Open: 510, Close: 1020}, h)
	assert.Equal(t, "08:30-17:00", h.String())

	_, err = HoursFromSettings(model.Settings{OpeningTime: "18:00", ClosingTime: "17:00"})
	assert.Error(t, err)
}

func TestGenerateSlots(t *testing.T) {
	checker := &mockChecker{booked: map[string]bool{"09:00": true, "10:30": true}}
	g := NewGenerator(checker)

	slots, err := g.GenerateSlots(context.Background(), "p1", baseDate, 60, FixedHours)
	require.NoError(t, err)
	assert.Len(t, slots, 19)
	assert.Len(t, GetAvailableSlots(slots), 17)
	assert.False(t, slots[0].Available)
	assert.Equal(t, slots[0].StartTime.Add(time.Hour), slots[0].EndTime)
}

func TestGenerateSlots_NoChecker(t *testing.T) {
	slots, err := NewGenerator(nil).GenerateSlots(context.Background(), "p1", baseDate, 60, FixedHours)
	require.NoError(t, err)
	assert.Len(t, GetAvailableSlots(slots), 19)
}

func TestGenerateSlots_CheckerError(t *testing.T) {
	g := NewGenerator(&mockChecker{err: errors.New("db down")})
	_, err := g.GenerateSlots(context.Background(), "p1", baseDate, 60, FixedHours)
	assert.Error(t, err)
}

func TestToSlotInfo(t *testing.T) {
	slots := []Slot{
		{StartTime: baseDate.Add(9 * time.Hour), EndTime: baseDate.Add(10*time.Hour + 30*time.Minute), Available: true},
		{StartTime: baseDate.Add(9*time.Hour + 30*time.Minute), EndTime: baseDate.Add(11 * time.Hour), Available: false},
	}

	infos := ToSlotInfo(slots)
	require.Len(t, infos, 2)
	assert.Equal(t, SlotInfo{Start: "09:00", End: "10:30", Available: true}, infos[0])
	assert.False(t, infos[1].Available)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes  int
		expected string
	}{
		{30, "30min"},
		{60, "1h"},
		{90, "1h 30min"},
		{180, "3h"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatDuration(tt.minutes); got != tt.expected {
				t.Errorf("FormatDuration(%d): expected %q, got %q", tt.minutes, tt.expected, got)
			}
		})
	}
}

func TestMonth(t *testing.T) {
	m := Month{Year: 2026, Month: time.December}
	assert.Equal(t, Month{Year: 2027, Month: time.January}, m.Next())
	assert.Equal(t, Month{Year: 2026, Month: time.November}, m.Prev())
	assert.Equal(t, Month{Year: 2025, Month: time.December}, Month{Year: 2026, Month: time.January}.Prev())
	assert.True(t, m.Prev().Before(m))
	assert.False(t, m.Before(m))
	assert.Equal(t, 28, Month{Year: 2026, Month: time.February}.DaysIn())
	assert.Equal(t, 29, Month{Year: 2028, Month: time.February}.DaysIn())
	assert.Equal(t, time.Thursday, Month{Year: 2026, Month: time.January}.FirstWeekday())
}

func TestCalculate_DSTDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	springForward := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)

	times := Times(springForward, 60, FixedHours)
	require.Len(t, times, 19)
	assert.Equal(t, "09:00", times[0].Format("15:04"))
	assert.Equal(t, "18:00", times[len(times)-1].Format("15:04"))
	assert.True(t, Contains(springForward, 60, FixedHours, time.Date(2026, 3, 8, 14, 0, 0, 0, loc)))
}
