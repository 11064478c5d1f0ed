package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		service Service
		wantErr bool
	}{
		{"valid", Service{Name: "Corte", DurationMinutes: 60, Price: 120}, false},
		{"free service", Service{Name: "Avaliação", DurationMinutes: 15}, false},
		{"empty name", Service{Name: "  ", DurationMinutes: 60}, true},
		{"zero duration", Service{Name: "Corte"}, true},
		{"negative price", Service{Name: "Corte", DurationMinutes: 30, Price: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.service.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProfessional_CanPerform(t *testing.T) {
	p := Professional{Name: "Juliana", Specialties: []string{"1", "2", "5"}}

	assert.True(t, p.CanPerform())
	assert.True(t, p.CanPerform("1"))
	assert.True(t, p.CanPerform("1", "5"))
	assert.False(t, p.CanPerform("1", "3"))
	assert.False(t, p.CanPerform("4"))
}

func TestProfessional_Clone(t *testing.T) {
	p := Professional{Specialties: []string{"1"}}
	c := p.Clone()
	c.Specialties[0] = "9"
	assert.Equal(t, "1", p.Specialties[0])
}

func TestClient_BirthMonth(t *testing.T) {
	c := Client{Birthday: "22/08/1985"}
	m, ok := c.BirthMonth()
	assert.True(t, ok)
	assert.Equal(t, time.August, m)
	assert.Equal(t, 22, c.BirthDay())

	bad := Client{Birthday: "1985"}
	_, ok = bad.BirthMonth()
	assert.False(t, ok)

	outOfRange := Client{Name: "X", Birthday: "01/13/2000"}
	assert.Error(t, outOfRange.Validate())
}

func TestAppointment_OverlapsWith(t *testing.T) {
	existing := Appointment{
		Service: Service{DurationMinutes: 120},
		Date:    datetime(2026, 1, 15, 10, 0),
	}

	before := Appointment{Service: Service{DurationMinutes: 60}, Date: datetime(2026, 1, 15, 9, 0)}
	assert.False(t, existing.OverlapsWith(&before))

	after := Appointment{Service: Service{DurationMinutes: 30}, Date: datetime(2026, 1, 15, 12, 0)}
	assert.False(t, existing.OverlapsWith(&after))

	during := Appointment{Service: Service{DurationMinutes: 60}, Date: datetime(2026, 1, 15, 11, 30)}
	assert.True(t, existing.OverlapsWith(&during))

	assert.Equal(t, datetime(2026, 1, 15, 12, 0), existing.EndTime())
	assert.True(t, existing.IsUpcoming(datetime(2026, 1, 15, 10, 0)))
	assert.False(t, existing.IsUpcoming(datetime(2026, 1, 15, 10, 1)))
}

func TestNewAppointment_Totals(t *testing.T) {
	corte := Service{ID: "1", Name: "Corte Feminino", DurationMinutes: 60, Price: 120}
	manicure := Service{ID: "3", Name: "Manicure", DurationMinutes: 30, Price: 45}

	a := NewAppointment("a1", []Service{corte, manicure}, Professional{ID: "p1"}, Client{ID: "c1"}, datetime(2026, 1, 15, 14, 0))
	assert.Equal(t, "1", a.Service.ID)
	assert.Equal(t, 90, a.DurationMinutes)
	assert.Equal(t, 90, a.Minutes())
	assert.InDelta(t, 165.0, a.TotalPrice(), 0.001)
	assert.Equal(t, datetime(2026, 1, 15, 15, 30), a.EndTime())
	assert.True(t, a.OverlapsRange(datetime(2026, 1, 15, 15, 0), datetime(2026, 1, 15, 16, 0)))

	legacy := Appointment{Service: corte, Date: datetime(2026, 1, 15, 9, 0)}
	assert.Equal(t, 60, legacy.Minutes())
	assert.InDelta(t, 120.0, legacy.TotalPrice(), 0.001)
}

func TestAtClock_DSTDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 2026-03-08 is the spring-forward day in New York.
	day := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	at := AtClock(day, 9*60)
	assert.Equal(t, 9, at.Hour())
	assert.Equal(t, 0, at.Minute())
	assert.Equal(t, 8, at.Day())
}

func TestSettings_Validate(t *testing.T) {
	s := DefaultSettings()
	assert.NoError(t, s.Validate())

	s.OpeningTime = "19:00"
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.ClosingTime = "7pm"
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.WorkingDays = []time.Weekday{7}
	assert.Error(t, s.Validate())
}

func TestSettings_WorkingDays(t *testing.T) {
	s := DefaultSettings()

	assert.True(t, s.IsWorkingDay(datetime(2026, 1, 12, 0, 0)))  // Monday
	assert.False(t, s.IsWorkingDay(datetime(2026, 1, 11, 0, 0))) // Sunday

	s.ToggleWorkingDay(time.Sunday)
	assert.Equal(t, time.Sunday, s.WorkingDays[0])
	assert.True(t, s.IsWorkingDay(datetime(2026, 1, 11, 0, 0)))

	s.ToggleWorkingDay(time.Wednesday)
	assert.NotContains(t, s.WorkingDays, time.Wednesday)
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	assert.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestSettings_Normalize(t *testing.T) {
	s := Settings{WorkingDays: []time.Weekday{time.Friday, time.Monday, time.Friday}}
	s.Normalize()
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, s.WorkingDays)

	empty := Settings{}
	empty.Normalize()
	assert.NotNil(t, empty.WorkingDays)
}
