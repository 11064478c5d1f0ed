package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"salonbook/internal/model"
)

//go:embed default_seed.yaml
var defaultSeed []byte

// SeedAppointment is an appointment whose date is relative to load time.
type SeedAppointment struct {
	ID             string `yaml:"id"`
	ServiceID      string `yaml:"service"`
	ProfessionalID string `yaml:"professional"`
	ClientID       string `yaml:"client"`
	DaysFromNow    *int   `yaml:"days_from_now,omitempty"`
	WeekDay        *int   `yaml:"week_day,omitempty"` // 0 = Sunday of the current week
	At             string `yaml:"at,omitempty"`       // HH:MM
}

// Seed is the initial catalog loaded into an empty store.
type Seed struct {
	Services      []model.Service      `yaml:"services"`
	Professionals []model.Professional `yaml:"professionals"`
	Clients       []model.Client       `yaml:"clients"`
	Appointments  []SeedAppointment    `yaml:"appointments"`
	Settings      *model.Settings      `yaml:"settings,omitempty"`
}

// DefaultSeed returns the built-in salon catalog.
func DefaultSeed() *Seed {
	seed, err := ParseSeed(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("built-in seed: %v", err))
	}
	return seed
}

// LoadSeed reads a seed file. An empty path selects the built-in seed.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates seed YAML.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("validate seed: %w", err)
	}
	return &seed, nil
}

// Validate checks entities and cross references.
func (s *Seed) Validate() error {
	services := make(map[string]bool, len(s.Services))
	for i := range s.Services {
		svc := &s.Services[i]
		if svc.ID == "" {
			return fmt.Errorf("service %d: id is required", i)
		}
		if services[svc.ID] {
			return fmt.Errorf("service %s: duplicate id", svc.ID)
		}
		if err := svc.Validate(); err != nil {
			return fmt.Errorf("service %s: %w", svc.ID, err)
		}
		services[svc.ID] = true
	}

	professionals := make(map[string]bool, len(s.Professionals))
	for i := range s.Professionals {
		p := &s.Professionals[i]
		if p.ID == "" {
			return fmt.Errorf("professional %d: id is required", i)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("professional %s: %w", p.ID, err)
		}
		professionals[p.ID] = true
	}

	clients := make(map[string]bool, len(s.Clients))
	for i := range s.Clients {
		c := &s.Clients[i]
		if c.ID == "" {
			return fmt.Errorf("client %d: id is required", i)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("client %s: %w", c.ID, err)
		}
		clients[c.ID] = true
	}

	for _, a := range s.Appointments {
		switch {
		case !services[a.ServiceID]:
			return fmt.Errorf("appointment %s: unknown service %q", a.ID, a.ServiceID)
		case !professionals[a.ProfessionalID]:
			return fmt.Errorf("appointment %s: unknown professional %q", a.ID, a.ProfessionalID)
		case !clients[a.ClientID]:
			return fmt.Errorf("appointment %s: unknown client %q", a.ID, a.ClientID)
		case a.DaysFromNow == nil && a.WeekDay == nil:
			return fmt.Errorf("appointment %s: days_from_now or week_day is required", a.ID)
		case a.WeekDay != nil && (*a.WeekDay < 0 || *a.WeekDay > 6):
			return fmt.Errorf("appointment %s: week_day must be 0..6", a.ID)
		}
		if a.At != "" {
			if _, err := model.ParseClock(a.At); err != nil {
				return fmt.Errorf("appointment %s: %w", a.ID, err)
			}
		}
	}

	if s.Settings != nil {
		if err := s.Settings.Validate(); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}
	return nil
}

// ResolveAppointments materializes seed appointments relative to now.
func (s *Seed) ResolveAppointments(now time.Time) []model.Appointment {
	services := make(map[string]model.Service, len(s.Services))
	for _, svc := range s.Services {
		services[svc.ID] = svc
	}
	professionals := make(map[string]model.Professional, len(s.Professionals))
	for _, p := range s.Professionals {
		professionals[p.ID] = p
	}
	clients := make(map[string]model.Client, len(s.Clients))
	for _, c := range s.Clients {
		clients[c.ID] = c
	}

	out := make([]model.Appointment, 0, len(s.Appointments))
	for _, a := range s.Appointments {
		out = append(out, model.NewAppointment(
			a.ID,
			[]model.Service{services[a.ServiceID]},
			professionals[a.ProfessionalID].Clone(),
			clients[a.ClientID],
			a.date(now),
		))
	}
	return out
}

func (a SeedAppointment) date(now time.Time) time.Time {
	var day time.Time
	if a.WeekDay != nil {
		sunday := now.AddDate(0, 0, -int(now.Weekday()))
		day = sunday.AddDate(0, 0, *a.WeekDay)
	} else {
		day = now.AddDate(0, 0, *a.DaysFromNow)
	}
	if a.At == "" {
		return day.Truncate(time.Minute)
	}
	minutes, _ := model.ParseClock(a.At)
	return model.AtClock(day, minutes)
}

// SettingsOrDefault returns the seeded settings or the built-in defaults.
func (s *Seed) SettingsOrDefault() model.Settings {
	if s.Settings == nil {
		return model.DefaultSettings()
	}
	return s.Settings.Clone()
}
