// Package memory is the in-process store. Every read returns copies.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"salonbook/internal/config"
	"salonbook/internal/model"
	"salonbook/internal/storage"
)

type Store struct {
	mu            sync.RWMutex
	services      []model.Service
	professionals []model.Professional
	clients       []model.Client
	appointments  []model.Appointment
	settings      model.Settings
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store with default settings.
func New() *Store {
	return &Store{settings: model.DefaultSettings()}
}

// NewSeeded returns a store loaded with seed; appointment dates are
// resolved against now.
func NewSeeded(seed *config.Seed, now time.Time) *Store {
	s := New()
	s.services = slices.Clone(seed.Services)
	for _, p := range seed.Professionals {
		s.professionals = append(s.professionals, p.Clone())
	}
	s.clients = slices.Clone(seed.Clients)
	s.appointments = seed.ResolveAppointments(now)
	s.settings = seed.SettingsOrDefault()
	return s
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func indexByID[T any](items []T, id string, key func(T) string) int {
	return slices.IndexFunc(items, func(it T) bool { return key(it) == id })
}

func serviceID(v model.Service) string           { return v.ID }
func professionalID(v model.Professional) string { return v.ID }
func clientID(v model.Client) string             { return v.ID }
func appointmentID(v model.Appointment) string   { return v.ID }

// Services

func (s *Store) ListServices(ctx context.Context) ([]model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.services), nil
}

func (s *Store) GetService(ctx context.Context, id string) (*model.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexByID(s.services, id, serviceID)
	if i < 0 {
		return nil, fmt.Errorf("service %s: %w", id, storage.ErrNotFound)
	}
	svc := s.services[i]
	return &svc, nil
}

func (s *Store) SaveService(ctx context.Context, svc *model.Service) error {
	if svc == nil {
		return storage.ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == "" {
		svc.ID = storage.NewID()
	}
	if i := indexByID(s.services, svc.ID, serviceID); i >= 0 {
		s.services[i] = *svc
		return nil
	}
	s.services = append(s.services, *svc)
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.services, id, serviceID)
	if i < 0 {
		return fmt.Errorf("service %s: %w", id, storage.ErrNotFound)
	}
	s.services = slices.Delete(s.services, i, i+1)
	return nil
}

// Professionals

func (s *Store) ListProfessionals(ctx context.Context) ([]model.Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Professional, 0, len(s.professionals))
	for _, p := range s.professionals {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *Store) GetProfessional(ctx context.Context, id string) (*model.Professional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexByID(s.professionals, id, professionalID)
	if i < 0 {
		return nil, fmt.Errorf("professional %s: %w", id, storage.ErrNotFound)
	}
	p := s.professionals[i].Clone()
	return &p, nil
}

func (s *Store) SaveProfessional(ctx context.Context, p *model.Professional) error {
	if p == nil {
		return storage.ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	storage.PrepareProfessional(p)
	if i := indexByID(s.professionals, p.ID, professionalID); i >= 0 {
		s.professionals[i] = p.Clone()
		return nil
	}
	s.professionals = append(s.professionals, p.Clone())
	return nil
}

func (s *Store) DeleteProfessional(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.professionals, id, professionalID)
	if i < 0 {
		return fmt.Errorf("professional %s: %w", id, storage.ErrNotFound)
	}
	s.professionals = slices.Delete(s.professionals, i, i+1)
	return nil
}

// Clients

func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.clients), nil
}

func (s *Store) GetClient(ctx context.Context, id string) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexByID(s.clients, id, clientID)
	if i < 0 {
		return nil, fmt.Errorf("client %s: %w", id, storage.ErrNotFound)
	}
	c := s.clients[i]
	return &c, nil
}

func (s *Store) SaveClient(ctx context.Context, c *model.Client) error {
	if c == nil {
		return storage.ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = storage.NewID()
	}
	if i := indexByID(s.clients, c.ID, clientID); i >= 0 {
		s.clients[i] = *c
		return nil
	}
	s.clients = append(s.clients, *c)
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.clients, id, clientID)
	if i < 0 {
		return fmt.Errorf("client %s: %w", id, storage.ErrNotFound)
	}
	s.clients = slices.Delete(s.clients, i, i+1)
	return nil
}

// Appointments

func (s *Store) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	s.mu.RLock()
	out := cloneAppointments(s.appointments)
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.Appointment) int { return a.Date.Compare(b.Date) })
	return out, nil
}

func (s *Store) ListByClient(ctx context.Context, id string) ([]model.Appointment, error) {
	s.mu.RLock()
	out := []model.Appointment{}
	for _, a := range s.appointments {
		if a.Client.ID == id {
			out = append(out, cloneAppointment(a))
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.Appointment) int { return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano()) })
	return out, nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexByID(s.appointments, id, appointmentID)
	if i < 0 {
		return nil, fmt.Errorf("appointment %s: %w", id, storage.ErrNotFound)
	}
	a := cloneAppointment(s.appointments[i])
	return &a, nil
}

func (s *Store) AddAppointment(ctx context.Context, a *model.Appointment) error {
	if a == nil {
		return storage.ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = storage.NewID()
	}
	s.appointments = append(s.appointments, cloneAppointment(*a))
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.appointments, id, appointmentID)
	if i < 0 {
		return fmt.Errorf("appointment %s: %w", id, storage.ErrNotFound)
	}
	s.appointments = slices.Delete(s.appointments, i, i+1)
	return nil
}

func cloneAppointment(a model.Appointment) model.Appointment {
	a.Professional = a.Professional.Clone()
	return a
}

func cloneAppointments(in []model.Appointment) []model.Appointment {
	out := make([]model.Appointment, 0, len(in))
	for _, a := range in {
		out = append(out, cloneAppointment(a))
	}
	return out
}

// Settings

func (s *Store) GetSettings(ctx context.Context) (model.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone(), nil
}

func (s *Store) SaveSettings(ctx context.Context, st model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st.Clone()
	return nil
}

// ListByProfessional returns a professional's appointments starting in [from, to).
func (s *Store) ListByProfessional(ctx context.Context, professionalID string, from, to time.Time) ([]model.Appointment, error) {
	s.mu.RLock()
	out := []model.Appointment{}
	for _, a := range s.appointments {
		if a.Professional.ID == professionalID && !a.Date.Before(from) && a.Date.Before(to) {
			out = append(out, cloneAppointment(a))
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.Appointment) int { return a.Date.Compare(b.Date) })
	return out, nil
}
