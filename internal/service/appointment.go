package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"salonbook/internal/events"
	"salonbook/internal/metrics"
	"salonbook/internal/model"
	"salonbook/internal/storage"
)

var (
	ErrNoServices = errors.New("at least one service is required")
	ErrNoClient   = errors.New("no client available to attach the appointment to")
)

// AppointmentService records and manages booked visits.
type AppointmentService struct {
	repo            storage.AppointmentRepository
	clients         storage.ClientRepository
	bus             events.Publisher
	defaultClientID string
	now             func() time.Time
	logger          *zerolog.Logger
}

// NewAppointmentService builds the service. Appointments booked through the
// wizard are attached to defaultClientID, or to the first client on file
// when it is empty.
func NewAppointmentService(
	repo storage.AppointmentRepository,
	clients storage.ClientRepository,
	bus events.Publisher,
	defaultClientID string,
	logger *zerolog.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:            repo,
		clients:         clients,
		bus:             bus,
		defaultClientID: defaultClientID,
		now:             time.Now,
		logger:          logger,
	}
}

// SetClock overrides the time source.
func (s *AppointmentService) SetClock(now func() time.Time) {
	s.now = now
}

// RecordAppointment appends one appointment for the selection. The first
// service is kept as the service reference; duration and price are the sums
// over all services. No duplicate or conflict checks are made.
func (s *AppointmentService) RecordAppointment(ctx context.Context, services []model.Service, professional model.Professional, start time.Time) (*model.Appointment, error) {
	if len(services) == 0 {
		return nil, ErrNoServices
	}

	client, err := s.bookingClient(ctx)
	if err != nil {
		metrics.IncAppointmentCreated("error")
		return nil, err
	}

	appt := model.NewAppointment(storage.NewID(), services, professional.Clone(), *client, start)
	if err := s.repo.AddAppointment(ctx, &appt); err != nil {
		metrics.IncAppointmentCreated("error")
		return nil, fmt.Errorf("add appointment: %w", err)
	}
	metrics.IncAppointmentCreated("ok")

	if len(services) > 1 {
		s.logger.Debug().Str("appointment", appt.ID).Int("services", len(services)).Msg("multi-service booking recorded under its first service")
	}
	s.logger.Info().
		Str("appointment", appt.ID).
		Str("service", appt.Service.Name).
		Str("professional", appt.Professional.Name).
		Time("date", appt.Date).
		Int("duration", appt.DurationMinutes).
		Float64("price", appt.Price).
		Msg("appointment recorded")

	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.AppointmentCreated, Appointment: appt, CreatedAt: s.now()})
	}
	return &appt, nil
}

func (s *AppointmentService) bookingClient(ctx context.Context) (*model.Client, error) {
	if s.defaultClientID != "" {
		c, err := s.clients.GetClient(ctx, s.defaultClientID)
		if err != nil {
			return nil, fmt.Errorf("default client: %w", err)
		}
		return c, nil
	}

	clients, err := s.clients.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	if len(clients) == 0 {
		return nil, ErrNoClient
	}
	return &clients[0], nil
}

// Cancel removes an appointment.
func (s *AppointmentService) Cancel(ctx context.Context, id string) error {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	metrics.IncAppointmentCancelled()
	s.logger.Info().Str("appointment", id).Msg("appointment cancelled")

	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.AppointmentCancelled, Appointment: *appt, CreatedAt: s.now()})
	}
	return nil
}

// List returns every appointment, earliest first.
func (s *AppointmentService) List(ctx context.Context) ([]model.Appointment, error) {
	return s.repo.ListAppointments(ctx)
}

// Upcoming returns appointments starting now or later, earliest first.
func (s *AppointmentService) Upcoming(ctx context.Context) ([]model.Appointment, error) {
	all, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]model.Appointment, 0, len(all))
	for i := range all {
		if all[i].IsUpcoming(now) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// ByClient returns a client's history, most recent first.
func (s *AppointmentService) ByClient(ctx context.Context, clientID string) ([]model.Appointment, error) {
	return s.repo.ListByClient(ctx, clientID)
}

// IsOccupied reports whether the professional has an appointment
// overlapping [start, end).
func (s *AppointmentService) IsOccupied(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	// Appointments starting up to a day earlier can still run into the range.
	candidates, err := s.repo.ListByProfessional(ctx, professionalID, start.Add(-24*time.Hour), end)
	if err != nil {
		return false, err
	}
	for i := range candidates {
		if candidates[i].OverlapsRange(start, end) {
			return true, nil
		}
	}
	return false, nil
}
