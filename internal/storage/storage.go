// Package storage defines the repositories behind the salon catalog and
// appointment book.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salonbook/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid entity")
)

type ServiceRepository interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	GetService(ctx context.Context, id string) (*model.Service, error)
	// SaveService creates the service under a fresh ID when its ID is empty
	// and upserts it otherwise. The ID is set on create.
	SaveService(ctx context.Context, svc *model.Service) error
	DeleteService(ctx context.Context, id string) error
}

type ProfessionalRepository interface {
	ListProfessionals(ctx context.Context) ([]model.Professional, error)
	GetProfessional(ctx context.Context, id string) (*model.Professional, error)
	SaveProfessional(ctx context.Context, p *model.Professional) error
	DeleteProfessional(ctx context.Context, id string) error
}

type ClientRepository interface {
	ListClients(ctx context.Context) ([]model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	SaveClient(ctx context.Context, c *model.Client) error
	DeleteClient(ctx context.Context, id string) error
}

type AppointmentRepository interface {
	// ListAppointments returns every appointment, earliest first.
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
	// ListByClient returns a client's appointments, most recent first.
	ListByClient(ctx context.Context, clientID string) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	AddAppointment(ctx context.Context, a *model.Appointment) error
	DeleteAppointment(ctx context.Context, id string) error
	// ListByProfessional returns a professional's appointments starting in
	// [from, to), earliest first.
	ListByProfessional(ctx context.Context, professionalID string, from, to time.Time) ([]model.Appointment, error)
}

type SettingsRepository interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) error
}

// Store aggregates every repository of one backend.
type Store interface {
	ServiceRepository
	ProfessionalRepository
	ClientRepository
	AppointmentRepository
	SettingsRepository
	Ping(ctx context.Context) error
	Close() error
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// AvatarURL is the placeholder avatar for a professional created without one.
func AvatarURL(id string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/200/200", id)
}

// PrepareProfessional assigns an ID and avatar to a professional being created.
// It reports whether the professional is new.
func PrepareProfessional(p *model.Professional) bool {
	if p.ID != "" {
		return false
	}
	p.ID = NewID()
	if p.AvatarURL == "" {
		p.AvatarURL = AvatarURL(p.ID)
	}
	return true
}
