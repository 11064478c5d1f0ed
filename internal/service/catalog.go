package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"salonbook/internal/config"
	"salonbook/internal/model"
	"salonbook/internal/storage"
)

// CatalogRepository is the storage the catalog service needs.
type CatalogRepository interface {
	storage.ServiceRepository
	storage.ProfessionalRepository
	storage.ClientRepository
}

// CatalogService manages services, professionals and clients.
type CatalogService struct {
	repo         CatalogRepository
	appointments storage.AppointmentRepository
	logger       *zerolog.Logger
}

func NewCatalogService(repo CatalogRepository, appointments storage.AppointmentRepository, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, appointments: appointments, logger: logger}
}

func (s *CatalogService) ListServices(ctx context.Context) ([]model.Service, error) {
	return s.repo.ListServices(ctx)
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	return s.repo.GetService(ctx, id)
}

func (s *CatalogService) SaveService(ctx context.Context, svc *model.Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	if err := s.repo.SaveService(ctx, svc); err != nil {
		return fmt.Errorf("save service: %w", err)
	}
	s.logger.Info().Str("service", svc.ID).Str("name", svc.Name).Msg("service saved")
	return nil
}

func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("service", id).Msg("service deleted")
	return nil
}

func (s *CatalogService) ListProfessionals(ctx context.Context) ([]model.Professional, error) {
	return s.repo.ListProfessionals(ctx)
}

func (s *CatalogService) GetProfessional(ctx context.Context, id string) (*model.Professional, error) {
	return s.repo.GetProfessional(ctx, id)
}

func (s *CatalogService) SaveProfessional(ctx context.Context, p *model.Professional) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.SaveProfessional(ctx, p); err != nil {
		return fmt.Errorf("save professional: %w", err)
	}
	s.logger.Info().Str("professional", p.ID).Str("name", p.Name).Msg("professional saved")
	return nil
}

func (s *CatalogService) DeleteProfessional(ctx context.Context, id string) error {
	if err := s.repo.DeleteProfessional(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("professional", id).Msg("professional deleted")
	return nil
}

func (s *CatalogService) ListClients(ctx context.Context) ([]model.Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *CatalogService) GetClient(ctx context.Context, id string) (*model.Client, error) {
	return s.repo.GetClient(ctx, id)
}

// ClientHistory returns a client with their appointments, most recent first.
func (s *CatalogService) ClientHistory(ctx context.Context, id string) (*model.Client, []model.Appointment, error) {
	c, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.appointments.ListByClient(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("client history: %w", err)
	}
	return c, history, nil
}

func (s *CatalogService) SaveClient(ctx context.Context, c *model.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.repo.SaveClient(ctx, c); err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	s.logger.Info().Str("client", c.ID).Msg("client saved")
	return nil
}

func (s *CatalogService) DeleteClient(ctx context.Context, id string) error {
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("client", id).Msg("client deleted")
	return nil
}

// ImportSeed upserts the seed's services and professionals. Entities not in
// the seed are left alone.
func (s *CatalogService) ImportSeed(ctx context.Context, seed *config.Seed) error {
	for i := range seed.Services {
		svc := seed.Services[i]
		if err := s.repo.SaveService(ctx, &svc); err != nil {
			return fmt.Errorf("import service %s: %w", svc.ID, err)
		}
	}
	for i := range seed.Professionals {
		p := seed.Professionals[i].Clone()
		if err := s.repo.SaveProfessional(ctx, &p); err != nil {
			return fmt.Errorf("import professional %s: %w", p.ID, err)
		}
	}
	s.logger.Info().Int("services", len(seed.Services)).Int("professionals", len(seed.Professionals)).Msg("catalog imported")
	return nil
}
