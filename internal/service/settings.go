package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"salonbook/internal/model"
	"salonbook/internal/storage"
)

// SettingsService reads and updates admin settings.
type SettingsService struct {
	repo   storage.SettingsRepository
	logger *zerolog.Logger
}

func NewSettingsService(repo storage.SettingsRepository, logger *zerolog.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger}
}

func (s *SettingsService) GetSettings(ctx context.Context) (model.Settings, error) {
	return s.repo.GetSettings(ctx)
}

// SaveSettings validates and stores st. Working days are normalized to a
// sorted, duplicate-free list.
func (s *SettingsService) SaveSettings(ctx context.Context, st model.Settings) (model.Settings, error) {
	if err := st.Validate(); err != nil {
		return model.Settings{}, err
	}
	st = st.Clone()
	st.Normalize()
	if err := s.repo.SaveSettings(ctx, st); err != nil {
		return model.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	s.logger.Info().Str("open", st.OpeningTime).Str("close", st.ClosingTime).Msg("settings saved")
	return st, nil
}
