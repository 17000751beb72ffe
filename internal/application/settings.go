package app

import (
	"context"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
)

type SettingsService struct {
	repo port.SettingsRepository
}

func NewSettingsService(repo port.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context, chatID int64) (*entity.ChatSettings, error) {
	return s.repo.Get(ctx, chatID)
}

func (s *SettingsService) SetConfidence(ctx context.Context, chatID int64, confidence float64) (*entity.ChatSettings, error) {
	settings, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if err := settings.SetConfidence(confidence); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

func (s *SettingsService) SetFormat(ctx context.Context, chatID int64, format entity.OutputFormat) (*entity.ChatSettings, error) {
	settings, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	settings.SetFormat(format)
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}
