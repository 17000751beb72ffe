package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/infrastructure/storage"
)

func TestSettingsService_SetConfidence(t *testing.T) {
	repo := storage.NewMemorySettingsRepository(0.25, entity.FormatJPEG)
	svc := NewSettingsService(repo)
	ctx := context.Background()

	s, err := svc.SetConfidence(ctx, 1, 0.4)
	require.NoError(t, err)
	require.Equal(t, 0.4, s.Confidence)

	s, err = svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 0.4, s.Confidence)

	_, err = svc.SetConfidence(ctx, 1, -0.1)
	require.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestSettingsService_SetFormat(t *testing.T) {
	repo := storage.NewMemorySettingsRepository(0.25, entity.FormatJPEG)
	svc := NewSettingsService(repo)
	ctx := context.Background()

	s, err := svc.SetFormat(ctx, 2, entity.FormatPNG)
	require.NoError(t, err)
	require.Equal(t, entity.FormatPNG, s.Format)

	s, err = svc.Get(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, entity.FormatPNG, s.Format)
}
