package port

import (
	"context"

	"leaf-counter/internal/domain/entity"
)

// SettingsRepository интерфейс хранилища настроек чатов
type SettingsRepository interface {
	// Get возвращает настройки чата, создаёт настройки по умолчанию если не найдены
	Get(ctx context.Context, chatID int64) (*entity.ChatSettings, error)

	// Save сохраняет настройки чата
	Save(ctx context.Context, settings *entity.ChatSettings) error
}
