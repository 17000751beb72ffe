package storage

import (
	"context"
	"sync"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
)

// MemorySettingsRepository in-memory хранилище настроек чатов
type MemorySettingsRepository struct {
	mu       sync.RWMutex
	settings map[int64]*entity.ChatSettings
	defaults entity.ChatSettings
}

// NewMemorySettingsRepository создаёт новое in-memory хранилище с настройками по умолчанию
func NewMemorySettingsRepository(confidence float64, format entity.OutputFormat) *MemorySettingsRepository {
	return &MemorySettingsRepository{
		settings: make(map[int64]*entity.ChatSettings),
		defaults: entity.ChatSettings{Confidence: confidence, Format: format},
	}
}

// Get возвращает копию настроек чата, создаёт настройки по умолчанию если не найдены
func (r *MemorySettingsRepository) Get(ctx context.Context, chatID int64) (*entity.ChatSettings, error) {
	r.mu.RLock()
	s, exists := r.settings[chatID]
	r.mu.RUnlock()

	if exists {
		cp := *s
		return &cp, nil
	}

	// Создаём настройки по умолчанию
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, exists = r.settings[chatID]; !exists {
		s = entity.NewChatSettings(chatID, r.defaults.Confidence, r.defaults.Format)
		r.settings[chatID] = s
	}

	cp := *s
	return &cp, nil
}

// Save сохраняет настройки чата
func (r *MemorySettingsRepository) Save(ctx context.Context, settings *entity.ChatSettings) error {
	cp := *settings

	r.mu.Lock()
	r.settings[settings.ChatID] = &cp
	r.mu.Unlock()

	return nil
}

// Проверка реализации интерфейса
var _ port.SettingsRepository = (*MemorySettingsRepository)(nil)
