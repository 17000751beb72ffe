package entity

import (
	"strings"

	"github.com/pkg/errors"
)

// OutputFormat формат, в котором пользователь получает итоговое изображение.
type OutputFormat string

const (
	FormatPNG  OutputFormat = "png"  // без потерь
	FormatJPEG OutputFormat = "jpeg" // компактнее, для превью
)

// ParseOutputFormat разбирает название формата ("png", "jpg", "jpeg").
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	}
	return "", errors.Wrapf(ErrInvalidInput, "unsupported output format %q", s)
}

// ChatSettings настройки анализа для одного чата.
type ChatSettings struct {
	ChatID     int64        // Telegram Chat ID
	Confidence float64      // порог уверенности сегментатора
	Format     OutputFormat // формат итогового изображения
}

// NewChatSettings создаёт настройки чата со значениями по умолчанию
func NewChatSettings(chatID int64, confidence float64, format OutputFormat) *ChatSettings {
	return &ChatSettings{
		ChatID:     chatID,
		Confidence: confidence,
		Format:     format,
	}
}

// SetConfidence обновляет порог уверенности, значение должно лежать в [0, 1]
func (s *ChatSettings) SetConfidence(confidence float64) error {
	if confidence < 0 || confidence > 1 {
		return errors.Wrapf(ErrInvalidInput, "confidence %.3f is out of [0, 1]", confidence)
	}
	s.Confidence = confidence
	return nil
}

// SetFormat обновляет формат итогового изображения
func (s *ChatSettings) SetFormat(format OutputFormat) {
	s.Format = format
}
