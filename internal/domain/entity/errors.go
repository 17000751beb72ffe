package entity

import "errors"

var (
	// ErrInvalidInput входные данные не годятся для обработки (например, пустое изображение).
	ErrInvalidInput = errors.New("invalid input")

	// ErrResourceUnavailable изображение не удалось прочитать или декодировать.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrSegmenterUnavailable сегментатор не настроен или собран без нужного бэкенда.
	ErrSegmenterUnavailable = errors.New("segmenter unavailable")
)
