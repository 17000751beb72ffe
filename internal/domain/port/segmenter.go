package port

import (
	"context"

	"leaf-counter/internal/domain/entity"
)

// Segmenter внешняя модель сегментации
type Segmenter interface {
	// Segment возвращает по одной маске на каждый найденный объект с уверенностью не ниже confidence.
	// Пустой результат допустим. Изображение не изменяется.
	Segment(ctx context.Context, img *entity.Image, confidence float64) ([]entity.RawMask, error)
}
