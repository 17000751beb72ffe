package port

import "leaf-counter/internal/domain/entity"

// MaskCompositor сводит маски в счётчик объектов, площадь и итоговое изображение
type MaskCompositor interface {
	// Composite накладывает маски на копию изображения и подписывает результат.
	Composite(img *entity.Image, masks []entity.RawMask) (*entity.AggregateResult, error)
}
