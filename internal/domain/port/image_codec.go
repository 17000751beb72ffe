package port

import "leaf-counter/internal/domain/entity"

// ImageCodec чтение и кодирование изображений
type ImageCodec interface {
	// Load читает изображение с диска
	Load(path string) (*entity.Image, error)

	// Decode декодирует изображение из байтов
	Decode(data []byte) (*entity.Image, error)

	// Encode кодирует изображение в PNG или JPEG
	Encode(img *entity.Image, format entity.OutputFormat) ([]byte, error)
}
