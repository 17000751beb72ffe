package imageio

import (
	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
)

// Codec реализует port.ImageCodec поверх функций пакета.
type Codec struct{}

// Load читает изображение с диска
func (Codec) Load(path string) (*entity.Image, error) {
	return Load(path)
}

// Decode декодирует изображение из байтов
func (Codec) Decode(data []byte) (*entity.Image, error) {
	return Decode(data)
}

// Encode кодирует изображение в выбранный формат
func (Codec) Encode(img *entity.Image, format entity.OutputFormat) ([]byte, error) {
	return EncodeBytes(img, format)
}

var _ port.ImageCodec = Codec{}
