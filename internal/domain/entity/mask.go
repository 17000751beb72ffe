package entity

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// RawMask поле вероятностей одного найденного объекта в родном разрешении модели.
type RawMask struct {
	Field      *mat.Dense // строки = высота маски, столбцы = ширина
	Confidence float64    // уверенность сегментатора в объекте
}

// NewRawMask создаёт маску width x height из значений, записанных построчно.
func NewRawMask(width, height int, values []float64, confidence float64) (RawMask, error) {
	if width <= 0 || height <= 0 {
		return RawMask{}, errors.Wrapf(ErrInvalidInput, "degenerate mask %dx%d", width, height)
	}
	if len(values) != width*height {
		return RawMask{}, errors.Wrapf(ErrInvalidInput, "mask %dx%d needs %d values, got %d",
			width, height, width*height, len(values))
	}
	return RawMask{Field: mat.NewDense(height, width, values), Confidence: confidence}, nil
}

// UniformRawMask создаёт маску, заполненную одним значением.
func UniformRawMask(width, height int, value float64) RawMask {
	values := make([]float64, width*height)
	for i := range values {
		values[i] = value
	}
	return RawMask{Field: mat.NewDense(height, width, values), Confidence: 1}
}

// Size возвращает ширину и высоту поля.
func (m RawMask) Size() (width, height int) {
	if m.Field == nil {
		return 0, 0
	}
	rows, cols := m.Field.Dims()
	return cols, rows
}

// BinaryMask бинаризованная маска, приведённая к размеру изображения.
type BinaryMask struct {
	Width   int
	Height  int
	Covered []bool // true для пикселей объекта, построчно
}

// Count возвращает число пикселей объекта.
func (m BinaryMask) Count() int {
	n := 0
	for _, c := range m.Covered {
		if c {
			n++
		}
	}
	return n
}
