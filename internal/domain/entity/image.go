package entity

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Channels число каналов в буфере изображения (B, G, R).
const Channels = 3

// Image 8-битный буфер пикселей в порядке каналов B, G, R.
type Image struct {
	Width  int
	Height int
	Stride int    // байт на строку, обычно 3*Width
	Pix    []byte // пиксели построчно: B, G, R, B, G, R, ...
}

// NewImage создаёт чёрное изображение заданного размера.
func NewImage(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Width:  width,
		Height: height,
		Stride: width * Channels,
		Pix:    make([]byte, width*height*Channels),
	}
}

// Validate проверяет, что изображение пригодно для обработки.
func (m *Image) Validate() error {
	if m == nil {
		return errors.Wrap(ErrInvalidInput, "image is nil")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return errors.Wrapf(ErrInvalidInput, "degenerate image %dx%d", m.Width, m.Height)
	}
	if m.Stride < m.Width*Channels {
		return errors.Wrapf(ErrInvalidInput, "stride %d is too small for width %d", m.Stride, m.Width)
	}
	if len(m.Pix) < m.Stride*(m.Height-1)+m.Width*Channels {
		return errors.Wrapf(ErrInvalidInput, "pixel buffer is truncated (%d bytes)", len(m.Pix))
	}
	return nil
}

// Offset возвращает индекс синего канала пикселя (x, y).
func (m *Image) Offset(x, y int) int {
	return y*m.Stride + x*Channels
}

// BGR возвращает компоненты пикселя (x, y).
func (m *Image) BGR(x, y int) (b, g, r uint8) {
	i := m.Offset(x, y)
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// SetBGR записывает компоненты пикселя (x, y).
func (m *Image) SetBGR(x, y int, b, g, r uint8) {
	i := m.Offset(x, y)
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = b, g, r
}

// Clone возвращает независимую копию с плотной упаковкой строк.
func (m *Image) Clone() *Image {
	out := NewImage(m.Width, m.Height)
	row := m.Width * Channels
	for y := 0; y < m.Height; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+row], m.Pix[y*m.Stride:y*m.Stride+row])
	}
	return out
}

// ToRGBA конвертирует буфер в *image.RGBA для кодеков и отрисовки текста.
func (m *Image) ToRGBA() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			si := m.Offset(x, y)
			di := dst.PixOffset(x, y)
			dst.Pix[di] = m.Pix[si+2]
			dst.Pix[di+1] = m.Pix[si+1]
			dst.Pix[di+2] = m.Pix[si]
			dst.Pix[di+3] = 0xff
		}
	}
	return dst
}

// ImageFromStd конвертирует любое image.Image в BGR-буфер. Альфа-канал отбрасывается.
func ImageFromStd(src image.Image) *Image {
	b := src.Bounds()
	out := NewImage(b.Dx(), b.Dy())
	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				si := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
				out.SetBGR(x, y, rgba.Pix[si+2], rgba.Pix[si+1], rgba.Pix[si])
			}
		}
		return out
	}
	// Альфа отбрасывается без домножения: полупрозрачный пиксель сохраняет свой цвет.
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			out.SetBGR(x, y, c.B, c.G, c.R)
		}
	}
	return out
}
