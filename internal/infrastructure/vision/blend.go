package vision

import (
	"math"

	"leaf-counter/internal/domain/entity"
)

// Binarize превращает поле размера изображения в бинарную маску: покрыт пиксель со значением > threshold.
// NaN и значения вне [0, 1] просто сравниваются с порогом.
func Binarize(field []float64, width, height int, threshold float64) entity.BinaryMask {
	covered := make([]bool, width*height)
	for i, v := range field[:width*height] {
		covered[i] = v > threshold
	}
	return entity.BinaryMask{Width: width, Height: height, Covered: covered}
}

// greenLUT таблица смешивания зелёного канала: g + weight*255 с насыщением.
// Округление к чётному повторяет saturate_cast из OpenCV.
type greenLUT [256]uint8

func newGreenLUT(weight float64) greenLUT {
	var lut greenLUT
	for g := range lut {
		v := math.RoundToEven(float64(g) + weight*255)
		if v > 255 {
			v = 255
		}
		lut[g] = uint8(v)
	}
	return lut
}

// BlendGreen возвращает новое изображение, где зелёный канал покрытых пикселей усилен.
// Синий и красный каналы не меняются, исходное изображение не трогается.
func BlendGreen(img *entity.Image, mask entity.BinaryMask, lut greenLUT) *entity.Image {
	out := img.Clone()
	for y := 0; y < out.Height; y++ {
		row := mask.Covered[y*mask.Width : (y+1)*mask.Width]
		for x, covered := range row {
			if !covered {
				continue
			}
			i := out.Offset(x, y) + 1
			out.Pix[i] = lut[out.Pix[i]]
		}
	}
	return out
}
