//go:build gocv
// +build gocv

package vision

import (
	"image"
	"image/color"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
)

// OpenCVCompositor накладывает маски средствами OpenCV.
type OpenCVCompositor struct {
	opts      Options
	annotator *Annotator
	logger    *zap.Logger
}

// NewOpenCVCompositor создаёт компоновщик на OpenCV.
func NewOpenCVCompositor(opts Options, logger *zap.Logger) (*OpenCVCompositor, error) {
	opts.Validate()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenCVCompositor{opts: opts, annotator: NewAnnotator(opts), logger: logger}, nil
}

// Composite повторяет Compositor.Composite на матрицах OpenCV.
func (c *OpenCVCompositor) Composite(img *entity.Image, masks []entity.RawMask) (*entity.AggregateResult, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	w, h := img.Width, img.Height

	out, err := matFromImage(img)
	if err != nil {
		return nil, err
	}
	defer func() { out.Close() }()

	zeros := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), h, w, gocv.MatTypeCV8U)
	defer zeros.Close()
	union := zeros.Clone()
	defer func() { union.Close() }()

	result := &entity.AggregateResult{Width: w, Height: h}
	for i, m := range masks {
		bin, err := c.binaryMat(m, w, h)
		if err != nil {
			return nil, errors.Wrapf(err, "mask %d", i)
		}
		result.TotalPixels += gocv.CountNonZero(bin)

		// Зелёный слой: маска только в канале G.
		colorMask := gocv.NewMat()
		gocv.Merge([]gocv.Mat{zeros, bin, zeros}, &colorMask)

		blended := gocv.NewMat()
		gocv.AddWeighted(out, 1.0, colorMask, c.opts.BlendWeight, 0, &blended)
		out.Close()
		out = blended

		merged := gocv.NewMat()
		gocv.BitwiseOr(union, bin, &merged)
		union.Close()
		union = merged

		colorMask.Close()
		bin.Close()
		result.Count++
	}
	result.UnionPixels = gocv.CountNonZero(union)

	texts := c.annotator.Texts(result.Count, result.TotalPixels, w, h)
	// PutText сам переводит color.RGBA в скаляр BGR.
	for i, line := range c.opts.Annotations {
		gocv.PutText(&out, texts[i], line.Position, gocv.FontHersheySimplex, 1, color.RGBA{A: 255}, 2+2*c.opts.Outline)
		gocv.PutText(&out, texts[i], line.Position, gocv.FontHersheySimplex, 1, line.Color, 2)
	}

	result.Composite = &entity.Image{Width: w, Height: h, Stride: w * entity.Channels, Pix: out.ToBytes()}

	c.logger.Debug("masks composited with opencv",
		zap.Int("count", result.Count),
		zap.Int("total_pixels", result.TotalPixels))

	return result, nil
}

// binaryMat масштабирует поле маски до w x h и бинаризует его в CV_8U (0/255).
func (c *OpenCVCompositor) binaryMat(m entity.RawMask, w, h int) (gocv.Mat, error) {
	mw, mh := m.Size()
	if mw == 0 || mh == 0 {
		return gocv.NewMat(), errors.Wrap(entity.ErrInvalidInput, "empty mask field")
	}

	field := gocv.NewMatWithSize(mh, mw, gocv.MatTypeCV32F)
	defer field.Close()
	for y := 0; y < mh; y++ {
		for x := 0; x < mw; x++ {
			field.SetFloatAt(y, x, float32(m.Field.At(y, x)))
		}
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(field, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(resized, &thresh, float32(c.opts.MaskThreshold), 255, gocv.ThresholdBinary)

	bin := gocv.NewMat()
	thresh.ConvertTo(&bin, gocv.MatTypeCV8U)
	return bin, nil
}

// matFromImage копирует буфер изображения в новую CV_8UC3 матрицу.
// NewMatFromBytes не копирует данные, поэтому матрица сразу клонируется.
func matFromImage(img *entity.Image) (gocv.Mat, error) {
	pix := img.Clone().Pix
	wrapped, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, pix)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "wrap image into mat")
	}
	defer wrapped.Close()
	out := wrapped.Clone()
	runtime.KeepAlive(pix)
	return out, nil
}

var _ port.MaskCompositor = (*OpenCVCompositor)(nil)
