package vision

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
)

// Compositor накладывает маски сегментации на изображение средствами Go, без OpenCV.
type Compositor struct {
	opts      Options
	lut       greenLUT
	annotator *Annotator
	logger    *zap.Logger
}

// NewCompositor создаёт компоновщик с заданными параметрами.
func NewCompositor(opts Options, logger *zap.Logger) *Compositor {
	opts.Validate()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compositor{
		opts:      opts,
		lut:       newGreenLUT(opts.BlendWeight),
		annotator: NewAnnotator(opts),
		logger:    logger,
	}
}

// Annotator возвращает рисовальщик подписей компоновщика.
func (c *Compositor) Annotator() *Annotator {
	return c.annotator
}

// Composite считает объекты и площадь масок и рисует итоговое изображение.
// Площадь суммируется по маскам независимо: пиксель под двумя масками учитывается дважды.
func (c *Compositor) Composite(img *entity.Image, masks []entity.RawMask) (*entity.AggregateResult, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	binaries, err := c.binarizeAll(img.Width, img.Height, masks)
	if err != nil {
		return nil, err
	}

	out := img.Clone()
	union := make([]bool, img.Width*img.Height)
	result := &entity.AggregateResult{Width: img.Width, Height: img.Height}
	for _, bm := range binaries {
		result.TotalPixels += bm.Count()
		out = BlendGreen(out, bm, c.lut)
		for i, covered := range bm.Covered {
			if covered && !union[i] {
				union[i] = true
				result.UnionPixels++
			}
		}
		result.Count++
	}

	texts := c.annotator.Texts(result.Count, result.TotalPixels, result.Width, result.Height)
	result.Composite = c.annotator.Annotate(out, texts)

	c.logger.Debug("masks composited",
		zap.Int("count", result.Count),
		zap.Int("total_pixels", result.TotalPixels),
		zap.Int("union_pixels", result.UnionPixels),
		zap.String("size", result.Size()))

	return result, nil
}

// binarizeAll масштабирует и бинаризует маски параллельно, сохраняя их порядок.
func (c *Compositor) binarizeAll(width, height int, masks []entity.RawMask) ([]entity.BinaryMask, error) {
	binaries := make([]entity.BinaryMask, len(masks))

	var g errgroup.Group
	g.SetLimit(c.opts.Workers)
	for i := range masks {
		i := i
		g.Go(func() error {
			bm, err := c.binarize(masks[i], width, height)
			if err != nil {
				return errors.Wrapf(err, "mask %d", i)
			}
			binaries[i] = bm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return binaries, nil
}

func (c *Compositor) binarize(mask entity.RawMask, width, height int) (entity.BinaryMask, error) {
	mw, mh := mask.Size()
	if mw == 0 || mh == 0 {
		return entity.BinaryMask{}, errors.Wrap(entity.ErrInvalidInput, "empty mask field")
	}
	resized := ResizeBilinear(mask.Field, width, height)
	return Binarize(resized.RawMatrix().Data, width, height, c.opts.MaskThreshold), nil
}

// Проверка реализации интерфейса
var _ port.MaskCompositor = (*Compositor)(nil)
