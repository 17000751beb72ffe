//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"math"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
)

// ONNXSegmenter запускает модель сегментации формата YOLOv8-seg через модуль dnn OpenCV.
type ONNXSegmenter struct {
	cfg    ONNXConfig
	logger *zap.Logger

	mu  sync.Mutex // gocv.Net не потокобезопасен
	net gocv.Net
}

// NewONNXSegmenter загружает модель из cfg.ModelPath.
func NewONNXSegmenter(cfg ONNXConfig, logger *zap.Logger) (*ONNXSegmenter, error) {
	cfg.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, errors.Wrapf(entity.ErrSegmenterUnavailable, "load model %s", cfg.ModelPath)
	}

	logger.Info("segmentation model loaded",
		zap.String("path", cfg.ModelPath),
		zap.Int("input_size", cfg.InputSize))

	return &ONNXSegmenter{cfg: cfg, logger: logger, net: net}, nil
}

// Segment возвращает маски объектов с уверенностью не ниже confidence.
func (s *ONNXSegmenter) Segment(ctx context.Context, img *entity.Image, confidence float64) ([]entity.RawMask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	src, err := matFromImage(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	size := s.cfg.InputSize
	blob := gocv.BlobFromImage(src, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.mu.Lock()
	s.net.SetInput(blob, "")
	outs := s.net.ForwardLayers(s.cfg.OutputNames)
	s.mu.Unlock()
	defer func() {
		for i := range outs {
			outs[i].Close()
		}
	}()
	if len(outs) != 2 {
		return nil, errors.Errorf("model returned %d outputs, want 2", len(outs))
	}

	return s.decode(outs[0], outs[1], confidence)
}

// decode разбирает выходы модели: [1, 4+nc+nm, N] предсказания и [1, nm, ph, pw] прототипы масок.
func (s *ONNXSegmenter) decode(preds, protos gocv.Mat, confidence float64) ([]entity.RawMask, error) {
	pd := preds.Size()
	md := protos.Size()
	if len(pd) != 3 || len(md) != 4 {
		return nil, errors.Errorf("unexpected output shapes %v and %v", pd, md)
	}
	channels, n := pd[1], pd[2]
	nm, ph, pw := md[1], md[2], md[3]
	nc := channels - 4 - nm
	if nc <= 0 {
		return nil, errors.Errorf("prediction has %d channels for %d mask coefficients", channels, nm)
	}

	p, err := preds.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "read predictions")
	}
	proto, err := protos.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "read mask prototypes")
	}

	var (
		boxes  []image.Rectangle
		scores []float32
		anchor []int
	)
	for i := 0; i < n; i++ {
		var best float32
		for k := 0; k < nc; k++ {
			if v := p[(4+k)*n+i]; v > best {
				best = v
			}
		}
		if float64(best) < confidence {
			continue
		}
		cx, cy, bw, bh := p[i], p[n+i], p[2*n+i], p[3*n+i]
		boxes = append(boxes, image.Rect(
			int(cx-bw/2), int(cy-bh/2),
			int(cx+bw/2), int(cy+bh/2),
		))
		scores = append(scores, best)
		anchor = append(anchor, i)
	}
	if len(boxes) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(boxes, scores, float32(confidence), float32(s.cfg.NMSThreshold))

	sx := float64(pw) / float64(s.cfg.InputSize)
	sy := float64(ph) / float64(s.cfg.InputSize)
	plane := ph * pw
	masks := make([]entity.RawMask, 0, len(keep))
	for _, k := range keep {
		i := anchor[k]
		crop := image.Rect(
			int(math.Floor(float64(boxes[k].Min.X)*sx)), int(math.Floor(float64(boxes[k].Min.Y)*sy)),
			int(math.Ceil(float64(boxes[k].Max.X)*sx)), int(math.Ceil(float64(boxes[k].Max.Y)*sy)),
		).Intersect(image.Rect(0, 0, pw, ph))

		field := make([]float64, plane)
		for y := crop.Min.Y; y < crop.Max.Y; y++ {
			for x := crop.Min.X; x < crop.Max.X; x++ {
				var v float64
				for j := 0; j < nm; j++ {
					v += float64(p[(4+nc+j)*n+i]) * float64(proto[j*plane+y*pw+x])
				}
				field[y*pw+x] = 1 / (1 + math.Exp(-v))
			}
		}
		masks = append(masks, entity.RawMask{Field: mat.NewDense(ph, pw, field), Confidence: float64(scores[k])})
	}

	s.logger.Debug("segmentation decoded",
		zap.Int("candidates", len(boxes)),
		zap.Int("kept", len(masks)))

	return masks, nil
}

// Close освобождает сеть.
func (s *ONNXSegmenter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}

var _ port.Segmenter = (*ONNXSegmenter)(nil)
