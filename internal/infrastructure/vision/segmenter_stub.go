//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
)

// ONNXSegmenter заглушка сегментатора без OpenCV.
type ONNXSegmenter struct{}

// NewONNXSegmenter возвращает ошибку, если сборка без тега gocv.
func NewONNXSegmenter(cfg ONNXConfig, logger *zap.Logger) (*ONNXSegmenter, error) {
	_ = logger
	return nil, errors.Wrapf(entity.ErrSegmenterUnavailable, "model %s: gocv build tag is not enabled", cfg.ModelPath)
}

// Segment возвращает ошибку, если сборка без тега gocv.
func (s *ONNXSegmenter) Segment(ctx context.Context, img *entity.Image, confidence float64) ([]entity.RawMask, error) {
	_ = ctx
	_ = img
	_ = confidence
	return nil, errors.Wrap(entity.ErrSegmenterUnavailable, "gocv build tag is not enabled")
}

// Close ничего не делает.
func (s *ONNXSegmenter) Close() error {
	return nil
}

var _ port.Segmenter = (*ONNXSegmenter)(nil)
