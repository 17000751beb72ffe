//go:build !gocv
// +build !gocv

package vision

import (
	"errors"

	"go.uber.org/zap"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
)

// OpenCVCompositor заглушка компоновщика без OpenCV.
type OpenCVCompositor struct{}

// NewOpenCVCompositor возвращает ошибку, если сборка без тега gocv.
func NewOpenCVCompositor(opts Options, logger *zap.Logger) (*OpenCVCompositor, error) {
	_ = opts
	_ = logger
	return nil, errors.New("gocv build tag is not enabled")
}

// Composite возвращает ошибку, если сборка без тега gocv.
func (c *OpenCVCompositor) Composite(img *entity.Image, masks []entity.RawMask) (*entity.AggregateResult, error) {
	_ = img
	_ = masks
	return nil, errors.New("gocv build tag is not enabled")
}

var _ port.MaskCompositor = (*OpenCVCompositor)(nil)
