package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
)

// ErrQueueFull все слоты анализа заняты дольше, чем позволяет QueueTimeout.
var ErrQueueFull = errors.New("analysis queue is full")

// AnalysisConfig ограничения параллельного анализа.
type AnalysisConfig struct {
	MaxConcurrent int
	QueueTimeout  time.Duration
}

// AnalysisService проводит изображение через сегментатор и компоновщик масок.
type AnalysisService struct {
	segmenter    port.Segmenter
	compositor   port.MaskCompositor
	codec        port.ImageCodec
	logger       *zap.Logger
	semaphore    chan struct{}
	queueTimeout time.Duration
}

// AnalysisOutput результат анализа и закодированная картинка для отправки пользователю.
type AnalysisOutput struct {
	Result  *entity.AggregateResult
	Encoded []byte
	Format  entity.OutputFormat
}

// NewAnalysisService создаёт сервис анализа изображений.
func NewAnalysisService(segmenter port.Segmenter, compositor port.MaskCompositor, codec port.ImageCodec, cfg AnalysisConfig, logger *zap.Logger) *AnalysisService {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		segmenter:    segmenter,
		compositor:   compositor,
		codec:        codec,
		logger:       logger,
		semaphore:    make(chan struct{}, cfg.MaxConcurrent),
		queueTimeout: cfg.QueueTimeout,
	}
}

// Analyze сегментирует изображение и сводит маски в итог.
func (s *AnalysisService) Analyze(ctx context.Context, img *entity.Image, confidence float64) (*entity.AggregateResult, error) {
	if s.segmenter == nil {
		return nil, errors.Wrap(entity.ErrSegmenterUnavailable, "segmenter is not configured")
	}
	if s.compositor == nil {
		return nil, errors.New("compositor is not configured")
	}
	if confidence < 0 || confidence > 1 {
		return nil, errors.Wrapf(entity.ErrInvalidInput, "confidence %.3f is out of [0, 1]", confidence)
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	masks, err := s.segmenter.Segment(ctx, img, confidence)
	if err != nil {
		return nil, errors.Wrap(err, "segment image")
	}
	segmented := time.Since(start)

	result, err := s.compositor.Composite(img, masks)
	if err != nil {
		return nil, errors.Wrap(err, "composite masks")
	}

	s.logger.Info("image analyzed",
		zap.Int("count", result.Count),
		zap.Int("total_pixels", result.TotalPixels),
		zap.String("size", result.Size()),
		zap.Float64("confidence", confidence),
		zap.Duration("segment", segmented),
		zap.Duration("total", time.Since(start)))

	return result, nil
}

// AnalyzeFile читает изображение по пути и анализирует его.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, confidence float64) (*entity.AggregateResult, error) {
	img, err := s.codec.Load(path)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, img, confidence)
}

// AnalyzeBytes декодирует изображение, анализирует и кодирует итог в нужный формат.
func (s *AnalysisService) AnalyzeBytes(ctx context.Context, data []byte, confidence float64, format entity.OutputFormat) (*AnalysisOutput, error) {
	img, err := s.codec.Decode(data)
	if err != nil {
		return nil, err
	}

	result, err := s.Analyze(ctx, img, confidence)
	if err != nil {
		return nil, err
	}

	encoded, err := s.codec.Encode(result.Composite, format)
	if err != nil {
		return nil, err
	}

	return &AnalysisOutput{Result: result, Encoded: encoded, Format: format}, nil
}

// acquire занимает слот анализа, ожидая не дольше queueTimeout.
func (s *AnalysisService) acquire(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, s.queueTimeout)
	defer cancel()

	select {
	case s.semaphore <- struct{}{}:
		return func() { <-s.semaphore }, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrQueueFull
		}
		return nil, ctx.Err()
	}
}
