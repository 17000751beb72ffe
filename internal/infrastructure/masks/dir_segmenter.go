package masks

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/domain/port"
	"leaf-counter/internal/infrastructure/imageio"
)

var maskExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// DirSegmenter отдаёт заранее посчитанные маски из каталога.
// Каждый файл в оттенках серого задаёт одну маску: яркость/255 = вероятность.
// Файлы читаются в порядке имён.
type DirSegmenter struct {
	dir    string
	logger *zap.Logger
}

// NewDirSegmenter создаёт сегментатор по каталогу масок.
func NewDirSegmenter(dir string, logger *zap.Logger) *DirSegmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirSegmenter{dir: dir, logger: logger}
}

// Segment читает маски каталога. Изображение используется только для проверки.
func (s *DirSegmenter) Segment(ctx context.Context, img *entity.Image, confidence float64) ([]entity.RawMask, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	files, err := s.list()
	if err != nil {
		return nil, err
	}

	masks := make([]entity.RawMask, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := s.read(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		if m.Confidence < confidence {
			continue
		}
		masks = append(masks, m)
	}

	s.logger.Debug("masks loaded from directory",
		zap.String("dir", s.dir),
		zap.Int("count", len(masks)))

	return masks, nil
}

func (s *DirSegmenter) list() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(entity.ErrSegmenterUnavailable, "read mask dir %s: %v", s.dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !maskExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func (s *DirSegmenter) read(path string) (m entity.RawMask, err error) {
	f, err := os.Open(path)
	if err != nil {
		return entity.RawMask{}, errors.Wrapf(entity.ErrResourceUnavailable, "open mask %s: %v", path, err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	values, w, h, err := imageio.DecodeGray(f)
	if err != nil {
		return entity.RawMask{}, errors.Wrapf(err, "mask %s", path)
	}
	return entity.NewRawMask(w, h, values, 1)
}

// Проверка реализации интерфейса
var _ port.Segmenter = (*DirSegmenter)(nil)
