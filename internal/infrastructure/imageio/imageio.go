package imageio

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	// Регистрация дополнительных декодеров.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"leaf-counter/internal/domain/entity"
)

// JPEGQuality качество сохранения JPEG.
const JPEGQuality = 95

// Load читает и декодирует изображение с диска.
func Load(path string) (*entity.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(entity.ErrResourceUnavailable, "read %s: %v", path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return img, nil
}

// Decode декодирует PNG, JPEG, GIF, BMP, TIFF или WebP в BGR-буфер.
func Decode(data []byte) (*entity.Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(entity.ErrResourceUnavailable, "decode image: %v", err)
	}
	img := entity.ImageFromStd(src)
	if img.Width == 0 || img.Height == 0 {
		return nil, errors.Wrapf(entity.ErrResourceUnavailable, "decoded %s image is empty", format)
	}
	return img, nil
}

// DecodeGray декодирует изображение в оттенки серого, значения нормированы в [0, 1].
func DecodeGray(r io.Reader) (values []float64, width, height int, err error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, 0, 0, errors.Wrapf(entity.ErrResourceUnavailable, "decode mask: %v", err)
	}
	b := src.Bounds()
	width, height = b.Dx(), b.Dy()
	values = make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			values[y*width+x] = float64(g.Y) / 255
		}
	}
	return values, width, height, nil
}

// Encode записывает изображение в выбранном формате.
func Encode(w io.Writer, img *entity.Image, format entity.OutputFormat) error {
	rgba := img.ToRGBA()
	var err error
	switch format {
	case entity.FormatJPEG:
		err = jpeg.Encode(w, rgba, &jpeg.Options{Quality: JPEGQuality})
	default:
		err = png.Encode(w, rgba)
	}
	if err != nil {
		return errors.Wrap(err, "encode image")
	}
	return nil
}

// EncodeBytes кодирует изображение в память.
func EncodeBytes(img *entity.Image, format entity.OutputFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save сохраняет изображение, формат выбирается по расширению файла (по умолчанию PNG).
func Save(path string, img *entity.Image) error {
	format, err := entity.ParseOutputFormat(filepath.Ext(path))
	if err != nil {
		format = entity.FormatPNG
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := Encode(f, img, format); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
