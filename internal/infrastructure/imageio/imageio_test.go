package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"leaf-counter/internal/domain/entity"
)

func TestEncodeDecode_PNGIsLossless(t *testing.T) {
	img := entity.NewImage(3, 2)
	img.SetBGR(0, 0, 10, 20, 30)
	img.SetBGR(2, 1, 250, 128, 1)

	data, err := EncodeBytes(img, entity.FormatPNG)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, img.Pix, back.Pix)
}

func TestDecode_TranslucentPNGKeepsColor(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 180, G: 90, B: 30, A: 64})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	b, g, r := img.BGR(0, 0)
	require.Equal(t, [3]uint8{30, 90, 180}, [3]uint8{b, g, r})
}

func TestEncode_JPEG(t *testing.T) {
	data, err := EncodeBytes(entity.NewImage(8, 8), entity.FormatJPEG)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xff, 0xd8}))
}

func TestDecode_CorruptData(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	require.ErrorIs(t, err, entity.ErrResourceUnavailable)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, entity.ErrResourceUnavailable)
}

func TestSave_ChoosesFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	img := entity.NewImage(4, 4)

	require.NoError(t, Save(filepath.Join(dir, "out.jpg"), img))
	data, err := os.ReadFile(filepath.Join(dir, "out.jpg"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xff, 0xd8}))

	require.NoError(t, Save(filepath.Join(dir, "out.png"), img))
	loaded, err := Load(filepath.Join(dir, "out.png"))
	require.NoError(t, err)
	require.Equal(t, 4, loaded.Width)
}

func TestDecodeGray_Normalizes(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 255})
	src.SetGray(1, 0, color.Gray{Y: 51})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	values, w, h, err := DecodeGray(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, w)
	require.Equal(t, 1, h)
	require.InDeltaSlice(t, []float64{1, 0.2}, values, 1e-9)
}
