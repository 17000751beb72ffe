package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/infrastructure/imageio"
)

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, "Leaf", &entity.AggregateResult{
		Count: 2, TotalPixels: 20000, UnionPixels: 10000, Width: 100, Height: 100,
	})

	require.Equal(t, "Leaf Count: 2\nLeaf Pixels: 20000\nCovered Pixels: 10000 (100.0%)\nImage Size: 100x100\n", buf.String())
}

// writeMask сохраняет полностью покрытую маску w x h в оттенках серого.
func writeMask(t *testing.T, path string, w, h int) {
	t.Helper()
	m := image.NewGray(image.Rect(0, 0, w, h))
	for i := range m.Pix {
		m.Pix[i] = 255
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func TestCountCommand_WithMaskDir(t *testing.T) {
	t.Setenv("BACKEND", "go")
	t.Setenv("OBJECT_NOUN", "Leaf")
	t.Setenv("LOG_MODE", "release")
	t.Setenv("MASK_THRESHOLD", "0.5")
	t.Setenv("BLEND_WEIGHT", "0.5")

	dir := t.TempDir()
	input := filepath.Join(dir, "plant.png")
	require.NoError(t, imageio.Save(input, entity.NewImage(100, 100)))

	masksDir := filepath.Join(dir, "masks")
	require.NoError(t, os.Mkdir(masksDir, 0o755))
	writeMask(t, filepath.Join(masksDir, "0.png"), 50, 50)
	writeMask(t, filepath.Join(masksDir, "1.png"), 100, 100)

	out := filepath.Join(dir, "result.png")

	var buf bytes.Buffer
	cliApp := newApp()
	cliApp.Writer = &buf
	err := cliApp.Run([]string{
		"leafcount", "--env", filepath.Join(dir, "missing.env"),
		"count", "--image", input, "--masks", masksDir, "--out", out,
	})
	require.NoError(t, err)
	require.Equal(t, "Leaf Count: 2\nLeaf Pixels: 20000\nCovered Pixels: 10000 (100.0%)\nImage Size: 100x100\n", buf.String())

	composite, err := imageio.Load(out)
	require.NoError(t, err)
	require.Equal(t, 100, composite.Width)
	require.Equal(t, 100, composite.Height)

	// Пиксель над подписями под двумя масками: зелёный насыщен, R и B не тронуты.
	b, g, r := composite.BGR(95, 5)
	require.Equal(t, [3]uint8{0, 255, 0}, [3]uint8{b, g, r})
}

func TestCountCommand_MissingImage(t *testing.T) {
	t.Setenv("BACKEND", "go")

	dir := t.TempDir()
	cliApp := newApp()
	cliApp.Writer = &bytes.Buffer{}
	err := cliApp.Run([]string{
		"leafcount", "--env", filepath.Join(dir, "missing.env"),
		"count", "--image", filepath.Join(dir, "nope.png"), "--masks", dir,
	})
	require.ErrorIs(t, err, entity.ErrResourceUnavailable)
}
